package twosquares

import (
	"encoding/binary"
	"sync"

	sha256simd "github.com/minio/sha256-simd"
)

// Tags separating the digest domains
const (
	tagFactorization = "twosquares/factorization"
	tagResult        = "twosquares/result"
)

// Precomputed SHA256(tag) prefixes for the fixed tags
var (
	factorizationTagHash [32]byte
	resultTagHash        [32]byte
	taggedHashInitOnce   sync.Once
)

func initTaggedHashPrefixes() {
	factorizationTagHash = sha256simd.Sum256([]byte(tagFactorization))
	resultTagHash = sha256simd.Sum256([]byte(tagResult))
}

// getTaggedHashPrefix returns the precomputed SHA256(tag) for known tags
func getTaggedHashPrefix(tag string) [32]byte {
	taggedHashInitOnce.Do(initTaggedHashPrefixes)

	switch tag {
	case tagFactorization:
		return factorizationTagHash
	case tagResult:
		return resultTagHash
	}
	return sha256simd.Sum256([]byte(tag))
}

// TaggedHash computes SHA256(SHA256(tag) || SHA256(tag) || data)
func TaggedHash(tag string, data []byte) [32]byte {
	var result [32]byte

	tagHash := getTaggedHashPrefix(tag)

	h := sha256simd.New()
	h.Write(tagHash[:])
	h.Write(tagHash[:])
	h.Write(data)
	copy(result[:], h.Sum(nil))

	return result
}

// encodeFactorization writes the canonical byte form of f: for each prime
// in ascending order, a length-prefixed big-endian prime followed by the
// exponent as a uvarint.
func encodeFactorization(f Factorization) []byte {
	var buf []byte
	var tmp [binary.MaxVarintLen64]byte
	for _, pp := range f.powers {
		b := pp.Prime.Bytes()
		n := binary.PutUvarint(tmp[:], uint64(len(b)))
		buf = append(buf, tmp[:n]...)
		buf = append(buf, b...)
		n = binary.PutUvarint(tmp[:], uint64(pp.Exp))
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

// resultKey identifies a cached decomposition: the factorization digest
// plus the check mode it was computed under.
func resultKey(f Factorization, limited bool) [32]byte {
	fp := f.Fingerprint()
	data := make([]byte, 0, len(fp)+1)
	data = append(data, fp[:]...)
	if limited {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}
	return TaggedHash(tagResult, data)
}
