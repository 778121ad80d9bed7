package twosquares

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// PrimePower is one prime^exponent term of a factorization
type PrimePower struct {
	Prime *big.Int
	Exp   int
}

// Factorization maps distinct primes to positive exponents. It is immutable
// once constructed; terms are kept sorted by ascending prime.
//
// Constructors check the shape of the terms only. Primality of the keys is
// checked by Validate, or trusted when decomposing with limited checks.
type Factorization struct {
	powers []PrimePower
}

// NewFactorization builds a factorization from a prime->exponent map
func NewFactorization(m map[uint64]int) (Factorization, error) {
	powers := make([]PrimePower, 0, len(m))
	for p, k := range m {
		powers = append(powers, PrimePower{Prime: new(big.Int).SetUint64(p), Exp: k})
	}
	return FactorizationOf(powers...)
}

// MustFactorization is like NewFactorization but panics on error.
// Intended for literals in tests and examples.
func MustFactorization(m map[uint64]int) Factorization {
	f, err := NewFactorization(m)
	if err != nil {
		panic(err)
	}
	return f
}

// FactorizationOf builds a factorization from prime powers. The primes are
// copied, so later changes to the arguments do not affect the result.
func FactorizationOf(powers ...PrimePower) (Factorization, error) {
	out := make([]PrimePower, 0, len(powers))
	for _, pp := range powers {
		if pp.Prime == nil || pp.Prime.Cmp(bigTwo) < 0 {
			return Factorization{}, fmt.Errorf("%w: prime %v below 2", ErrInvalidFactorization, pp.Prime)
		}
		if pp.Exp < 1 {
			return Factorization{}, fmt.Errorf("%w: exponent %d for prime %s", ErrInvalidFactorization, pp.Exp, pp.Prime)
		}
		out = append(out, PrimePower{Prime: new(big.Int).Set(pp.Prime), Exp: pp.Exp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prime.Cmp(out[j].Prime) < 0 })
	for i := 1; i < len(out); i++ {
		if out[i].Prime.Cmp(out[i-1].Prime) == 0 {
			return Factorization{}, fmt.Errorf("%w: duplicate prime %s", ErrInvalidFactorization, out[i].Prime)
		}
	}
	return Factorization{powers: out}, nil
}

// Powers returns a copy of the terms in ascending prime order
func (f Factorization) Powers() []PrimePower {
	out := make([]PrimePower, len(f.powers))
	for i, pp := range f.powers {
		out[i] = PrimePower{Prime: new(big.Int).Set(pp.Prime), Exp: pp.Exp}
	}
	return out
}

// Len returns the number of distinct primes
func (f Factorization) Len() int {
	return len(f.powers)
}

// Exponent returns the exponent of p, or 0 if p does not divide the value
func (f Factorization) Exponent(p *big.Int) int {
	i := sort.Search(len(f.powers), func(i int) bool { return f.powers[i].Prime.Cmp(p) >= 0 })
	if i < len(f.powers) && f.powers[i].Prime.Cmp(p) == 0 {
		return f.powers[i].Exp
	}
	return 0
}

// Value returns the product of all terms. The empty factorization is 1.
func (f Factorization) Value() *big.Int {
	n := big.NewInt(1)
	var t big.Int
	for _, pp := range f.powers {
		t.Exp(pp.Prime, big.NewInt(int64(pp.Exp)), nil)
		n.Mul(n, &t)
	}
	return n
}

// Fingerprint returns a tagged SHA-256 digest of the canonical encoding
func (f Factorization) Fingerprint() [32]byte {
	return TaggedHash(tagFactorization, encodeFactorization(f))
}

// String formats the factorization as "2^1 * 3^2 * 5"
func (f Factorization) String() string {
	if len(f.powers) == 0 {
		return "1"
	}
	parts := make([]string, len(f.powers))
	for i, pp := range f.powers {
		if pp.Exp == 1 {
			parts[i] = pp.Prime.String()
		} else {
			parts[i] = fmt.Sprintf("%s^%d", pp.Prime, pp.Exp)
		}
	}
	return strings.Join(parts, " * ")
}
