package twosquares

import (
	"fmt"
	"math/big"
)

// maxNonResidueSearch bounds the candidate search for a quadratic
// non-residue. For primes the least non-residue is tiny, so hitting the
// bound means p was not a prime of the expected kind.
const maxNonResidueSearch = 1 << 16

// FindSqrtNegOne returns x with x^2 = -1 (mod p) and 0 < x < p.
//
// p must be 2 or congruent to 1 mod 4. The root is g^((p-1)/4) for the
// smallest quadratic non-residue g, so the result is deterministic in p.
func FindSqrtNegOne(p *big.Int) (*big.Int, error) {
	if p == nil || p.Cmp(bigTwo) < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrimeKind, p)
	}
	if p.Cmp(bigTwo) == 0 {
		return big.NewInt(1), nil
	}

	var r big.Int
	if r.Mod(p, bigFour).Cmp(bigOne) != 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrimeKind, p)
	}

	pMinus1 := new(big.Int).Sub(p, bigOne)
	half := new(big.Int).Rsh(pMinus1, 1)
	quarter := new(big.Int).Rsh(pMinus1, 2)

	g := big.NewInt(2)
	var t big.Int
	for i := 0; i < maxNonResidueSearch && g.Cmp(p) < 0; i++ {
		// Euler criterion: g^((p-1)/2) = -1 iff g is a non-residue
		if t.Exp(g, half, p).Cmp(pMinus1) == 0 {
			x := new(big.Int).Exp(g, quarter, p)
			if t.Mul(x, x).Mod(&t, p).Cmp(pMinus1) != 0 {
				return nil, fmt.Errorf("%w: %s has no square root of -1", ErrInvalidPrimeKind, p)
			}
			return x, nil
		}
		g.Add(g, bigOne)
	}

	return nil, fmt.Errorf("%w: no quadratic non-residue found for %s", ErrInvalidPrimeKind, p)
}
