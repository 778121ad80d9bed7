package twosquares

import (
	"fmt"
	"math/big"
)

// DecomposePrimeForm solves x^2 + d*y^2 = p for a prime p and d >= 1 using
// Cornacchia's algorithm. The pair is returned as (x, y), not sorted.
//
// When d is a multiple of p the only candidate is (0, 1) for d = p.
// ErrNotDecomposable is returned when p is not prime, -d is not a square
// mod p, or no solution exists.
func DecomposePrimeForm(p *big.Int, d int64) (x, y *big.Int, err error) {
	if d < 1 {
		return nil, nil, fmt.Errorf("%w: d = %d must be positive", ErrNotDecomposable, d)
	}
	if p == nil || p.Cmp(bigTwo) < 0 || !p.ProbablyPrime(millerRabinRounds) {
		return nil, nil, fmt.Errorf("%w: %v is not prime", ErrNotDecomposable, p)
	}

	bd := big.NewInt(d)
	var t big.Int
	if t.Mod(bd, p).Sign() == 0 {
		if bd.Cmp(p) == 0 {
			return big.NewInt(0), big.NewInt(1), nil
		}
		return nil, nil, fmt.Errorf("%w: %s with d = %d", ErrNotDecomposable, p, d)
	}

	// r0^2 = -d (mod p)
	negD := new(big.Int).Neg(bd)
	negD.Mod(negD, p)
	var r0 *big.Int
	if p.Cmp(bigTwo) == 0 {
		r0 = negD
	} else {
		r0 = new(big.Int).ModSqrt(negD, p)
		if r0 == nil {
			return nil, nil, fmt.Errorf("%w: -%d is not a square mod %s", ErrNotDecomposable, d, p)
		}
	}

	// Use the root in (p/2, p)
	if t.Lsh(r0, 1).Cmp(p) <= 0 {
		r0.Sub(p, r0)
	}

	prev := new(big.Int).Set(p)
	cur := r0
	var sq big.Int
	for cur.Sign() > 0 && sq.Mul(cur, cur).Cmp(p) >= 0 {
		prev.Mod(prev, cur)
		prev, cur = cur, prev
	}

	// y^2 = (p - x^2) / d must be a perfect square
	rest := new(big.Int).Mul(cur, cur)
	rest.Sub(p, rest)
	var rem big.Int
	rest.QuoRem(rest, bd, &rem)
	if rem.Sign() != 0 {
		return nil, nil, fmt.Errorf("%w: %s with d = %d", ErrNotDecomposable, p, d)
	}
	s := new(big.Int).Sqrt(rest)
	if t.Mul(s, s).Cmp(rest) != 0 {
		return nil, nil, fmt.Errorf("%w: %s with d = %d", ErrNotDecomposable, p, d)
	}
	return cur, s, nil
}
