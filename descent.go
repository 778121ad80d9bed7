package twosquares

import (
	"fmt"
	"math/big"
)

// Descend runs the Euclidean algorithm on (p, x), where x^2 = -1 (mod p),
// and returns the pair (u, v) with u^2 + v^2 = p.
//
// The remainders a0 = p, a1 = x, a(i+1) = a(i-1) mod a(i) are followed until
// the first a(k) with a(k)^2 <= p; the answer is (a(k), a(k+1)). The result
// is checked and ErrDecompositionNotFound is returned if it does not sum
// to p.
func Descend(p, x *big.Int) (SquarePair, error) {
	if p == nil || x == nil || x.Sign() <= 0 || x.Cmp(p) >= 0 {
		return SquarePair{}, fmt.Errorf("%w: root %v out of range for %v", ErrDecompositionNotFound, x, p)
	}

	prev := new(big.Int).Set(p)
	cur := new(big.Int).Set(x)
	var sq big.Int
	for sq.Mul(cur, cur).Cmp(p) > 0 {
		prev.Mod(prev, cur)
		prev, cur = cur, prev
	}
	if cur.Sign() == 0 {
		return SquarePair{}, fmt.Errorf("%w: descent reached zero for %s", ErrDecompositionNotFound, p)
	}

	next := new(big.Int).Mod(prev, cur)
	pair := NewSquarePair(cur, next)
	if pair.Sum().Cmp(p) != 0 {
		return SquarePair{}, fmt.Errorf("%w: %s^2 + %s^2 != %s", ErrDecompositionNotFound, cur, next, p)
	}
	return pair, nil
}
