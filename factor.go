package twosquares

import (
	"context"
	"fmt"
	"math/big"
	"sort"
)

// Factorizer produces the complete prime factorization of n
type Factorizer interface {
	Factor(ctx context.Context, n *big.Int) (Factorization, error)
}

// FactorizerFunc adapts a function to the Factorizer interface
type FactorizerFunc func(ctx context.Context, n *big.Int) (Factorization, error)

// Factor calls f(ctx, n)
func (f FactorizerFunc) Factor(ctx context.Context, n *big.Int) (Factorization, error) {
	return f(ctx, n)
}

// trialDivisionLimit is the bound for the trial division pass
const trialDivisionLimit = 1 << 12

// rhoMaxIterations bounds a single Pollard-Brent attempt before the
// polynomial constant is changed.
const rhoMaxIterations = 1 << 22

// DefaultFactorizer factors by trial division up to trialDivisionLimit and
// Pollard-Brent rho on the remaining cofactors. It is stateless and safe for
// concurrent use. The context is polled inside rho, which dominates the
// running time on large inputs.
type DefaultFactorizer struct{}

// Factor returns the prime factorization of n. n must be positive; 1 yields
// the empty factorization.
func (DefaultFactorizer) Factor(ctx context.Context, n *big.Int) (Factorization, error) {
	if n == nil || n.Sign() <= 0 {
		return Factorization{}, fmt.Errorf("%w: %v", ErrInvalidInput, n)
	}

	counts := make(map[string]*PrimePower)
	add := func(p *big.Int, k int) {
		key := p.Text(16)
		if pp, ok := counts[key]; ok {
			pp.Exp += k
			return
		}
		counts[key] = &PrimePower{Prime: new(big.Int).Set(p), Exp: k}
	}

	rest := new(big.Int).Set(n)
	var q, r, d big.Int
	for p := int64(2); p < trialDivisionLimit; p++ {
		d.SetInt64(p)
		if d.Mul(&d, &d).Cmp(rest) > 0 {
			break
		}
		d.SetInt64(p)
		k := 0
		for {
			q.QuoRem(rest, &d, &r)
			if r.Sign() != 0 {
				break
			}
			rest.Set(&q)
			k++
		}
		if k > 0 {
			add(&d, k)
		}
	}

	if rest.Cmp(bigOne) > 0 {
		stack := []*big.Int{rest}
		for len(stack) > 0 {
			m := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if m.ProbablyPrime(millerRabinRounds) {
				add(m, 1)
				continue
			}
			if s := perfectSquareRoot(m); s != nil {
				stack = append(stack, s, new(big.Int).Set(s))
				continue
			}
			f, err := pollardBrent(ctx, m)
			if err != nil {
				return Factorization{}, err
			}
			stack = append(stack, f, new(big.Int).Quo(m, f))
		}
	}

	powers := make([]PrimePower, 0, len(counts))
	for _, pp := range counts {
		powers = append(powers, *pp)
	}
	sort.Slice(powers, func(i, j int) bool { return powers[i].Prime.Cmp(powers[j].Prime) < 0 })
	return FactorizationOf(powers...)
}

// perfectSquareRoot returns sqrt(m) if m is a perfect square, else nil
func perfectSquareRoot(m *big.Int) *big.Int {
	s := new(big.Int).Sqrt(m)
	var t big.Int
	if t.Mul(s, s).Cmp(m) == 0 {
		return s
	}
	return nil
}

// pollardBrent finds a non-trivial factor of the odd composite m using
// Brent's cycle detection on x -> x^2 + c.
func pollardBrent(ctx context.Context, m *big.Int) (*big.Int, error) {
	var x, y, ys, q, diff, g big.Int
	c := big.NewInt(1)
	const batch = 128

	for {
		y.SetInt64(2)
		q.SetInt64(1)
		g.SetInt64(1)
		r := 1
		iterations := 0

		for g.Cmp(bigOne) == 0 && iterations < rhoMaxIterations {
			x.Set(&y)
			for i := 0; i < r; i++ {
				rhoStep(&y, c, m)
			}
			for k := 0; k < r && g.Cmp(bigOne) == 0; k += batch {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				ys.Set(&y)
				for i := 0; i < min(batch, r-k); i++ {
					rhoStep(&y, c, m)
					diff.Sub(&x, &y)
					diff.Abs(&diff)
					q.Mul(&q, &diff)
					q.Mod(&q, m)
				}
				g.GCD(nil, nil, &q, m)
				iterations += batch
			}
			r *= 2
		}

		if g.Cmp(m) == 0 {
			// The batch overshot; retrace one step at a time
			for {
				rhoStep(&ys, c, m)
				diff.Sub(&x, &ys)
				diff.Abs(&diff)
				g.GCD(nil, nil, &diff, m)
				if g.Cmp(bigOne) > 0 {
					break
				}
			}
		}

		if g.Cmp(bigOne) > 0 && g.Cmp(m) < 0 {
			return new(big.Int).Set(&g), nil
		}
		c.Add(c, bigOne)
	}
}

// rhoStep sets y = y^2 + c mod m
func rhoStep(y, c, m *big.Int) {
	y.Mul(y, y)
	y.Add(y, c)
	y.Mod(y, m)
}
