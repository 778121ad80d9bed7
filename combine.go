package twosquares

import (
	"context"
	"fmt"
	"math/big"
	"math/bits"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Strategy selects how the combinator walks the choices over the primes
// congruent to 1 mod 4. Both strategies produce the same set.
type Strategy int

const (
	// StrategySignVectors gives every unit of exponent its own slot and
	// walks all 2^m sign vectors; bit i picks g or conj(g) for slot i.
	StrategySignVectors Strategy = iota
	// StrategyExponentSplits walks the k+1 splits g^s * conj(g)^(k-s) per
	// prime, skipping vectors that only permute equal factors.
	StrategyExponentSplits
)

// String returns the configuration name of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategySignVectors:
		return "sign-vectors"
	case StrategyExponentSplits:
		return "exponent-splits"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a configuration name to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "sign-vectors":
		return StrategySignVectors, nil
	case "exponent-splits":
		return StrategyExponentSplits, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// ctxPollInterval is how many indices are evaluated between context checks
const ctxPollInterval = 1024

// maxSignSlots is the largest slot count whose index space fits a uint64
const maxSignSlots = 63

// primeTerm is a prime congruent to 1 mod 4 with its Gaussian factor
type primeTerm struct {
	prime *big.Int
	exp   int
	g     GaussianInt // a + bi from the prime's decomposition
	conj  GaussianInt // a - bi
}

// combination is a prepared enumeration: every index in [0, total) maps to
// one product base * (choices over terms).
type combination struct {
	strategy Strategy
	base     GaussianInt
	terms    []primeTerm
	slots    int
	total    uint64

	// sign vectors: slotTerm[i] is the term behind bit i
	slotTerm []int
	// exponent splits: splits[t][s] = g^s * conj(g)^(k-s) for term t
	splits [][]GaussianInt
}

// baseFor computes (1 - i)^t * prod (-q i)^(j/2) over the primes
// congruent to 3 mod 4.
func baseFor(twoExp int, threeMod4 []PrimePower) GaussianInt {
	base := GaussianFromInt64(1, -1).Pow(twoExp)
	for _, q := range threeMod4 {
		f := NewGaussianInt(nil, new(big.Int).Neg(q.Prime))
		base = base.Mul(f.Pow(q.Exp / 2))
	}
	return base
}

// newCombination seeds the base with the first prime's factor and lays out
// the remaining exponents for the chosen strategy. terms must be in a
// deterministic order; the first one is the seed.
func newCombination(strategy Strategy, base GaussianInt, terms []primeTerm, maxSlots int) (*combination, error) {
	c := &combination{strategy: strategy, base: base}

	if len(terms) > 0 {
		seed := terms[0]
		c.base = c.base.Mul(seed.g)
		for i, t := range terms {
			if i == 0 {
				t.exp--
			}
			if t.exp > 0 {
				c.terms = append(c.terms, t)
				c.slots += t.exp
			}
		}
	}

	if maxSlots > 0 && c.slots > maxSlots {
		return nil, fmt.Errorf("%w: %d slots, limit %d", ErrTooManySlots, c.slots, maxSlots)
	}

	switch strategy {
	case StrategySignVectors:
		if c.slots > maxSignSlots {
			return nil, fmt.Errorf("%w: %d slots, limit %d", ErrTooManySlots, c.slots, maxSignSlots)
		}
		c.total = uint64(1) << uint(c.slots)
		c.slotTerm = make([]int, 0, c.slots)
		for ti, t := range c.terms {
			for range t.exp {
				c.slotTerm = append(c.slotTerm, ti)
			}
		}
	case StrategyExponentSplits:
		c.total = 1
		c.splits = make([][]GaussianInt, len(c.terms))
		for ti, t := range c.terms {
			hi, lo := bits.Mul64(c.total, uint64(t.exp+1))
			if hi != 0 {
				return nil, fmt.Errorf("%w: split space overflows", ErrTooManySlots)
			}
			c.total = lo
			row := make([]GaussianInt, t.exp+1)
			for s := 0; s <= t.exp; s++ {
				row[s] = t.g.Pow(s).Mul(t.conj.Pow(t.exp - s))
			}
			c.splits[ti] = row
		}
	default:
		return nil, fmt.Errorf("unknown strategy %d", int(strategy))
	}
	return c, nil
}

// evalInto loads the product selected by idx into acc
func (c *combination) evalInto(idx uint64, acc *gaussianAcc) {
	acc.set(c.base)
	switch c.strategy {
	case StrategySignVectors:
		for i, ti := range c.slotTerm {
			t := &c.terms[ti]
			if idx>>uint(i)&1 == 1 {
				acc.mul(t.g.re, t.g.im)
			} else {
				acc.mul(t.conj.re, t.conj.im)
			}
		}
	case StrategyExponentSplits:
		for ti, row := range c.splits {
			radix := uint64(c.terms[ti].exp + 1)
			f := row[idx%radix]
			idx /= radix
			acc.mul(f.re, f.im)
		}
	}
}

// enumerate evaluates indices [lo, hi) into out
func (c *combination) enumerate(ctx context.Context, lo, hi uint64, out *PairSet) error {
	var acc gaussianAcc
	for idx := lo; idx < hi; idx++ {
		if (idx-lo)%ctxPollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		c.evalInto(idx, &acc)
		out.Add(NewSquarePair(&acc.re, &acc.im))
	}
	return nil
}

// run enumerates every index, splitting the range across workers when
// there are enough slots to make it worthwhile.
func (c *combination) run(ctx context.Context, workers, parallelThreshold int) (*PairSet, error) {
	result := NewPairSet()
	if workers <= 1 || c.slots < parallelThreshold || c.total < uint64(workers) {
		if err := c.enumerate(ctx, 0, c.total, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	chunk := c.total / uint64(workers)
	if c.total%uint64(workers) != 0 {
		chunk++
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := uint64(w) * chunk
		if lo >= c.total {
			break
		}
		hi := min(lo+chunk, c.total)
		g.Go(func() error {
			local := NewPairSet()
			if err := c.enumerate(gctx, lo, hi, local); err != nil {
				return err
			}
			mu.Lock()
			result.merge(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
