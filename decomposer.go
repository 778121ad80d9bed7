// Package twosquares finds every way to write a positive integer as a sum of
// two squares, using the arithmetic of the Gaussian integers.
//
// A prime p = 1 mod 4 splits as p = (a + bi)(a - bi); the pair (a, b) is
// found by Cornacchia's descent from a square root of -1 mod p. Every
// representation of n = 2^t * prod p^k * prod q^j is then the norm of one
// product of those factors, which the combinator enumerates.
package twosquares

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"twosquares.mleku.dev/config"
)

// Decomposer computes prime and number decompositions. It is safe for
// concurrent use; the prime cache and result cache are shared by all calls.
type Decomposer struct {
	logger            *zap.Logger
	metrics           Metrics
	factorizer        Factorizer
	primes            *PrimeCache
	results           *resultCache
	strategy          Strategy
	workers           int
	parallelThreshold int
	maxSlots          int
}

// Option configures a Decomposer
type Option func(*Decomposer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decomposer) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) Option {
	return func(d *Decomposer) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithFactorizer replaces DefaultFactorizer
func WithFactorizer(f Factorizer) Option {
	return func(d *Decomposer) {
		if f != nil {
			d.factorizer = f
		}
	}
}

// WithPrimeCache shares c between decomposers. nil disables memoization.
func WithPrimeCache(c *PrimeCache) Option {
	return func(d *Decomposer) { d.primes = c }
}

// WithResultCache keeps up to n finished decompositions. 0 disables it.
func WithResultCache(n int) Option {
	return func(d *Decomposer) { d.results = newResultCache(n) }
}

// WithWorkers sets the number of enumeration goroutines
func WithWorkers(n int) Option {
	return func(d *Decomposer) { d.workers = max(n, 1) }
}

// WithParallelThreshold sets the slot count from which enumeration runs on
// several workers
func WithParallelThreshold(slots int) Option {
	return func(d *Decomposer) { d.parallelThreshold = slots }
}

// WithMaxSlots rejects combinations with more than n slots. 0 disables the
// limit, leaving only the hard bound of the index space.
func WithMaxSlots(n int) Option {
	return func(d *Decomposer) { d.maxSlots = n }
}

// WithStrategy selects the enumeration strategy
func WithStrategy(s Strategy) Option {
	return func(d *Decomposer) { d.strategy = s }
}

// New creates a Decomposer. Without options it uses a fresh prime cache,
// no result cache, a single worker and the sign-vector strategy.
func New(opts ...Option) *Decomposer {
	d := &Decomposer{
		logger:            zap.NewNop(),
		metrics:           NopMetrics{},
		factorizer:        DefaultFactorizer{},
		primes:            NewPrimeCache(),
		strategy:          StrategySignVectors,
		workers:           1,
		parallelThreshold: 16,
		maxSlots:          32,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewFromConfig creates a Decomposer from loaded settings. Options are
// applied after the configuration and win over it.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Decomposer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}

	var primes *PrimeCache
	if cfg.PrimeCache {
		primes = NewPrimeCache()
	}
	base := []Option{
		WithLogger(logger),
		WithPrimeCache(primes),
		WithResultCache(cfg.ResultCacheSize),
		WithWorkers(cfg.Workers),
		WithParallelThreshold(cfg.ParallelThreshold),
		WithMaxSlots(cfg.MaxSlots),
		WithStrategy(strategy),
	}
	return New(append(base, opts...)...), nil
}

// PrimeCache returns the decomposer's prime cache, or nil
func (d *Decomposer) PrimeCache() *PrimeCache {
	return d.primes
}

// DecomposePrime returns the pair (a, b), a <= b, with a^2 + b^2 = p for
// p = 2 or a prime p = 1 mod 4. Anything else, composites included, fails
// with ErrNotDecomposable.
func (d *Decomposer) DecomposePrime(p *big.Int) (SquarePair, error) {
	if err := checkDecomposable(p); err != nil {
		return SquarePair{}, err
	}
	return d.primePair(p)
}

// primePair decomposes p through the cache without a primality check
func (d *Decomposer) primePair(p *big.Int) (SquarePair, error) {
	if d.primes != nil {
		if pair, ok := d.primes.Get(p); ok {
			d.metrics.PrimeCacheAccess(true)
			return pair, nil
		}
		d.metrics.PrimeCacheAccess(false)
	}

	pair, err := decomposeTwoOrOneMod4(p)
	if err != nil {
		return SquarePair{}, err
	}
	if d.primes != nil {
		pair = d.primes.Put(p, pair)
	}
	return pair, nil
}

// decomposeOptions are the per-call settings of DecomposeNumber
type decomposeOptions struct {
	limitedChecks bool
	checkCount    int
}

// DecomposeOption configures a single DecomposeNumber call
type DecomposeOption func(*decomposeOptions)

// WithLimitedChecks trusts the factorization: primality and the parity of
// exponents of primes congruent to 3 mod 4 are not checked. Odd exponents
// are rounded down, so untrusted input yields pairs for a different n.
func WithLimitedChecks() DecomposeOption {
	return func(o *decomposeOptions) { o.limitedChecks = true }
}

// WithCheckCount requires at least c pairs. Fewer fail with
// ErrCountMismatch, including when n has no representation at all.
func WithCheckCount(c int) DecomposeOption {
	return func(o *decomposeOptions) { o.checkCount = c }
}

// DecomposeNumber factors n with the configured Factorizer and returns
// every canonical pair (a, b) with a^2 + b^2 = n. An empty set means n is
// not a sum of two squares.
func (d *Decomposer) DecomposeNumber(ctx context.Context, n *big.Int, opts ...DecomposeOption) (*PairSet, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, n)
	}
	f, err := d.factorizer.Factor(ctx, n)
	if err != nil {
		d.metrics.Outcome(OutcomeError)
		return nil, fmt.Errorf("factor %s: %w", n, err)
	}
	return d.DecomposeFactorization(ctx, f, opts...)
}

// DecomposeFactorization is DecomposeNumber for an already factored n
func (d *Decomposer) DecomposeFactorization(ctx context.Context, f Factorization, opts ...DecomposeOption) (*PairSet, error) {
	var o decomposeOptions
	for _, opt := range opts {
		opt(&o)
	}

	set, err := d.decompose(ctx, f, o)
	if err != nil {
		d.metrics.Outcome(OutcomeError)
		d.logger.Debug("decomposition failed", zap.Stringer("factorization", f), zap.Error(err))
		return nil, err
	}
	if set.Len() < o.checkCount {
		return nil, fmt.Errorf("%w: %d pairs for %s, want at least %d", ErrCountMismatch, set.Len(), f, o.checkCount)
	}
	return set, nil
}

func (d *Decomposer) decompose(ctx context.Context, f Factorization, o decomposeOptions) (*PairSet, error) {
	key := resultKey(f, o.limitedChecks)
	if set, ok := d.results.get(key); ok {
		d.metrics.Outcome(OutcomeCached)
		return set, nil
	}

	var res ValidationResult
	if o.limitedChecks {
		res = Classify(f)
	} else {
		var err error
		if res, err = Validate(f); err != nil {
			return nil, err
		}
	}
	if !res.Representable {
		d.metrics.Outcome(OutcomeNoRepresentation)
		d.logger.Debug("no representation", zap.Stringer("factorization", f))
		return NewPairSet(), nil
	}

	if o.checkCount > 0 {
		bound := representationBound(res.OneMod4)
		if bound.Cmp(big.NewInt(int64(o.checkCount))) < 0 {
			return nil, fmt.Errorf("%w: at most %s pairs for %s, want at least %d", ErrCountMismatch, bound, f, o.checkCount)
		}
	}

	terms := make([]primeTerm, 0, len(res.OneMod4))
	for _, pp := range res.OneMod4 {
		pair, err := d.primePair(pp.Prime)
		if err != nil {
			return nil, fmt.Errorf("decompose prime %s: %w", pp.Prime, err)
		}
		g := NewGaussianInt(pair.a, pair.b)
		terms = append(terms, primeTerm{prime: pp.Prime, exp: pp.Exp, g: g, conj: g.Conj()})
	}

	c, err := newCombination(d.strategy, baseFor(res.TwoExponent, res.ThreeMod4), terms, d.maxSlots)
	if err != nil {
		if errors.Is(err, ErrTooManySlots) {
			d.logger.Warn("combination space exceeds limit",
				zap.Stringer("factorization", f),
				zap.Int("max_slots", d.maxSlots),
				zap.Error(err))
		}
		return nil, err
	}

	d.logger.Debug("combining",
		zap.Stringer("factorization", f),
		zap.Stringer("strategy", d.strategy),
		zap.Int("slots", c.slots),
		zap.Uint64("products", c.total),
		zap.Int("workers", d.workers))

	start := time.Now()
	set, err := c.run(ctx, d.workers, d.parallelThreshold)
	if err != nil {
		return nil, err
	}
	d.metrics.Combination(d.strategy.String(), c.slots, set.Len(), time.Since(start))
	d.metrics.Outcome(OutcomeRepresented)

	d.results.put(key, set)
	return set, nil
}

// defaultDecomposer backs the package-level functions
var defaultDecomposer = New()

// DecomposeNumber decomposes n with the default decomposer
func DecomposeNumber(n *big.Int, opts ...DecomposeOption) (*PairSet, error) {
	return defaultDecomposer.DecomposeNumber(context.Background(), n, opts...)
}

// DecomposeUint64 decomposes n with the default decomposer
func DecomposeUint64(n uint64, opts ...DecomposeOption) (*PairSet, error) {
	return DecomposeNumber(new(big.Int).SetUint64(n), opts...)
}

// DecomposeFactorization decomposes f with the default decomposer
func DecomposeFactorization(f Factorization, opts ...DecomposeOption) (*PairSet, error) {
	return defaultDecomposer.DecomposeFactorization(context.Background(), f, opts...)
}

// ResetDefaultCache clears the prime cache of the default decomposer
func ResetDefaultCache() {
	defaultDecomposer.primes.Reset()
}
