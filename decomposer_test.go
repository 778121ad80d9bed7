package twosquares

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"twosquares.mleku.dev/config"
)

func TestDecomposeNumberExamples(t *testing.T) {
	testCases := []struct {
		n        uint64
		expected *PairSet
	}{
		{19890, NewPairSet(
			PairFromUint64(3, 141),
			PairFromUint64(57, 129),
			PairFromUint64(69, 123),
			PairFromUint64(87, 111),
		)},
		{25, NewPairSet(PairFromUint64(0, 5), PairFromUint64(3, 4))},
		{5, NewPairSet(PairFromUint64(1, 2))},
		{65, NewPairSet(PairFromUint64(1, 8), PairFromUint64(4, 7))},
		{3, NewPairSet()},
		{21, NewPairSet()},
	}

	for _, tc := range testCases {
		got, err := DecomposeUint64(tc.n)
		require.NoError(t, err, "n=%d", tc.n)
		assert.True(t, tc.expected.Equal(got), "n=%d: got %s, want %s", tc.n, got, tc.expected)
	}
}

func TestDecomposeNumberRoundTrip(t *testing.T) {
	d := New()
	ctx := context.Background()
	start := uint64(1)<<31 + 1
	for n := start; n < start+1000; n++ {
		set, err := d.DecomposeNumber(ctx, bigU(n))
		require.NoError(t, err, "n=%d", n)
		for _, p := range set.Pairs() {
			require.Equal(t, 0, p.Sum().Cmp(bigU(n)), "n=%d: %s", n, p)
			require.LessOrEqual(t, p.A().Cmp(p.B()), 0)
		}
	}
}

func TestDecomposeFactorizationEquivalence(t *testing.T) {
	fromInt, err := DecomposeUint64(19890)
	require.NoError(t, err)

	f := MustFactorization(map[uint64]int{2: 1, 3: 2, 5: 1, 13: 1, 17: 1})
	limited, err := DecomposeFactorization(f, WithLimitedChecks())
	require.NoError(t, err)
	assert.True(t, fromInt.Equal(limited))

	checked, err := DecomposeFactorization(f)
	require.NoError(t, err)
	assert.True(t, fromInt.Equal(checked))
}

func TestDecomposeCheckCount(t *testing.T) {
	ctx := context.Background()
	d := New()
	for _, n := range []int64{19890, 25, 5, 1105, 2} {
		set, err := d.DecomposeNumber(ctx, big.NewInt(n))
		require.NoError(t, err)
		c := set.Len()

		got, err := d.DecomposeNumber(ctx, big.NewInt(n), WithCheckCount(c))
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, c, got.Len())

		_, err = d.DecomposeNumber(ctx, big.NewInt(n), WithCheckCount(c+1))
		assert.ErrorIs(t, err, ErrCountMismatch, "n=%d", n)
	}

	// beyond the bound the combinator does not run
	_, err := d.DecomposeNumber(ctx, big.NewInt(5), WithCheckCount(3))
	assert.ErrorIs(t, err, ErrCountMismatch)

	// no representation with a required count
	_, err = d.DecomposeNumber(ctx, big.NewInt(3), WithCheckCount(1))
	assert.ErrorIs(t, err, ErrCountMismatch)
	set, err := d.DecomposeNumber(ctx, big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestDecomposeInvalidInput(t *testing.T) {
	for _, n := range []*big.Int{nil, big.NewInt(0), big.NewInt(-25)} {
		_, err := DecomposeNumber(n)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	_, err := DecomposeFactorization(MustFactorization(map[uint64]int{9: 1}))
	assert.ErrorIs(t, err, ErrInvalidFactorization)
}

func TestDecomposeLimitedChecksPropagatesDefects(t *testing.T) {
	// 21 = 1 mod 4 but is no prime; the modular root step must fail
	_, err := DecomposeFactorization(MustFactorization(map[uint64]int{21: 1}), WithLimitedChecks())
	assert.ErrorIs(t, err, ErrInvalidPrimeKind)
}

func TestDecomposeFactorizerInjected(t *testing.T) {
	calls := 0
	f := FactorizerFunc(func(ctx context.Context, n *big.Int) (Factorization, error) {
		calls++
		return MustFactorization(map[uint64]int{5: 2}), nil
	})
	d := New(WithFactorizer(f))
	set, err := d.DecomposeNumber(context.Background(), big.NewInt(25))
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	d = New(WithFactorizer(FactorizerFunc(func(context.Context, *big.Int) (Factorization, error) {
		return Factorization{}, boom
	})))
	_, err = d.DecomposeNumber(context.Background(), big.NewInt(25))
	assert.ErrorIs(t, err, boom)
}

func TestDecomposeLogsSlotLimit(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	d := New(WithLogger(zap.New(core)), WithMaxSlots(2))

	_, err := d.DecomposeFactorization(context.Background(), MustFactorization(map[uint64]int{5: 4}))
	require.ErrorIs(t, err, ErrTooManySlots)

	warned := logs.FilterMessage("combination space exceeds limit").All()
	require.Len(t, warned, 1)
	assert.Equal(t, zapcore.WarnLevel, warned[0].Level)
	assert.Equal(t, int64(2), warned[0].ContextMap()["max_slots"])

	_, err = d.DecomposeFactorization(context.Background(), MustFactorization(map[uint64]int{5: 2}))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("combining").Len())
}

func TestDecomposePrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)

	d := New(WithMetrics(m), WithResultCache(8))
	ctx := context.Background()
	for _, n := range []int64{25, 25, 3, 65} {
		_, err := d.DecomposeNumber(ctx, big.NewInt(n))
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeRepresented)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeCached)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeNoRepresentation)))
	// 5 twice (25 then 65) and 13 once
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheAccess.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheAccess.WithLabelValues("miss")))

	_, err = NewPrometheusMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

// recordingMetrics keeps every outcome for inspection
type recordingMetrics struct {
	NopMetrics
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingMetrics) Outcome(o string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func TestDecomposeOutcomes(t *testing.T) {
	rec := &recordingMetrics{}
	d := New(WithMetrics(rec))
	ctx := context.Background()

	_, err := d.DecomposeNumber(ctx, big.NewInt(10))
	require.NoError(t, err)
	_, err = d.DecomposeNumber(ctx, big.NewInt(7))
	require.NoError(t, err)
	_, err = d.DecomposeFactorization(ctx, MustFactorization(map[uint64]int{15: 1}))
	require.Error(t, err)

	assert.Equal(t, []string{OutcomeRepresented, OutcomeNoRepresentation, OutcomeError}, rec.outcomes)
}

func TestConcurrentDecompose(t *testing.T) {
	d := New(WithResultCache(16), WithWorkers(2), WithParallelThreshold(2))
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := uint64(1); n <= 300; n++ {
				m := n + uint64(w)
				got, err := d.DecomposeNumber(ctx, bigU(m))
				if err != nil {
					t.Error(err)
					return
				}
				if !bruteForcePairs(m).Equal(got) {
					t.Errorf("n=%d: got %s", m, got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Strategy = "exponent-splits"
	cfg.Workers = 3
	cfg.PrimeCache = false
	cfg.ResultCacheSize = 0
	cfg.Log.Level = "error"

	d, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, StrategyExponentSplits, d.strategy)
	assert.Equal(t, 3, d.workers)
	assert.Nil(t, d.PrimeCache())
	assert.Nil(t, d.results)

	set, err := d.DecomposeNumber(context.Background(), big.NewInt(19890))
	require.NoError(t, err)
	assert.Equal(t, 4, set.Len())

	// options win over the file
	d, err = NewFromConfig(cfg, WithStrategy(StrategySignVectors))
	require.NoError(t, err)
	assert.Equal(t, StrategySignVectors, d.strategy)

	cfg.Workers = 0
	_, err = NewFromConfig(cfg)
	assert.Error(t, err)
}

func TestNewFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twosquares.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\nmax_slots: 4\nlog:\n  level: warn\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	d, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, d.maxSlots)

	_, err = d.DecomposeFactorization(context.Background(), MustFactorization(map[uint64]int{5: 6}))
	assert.ErrorIs(t, err, ErrTooManySlots)
}
