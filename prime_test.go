package twosquares

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposePrimeBelow1000(t *testing.T) {
	for _, p := range primesBelow(1000) {
		if p%4 != 1 {
			continue
		}
		pair, err := DecomposePrimeUint64(p)
		require.NoError(t, err, "p=%d", p)
		require.Equal(t, 0, pair.Sum().Cmp(bigU(p)), "p=%d: %s", p, pair)
		require.LessOrEqual(t, pair.A().Cmp(pair.B()), 0)

		// The decomposition of a prime is unique
		brute := bruteForcePairs(p)
		require.Equal(t, 1, brute.Len(), "p=%d", p)
		require.True(t, brute.Contains(pair), "p=%d", p)
	}
}

func TestDecomposePrimeTwo(t *testing.T) {
	pair, err := DecomposePrimeUint64(2)
	require.NoError(t, err)
	assert.True(t, pair.Equal(PairFromUint64(1, 1)))
}

func TestDecomposePrimeThreeMod4(t *testing.T) {
	for _, q := range primesBelow(1000) {
		if q%4 != 3 {
			continue
		}
		_, err := DecomposePrimeUint64(q)
		require.ErrorIs(t, err, ErrNotDecomposable, "q=%d", q)
	}
}

func TestDecomposePrimeRejectsComposites(t *testing.T) {
	for _, n := range []uint64{0, 1, 9, 21, 25, 45, 65, 85, 221, 1105} {
		_, err := DecomposePrimeUint64(n)
		assert.ErrorIs(t, err, ErrNotDecomposable, "n=%d", n)
	}
	_, err := DecomposePrime(nil)
	assert.ErrorIs(t, err, ErrNotDecomposable)
}

func TestDecomposePrimeExamples(t *testing.T) {
	pair, err := DecomposePrimeUint64(19889)
	require.NoError(t, err)
	assert.True(t, pair.Equal(PairFromUint64(17, 140)), "got %s", pair)
}

func TestDecomposePrimeHighRange(t *testing.T) {
	start := uint64(1)<<31 + 1
	found := 0
	for n := start; n < start+1000; n += 4 {
		// n = 1 mod 4 throughout
		bn := bigU(n)
		if !bn.ProbablyPrime(20) {
			continue
		}
		pair, err := DecomposePrime(bn)
		require.NoError(t, err, "p=%d", n)
		require.Equal(t, 0, pair.Sum().Cmp(bn), "p=%d: %s", n, pair)
		found++
	}
	assert.Positive(t, found)
}

func TestDecomposePrimeIdempotent(t *testing.T) {
	d := New()
	p := big.NewInt(1000000009)
	first, err := d.DecomposePrime(p)
	require.NoError(t, err)
	for range 5 {
		again, err := d.DecomposePrime(p)
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}

	uncached, err := New(WithPrimeCache(nil)).DecomposePrime(p)
	require.NoError(t, err)
	assert.True(t, first.Equal(uncached))

	hits, misses := d.PrimeCache().Stats()
	assert.Equal(t, uint64(5), hits)
	assert.Equal(t, uint64(1), misses)
}
