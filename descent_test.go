package twosquares

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescend(t *testing.T) {
	testCases := []struct {
		p, x     int64
		expected SquarePair
	}{
		{5, 2, PairFromUint64(1, 2)},
		{5, 3, PairFromUint64(1, 2)},
		{13, 5, PairFromUint64(2, 3)},
		{13, 8, PairFromUint64(2, 3)},
		{17, 4, PairFromUint64(1, 4)},
		{29, 12, PairFromUint64(2, 5)},
	}

	for _, tc := range testCases {
		pair, err := Descend(big.NewInt(tc.p), big.NewInt(tc.x))
		require.NoError(t, err, "p=%d x=%d", tc.p, tc.x)
		assert.True(t, pair.Equal(tc.expected), "p=%d x=%d: got %s", tc.p, tc.x, pair)
	}
}

func TestDescendBothRoots(t *testing.T) {
	// x and p - x lead to the same pair
	for _, p := range primesBelow(1000) {
		if p%4 != 1 {
			continue
		}
		bp := bigU(p)
		x, err := FindSqrtNegOne(bp)
		require.NoError(t, err)

		a, err := Descend(bp, x)
		require.NoError(t, err)
		b, err := Descend(bp, new(big.Int).Sub(bp, x))
		require.NoError(t, err)
		assert.True(t, a.Equal(b), "p=%d", p)
		assert.Equal(t, 0, a.Sum().Cmp(bp))
	}
}

func TestDescendNotFound(t *testing.T) {
	// 4 is not a square root of -1 mod 13
	_, err := Descend(big.NewInt(13), big.NewInt(4))
	assert.ErrorIs(t, err, ErrDecompositionNotFound)

	_, err = Descend(big.NewInt(13), big.NewInt(0))
	assert.ErrorIs(t, err, ErrDecompositionNotFound)

	_, err = Descend(big.NewInt(13), big.NewInt(13))
	assert.ErrorIs(t, err, ErrDecompositionNotFound)
}
