package dataset

import (
	"testing"

	"github.com/fsoeltoni/vocal-remover/spectral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func constSpec(v complex64) *spectral.Spectrogram {
	s := spectral.NewSpectrogram(2, 2, 2)
	for i := range s.Data {
		s.Data[i] = v
	}
	return s
}

func specSet(n int) (X, y []*spectral.Spectrogram) {
	for i := 0; i < n; i++ {
		X = append(X, constSpec(complex(float32(i+1), 0)))
		y = append(y, constSpec(complex(float32(-(i+1)), 0)))
	}
	return X, y
}

func TestMixupRateZeroIsNoop(t *testing.T) {
	X, y := specSet(8)
	var beforeX, beforeY []*spectral.Spectrogram
	for i := range X {
		beforeX = append(beforeX, X[i].Clone())
		beforeY = append(beforeY, y[i].Clone())
	}

	rng := rand.New(rand.NewSource(3))
	require.NoError(t, Mixup(rng, X, y, 0, 1))

	for i := range X {
		assert.Equal(t, beforeX[i].Data, X[i].Data)
		assert.Equal(t, beforeY[i].Data, y[i].Data)
	}
}

func TestMixupBlends(t *testing.T) {
	X, y := specSet(8)
	rng := rand.New(rand.NewSource(3))
	require.NoError(t, Mixup(rng, X, y, 1, 1))

	// every entry stays a convex combination of the original values
	for i := range X {
		v := real(X[i].Data[0])
		assert.GreaterOrEqual(t, v, float32(1)-1e-4)
		assert.LessOrEqual(t, v, float32(8)+1e-4)
	}
}

func TestOracleResampleTopLosses(t *testing.T) {
	X, y := specSet(10)
	losses := make([]float64, 10)
	for i := range losses {
		losses[i] = float64(i) // index 9 is hardest
	}

	rng := rand.New(rand.NewSource(5))
	oX, oY, idx, err := OracleResample(rng, X, y, losses, 0.5, 0)
	require.NoError(t, err)
	require.Len(t, oX, 5)
	require.Len(t, oY, 5)
	require.Len(t, idx, 5)

	// with no drop discount the pool is exactly the top half
	seen := make(map[int]bool)
	for _, i := range idx {
		assert.False(t, seen[i], "index %d returned twice", i)
		seen[i] = true
		assert.GreaterOrEqual(t, i, 5, "index %d is not among the hardest", i)
	}
}

func TestOracleResampleReturnsCopies(t *testing.T) {
	X, y := specSet(10)
	losses := make([]float64, 10)
	for i := range losses {
		losses[i] = float64(i)
	}

	rng := rand.New(rand.NewSource(5))
	oX, _, idx, err := OracleResample(rng, X, y, losses, 0.3, 0.4)
	require.NoError(t, err)
	require.Len(t, idx, 3)

	oX[0].Data[0] = 999
	assert.NotEqual(t, complex64(999), X[idx[0]].Data[0], "resampled data must be a copy")
}

func TestOracleResampleLossMismatch(t *testing.T) {
	X, y := specSet(4)
	rng := rand.New(rand.NewSource(5))
	_, _, _, err := OracleResample(rng, X, y, []float64{1, 2}, 0.5, 0)
	assert.Error(t, err)
}
