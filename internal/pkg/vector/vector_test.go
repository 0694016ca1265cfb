package vector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	identical, err := Cosine([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	require.InDelta(t, 1.0, identical, 1e-9)

	orthogonal, err := Cosine([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	require.InDelta(t, 0.0, orthogonal, 1e-9)

	opposite, err := Cosine([]float64{1, 0}, []float64{-1, 0})
	require.NoError(t, err)
	require.InDelta(t, -1.0, opposite, 1e-9)
}

func TestCosineSymmetry(t *testing.T) {
	a := []float64{0.3, -0.7, 0.2}
	b := []float64{0.1, 0.9, -0.4}

	ab, err := Cosine(a, b)
	require.NoError(t, err)
	ba, err := Cosine(b, a)
	require.NoError(t, err)
	require.Equal(t, ab, ba)
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine([]float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err)
}

func TestCosineZeroVector(t *testing.T) {
	sim, err := Cosine([]float64{0, 0}, []float64{1, 2})
	require.NoError(t, err)
	require.Equal(t, 0.0, sim)
}

func TestPercent(t *testing.T) {
	require.Equal(t, 87, Percent(0.874))
	require.Equal(t, 100, Percent(1.0))
	require.Equal(t, 0, Percent(0))
	// Negative similarity never shows as a negative percentage.
	require.Equal(t, 0, Percent(-0.42))
	require.Equal(t, 100, Percent(1.2))
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float64{3, 4})
	require.InDelta(t, 0.6, v[0], 1e-9)
	require.InDelta(t, 0.8, v[1], 1e-9)

	zero := Normalize([]float64{0, 0})
	require.Equal(t, []float64{0, 0}, zero)
}
