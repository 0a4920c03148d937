package ulasan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestTruncatedSVDWideMatrix(t *testing.T) {
	X := []SparseVector{
		{Indices: []int{0}, Values: []float64{1}},
		{Indices: []int{0}, Values: []float64{2}},
	}
	svd := NewTruncatedSVD(1)
	require.NoError(t, svd.Fit(X, 3))

	require.Len(t, svd.Components, 1)
	assert.InDeltaSlice(t, []float64{1, 0, 0}, svd.Components[0], 1e-9)

	out := svd.Transform(X)
	assert.InDelta(t, 1, out[0][0], 1e-9)
	assert.InDelta(t, 2, out[1][0], 1e-9)
}

func TestTruncatedSVDTallMatrix(t *testing.T) {
	X := []SparseVector{
		{Indices: []int{0}, Values: []float64{3}},
		{Indices: []int{1}, Values: []float64{1}},
		{Indices: []int{1}, Values: []float64{1}},
	}
	svd := NewTruncatedSVD(5)
	require.NoError(t, svd.Fit(X, 2))

	assert.Equal(t, 2, svd.NComponents)
	assert.InDeltaSlice(t, []float64{1, 0}, svd.Components[0], 1e-9)
	assert.InDeltaSlice(t, []float64{0, 1}, svd.Components[1], 1e-9)
	assert.InDelta(t, 0, floats.Dot(svd.Components[0], svd.Components[1]), 1e-9)

	out := svd.Transform(X)
	assert.InDeltaSlice(t, []float64{3, 0}, out[0], 1e-9)
}

func TestTruncatedSVDEmpty(t *testing.T) {
	assert.Error(t, NewTruncatedSVD(2).Fit(nil, 3))
}
