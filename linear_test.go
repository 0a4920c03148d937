package ulasan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// threeClassRows puts each class on its own feature with a little overlap.
func threeClassRows() ([]SparseVector, []int) {
	X := []SparseVector{
		{Indices: []int{0}, Values: []float64{1}},
		{Indices: []int{0, 1}, Values: []float64{0.9, 0.1}},
		{Indices: []int{1}, Values: []float64{1}},
		{Indices: []int{1, 2}, Values: []float64{0.9, 0.1}},
		{Indices: []int{2}, Values: []float64{1}},
		{Indices: []int{0, 2}, Values: []float64{0.1, 0.9}},
	}
	return X, []int{0, 0, 1, 1, 2, 2}
}

func TestClassWeights(t *testing.T) {
	y := []int{0, 0, 0, 1}
	assert.Equal(t, []float64{1, 1, 1}, classWeights(y, 3, NoClassWeight))
	assert.InDeltaSlice(t, []float64{4.0 / 6.0, 2, 1}, classWeights(y, 3, BalancedClassWeight), 1e-12)
}

func TestLinearSVC(t *testing.T) {
	X, y := threeClassRows()
	for _, mode := range []ClassWeightMode{NoClassWeight, BalancedClassWeight} {
		t.Run(string(mode), func(t *testing.T) {
			svc := NewLinearSVC(1, mode, 200)
			require.NoError(t, svc.Fit(X, y, 3, 3))

			require.Len(t, svc.Weights, 3)
			assert.Len(t, svc.Weights[0], 4)
			for i, x := range X {
				assert.Equal(t, y[i], svc.Predict(x), "row %d", i)
			}
		})
	}
}

func TestLinearSVCRejectsMismatchedInput(t *testing.T) {
	X, _ := threeClassRows()
	assert.Error(t, NewLinearSVC(1, NoClassWeight, 10).Fit(X, []int{0}, 3, 3))
	assert.Error(t, NewLinearSVC(1, NoClassWeight, 10).Fit(nil, nil, 3, 3))
}

func TestLogisticRegression(t *testing.T) {
	X := [][]float64{{1, 0}, {0.9, 0.1}, {0, 1}, {0.1, 0.9}}
	y := []int{0, 0, 1, 1}

	lr := NewLogisticRegression(1, 500)
	require.NoError(t, lr.Fit(X, y, 2))
	for i, x := range X {
		proba := lr.PredictProba(x)
		assert.InDelta(t, 1, floats.Sum(proba), 1e-9)
		assert.Equal(t, y[i], floats.MaxIdx(proba), "row %d", i)
	}
}

func TestLogisticRegressionUnseenClass(t *testing.T) {
	X := [][]float64{{1, 0}, {0, 1}}
	lr := NewLogisticRegression(1, 200)
	require.NoError(t, lr.Fit(X, []int{0, 2}, 3))

	proba := lr.PredictProba([]float64{1, 0})
	require.Len(t, proba, 3)
	assert.Less(t, proba[1], proba[0])
}
