package ulasan

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testFolds(folds []Fold) [][]int {
	out := make([][]int, len(folds))
	for i, f := range folds {
		out[i] = f.Test
	}
	return out
}

func TestStratifiedKFold(t *testing.T) {
	tests := []struct {
		y        []int
		k        int
		expected [][]int
		desc     string
	}{
		{[]int{0, 0, 0, 1, 1, 1}, 3, [][]int{{0, 3}, {1, 4}, {2, 5}}, "balanced"},
		{[]int{1, 0, 1, 0, 1, 0, 1, 1}, 2, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}}, "imbalanced"},
		{[]int{0, 1, 0, 1}, 2, [][]int{{0, 1}, {2, 3}}, "interleaved"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			folds, err := StratifiedKFold(tt.y, tt.k)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, testFolds(folds))
			for _, f := range folds {
				assert.Len(t, f.Train, len(tt.y)-len(f.Test))
			}
		})
	}
}

func TestStratifiedKFoldErrors(t *testing.T) {
	_, err := StratifiedKFold([]int{0, 1}, 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = StratifiedKFold([]int{0, 1}, 3)
	assert.ErrorIs(t, err, ErrNotEnoughRows)

	_, err = StratifiedKFold([]int{0, 1, 2}, 2)
	assert.ErrorIs(t, err, ErrNotEnoughRows)
}

func TestCVFolds(t *testing.T) {
	tests := []struct {
		y        []int
		expected int
		desc     string
	}{
		{[]int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1}, 5, "capped at max"},
		{[]int{0, 0, 0, 1, 1, 1, 1}, 3, "rarest class"},
		{[]int{0, 1, 1, 1}, 2, "never below two"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.expected, CVFolds(tt.y, 5))
		})
	}
}

func TestGridSearchPicksHighestMean(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	errBad := errors.New("bad candidate")
	score := func(p float64, fold int) (float64, error) {
		if p == 2 {
			return 0, errBad
		}
		if p == 4 {
			panic("diverged")
		}
		return p / 10, nil
	}

	result, err := gridSearch([]float64{1, 2, 3, 4}, 3, 2, score, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Folds)
	assert.Equal(t, 2, result.BestIndex)
	assert.Equal(t, 3.0, result.Best().Params)
	assert.InDelta(t, 0.3, result.Best().Mean, 1e-12)
	assert.InDelta(t, 0, result.Best().Std, 1e-12)

	assert.True(t, math.IsNaN(result.Candidates[1].Mean))
	assert.Contains(t, result.Candidates[1].Error, "bad candidate")
	assert.Contains(t, result.Candidates[3].Error, "diverged")
	assert.Equal(t, 2, logs.FilterMessage("grid candidate failed, skipping").Len())
}

func TestGridSearchTiesKeepFirst(t *testing.T) {
	score := func(p string, fold int) (float64, error) { return 0.5, nil }
	result, err := gridSearch([]string{"a", "b", "c"}, 2, 0, score, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "a", result.Best().Params)
}

func TestGridSearchNoViableCandidate(t *testing.T) {
	score := func(p int, fold int) (float64, error) { return 0, errors.New("nope") }
	_, err := gridSearch([]int{1, 2}, 2, 1, score, zap.NewNop())
	assert.ErrorIs(t, err, ErrNoViableCandidate)
}
