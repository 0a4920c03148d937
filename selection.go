package ulasan

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// ChiSquareSelector keeps the K features with the highest chi-squared
// statistic against the class labels.
type ChiSquareSelector struct {
	K        int
	Scores   []float64
	Selected []int // Kept feature indexes, ascending.
}

// NewChiSquareSelector returns an unfitted selector keeping k features.
func NewChiSquareSelector(k int) *ChiSquareSelector {
	return &ChiSquareSelector{K: k}
}

// ChiSquare scores every feature of X (non-negative values) against labels y.
// Only classes present in y take part. Features that never occur score NaN.
func ChiSquare(X []SparseVector, y []int, nFeatures int) []float64 {
	classIndex := map[int]int{}
	var classes []int
	for _, c := range y {
		if _, found := classIndex[c]; !found {
			classIndex[c] = len(classes)
			classes = append(classes, c)
		}
	}

	observed := make([][]float64, len(classes))
	for i := range observed {
		observed[i] = make([]float64, nFeatures)
	}
	featureCount := make([]float64, nFeatures)
	classCount := make([]float64, len(classes))
	for i, row := range X {
		ci := classIndex[y[i]]
		classCount[ci]++
		for k, idx := range row.Indices {
			observed[ci][idx] += row.Values[k]
			featureCount[idx] += row.Values[k]
		}
	}

	n := float64(len(y))
	scores := make([]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		var chi2 float64
		for ci := range classes {
			expected := classCount[ci] / n * featureCount[j]
			diff := observed[ci][j] - expected
			chi2 += diff * diff / expected
		}
		scores[j] = chi2
	}
	return scores
}

// Fit scores the features of X and records the selection.
func (s *ChiSquareSelector) Fit(X []SparseVector, y []int, nFeatures int) error {
	if len(X) != len(y) {
		return errors.Errorf("chi2: %d rows but %d labels", len(X), len(y))
	}
	if nFeatures < 1 {
		return errors.Wrap(ErrEmptyVocabulary, "chi2: no features")
	}
	k := s.K
	if k > nFeatures {
		k = nFeatures
	}
	if k < 1 {
		k = 1
	}

	s.Scores = ChiSquare(X, y, nFeatures)
	order := make([]int, nFeatures)
	for i := range order {
		order[i] = i
	}
	cleaned := make([]float64, nFeatures)
	for i, v := range s.Scores {
		if math.IsNaN(v) {
			v = math.Inf(-1)
		}
		cleaned[i] = v
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cleaned[order[a]] < cleaned[order[b]]
	})

	s.Selected = append([]int(nil), order[nFeatures-k:]...)
	sort.Ints(s.Selected)
	s.K = k
	return nil
}

// Transform projects rows onto the selected features, renumbered 0..K-1.
func (s *ChiSquareSelector) Transform(X []SparseVector) []SparseVector {
	position := make(map[int]int, len(s.Selected))
	for i, idx := range s.Selected {
		position[idx] = i
	}
	out := make([]SparseVector, len(X))
	for r, row := range X {
		var sel SparseVector
		for k, idx := range row.Indices {
			if p, found := position[idx]; found {
				sel.Indices = append(sel.Indices, p)
				sel.Values = append(sel.Values, row.Values[k])
			}
		}
		out[r] = sel
	}
	return out
}
