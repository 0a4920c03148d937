package ulasan

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// A Fold is one train/test partition of row indexes.
type Fold struct {
	Train []int
	Test  []int
}

// StratifiedKFold splits rows into k folds without shuffling, keeping class
// proportions. Rows of a class are dealt to folds in dataset order, with the
// per-fold counts taken from a round-robin pass over the label-sorted rows.
func StratifiedKFold(y []int, k int) ([]Fold, error) {
	n := len(y)
	if k < 2 {
		return nil, errors.Wrapf(ErrInvalidConfig, "need at least 2 folds, got %d", k)
	}
	if k > n {
		return nil, errors.Wrapf(ErrNotEnoughRows, "%d folds over %d rows", k, n)
	}

	classSet := map[int]bool{}
	for _, c := range y {
		classSet[c] = true
	}
	classes := make([]int, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	encoded := make([]int, n)
	counts := make([]int, len(classes))
	for i, c := range y {
		encoded[i] = sort.SearchInts(classes, c)
		counts[encoded[i]]++
	}
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if k > maxCount {
		return nil, errors.Wrapf(ErrNotEnoughRows, "%d folds exceed the size of every class", k)
	}

	sorted := append([]int(nil), encoded...)
	sort.Ints(sorted)
	allocation := make([][]int, k)
	for f := 0; f < k; f++ {
		allocation[f] = make([]int, len(classes))
		for i := f; i < n; i += k {
			allocation[f][sorted[i]]++
		}
	}

	testFold := make([]int, n)
	for c := range classes {
		var assignment []int
		for f := 0; f < k; f++ {
			for r := 0; r < allocation[f][c]; r++ {
				assignment = append(assignment, f)
			}
		}
		pos := 0
		for i := range encoded {
			if encoded[i] == c {
				testFold[i] = assignment[pos]
				pos++
			}
		}
	}

	folds := make([]Fold, k)
	for i, f := range testFold {
		for g := range folds {
			if g == f {
				folds[g].Test = append(folds[g].Test, i)
			} else {
				folds[g].Train = append(folds[g].Train, i)
			}
		}
	}
	return folds, nil
}

// CVFolds returns the cross-validation fold count for labels y: the rarest
// class size, capped at maxFolds and never below 2.
func CVFolds(y []int, maxFolds int) int {
	k := rarestClassCount(y)
	if k > maxFolds {
		k = maxFolds
	}
	if k < 2 {
		k = 2
	}
	return k
}

// CandidateScore records the cross-validated score of one parameter set.
// A candidate whose fit failed has a NaN Mean and a non-empty Error.
type CandidateScore[P any] struct {
	Params     P
	FoldScores []float64
	Mean       float64
	Std        float64
	Error      string
}

// GridResult is the outcome of a grid search.
type GridResult[P any] struct {
	Folds      int
	Candidates []CandidateScore[P]
	BestIndex  int
}

// Best returns the winning candidate.
func (g GridResult[P]) Best() CandidateScore[P] {
	return g.Candidates[g.BestIndex]
}

// foldScorer fits params on the training side of fold f and scores the test
// side.
type foldScorer[P any] func(params P, fold int) (float64, error)

// gridSearch scores every candidate on every fold over a worker pool and
// picks the highest mean score; ties keep the earlier candidate. Failed
// candidates are skipped.
func gridSearch[P any](candidates []P, nFolds, workers int, score foldScorer[P], logger *zap.Logger) (GridResult[P], error) {
	result := GridResult[P]{Folds: nFolds, BestIndex: -1}
	scores := make([][]float64, len(candidates))
	failures := make([][]error, len(candidates))
	for i := range candidates {
		scores[i] = make([]float64, nFolds)
		failures[i] = make([]error, nFolds)
	}

	pool := NewPool(workers)
	defer pool.Stop()

	var jobs []Job
	for ci := range candidates {
		for f := 0; f < nFolds; f++ {
			ci, f := ci, f
			jobs = append(jobs, func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						failures[ci][f] = errors.Errorf("panic: %v", r)
					}
				}()
				scores[ci][f], failures[ci][f] = score(candidates[ci], f)
				return nil
			})
		}
	}
	pool.Add(jobs)
	if err := pool.Wait(); err != nil {
		return result, err
	}

	best := math.Inf(-1)
	for ci, params := range candidates {
		cs := CandidateScore[P]{Params: params, FoldScores: scores[ci]}
		for _, err := range failures[ci] {
			if err != nil {
				cs.Error = err.Error()
				break
			}
		}
		if cs.Error != "" {
			cs.Mean, cs.Std = math.NaN(), math.NaN()
			logger.Warn("grid candidate failed, skipping",
				zap.String("params", fmt.Sprintf("%+v", params)),
				zap.String("error", cs.Error))
		} else {
			cs.Mean, _ = stats.Mean(cs.FoldScores)
			cs.Std, _ = stats.StandardDeviation(cs.FoldScores)
			logger.Debug("grid candidate scored",
				zap.String("params", fmt.Sprintf("%+v", params)),
				zap.Float64("mean", cs.Mean),
				zap.Float64("std", cs.Std))
			if cs.Mean > best {
				best = cs.Mean
				result.BestIndex = ci
			}
		}
		result.Candidates = append(result.Candidates, cs)
	}

	if result.BestIndex < 0 {
		return result, errors.Wrapf(ErrNoViableCandidate, "%d candidates", len(candidates))
	}
	return result, nil
}
