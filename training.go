package ulasan

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SVMParams are the searched hyperparameters of the SVM track.
type SVMParams struct {
	C           float64
	ClassWeight ClassWeightMode
}

// ReducedParams are the searched hyperparameters of the reduced track.
type ReducedParams struct {
	C           float64
	K           int
	NComponents int
}

// SVMTrainingResult is the refit SVM pipeline and its search record.
type SVMTrainingResult struct {
	Model    *SVMModel
	Params   SVMParams
	Search   GridResult[SVMParams]
	Duration time.Duration
}

// ReducedTrainingResult is the refit reduced pipeline and its search record.
type ReducedTrainingResult struct {
	Model          *ReducedPipeline
	Params         ReducedParams
	Search         GridResult[ReducedParams]
	VocabularySize int
	Duration       time.Duration
}

// foldData caches the vectorized sides of one cross-validation fold.
type foldData struct {
	trainX    []SparseVector
	trainY    []int
	testX     []SparseVector
	testY     []int
	nFeatures int
	err       error
}

func vectorizeFolds(cfg TFIDFConfig, texts []string, y []int, folds []Fold) []foldData {
	out := make([]foldData, len(folds))
	for i, fold := range folds {
		vec := NewTFIDFVectorizer(cfg)
		trainX, err := vec.FitTransform(subsetTexts(texts, fold.Train))
		if err != nil {
			out[i].err = errors.Wrapf(err, "fold %d", i)
			continue
		}
		out[i] = foldData{
			trainX:    trainX,
			trainY:    subsetLabels(y, fold.Train),
			testX:     vec.Transform(subsetTexts(texts, fold.Test)),
			testY:     subsetLabels(y, fold.Test),
			nFeatures: vec.NumFeatures(),
		}
	}
	return out
}

func subsetTexts(texts []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = texts[j]
	}
	return out
}

func prepareSearch(texts []string, y []int, maxFolds int) ([]Fold, error) {
	if len(texts) != len(y) {
		return nil, errors.Errorf("%d texts but %d labels", len(texts), len(y))
	}
	k := CVFolds(y, maxFolds)
	if len(texts) < k {
		return nil, errors.Wrapf(ErrNotEnoughRows, "%d training rows for %d folds", len(texts), k)
	}
	return StratifiedKFold(y, k)
}

// SVMTrainer searches C and class weighting for the TF-IDF plus calibrated
// linear SVM pipeline.
type SVMTrainer struct {
	cfg    SVMConfig
	search SearchConfig
	logger *zap.Logger
}

// NewSVMTrainer returns a trainer. A nil logger disables logging.
func NewSVMTrainer(cfg SVMConfig, search SearchConfig, logger *zap.Logger) *SVMTrainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SVMTrainer{cfg: cfg, search: search, logger: logger.Named("svm")}
}

// Candidates lists the grid in search order: C outer, class weight inner.
func (t *SVMTrainer) Candidates() []SVMParams {
	var out []SVMParams
	for _, c := range t.cfg.C {
		for _, w := range t.cfg.ClassWeights {
			out = append(out, SVMParams{C: c, ClassWeight: w})
		}
	}
	return out
}

// Train cross-validates every candidate on texts and labels y (indexes into
// a shared encoder of nClasses classes), then refits the best on all rows.
func (t *SVMTrainer) Train(ctx context.Context, texts []string, y []int, nClasses int) (*SVMTrainingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	folds, err := prepareSearch(texts, y, t.search.MaxFolds)
	if err != nil {
		return nil, errors.Wrap(err, "svm")
	}
	data := vectorizeFolds(t.cfg.Vectorizer, texts, y, folds)

	score := func(p SVMParams, f int) (float64, error) {
		fd := data[f]
		if fd.err != nil {
			return 0, fd.err
		}
		clf, err := FitCalibratedSVC(fd.trainX, fd.trainY, nClasses, fd.nFeatures, p, t.cfg.CalibrationFolds, t.cfg.MaxIter)
		if err != nil {
			return 0, err
		}
		pred := make([]int, len(fd.testX))
		for i, x := range fd.testX {
			pred[i] = argmax(clf.PredictProba(x))
		}
		return weightedF1(fd.testY, pred, nClasses), nil
	}

	search, err := gridSearch(t.Candidates(), len(folds), t.search.Workers, score, t.logger)
	if err != nil {
		return nil, errors.Wrap(err, "svm")
	}
	best := search.Best()

	vec := NewTFIDFVectorizer(t.cfg.Vectorizer)
	X, err := vec.FitTransform(texts)
	if err != nil {
		return nil, errors.Wrap(err, "svm refit")
	}
	clf, err := FitCalibratedSVC(X, y, nClasses, vec.NumFeatures(), best.Params, t.cfg.CalibrationFolds, t.cfg.MaxIter)
	if err != nil {
		return nil, errors.Wrap(err, "svm refit")
	}

	t.logger.Info("svm search finished",
		zap.Float64("c", best.Params.C),
		zap.String("class_weight", string(best.Params.ClassWeight)),
		zap.Float64("cv_f1", best.Mean),
		zap.Int("folds", len(folds)),
		zap.Int("features", vec.NumFeatures()))

	return &SVMTrainingResult{
		Model:    &SVMModel{Vectorizer: vec, Classifier: clf},
		Params:   best.Params,
		Search:   search,
		Duration: time.Since(start),
	}, nil
}

// ReducedTrainer searches feature count, component count and C for the
// TF-IDF, chi-squared, SVD and logistic regression pipeline.
type ReducedTrainer struct {
	cfg    ReducedConfig
	search SearchConfig
	logger *zap.Logger
}

// NewReducedTrainer returns a trainer. A nil logger disables logging.
func NewReducedTrainer(cfg ReducedConfig, search SearchConfig, logger *zap.Logger) *ReducedTrainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReducedTrainer{cfg: cfg, search: search, logger: logger.Named("reduced")}
}

// clampCandidate keeps a size strictly below the vocabulary and at least 2.
func clampCandidate(target, nFeatures int) int {
	if target > nFeatures-1 {
		target = nFeatures - 1
	}
	if target < 2 {
		target = 2
	}
	return target
}

// ReducedCandidates derives the grid from the fitted vocabulary size n, in
// search order: C outer, then k, then component count.
func ReducedCandidates(n int, cs []float64) ([]ReducedParams, error) {
	if n < 3 {
		return nil, errors.Wrapf(ErrVocabularyTooSmall, "%d terms", n)
	}

	var ks, comps []int
	switch {
	case n < 100:
		ks = []int{n / 2, minInt(100, n-1)}
		comps = []int{maxInt(2, n/3), maxInt(2, n/2)}
	case n < 500:
		ks = []int{n / 2, minInt(200, n-1)}
		comps = []int{50, 100}
	default:
		ks = []int{800, 1500}
		comps = []int{150, 300}
	}
	ks = dedupe(clampAll(ks, n))
	comps = dedupe(clampAll(comps, n))

	var out []ReducedParams
	for _, c := range cs {
		for _, k := range ks {
			for _, nc := range comps {
				out = append(out, ReducedParams{C: c, K: k, NComponents: nc})
			}
		}
	}
	return out, nil
}

func clampAll(xs []int, n int) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = clampCandidate(x, n)
	}
	return out
}

func dedupe(xs []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}

// Train derives the grid from the vocabulary of texts, cross-validates every
// candidate and refits the best on all rows.
func (t *ReducedTrainer) Train(ctx context.Context, texts []string, y []int, nClasses int) (*ReducedTrainingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	probe := NewTFIDFVectorizer(t.cfg.Vectorizer)
	if err := probe.Fit(texts); err != nil {
		return nil, errors.Wrap(err, "reduced")
	}
	vocab := probe.NumFeatures()
	candidates, err := ReducedCandidates(vocab, t.cfg.C)
	if err != nil {
		return nil, errors.Wrap(err, "reduced")
	}

	folds, err := prepareSearch(texts, y, t.search.MaxFolds)
	if err != nil {
		return nil, errors.Wrap(err, "reduced")
	}
	data := vectorizeFolds(t.cfg.Vectorizer, texts, y, folds)

	score := func(p ReducedParams, f int) (float64, error) {
		fd := data[f]
		if fd.err != nil {
			return 0, fd.err
		}
		pipe, err := fitReduced(nil, fd.trainX, fd.trainY, fd.nFeatures, nClasses, p, t.cfg.MaxIter)
		if err != nil {
			return 0, err
		}
		pred := make([]int, len(fd.testX))
		for i, x := range fd.testX {
			pred[i] = argmax(pipe.probaVector(x))
		}
		return weightedF1(fd.testY, pred, nClasses), nil
	}

	search, err := gridSearch(candidates, len(folds), t.search.Workers, score, t.logger)
	if err != nil {
		return nil, errors.Wrap(err, "reduced")
	}
	best := search.Best()

	vec := NewTFIDFVectorizer(t.cfg.Vectorizer)
	X, err := vec.FitTransform(texts)
	if err != nil {
		return nil, errors.Wrap(err, "reduced refit")
	}
	pipe, err := fitReduced(vec, X, y, vec.NumFeatures(), nClasses, best.Params, t.cfg.MaxIter)
	if err != nil {
		return nil, errors.Wrap(err, "reduced refit")
	}

	t.logger.Info("reduced search finished",
		zap.Int("vocabulary", vocab),
		zap.Int("k", best.Params.K),
		zap.Int("n_components", best.Params.NComponents),
		zap.Float64("c", best.Params.C),
		zap.Float64("cv_f1", best.Mean),
		zap.Int("folds", len(folds)))

	return &ReducedTrainingResult{
		Model:          pipe,
		Params:         best.Params,
		Search:         search,
		VocabularySize: vocab,
		Duration:       time.Since(start),
	}, nil
}

// fitReduced fits the selector, reducer and classifier on vectorized rows.
// k and the component count are re-clamped to what X supports.
func fitReduced(vec *TFIDFVectorizer, X []SparseVector, y []int, nFeatures, nClasses int, p ReducedParams, maxIter int) (*ReducedPipeline, error) {
	k := clampCandidate(p.K, nFeatures)
	if k > nFeatures {
		k = nFeatures
	}
	selector := NewChiSquareSelector(k)
	if err := selector.Fit(X, y, nFeatures); err != nil {
		return nil, err
	}
	selected := selector.Transform(X)

	nc := minInt(p.NComponents, selector.K-1)
	nc = minInt(nc, len(X))
	if nc < 1 {
		nc = 1
	}
	svd := NewTruncatedSVD(nc)
	if err := svd.Fit(selected, selector.K); err != nil {
		return nil, err
	}

	clf := NewLogisticRegression(p.C, maxIter)
	if err := clf.Fit(svd.Transform(selected), y, nClasses); err != nil {
		return nil, err
	}
	return &ReducedPipeline{
		Vectorizer: vec,
		Selector:   selector,
		SVD:        svd,
		Classifier: clf,
		Params:     p,
	}, nil
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
