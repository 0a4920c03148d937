package ulasan

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// ClassWeightMode selects how training samples are weighted by class.
type ClassWeightMode string

const (
	NoClassWeight       ClassWeightMode = "none"
	BalancedClassWeight ClassWeightMode = "balanced"
)

// classWeights returns a per-class multiplier. Balanced weighting uses
// n / (classes present * class count).
func classWeights(y []int, nClasses int, mode ClassWeightMode) []float64 {
	weights := make([]float64, nClasses)
	for i := range weights {
		weights[i] = 1
	}
	if mode != BalancedClassWeight {
		return weights
	}
	counts := make([]float64, nClasses)
	present := 0.0
	for _, c := range y {
		if counts[c] == 0 {
			present++
		}
		counts[c]++
	}
	for c := range weights {
		if counts[c] > 0 {
			weights[c] = float64(len(y)) / (present * counts[c])
		}
	}
	return weights
}

// minimize runs L-BFGS from x0. A result is kept even when the optimizer
// stops with an error, as long as it produced one.
func minimize(f func([]float64) float64, grad func([]float64, []float64), x0 []float64, maxIter int) ([]float64, error) {
	problem := optimize.Problem{Func: f, Grad: grad}
	settings := &optimize.Settings{
		MajorIterations:   maxIter,
		GradientThreshold: 1e-6,
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if result == nil {
		if err == nil {
			err = errors.New("optimizer returned no result")
		}
		return nil, errors.Wrap(err, "minimize")
	}
	if !allFinite(result.X) {
		return nil, errors.New("minimize: diverged")
	}
	return result.X, nil
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LinearSVC is a one-vs-rest linear support vector classifier trained on the
// squared hinge loss with an L2 penalty. The intercept is penalized like any
// other weight.
type LinearSVC struct {
	C           float64
	ClassWeight ClassWeightMode
	MaxIter     int
	NClasses    int
	NFeatures   int
	Weights     [][]float64 // Per class: NFeatures coefficients then the intercept.
}

// NewLinearSVC returns an unfitted classifier.
func NewLinearSVC(c float64, mode ClassWeightMode, maxIter int) *LinearSVC {
	return &LinearSVC{C: c, ClassWeight: mode, MaxIter: maxIter}
}

// Fit trains one binary model per class index in [0, nClasses).
func (m *LinearSVC) Fit(X []SparseVector, y []int, nClasses, nFeatures int) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.Errorf("linear svc: %d rows, %d labels", len(X), len(y))
	}
	m.NClasses = nClasses
	m.NFeatures = nFeatures
	m.Weights = make([][]float64, nClasses)

	sampleWeight := make([]float64, len(y))
	cw := classWeights(y, nClasses, m.ClassWeight)
	for i, c := range y {
		sampleWeight[i] = cw[c]
	}

	n := float64(len(X))
	for class := 0; class < nClasses; class++ {
		target := make([]float64, len(y))
		for i, c := range y {
			target[i] = -1
			if c == class {
				target[i] = 1
			}
		}

		f := func(w []float64) float64 {
			loss := 0.5 * floats.Dot(w, w)
			for i, row := range X {
				margin := 1 - target[i]*(row.Dot(w)+w[nFeatures])
				if margin > 0 {
					loss += m.C * sampleWeight[i] * margin * margin
				}
			}
			return loss / n
		}
		grad := func(g, w []float64) {
			copy(g, w)
			for i, row := range X {
				margin := 1 - target[i]*(row.Dot(w)+w[nFeatures])
				if margin <= 0 {
					continue
				}
				coef := -2 * m.C * sampleWeight[i] * margin * target[i]
				for k, idx := range row.Indices {
					g[idx] += coef * row.Values[k]
				}
				g[nFeatures] += coef
			}
			floats.Scale(1/n, g)
		}

		w, err := minimize(f, grad, make([]float64, nFeatures+1), m.MaxIter)
		if err != nil {
			return errors.Wrapf(err, "linear svc class %d", class)
		}
		m.Weights[class] = w
	}
	return nil
}

// Decision returns the signed margin of x for every class.
func (m *LinearSVC) Decision(x SparseVector) []float64 {
	out := make([]float64, m.NClasses)
	for c, w := range m.Weights {
		out[c] = x.Dot(w) + w[m.NFeatures]
	}
	return out
}

// Predict returns the class with the largest margin.
func (m *LinearSVC) Predict(x SparseVector) int {
	return floats.MaxIdx(m.Decision(x))
}

// LogisticRegression is a multinomial (softmax) classifier with an L2
// penalty on the coefficients. Intercepts are not penalized.
type LogisticRegression struct {
	C         float64
	MaxIter   int
	NClasses  int
	NFeatures int
	Weights   [][]float64 // Per class: NFeatures coefficients then the intercept.
}

// NewLogisticRegression returns an unfitted classifier.
func NewLogisticRegression(c float64, maxIter int) *LogisticRegression {
	return &LogisticRegression{C: c, MaxIter: maxIter}
}

// Fit trains on dense rows X with class indexes y in [0, nClasses).
func (m *LogisticRegression) Fit(X [][]float64, y []int, nClasses int) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.Errorf("logistic regression: %d rows, %d labels", len(X), len(y))
	}
	d := len(X[0])
	stride := d + 1
	n := float64(len(X))

	logits := func(w []float64, x []float64, out []float64) {
		for c := 0; c < nClasses; c++ {
			block := w[c*stride : (c+1)*stride]
			out[c] = floats.Dot(block[:d], x) + block[d]
		}
	}

	f := func(w []float64) float64 {
		z := make([]float64, nClasses)
		var loss float64
		for i, x := range X {
			logits(w, x, z)
			loss += floats.LogSumExp(z) - z[y[i]]
		}
		var penalty float64
		for c := 0; c < nClasses; c++ {
			coef := w[c*stride : c*stride+d]
			penalty += floats.Dot(coef, coef)
		}
		return (loss + penalty/(2*m.C)) / n
	}
	grad := func(g, w []float64) {
		for i := range g {
			g[i] = 0
		}
		z := make([]float64, nClasses)
		for i, x := range X {
			logits(w, x, z)
			lse := floats.LogSumExp(z)
			for c := 0; c < nClasses; c++ {
				p := math.Exp(z[c] - lse)
				if c == y[i] {
					p--
				}
				block := g[c*stride : (c+1)*stride]
				floats.AddScaled(block[:d], p, x)
				block[d] += p
			}
		}
		for c := 0; c < nClasses; c++ {
			floats.AddScaled(g[c*stride:c*stride+d], 1/m.C, w[c*stride:c*stride+d])
		}
		floats.Scale(1/n, g)
	}

	w, err := minimize(f, grad, make([]float64, nClasses*stride), m.MaxIter)
	if err != nil {
		return errors.Wrap(err, "logistic regression")
	}

	m.NClasses = nClasses
	m.NFeatures = d
	m.Weights = make([][]float64, nClasses)
	for c := 0; c < nClasses; c++ {
		m.Weights[c] = append([]float64(nil), w[c*stride:(c+1)*stride]...)
	}
	return nil
}

// PredictProba returns the class distribution of x.
func (m *LogisticRegression) PredictProba(x []float64) []float64 {
	z := make([]float64, m.NClasses)
	for c, w := range m.Weights {
		z[c] = floats.Dot(w[:m.NFeatures], x) + w[m.NFeatures]
	}
	lse := floats.LogSumExp(z)
	for c := range z {
		z[c] = math.Exp(z[c] - lse)
	}
	return z
}
