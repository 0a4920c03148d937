package ulasan

import (
	"math"

	"github.com/pkg/errors"
)

// Sigmoid is a Platt scaling curve p = 1 / (1 + exp(A*f + B)).
type Sigmoid struct {
	A, B float64
}

// Prob maps a decision value to a probability.
func (s Sigmoid) Prob(f float64) float64 {
	return 1 / (1 + math.Exp(s.A*f+s.B))
}

// softplus computes ln(1 + e^z) without overflow.
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// fitSigmoid fits a Platt curve to decision values f against binary
// outcomes, using the regularized targets of Platt (1999).
func fitSigmoid(f []float64, positive []bool) Sigmoid {
	var nPos, nNeg float64
	for _, p := range positive {
		if p {
			nPos++
		} else {
			nNeg++
		}
	}
	hi := (nPos + 1) / (nPos + 2)
	lo := 1 / (nNeg + 2)
	target := make([]float64, len(f))
	for i, p := range positive {
		target[i] = lo
		if p {
			target[i] = hi
		}
	}

	loss := func(ab []float64) float64 {
		var l float64
		for i, fi := range f {
			z := ab[0]*fi + ab[1]
			l += softplus(z) - (1-target[i])*z
		}
		return l
	}
	grad := func(g, ab []float64) {
		g[0], g[1] = 0, 0
		for i, fi := range f {
			p := 1 / (1 + math.Exp(ab[0]*fi+ab[1]))
			d := target[i] - p
			g[0] += d * fi
			g[1] += d
		}
	}

	start := []float64{0, math.Log((nNeg + 1) / (nPos + 1))}
	ab, err := minimize(loss, grad, start, 100)
	if err != nil {
		return Sigmoid{A: start[0], B: start[1]}
	}
	return Sigmoid{A: ab[0], B: ab[1]}
}

// CalibratedMember is one linear SVM with a sigmoid per class, fitted on
// held-out decision values.
type CalibratedMember struct {
	SVC        *LinearSVC
	Calibrator []Sigmoid
}

func (m CalibratedMember) proba(x SparseVector) []float64 {
	decision := m.SVC.Decision(x)
	probs := make([]float64, len(decision))
	var sum float64
	for c, d := range decision {
		probs[c] = m.Calibrator[c].Prob(d)
		sum += probs[c]
	}
	for c := range probs {
		if sum > 0 {
			probs[c] /= sum
		} else {
			probs[c] = 1 / float64(len(probs))
		}
	}
	return probs
}

// CalibratedClassifier averages the calibrated probabilities of SVMs trained
// on the folds of a stratified split.
type CalibratedClassifier struct {
	NClasses  int
	NFeatures int
	Params    SVMParams
	Members   []CalibratedMember
}

// FitCalibratedSVC trains a calibrated linear SVM. The number of
// calibration folds is capped by the rarest class; when fewer than two folds
// are possible, one SVM is calibrated on its own training data.
func FitCalibratedSVC(X []SparseVector, y []int, nClasses, nFeatures int, params SVMParams, folds, maxIter int) (*CalibratedClassifier, error) {
	cc := &CalibratedClassifier{NClasses: nClasses, NFeatures: nFeatures, Params: params}

	k := folds
	if rarest := rarestClassCount(y); rarest < k {
		k = rarest
	}
	if k < 2 {
		member, err := fitMember(X, y, X, y, nClasses, nFeatures, params, maxIter)
		if err != nil {
			return nil, err
		}
		cc.Members = []CalibratedMember{member}
		return cc, nil
	}

	splits, err := StratifiedKFold(y, k)
	if err != nil {
		return nil, errors.Wrap(err, "calibration folds")
	}
	for _, fold := range splits {
		member, err := fitMember(
			subsetRows(X, fold.Train), subsetLabels(y, fold.Train),
			subsetRows(X, fold.Test), subsetLabels(y, fold.Test),
			nClasses, nFeatures, params, maxIter)
		if err != nil {
			return nil, err
		}
		cc.Members = append(cc.Members, member)
	}
	return cc, nil
}

func fitMember(trainX []SparseVector, trainY []int, calX []SparseVector, calY []int, nClasses, nFeatures int, params SVMParams, maxIter int) (CalibratedMember, error) {
	svc := NewLinearSVC(params.C, params.ClassWeight, maxIter)
	if err := svc.Fit(trainX, trainY, nClasses, nFeatures); err != nil {
		return CalibratedMember{}, err
	}

	decisions := make([][]float64, len(calX))
	for i, x := range calX {
		decisions[i] = svc.Decision(x)
	}
	member := CalibratedMember{SVC: svc, Calibrator: make([]Sigmoid, nClasses)}
	for c := 0; c < nClasses; c++ {
		f := make([]float64, len(calX))
		positive := make([]bool, len(calX))
		for i := range calX {
			f[i] = decisions[i][c]
			positive[i] = calY[i] == c
		}
		member.Calibrator[c] = fitSigmoid(f, positive)
	}
	return member, nil
}

// PredictProba returns the averaged class distribution of x.
func (cc *CalibratedClassifier) PredictProba(x SparseVector) []float64 {
	out := make([]float64, cc.NClasses)
	for _, m := range cc.Members {
		for c, p := range m.proba(x) {
			out[c] += p
		}
	}
	for c := range out {
		out[c] /= float64(len(cc.Members))
	}
	return out
}

func rarestClassCount(y []int) int {
	counts := map[int]int{}
	for _, c := range y {
		counts[c]++
	}
	rarest := 0
	for _, n := range counts {
		if rarest == 0 || n < rarest {
			rarest = n
		}
	}
	return rarest
}

func subsetRows(X []SparseVector, idx []int) []SparseVector {
	out := make([]SparseVector, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

func subsetLabels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
