package ulasan

import (
	"math"

	"github.com/bsm/mlmetrics"
	"github.com/pkg/errors"
)

// EvaluationReport holds held-out metrics for one model. Precision, Recall
// and F1 are weighted by class support; a class with no predictions or no
// support scores 0.
type EvaluationReport struct {
	Model     ModelKind
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	Classes   []string // Row and column order of Confusion.
	Support   []int
	Confusion [][]int // Confusion[actual][predicted].
	PerClass  []ClassMetrics
}

// ClassMetrics are the one-vs-rest scores of a single class.
type ClassMetrics struct {
	Class     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Evaluate scores predictions against the truth. Both slices hold class
// indexes of enc, which fixes the confusion matrix order.
func Evaluate(kind ModelKind, yTrue, yPred []int, enc *LabelEncoder) EvaluationReport {
	k := enc.Len()
	report := EvaluationReport{
		Model:     kind,
		Classes:   append([]string(nil), enc.Classes...),
		Support:   make([]int, k),
		Confusion: make([][]int, k),
		PerClass:  make([]ClassMetrics, k),
	}
	for i := range report.Confusion {
		report.Confusion[i] = make([]int, k)
	}

	cm := mlmetrics.NewConfusionMatrix()
	for i := range yTrue {
		cm.Observe(yTrue[i], yPred[i])
		report.Confusion[yTrue[i]][yPred[i]]++
		report.Support[yTrue[i]]++
	}
	if len(yTrue) == 0 {
		return report
	}

	report.Accuracy = finite(cm.Accuracy())
	total := float64(len(yTrue))
	for c := 0; c < k; c++ {
		m := ClassMetrics{Class: enc.Classes[c], Support: report.Support[c]}
		if c < cm.Order() {
			m.Precision = finite(cm.Precision(c))
			m.Recall = finite(cm.Sensitivity(c))
			m.F1 = finite(cm.F1(c))
		}
		report.PerClass[c] = m

		w := float64(m.Support) / total
		report.Precision += w * m.Precision
		report.Recall += w * m.Recall
		report.F1 += w * m.F1
	}
	return report
}

// weightedF1 is the support-weighted F1 of predictions over nClasses.
func weightedF1(yTrue, yPred []int, nClasses int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	cm := mlmetrics.NewConfusionMatrix()
	support := make([]float64, nClasses)
	for i := range yTrue {
		cm.Observe(yTrue[i], yPred[i])
		support[yTrue[i]]++
	}
	var score float64
	for c := 0; c < nClasses && c < cm.Order(); c++ {
		score += support[c] * finite(cm.F1(c))
	}
	return score / float64(len(yTrue))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Comparison declares which model scored the higher held-out accuracy.
type Comparison struct {
	Winner  ModelKind
	Margin  float64 // Winner accuracy minus the runner-up's.
	Reports []EvaluationReport
}

// Compare picks the report with strictly greater accuracy. Ties go to the
// report listed first.
func Compare(reports ...EvaluationReport) Comparison {
	cmp := Comparison{Reports: reports}
	if len(reports) == 0 {
		return cmp
	}
	best := 0
	for i := 1; i < len(reports); i++ {
		if reports[i].Accuracy > reports[best].Accuracy {
			best = i
		}
	}
	cmp.Winner = reports[best].Model
	if len(reports) > 1 {
		runnerUp := math.Inf(-1)
		for i, r := range reports {
			if i != best && r.Accuracy > runnerUp {
				runnerUp = r.Accuracy
			}
		}
		cmp.Margin = reports[best].Accuracy - runnerUp
	}
	return cmp
}

// ArtifactEvaluation is the outcome of scoring saved models on a dataset.
type ArtifactEvaluation struct {
	Split       Split
	Evaluations []EvaluationReport
	Comparison  Comparison
}

// EvaluateArtifacts splits d with the given test size and seed and scores
// every model in a on the held-out rows. Labels are encoded with a.Encoder,
// so a label the saved models never saw fails with ErrUnknownLabel.
func EvaluateArtifacts(a Artifacts, d LabeledDataset, testSize float64, seed int64) (*ArtifactEvaluation, error) {
	if a.Encoder == nil {
		return nil, errors.Wrap(ErrArtifactMissing, LabelEncoderFile)
	}
	models := a.Models()
	if len(models) == 0 {
		return nil, errors.Wrap(ErrArtifactMissing, "no trained model to evaluate")
	}
	split, err := SplitDataset(d, testSize, seed)
	if err != nil {
		return nil, err
	}
	yTest, err := a.Encoder.Transform(split.Test.Labels())
	if err != nil {
		return nil, err
	}

	texts := split.Test.Texts()
	reports := make([]EvaluationReport, 0, len(models))
	for _, m := range models {
		reports = append(reports, Evaluate(m.Kind(), yTest, m.Predict(texts), a.Encoder))
	}
	return &ArtifactEvaluation{
		Split:       split,
		Evaluations: reports,
		Comparison:  Compare(reports...),
	}, nil
}
