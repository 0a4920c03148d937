package ulasan

import (
	"bytes"
	"encoding/gob"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ModelKind identifies one of the trained pipelines.
type ModelKind int

const (
	// SVMTFIDF is TF-IDF followed by a calibrated linear SVM.
	SVMTFIDF ModelKind = iota
	// ReducedLogistic is TF-IDF, chi-squared selection, truncated SVD and
	// logistic regression.
	ReducedLogistic
)

func (k ModelKind) String() string {
	switch k {
	case SVMTFIDF:
		return "svm"
	case ReducedLogistic:
		return "reduced"
	default:
		return "unknown"
	}
}

// ParseModelKind maps a user-supplied name to a ModelKind.
func ParseModelKind(name string) (ModelKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "svm", "svm-tfidf", "tfidf":
		return SVMTFIDF, nil
	case "reduced", "logistic", "lr", "pipeline":
		return ReducedLogistic, nil
	}
	return 0, errors.Wrapf(ErrUnknownModelKind, "%q", name)
}

// A TrainedModel maps normalized texts to class indexes of the run's
// encoder. Fitted models are not modified by prediction.
type TrainedModel interface {
	Kind() ModelKind
	Predict(texts []string) []int
	PredictProba(texts []string) [][]float64
}

// SVMModel is a fitted TF-IDF vectorizer and calibrated SVM.
type SVMModel struct {
	Vectorizer *TFIDFVectorizer
	Classifier *CalibratedClassifier
}

// Kind returns SVMTFIDF.
func (m *SVMModel) Kind() ModelKind { return SVMTFIDF }

// PredictProba returns a class distribution per text.
func (m *SVMModel) PredictProba(texts []string) [][]float64 {
	X := m.Vectorizer.Transform(texts)
	out := make([][]float64, len(X))
	for i, x := range X {
		out[i] = m.Classifier.PredictProba(x)
	}
	return out
}

// Predict returns the most probable class per text.
func (m *SVMModel) Predict(texts []string) []int {
	return argmaxRows(m.PredictProba(texts))
}

// ReducedPipeline is the fitted reduced-dimension track.
type ReducedPipeline struct {
	Vectorizer *TFIDFVectorizer
	Selector   *ChiSquareSelector
	SVD        *TruncatedSVD
	Classifier *LogisticRegression
	Params     ReducedParams
}

// Kind returns ReducedLogistic.
func (p *ReducedPipeline) Kind() ModelKind { return ReducedLogistic }

func (p *ReducedPipeline) probaVector(x SparseVector) []float64 {
	selected := p.Selector.Transform([]SparseVector{x})
	return p.Classifier.PredictProba(p.SVD.Transform(selected)[0])
}

// PredictProba returns a class distribution per text.
func (p *ReducedPipeline) PredictProba(texts []string) [][]float64 {
	X := p.Vectorizer.Transform(texts)
	out := make([][]float64, len(X))
	for i, x := range X {
		out[i] = p.probaVector(x)
	}
	return out
}

// Predict returns the most probable class per text.
func (p *ReducedPipeline) Predict(texts []string) []int {
	return argmaxRows(p.PredictProba(texts))
}

func argmaxRows(rows [][]float64) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = argmax(r)
	}
	return out
}

// Prediction is the outcome of classifying a single raw text.
type Prediction struct {
	Model          ModelKind
	Label          string
	Probabilities  map[string]float64
	NormalizedText string
}

// Predictor normalizes raw text and classifies it with a chosen model.
type Predictor struct {
	normalizer *Normalizer
	encoder    *LabelEncoder
	models     map[ModelKind]TrainedModel
}

// NewPredictor returns a Predictor over the given models. A later model of
// the same kind replaces an earlier one.
func NewPredictor(n *Normalizer, enc *LabelEncoder, models ...TrainedModel) *Predictor {
	p := &Predictor{normalizer: n, encoder: enc, models: map[ModelKind]TrainedModel{}}
	for _, m := range models {
		if m != nil {
			p.models[m.Kind()] = m
		}
	}
	return p
}

// Predict classifies text with the model of the given kind. Text that
// normalizes to nothing is classified as an empty document.
func (p *Predictor) Predict(kind ModelKind, text string) (Prediction, error) {
	m, found := p.models[kind]
	if !found {
		return Prediction{}, errors.Wrapf(ErrUnknownModelKind, "no %s model loaded", kind)
	}
	final := p.normalizer.NormalizeText(text).FinalText
	proba := m.PredictProba([]string{final})[0]

	pred := Prediction{
		Model:          kind,
		Label:          p.encoder.Inverse(argmax(proba)),
		Probabilities:  make(map[string]float64, len(proba)),
		NormalizedText: final,
	}
	for c, v := range proba {
		pred.Probabilities[p.encoder.Inverse(c)] = v
	}
	return pred, nil
}

// Artifact file names inside an artifact directory.
const (
	SVMModelFile      = "svm_model.gob"
	VectorizerFile    = "tfidf_vectorizer.gob"
	PipelineFile      = "pipeline_best.gob"
	LabelEncoderFile  = "label_encoder.gob"
	artifactDirectory = 0o755
)

// Artifacts are the persisted outputs of a run. The SVM classifier and its
// vectorizer are stored separately.
type Artifacts struct {
	SVM        *CalibratedClassifier
	Vectorizer *TFIDFVectorizer
	Pipeline   *ReducedPipeline
	Encoder    *LabelEncoder
}

// Write saves every non-nil artifact to dir.
func (a Artifacts) Write(dir string) error {
	if err := os.MkdirAll(dir, artifactDirectory); err != nil {
		return errors.Wrap(err, "create artifact directory")
	}
	items := []struct {
		name  string
		value any
		ok    bool
	}{
		{SVMModelFile, a.SVM, a.SVM != nil},
		{VectorizerFile, a.Vectorizer, a.Vectorizer != nil},
		{PipelineFile, a.Pipeline, a.Pipeline != nil},
		{LabelEncoderFile, a.Encoder, a.Encoder != nil},
	}
	for _, item := range items {
		if !item.ok {
			continue
		}
		if err := writeGob(filepath.Join(dir, item.name), item.value); err != nil {
			return err
		}
	}
	return nil
}

func writeGob(path string, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return errors.Wrapf(err, "encode %s", filepath.Base(path))
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0o644), "write %s", filepath.Base(path))
}

func readGob(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(ErrArtifactMissing, name)
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}
	if len(data) == 0 {
		return errors.Wrap(ErrArtifactEmpty, name)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return errors.Wrapf(ErrArtifactCorrupt, "%s: %v", name, err)
	}
	return nil
}

// LoadSVMClassifier loads the calibrated SVM from dir.
func LoadSVMClassifier(dir string) (*CalibratedClassifier, error) {
	var c CalibratedClassifier
	if err := readGob(dir, SVMModelFile, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadVectorizer loads the SVM track's vectorizer from dir.
func LoadVectorizer(dir string) (*TFIDFVectorizer, error) {
	var v TFIDFVectorizer
	if err := readGob(dir, VectorizerFile, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// LoadReducedPipeline loads the reduced track from dir.
func LoadReducedPipeline(dir string) (*ReducedPipeline, error) {
	var p ReducedPipeline
	if err := readGob(dir, PipelineFile, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadLabelEncoder loads the run's encoder from dir.
func LoadLabelEncoder(dir string) (*LabelEncoder, error) {
	var e LabelEncoder
	if err := readGob(dir, LabelEncoderFile, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// LoadArtifacts loads all four artifacts from dir.
func LoadArtifacts(dir string) (Artifacts, error) {
	var (
		a   Artifacts
		err error
	)
	if a.SVM, err = LoadSVMClassifier(dir); err != nil {
		return Artifacts{}, err
	}
	if a.Vectorizer, err = LoadVectorizer(dir); err != nil {
		return Artifacts{}, err
	}
	if a.Pipeline, err = LoadReducedPipeline(dir); err != nil {
		return Artifacts{}, err
	}
	if a.Encoder, err = LoadLabelEncoder(dir); err != nil {
		return Artifacts{}, err
	}
	return a, nil
}

// Models returns the trained models the artifacts describe.
func (a Artifacts) Models() []TrainedModel {
	var out []TrainedModel
	if a.SVM != nil && a.Vectorizer != nil {
		out = append(out, &SVMModel{Vectorizer: a.Vectorizer, Classifier: a.SVM})
	}
	if a.Pipeline != nil {
		out = append(out, a.Pipeline)
	}
	return out
}
