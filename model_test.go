package ulasan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelKind(t *testing.T) {
	tests := []struct {
		name     string
		expected ModelKind
		desc     string
	}{
		{"svm", SVMTFIDF, "svm"},
		{" TFIDF ", SVMTFIDF, "case and space"},
		{"reduced", ReducedLogistic, "reduced"},
		{"lr", ReducedLogistic, "alias"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			kind, err := ParseModelKind(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}

	_, err := ParseModelKind("bayes")
	assert.ErrorIs(t, err, ErrUnknownModelKind)
	assert.Equal(t, "svm", SVMTFIDF.String())
	assert.Equal(t, "reduced", ReducedLogistic.String())
}

// trainedArtifacts fits both tracks on the training corpus.
func trainedArtifacts(t *testing.T) Artifacts {
	t.Helper()
	texts, y := trainingCorpus()
	ctx := context.Background()

	svm, err := NewSVMTrainer(testSVMConfig(), testSearch, nil).Train(ctx, texts, y, 2)
	require.NoError(t, err)
	reduced, err := NewReducedTrainer(testReducedConfig(), testSearch, nil).Train(ctx, texts, y, 2)
	require.NoError(t, err)

	return Artifacts{
		SVM:        svm.Model.Classifier,
		Vectorizer: svm.Model.Vectorizer,
		Pipeline:   reduced.Model,
		Encoder:    FitLabelEncoder([]string{"positive", "negative"}),
	}
}

func TestArtifactsRoundTrip(t *testing.T) {
	a := trainedArtifacts(t)
	dir := filepath.Join(t.TempDir(), "artifacts")
	require.NoError(t, a.Write(dir))

	for _, name := range []string{SVMModelFile, VectorizerFile, PipelineFile, LabelEncoderFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	loaded, err := LoadArtifacts(dir)
	require.NoError(t, err)
	assert.Equal(t, a.Encoder.Classes, loaded.Encoder.Classes)
	assert.Equal(t, a.Vectorizer.Terms, loaded.Vectorizer.Terms)
	assert.Equal(t, a.Pipeline.Params, loaded.Pipeline.Params)

	texts, _ := trainingCorpus()
	original := a.Models()
	restored := loaded.Models()
	require.Len(t, restored, 2)
	for i := range original {
		assert.Equal(t, original[i].Kind(), restored[i].Kind())
		assert.Equal(t, original[i].Predict(texts), restored[i].Predict(texts))
		want := original[i].PredictProba(texts[:3])
		got := restored[i].PredictProba(texts[:3])
		for r := range want {
			assert.InDeltaSlice(t, want[r], got[r], 1e-12)
		}
	}
}

func TestArtifactsWriteSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	a := Artifacts{Encoder: FitLabelEncoder([]string{"neutral"})}
	require.NoError(t, a.Write(dir))

	assert.FileExists(t, filepath.Join(dir, LabelEncoderFile))
	assert.NoFileExists(t, filepath.Join(dir, SVMModelFile))
	assert.Empty(t, a.Models())

	_, err := LoadArtifacts(dir)
	assert.ErrorIs(t, err, ErrArtifactMissing)
}

func TestLoadArtifactErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadLabelEncoder(dir)
	assert.ErrorIs(t, err, ErrArtifactMissing)

	require.NoError(t, os.WriteFile(filepath.Join(dir, LabelEncoderFile), nil, 0o644))
	_, err = LoadLabelEncoder(dir)
	assert.ErrorIs(t, err, ErrArtifactEmpty)

	require.NoError(t, os.WriteFile(filepath.Join(dir, PipelineFile), []byte("not a gob stream"), 0o644))
	_, err = LoadReducedPipeline(dir)
	assert.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestPredictor(t *testing.T) {
	a := trainedArtifacts(t)
	p := NewPredictor(NewNormalizer(offlineConfig()), a.Encoder, a.Models()...)

	for _, kind := range []ModelKind{SVMTFIDF, ReducedLogistic} {
		pred, err := p.Predict(kind, "Aplikasi BAGUS, cepat!! http://x.com")
		require.NoError(t, err)
		assert.Equal(t, kind, pred.Model)
		assert.Equal(t, "aplikasi bagus cepat", pred.NormalizedText)
		assert.Equal(t, "positive", pred.Label, kind.String())

		var sum float64
		for _, class := range a.Encoder.Classes {
			require.Contains(t, pred.Probabilities, class)
			sum += pred.Probabilities[class]
		}
		assert.InDelta(t, 1, sum, 1e-9)
	}

	pred, err := p.Predict(SVMTFIDF, "rusak lambat, kecewa")
	require.NoError(t, err)
	assert.Equal(t, "negative", pred.Label)

	pred, err = p.Predict(SVMTFIDF, "!!! 123")
	require.NoError(t, err)
	assert.Empty(t, pred.NormalizedText)
	assert.Len(t, pred.Probabilities, 2)
}

func TestPredictorUnknownModel(t *testing.T) {
	p := NewPredictor(NewNormalizer(offlineConfig()), FitLabelEncoder([]string{"positive"}))
	_, err := p.Predict(ReducedLogistic, "bagus")
	assert.ErrorIs(t, err, ErrUnknownModelKind)
}
