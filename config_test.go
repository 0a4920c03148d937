package ulasan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 12000, cfg.SVM.Vectorizer.MaxFeatures)
	assert.Equal(t, []float64{0.1, 1, 2, 5, 10}, cfg.SVM.C)
	assert.Equal(t, 3000, cfg.Reduced.Vectorizer.MaxFeatures)
	assert.Equal(t, 2000, cfg.Reduced.MaxIter)
	assert.Equal(t, int64(42), cfg.Dataset.Seed)
	assert.Equal(t, 10*time.Second, cfg.Lexicon.Timeout)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ulasan.yaml")
	yaml := `
normalizer: notebook
lexicon:
  positive: /data/positive.csv
  timeout: 3s
svm:
  c: [1, 2]
  class_weights: [balanced]
search:
  workers: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, NotebookNormalizer, cfg.Normalizer)
	assert.Equal(t, "/data/positive.csv", cfg.Lexicon.Positive)
	assert.Equal(t, DefaultNegativeLexiconURL, cfg.Lexicon.Negative)
	assert.Equal(t, 3*time.Second, cfg.Lexicon.Timeout)
	assert.Equal(t, []float64{1, 2}, cfg.SVM.C)
	assert.Equal(t, []ClassWeightMode{BalancedClassWeight}, cfg.SVM.ClassWeights)
	assert.Equal(t, 2, cfg.Search.Workers)
	assert.Equal(t, 5, cfg.Search.MaxFolds)
	assert.Equal(t, 3, cfg.SVM.Vectorizer.NGramMax)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("svm: [unclosed"), 0o644))
	_, err = LoadConfig(bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		mutate func(*Config)
		desc   string
	}{
		{func(c *Config) { c.Normalizer = "fancy" }, "unknown normalizer"},
		{func(c *Config) { c.Dataset.ContentColumn = "" }, "no content column"},
		{func(c *Config) { c.Dataset.TestSize = 1 }, "test size"},
		{func(c *Config) { c.Lexicon.Timeout = 0 }, "timeout"},
		{func(c *Config) { c.SVM.Vectorizer.NGramMax = 0 }, "n-gram range"},
		{func(c *Config) { c.Reduced.Vectorizer.MaxDF = 1.5 }, "max_df"},
		{func(c *Config) { c.SVM.C = nil }, "no penalties"},
		{func(c *Config) { c.Reduced.C = []float64{-1} }, "negative penalty"},
		{func(c *Config) { c.SVM.ClassWeights = []ClassWeightMode{"heavy"} }, "class weight"},
		{func(c *Config) { c.SVM.CalibrationFolds = 1 }, "calibration folds"},
		{func(c *Config) { c.Reduced.MaxIter = 0 }, "max iterations"},
		{func(c *Config) { c.Search.MaxFolds = 1 }, "max folds"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
