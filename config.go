package ulasan

import (
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of a run. Zero-valued sections are filled from
// DefaultConfig by LoadConfig.
type Config struct {
	Normalizer string        `yaml:"normalizer"`
	Lexicon    LexiconConfig `yaml:"lexicon"`
	Dataset    DatasetConfig `yaml:"dataset"`
	SVM        SVMConfig     `yaml:"svm"`
	Reduced    ReducedConfig `yaml:"reduced"`
	Search     SearchConfig  `yaml:"search"`
}

// LexiconConfig names the lexicon sources.
type LexiconConfig struct {
	Positive string        `yaml:"positive"`
	Negative string        `yaml:"negative"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DatasetConfig controls dataset cleaning and the train/test split.
type DatasetConfig struct {
	ContentColumn string   `yaml:"content_column"`
	DropColumns   []string `yaml:"drop_columns"`
	TestSize      float64  `yaml:"test_size"`
	Seed          int64    `yaml:"seed"`
}

// SVMConfig configures the TF-IDF plus calibrated linear SVM track.
type SVMConfig struct {
	Vectorizer       TFIDFConfig       `yaml:"vectorizer"`
	C                []float64         `yaml:"c"`
	ClassWeights     []ClassWeightMode `yaml:"class_weights"`
	CalibrationFolds int               `yaml:"calibration_folds"`
	MaxIter          int               `yaml:"max_iter"`
}

// ReducedConfig configures the chi-squared, SVD and logistic regression track.
type ReducedConfig struct {
	Vectorizer TFIDFConfig `yaml:"vectorizer"`
	C          []float64   `yaml:"c"`
	MaxIter    int         `yaml:"max_iter"`
}

// SearchConfig bounds the cross-validated grid search.
type SearchConfig struct {
	MaxFolds int `yaml:"max_folds"`
	Workers  int `yaml:"workers"`
}

// DefaultDropColumns are the Play Store export columns removed before
// cleaning.
var DefaultDropColumns = []string{
	"reviewId", "userName", "userImage", "score", "thumbsUpCount",
	"reviewCreatedVersion", "at", "replyContent", "repliedAt", "appVersion",
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Normalizer: FullNormalizer,
		Lexicon: LexiconConfig{
			Positive: DefaultPositiveLexiconURL,
			Negative: DefaultNegativeLexiconURL,
			Timeout:  DefaultLexiconTimeout,
		},
		Dataset: DatasetConfig{
			ContentColumn: "content",
			DropColumns:   append([]string(nil), DefaultDropColumns...),
			TestSize:      0.2,
			Seed:          42,
		},
		SVM: SVMConfig{
			Vectorizer: TFIDFConfig{
				MaxFeatures: 12000,
				NGramMin:    1,
				NGramMax:    3,
				MinDF:       2,
				MaxDF:       0.98,
				SublinearTF: true,
			},
			C:                []float64{0.1, 1, 2, 5, 10},
			ClassWeights:     []ClassWeightMode{NoClassWeight, BalancedClassWeight},
			CalibrationFolds: 3,
			MaxIter:          1000,
		},
		Reduced: ReducedConfig{
			Vectorizer: TFIDFConfig{
				MaxFeatures: 3000,
				NGramMin:    1,
				NGramMax:    2,
				MinDF:       2,
				MaxDF:       1.0,
			},
			C:       []float64{0.5, 1.0},
			MaxIter: 2000,
		},
		Search: SearchConfig{
			MaxFolds: 5,
			Workers:  runtime.NumCPU(),
		},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(ErrInvalidConfig, "parse %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	if _, err := NormalizerConfigByName(c.Normalizer); err != nil {
		return err
	}
	if c.Dataset.ContentColumn == "" {
		return errors.Wrap(ErrInvalidConfig, "dataset.content_column is empty")
	}
	if c.Dataset.TestSize <= 0 || c.Dataset.TestSize >= 1 {
		return errors.Wrapf(ErrInvalidConfig, "dataset.test_size %v outside (0, 1)", c.Dataset.TestSize)
	}
	if c.Lexicon.Timeout <= 0 {
		return errors.Wrap(ErrInvalidConfig, "lexicon.timeout must be positive")
	}
	if err := c.SVM.Vectorizer.validate("svm.vectorizer"); err != nil {
		return err
	}
	if err := c.Reduced.Vectorizer.validate("reduced.vectorizer"); err != nil {
		return err
	}
	if err := validatePenalties("svm.c", c.SVM.C); err != nil {
		return err
	}
	if err := validatePenalties("reduced.c", c.Reduced.C); err != nil {
		return err
	}
	if len(c.SVM.ClassWeights) == 0 {
		return errors.Wrap(ErrInvalidConfig, "svm.class_weights is empty")
	}
	for _, w := range c.SVM.ClassWeights {
		if w != NoClassWeight && w != BalancedClassWeight {
			return errors.Wrapf(ErrInvalidConfig, "svm.class_weights: unknown mode %q", w)
		}
	}
	if c.SVM.CalibrationFolds < 2 {
		return errors.Wrap(ErrInvalidConfig, "svm.calibration_folds must be at least 2")
	}
	if c.SVM.MaxIter < 1 || c.Reduced.MaxIter < 1 {
		return errors.Wrap(ErrInvalidConfig, "max_iter must be positive")
	}
	if c.Search.MaxFolds < 2 {
		return errors.Wrap(ErrInvalidConfig, "search.max_folds must be at least 2")
	}
	return nil
}

func validatePenalties(name string, cs []float64) error {
	if len(cs) == 0 {
		return errors.Wrapf(ErrInvalidConfig, "%s is empty", name)
	}
	for _, c := range cs {
		if c <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s: penalty %v must be positive", name, c)
		}
	}
	return nil
}
