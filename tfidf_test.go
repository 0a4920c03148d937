package ulasan

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unigrams(minDF int, maxDF float64) TFIDFConfig {
	return TFIDFConfig{NGramMin: 1, NGramMax: 1, MinDF: minDF, MaxDF: maxDF}
}

var tfidfDocs = []string{"bagus sekali", "bagus cepat", "lambat sekali"}

func TestTFIDFFit(t *testing.T) {
	v := NewTFIDFVectorizer(unigrams(1, 1))
	X, err := v.FitTransform(tfidfDocs)
	require.NoError(t, err)

	assert.Equal(t, []string{"bagus", "cepat", "lambat", "sekali"}, v.Terms)
	assert.Equal(t, 3, v.Vocabulary["sekali"])
	assert.InDelta(t, math.Log(4.0/3.0)+1, v.IDF[0], 1e-12)
	assert.InDelta(t, math.Log(2)+1, v.IDF[1], 1e-12)

	require.Len(t, X, 3)
	assert.Equal(t, []int{0, 3}, X[0].Indices)
	assert.InDelta(t, 1/math.Sqrt2, X[0].Values[0], 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, X[0].Values[1], 1e-12)
	for _, row := range X {
		var norm float64
		for _, v := range row.Values {
			norm += v * v
		}
		assert.InDelta(t, 1, norm, 1e-12)
	}
}

func TestTFIDFDocumentFrequencyPruning(t *testing.T) {
	tests := []struct {
		cfg      TFIDFConfig
		expected []string
		desc     string
	}{
		{unigrams(2, 1), []string{"bagus", "sekali"}, "min_df"},
		{unigrams(1, 0.5), []string{"cepat", "lambat"}, "max_df"},
		{TFIDFConfig{NGramMin: 1, NGramMax: 1, MinDF: 1, MaxDF: 1, MaxFeatures: 1}, []string{"bagus"}, "max_features keeps frequent terms, ties alphabetical"},
		{TFIDFConfig{NGramMin: 2, NGramMax: 2, MinDF: 1, MaxDF: 1}, []string{"bagus cepat", "bagus sekali", "lambat sekali"}, "bigrams only"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			v := NewTFIDFVectorizer(tt.cfg)
			require.NoError(t, v.Fit(tfidfDocs))
			assert.Equal(t, tt.expected, v.Terms)
		})
	}
}

func TestTFIDFSublinear(t *testing.T) {
	cfg := unigrams(1, 1)
	cfg.SublinearTF = true
	v := NewTFIDFVectorizer(cfg)
	require.NoError(t, v.Fit([]string{"bagus bagus bagus cepat", "bagus cepat"}))

	row := v.Transform([]string{"bagus bagus bagus cepat"})[0]
	// Both terms share an idf, so the ratio is the tf ratio.
	assert.InDelta(t, 1+math.Log(3), row.Values[0]/row.Values[1], 1e-12)
}

func TestTFIDFTransformUnknownTerms(t *testing.T) {
	v := NewTFIDFVectorizer(unigrams(1, 1))
	require.NoError(t, v.Fit(tfidfDocs))

	rows := v.Transform([]string{"tidak dikenal", ""})
	assert.Empty(t, rows[0].Indices)
	assert.Empty(t, rows[1].Indices)
}

func TestTFIDFErrors(t *testing.T) {
	v := NewTFIDFVectorizer(unigrams(1, 1))
	assert.ErrorIs(t, v.Fit([]string{"a", "!", ""}), ErrEmptyVocabulary)

	v = NewTFIDFVectorizer(unigrams(3, 1))
	assert.ErrorIs(t, v.Fit(tfidfDocs), ErrEmptyVocabulary)

	v = NewTFIDFVectorizer(unigrams(2, 0.3))
	assert.ErrorIs(t, v.Fit(tfidfDocs), ErrEmptyVocabulary)
}
