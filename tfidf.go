package ulasan

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// TFIDFConfig describes a TF-IDF vectorizer.
type TFIDFConfig struct {
	MaxFeatures int     `yaml:"max_features"` // 0 keeps every term.
	NGramMin    int     `yaml:"ngram_min"`
	NGramMax    int     `yaml:"ngram_max"`
	MinDF       int     `yaml:"min_df"`       // Minimum document count.
	MaxDF       float64 `yaml:"max_df"`       // Maximum document fraction.
	SublinearTF bool    `yaml:"sublinear_tf"` // Use 1 + ln(tf).
}

func (c TFIDFConfig) validate(name string) error {
	if c.NGramMin < 1 || c.NGramMax < c.NGramMin {
		return errors.Wrapf(ErrInvalidConfig, "%s: bad n-gram range [%d, %d]", name, c.NGramMin, c.NGramMax)
	}
	if c.MinDF < 1 {
		return errors.Wrapf(ErrInvalidConfig, "%s: min_df must be at least 1", name)
	}
	if c.MaxDF <= 0 || c.MaxDF > 1 {
		return errors.Wrapf(ErrInvalidConfig, "%s: max_df %v outside (0, 1]", name, c.MaxDF)
	}
	if c.MaxFeatures < 0 {
		return errors.Wrapf(ErrInvalidConfig, "%s: max_features is negative", name)
	}
	return nil
}

// TFIDFVectorizer maps documents to L2-normalized TF-IDF rows over a
// vocabulary learned by Fit. Terms are indexed in lexical order.
type TFIDFVectorizer struct {
	Config     TFIDFConfig
	Vocabulary map[string]int
	Terms      []string
	IDF        []float64
}

// NewTFIDFVectorizer returns an unfitted vectorizer.
func NewTFIDFVectorizer(cfg TFIDFConfig) *TFIDFVectorizer {
	return &TFIDFVectorizer{Config: cfg}
}

var termRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// analyze lowercases doc, extracts word terms of two or more runes and
// expands them into n-grams.
func (v *TFIDFVectorizer) analyze(doc string) []string {
	var words []string
	for _, w := range termRE.FindAllString(strings.ToLower(doc), -1) {
		if utf8.RuneCountInString(w) >= 2 {
			words = append(words, w)
		}
	}

	lo, hi := v.Config.NGramMin, v.Config.NGramMax
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}

	var grams []string
	for n := lo; n <= hi; n++ {
		if n == 1 {
			grams = append(grams, words...)
			continue
		}
		for i := 0; i+n <= len(words); i++ {
			grams = append(grams, strings.Join(words[i:i+n], " "))
		}
	}
	return grams
}

// Fit learns the vocabulary and inverse document frequencies of docs.
func (v *TFIDFVectorizer) Fit(docs []string) error {
	n := len(docs)
	df := map[string]int{}
	tf := map[string]int{}
	for _, doc := range docs {
		seen := map[string]bool{}
		for _, g := range v.analyze(doc) {
			tf[g]++
			if !seen[g] {
				seen[g] = true
				df[g]++
			}
		}
	}
	if len(df) == 0 {
		return errors.Wrap(ErrEmptyVocabulary, "documents contain no terms")
	}

	minDF := v.Config.MinDF
	if minDF < 1 {
		minDF = 1
	}
	maxDF := v.Config.MaxDF
	if maxDF <= 0 {
		maxDF = 1
	}
	maxCount := maxDF * float64(n)
	if maxCount < float64(minDF) {
		return errors.Wrapf(ErrEmptyVocabulary, "max_df covers %.1f documents, fewer than min_df %d", maxCount, minDF)
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count >= minDF && float64(count) <= maxCount {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return errors.Wrap(ErrEmptyVocabulary, "no terms remain after document frequency pruning")
	}

	if limit := v.Config.MaxFeatures; limit > 0 && len(terms) > limit {
		sort.Slice(terms, func(i, j int) bool {
			if tf[terms[i]] != tf[terms[j]] {
				return tf[terms[i]] > tf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:limit]
	}
	sort.Strings(terms)

	v.Terms = terms
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	return nil
}

// Transform maps docs onto the fitted vocabulary. Unknown terms are ignored
// and a document without known terms becomes an empty row.
func (v *TFIDFVectorizer) Transform(docs []string) []SparseVector {
	rows := make([]SparseVector, len(docs))
	for i, doc := range docs {
		counts := map[int]float64{}
		for _, g := range v.analyze(doc) {
			if idx, found := v.Vocabulary[g]; found {
				counts[idx]++
			}
		}

		row := SparseVector{
			Indices: make([]int, 0, len(counts)),
			Values:  make([]float64, 0, len(counts)),
		}
		for idx := range counts {
			row.Indices = append(row.Indices, idx)
		}
		sort.Ints(row.Indices)

		var norm float64
		for _, idx := range row.Indices {
			weight := counts[idx]
			if v.Config.SublinearTF {
				weight = 1 + math.Log(weight)
			}
			weight *= v.IDF[idx]
			norm += weight * weight
			row.Values = append(row.Values, weight)
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for k := range row.Values {
				row.Values[k] /= norm
			}
		}
		rows[i] = row
	}
	return rows
}

// FitTransform fits on docs and returns their rows.
func (v *TFIDFVectorizer) FitTransform(docs []string) ([]SparseVector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs), nil
}

// NumFeatures returns the vocabulary size.
func (v *TFIDFVectorizer) NumFeatures() int {
	return len(v.Terms)
}
