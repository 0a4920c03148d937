package ulasan

import "strings"

// Polarity is the categorical sentiment label assigned to a review.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

// A Review is one raw row of input: the review text plus whatever other
// columns survived dataset cleaning.
type Review struct {
	Content string            // The review's raw text.
	Fields  map[string]string // Remaining non-content columns, by name.
}

// A NormalizedReview carries every intermediate product of the Normalizer.
// Each field is written by exactly one stage.
type NormalizedReview struct {
	Review

	CleanedText    string   // After noise removal.
	LowercasedText string   // After case folding.
	NormalizedText string   // After slang normalization.
	Tokens         []string // After word tokenization.
	FilteredTokens []string // After stopword filtering.
	FinalText      string   // FilteredTokens joined by single spaces.
}

// PolarityResult is the lexicon-derived score and label of a token sequence.
type PolarityResult struct {
	Score int
	Label Polarity
}

// A LabeledReview is a normalized review together with its polarity.
type LabeledReview struct {
	NormalizedReview
	Polarity PolarityResult
}

// A LabeledDataset is an ordered collection of labeled reviews.
type LabeledDataset struct {
	Reviews []LabeledReview
}

// Len returns the number of reviews in d.
func (d LabeledDataset) Len() int {
	return len(d.Reviews)
}

// Texts returns the final text of every review, in order.
func (d LabeledDataset) Texts() []string {
	texts := make([]string, len(d.Reviews))
	for i, r := range d.Reviews {
		texts[i] = r.FinalText
	}
	return texts
}

// Labels returns the polarity label of every review, in order.
func (d LabeledDataset) Labels() []string {
	labels := make([]string, len(d.Reviews))
	for i, r := range d.Reviews {
		labels[i] = string(r.Polarity.Label)
	}
	return labels
}

// Subset returns a dataset holding the reviews at the given indexes.
func (d LabeledDataset) Subset(indexes []int) LabeledDataset {
	out := LabeledDataset{Reviews: make([]LabeledReview, len(indexes))}
	for i, idx := range indexes {
		out.Reviews[i] = d.Reviews[idx]
	}
	return out
}

// LabelCounts tallies reviews per polarity label.
func (d LabeledDataset) LabelCounts() map[Polarity]int {
	counts := make(map[Polarity]int)
	for _, r := range d.Reviews {
		counts[r.Polarity.Label]++
	}
	return counts
}

// A SparseVector is one row of a document-term matrix. Indices are strictly
// increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot returns the inner product of v with the dense vector w.
func (v SparseVector) Dot(w []float64) float64 {
	var sum float64
	for k, idx := range v.Indices {
		sum += v.Values[k] * w[idx]
	}
	return sum
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
