package ulasan

import (
	"sort"

	"github.com/pkg/errors"
)

// LabelEncoder assigns each class label a stable integer index. One encoder
// is fitted per run and shared by training, evaluation and prediction so
// every confusion matrix uses the same class order.
type LabelEncoder struct {
	Classes []string
}

// FitLabelEncoder returns an encoder over the distinct labels, sorted
// alphabetically.
func FitLabelEncoder(labels []string) *LabelEncoder {
	seen := map[string]bool{}
	var classes []string
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// LabelEncoderFromSequence keeps the first-seen order of labels.
func LabelEncoderFromSequence(labels []string) *LabelEncoder {
	seen := map[string]bool{}
	var classes []string
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	return &LabelEncoder{Classes: classes}
}

// Len returns the number of classes.
func (e *LabelEncoder) Len() int {
	return len(e.Classes)
}

// Index returns the index of label.
func (e *LabelEncoder) Index(label string) (int, bool) {
	for i, c := range e.Classes {
		if c == label {
			return i, true
		}
	}
	return -1, false
}

// Transform encodes labels.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		idx, ok := e.Index(l)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownLabel, "%q", l)
		}
		out[i] = idx
	}
	return out, nil
}

// Inverse decodes a class index. Out-of-range indexes decode to "".
func (e *LabelEncoder) Inverse(idx int) string {
	if idx < 0 || idx >= len(e.Classes) {
		return ""
	}
	return e.Classes[idx]
}
