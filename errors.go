package ulasan

import "github.com/pkg/errors"

// Sentinel errors. Callers match them with errors.Is; returned errors carry
// additional context through errors.Wrap.
var (
	ErrMissingColumn      = errors.New("required column missing")
	ErrEmptyDataset       = errors.New("dataset is empty")
	ErrUnreadableInput    = errors.New("input could not be read")
	ErrNotEnoughRows      = errors.New("not enough rows")
	ErrEmptyVocabulary    = errors.New("no terms remain in vocabulary")
	ErrVocabularyTooSmall = errors.New("vocabulary too small for feature reduction")
	ErrNoViableCandidate  = errors.New("every hyperparameter candidate failed")
	ErrArtifactMissing    = errors.New("model artifact not found")
	ErrArtifactEmpty      = errors.New("model artifact is empty")
	ErrArtifactCorrupt    = errors.New("model artifact could not be decoded")
	ErrUnknownModelKind   = errors.New("unknown model kind")
	ErrUnknownLabel       = errors.New("label not known to encoder")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrInternal           = errors.New("internal error")
)
