package ulasan

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Names of the built-in normalizer configurations.
const (
	NotebookNormalizer = "notebook"
	FullNormalizer     = "full"
)

// NormalizerConfig selects the tables and thresholds a Normalizer applies.
// The stage order itself is fixed.
type NormalizerConfig struct {
	Name              string
	Slang             map[string]string // Lowercased key -> replacement; "" drops the token.
	StopwordLanguages []string          // ISO 639-1 codes understood by bbalet/stopwords.
	Stopwords         []string          // Explicit stopwords on top of the library lists.
	KeepWords         []string          // Never treated as stopwords, whatever the lists say.
	FoldStopwordCase  bool              // Lowercase tokens before the explicit lookup.
	MinTokenLength    int               // Tokens with fewer runes are dropped; 0 disables.
}

// NotebookConfig reproduces the exploratory preprocessing: the large slang
// table, Indonesian stopwords plus colloquial fillers and no length filter.
// Negations survive stopword filtering.
func NotebookConfig() NormalizerConfig {
	return NormalizerConfig{
		Name:              NotebookNormalizer,
		Slang:             ExtendedSlang(),
		StopwordLanguages: []string{"id"},
		Stopwords:         append(IndonesianCoreStopwords(), ColloquialFillers()...),
		KeepWords:         Negations(),
	}
}

// FullConfig is the production preprocessing: the compact slang table, the
// core Indonesian list plus English stopwords, and tokens of at least three
// runes.
func FullConfig() NormalizerConfig {
	return NormalizerConfig{
		Name:              FullNormalizer,
		Slang:             CompactSlang(),
		StopwordLanguages: []string{"en"},
		Stopwords:         IndonesianCoreStopwords(),
		KeepWords:         Negations(),
		FoldStopwordCase:  true,
		MinTokenLength:    3,
	}
}

// NormalizerConfigByName returns one of the built-in configurations.
func NormalizerConfigByName(name string) (NormalizerConfig, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NotebookNormalizer:
		return NotebookConfig(), nil
	case FullNormalizer, "":
		return FullConfig(), nil
	}
	return NormalizerConfig{}, errors.Wrapf(ErrInvalidConfig, "unknown normalizer %q", name)
}

// A NormalizerOpt changes how a Normalizer is built.
type NormalizerOpt func(n *Normalizer)

// UsingTokenizer specifies the WordTokenizer to use.
func UsingTokenizer(t *WordTokenizer) NormalizerOpt {
	return func(n *Normalizer) {
		n.tokenizer = t
	}
}

// Normalizer turns raw review text into a cleaned token sequence through a
// fixed series of stages: noise removal, case folding, slang normalization,
// tokenization, stopword filtering and reconstruction. It never fails; bad
// input degrades to an empty result.
type Normalizer struct {
	config    NormalizerConfig
	slang     map[string]string
	stopwords *StopwordFilter
	tokenizer *WordTokenizer
}

// NewNormalizer builds a Normalizer from cfg. The tables in cfg are copied.
func NewNormalizer(cfg NormalizerConfig, opts ...NormalizerOpt) *Normalizer {
	n := &Normalizer{
		config: cfg,
		slang:  make(map[string]string, len(cfg.Slang)),
	}
	for k, v := range cfg.Slang {
		n.slang[strings.ToLower(k)] = v
	}
	n.stopwords = NewStopwordFilter(cfg.StopwordLanguages, cfg.Stopwords, cfg.FoldStopwordCase, cfg.MinTokenLength).
		Keep(cfg.KeepWords...)
	for _, applyOpt := range opts {
		applyOpt(n)
	}
	if n.tokenizer == nil {
		n.tokenizer = NewWordTokenizer()
	}
	return n
}

// Name returns the configuration name.
func (n *Normalizer) Name() string {
	return n.config.Name
}

// Normalize runs every stage over r.Content.
func (n *Normalizer) Normalize(r Review) NormalizedReview {
	out := NormalizedReview{Review: r}
	out.CleanedText = n.RemoveNoise(r.Content)
	out.LowercasedText = n.Lowercase(out.CleanedText)
	out.NormalizedText = n.NormalizeSlang(out.LowercasedText)
	out.Tokens = n.Tokenize(out.NormalizedText)
	out.FilteredTokens = n.FilterStopwords(out.Tokens)
	out.FinalText = joinTokens(out.FilteredTokens)
	return out
}

// NormalizeText is Normalize for a bare string.
func (n *Normalizer) NormalizeText(text string) NormalizedReview {
	return n.Normalize(Review{Content: text})
}

var (
	urlRE     = regexp.MustCompile(`(?:http|www)\S+`)
	mentionRE = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
	hashtagRE = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	emailRE   = regexp.MustCompile(`\S+@\S+`)
	retweetRE = regexp.MustCompile(`\bRT\s+`)
	digitRE   = regexp.MustCompile(`\p{Nd}+`)
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// RemoveNoise strips URLs, email addresses, mentions, hashtags, retweet
// markers, digits and punctuation, then collapses whitespace.
func (n *Normalizer) RemoveNoise(text string) string {
	text = urlRE.ReplaceAllString(text, "")
	text = emailRE.ReplaceAllString(text, "")
	text = mentionRE.ReplaceAllString(text, "")
	text = hashtagRE.ReplaceAllString(text, "")
	text = retweetRE.ReplaceAllString(text, "")
	text = digitRE.ReplaceAllString(text, "")
	text = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, text)
	return strings.Join(strings.Fields(text), " ")
}

// Lowercase folds case with Indonesian casing rules.
func (n *Normalizer) Lowercase(text string) string {
	// A Caser holds state and must not be shared between goroutines.
	return cases.Lower(language.Indonesian).String(text)
}

// NormalizeSlang replaces whole whitespace-separated words found in the slang
// table. Words mapped to "" are dropped.
func (n *Normalizer) NormalizeSlang(text string) string {
	words := strings.Fields(text)
	fixed := make([]string, 0, len(words))
	for _, w := range words {
		repl, found := n.slang[strings.ToLower(w)]
		if !found {
			fixed = append(fixed, w)
			continue
		}
		if repl != "" {
			fixed = append(fixed, repl)
		}
	}
	return joinTokens(fixed)
}

// Tokenize splits text into word tokens.
func (n *Normalizer) Tokenize(text string) []string {
	return n.tokenizer.Tokenize(text)
}

// FilterStopwords drops stopwords and, when configured, short tokens.
func (n *Normalizer) FilterStopwords(tokens []string) []string {
	return n.stopwords.Filter(tokens)
}

// TextOf converts a loosely typed cell value into review text. Missing and
// non-textual values yield "".
func TextOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case []byte:
		return string(t)
	}
	return ""
}
