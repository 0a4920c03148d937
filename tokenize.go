package ulasan

import (
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

type TokenTester func(string) bool

// WordTokenizer splits text into sentences and then into word tokens,
// peeling leading and trailing punctuation off each whitespace-delimited
// span.
type WordTokenizer struct {
	sanitizer      *strings.Replacer
	prefixes       []string
	suffixes       []string
	isUnsplittable TokenTester
	segment        bool
}

type TokenizerOpt func(*WordTokenizer)

// UsingIsUnsplittable gives a function that tests whether a token must be
// kept whole.
func UsingIsUnsplittable(x TokenTester) TokenizerOpt {
	return func(tokenizer *WordTokenizer) {
		tokenizer.isUnsplittable = x
	}
}

// Use the provided sanitizer.
func UsingSanitizer(x *strings.Replacer) TokenizerOpt {
	return func(tokenizer *WordTokenizer) {
		tokenizer.sanitizer = x
	}
}

// Use the provided suffixes.
func UsingSuffixes(x []string) TokenizerOpt {
	return func(tokenizer *WordTokenizer) {
		tokenizer.suffixes = x
	}
}

// Use the provided prefixes.
func UsingPrefixes(x []string) TokenizerOpt {
	return func(tokenizer *WordTokenizer) {
		tokenizer.prefixes = x
	}
}

// WithSentenceSegmentation can enable (the default) or disable sentence
// segmentation ahead of word splitting.
func WithSentenceSegmentation(include bool) TokenizerOpt {
	return func(tokenizer *WordTokenizer) {
		tokenizer.segment = include
	}
}

// NewWordTokenizer returns a tokenizer with the default punctuation rules.
func NewWordTokenizer(opts ...TokenizerOpt) *WordTokenizer {
	tok := &WordTokenizer{
		sanitizer:      sanitizer,
		prefixes:       prefixes,
		suffixes:       suffixes,
		isUnsplittable: func(_ string) bool { return false },
		segment:        true,
	}
	for _, applyOpt := range opts {
		applyOpt(tok)
	}
	return tok
}

// Tokenize splits text into word tokens in reading order.
func (t *WordTokenizer) Tokenize(text string) []string {
	clean := t.sanitizer.Replace(text)
	if strings.TrimSpace(clean) == "" {
		return nil
	}

	var tokens []string
	cache := map[string][]string{}
	for _, sent := range t.sentences(clean) {
		for _, span := range strings.Fields(sent) {
			toks, found := cache[span]
			if !found {
				toks = t.split(span)
				cache[span] = toks
			}
			tokens = append(tokens, toks...)
		}
	}
	return tokens
}

func (t *WordTokenizer) sentences(text string) []string {
	if !t.segment {
		return []string{text}
	}
	seg, err := sentenceSegmenter()
	if err != nil {
		return []string{text}
	}

	segmenterMu.Lock()
	sents := seg.Tokenize(text)
	segmenterMu.Unlock()

	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.Text)
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

func (t *WordTokenizer) split(token string) []string {
	var tokens, suffs []string

	last := 0
	for token != "" && utf8.RuneCountInString(token) != last {
		if t.isUnsplittable(token) {
			tokens = append(tokens, token)
			break
		}
		last = utf8.RuneCountInString(token)
		if p := matchPrefix(token, t.prefixes); p != "" {
			// $100 -> [$, 100].
			tokens = append(tokens, p)
			token = token[len(p):]
		} else if s := matchSuffix(token, t.suffixes); s != "" {
			// bagus!) -> [bagus, !, )].
			suffs = append([]string{s}, suffs...)
			token = token[:len(token)-len(s)]
		} else {
			tokens = append(tokens, token)
			break
		}
	}

	return append(tokens, suffs...)
}

func matchPrefix(token string, prefixes []string) string {
	for _, p := range prefixes {
		if len(token) > len(p) && strings.HasPrefix(token, p) {
			return p
		}
	}
	return ""
}

func matchSuffix(token string, suffixes []string) string {
	for _, s := range suffixes {
		if len(token) > len(s) && strings.HasSuffix(token, s) {
			return s
		}
	}
	return ""
}

var (
	segmenterOnce sync.Once
	segmenterMu   sync.Mutex
	segmenter     *sentences.DefaultSentenceTokenizer
	segmenterErr  error
)

func sentenceSegmenter() (*sentences.DefaultSentenceTokenizer, error) {
	segmenterOnce.Do(func() {
		segmenter, segmenterErr = english.NewSentenceTokenizer(nil)
	})
	return segmenter, segmenterErr
}

var sanitizer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"&rsquo;", "'")
var suffixes = []string{"...", ",", ")", `"`, "]", "!", ";", ".", "?", ":", "'"}
var prefixes = []string{"$", "(", `"`, "[", "'"}
