package ulasan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bbalet/stopwords"
	lru "github.com/hashicorp/golang-lru/v2"
)

// indonesianCoreStopwords is the short Indonesian list used by the full
// pipeline.
var indonesianCoreStopwords = []string{
	"yang", "untuk", "pada", "ke", "para", "namun", "menurut", "antara", "dia", "dua",
	"ia", "seperti", "jika", "sehingga", "kembali", "dan", "tidak", "ini", "karena",
	"oleh", "itu", "dalam", "dari", "dengan", "di", "ada", "akan", "sudah", "bisa", "dapat",
	"saat", "hanya", "atau", "juga", "setelah", "mereka", "saya", "kamu", "kami", "kita",
}

// negations are never filtered as stopwords; the slang table maps "gk",
// "ga" and friends onto them.
var negations = []string{"tidak", "bukan", "belum", "jangan"}

// colloquialFillers are chat particles that carry no sentiment.
var colloquialFillers = []string{
	"iya", "yaa", "gak", "nya", "na", "sih", "ku", "di", "ga", "ya", "gaa", "loh", "kah",
	"woi", "woii", "woy",
}

// IndonesianCoreStopwords returns a copy of the short Indonesian stopword list.
func IndonesianCoreStopwords() []string {
	return append([]string(nil), indonesianCoreStopwords...)
}

// Negations returns a copy of the negation keep-list.
func Negations() []string {
	return append([]string(nil), negations...)
}

// ColloquialFillers returns a copy of the colloquial filler list.
func ColloquialFillers() []string {
	return append([]string(nil), colloquialFillers...)
}

const stopwordCacheSize = 8192

// StopwordFilter removes stopwords from token sequences. Words listed by the
// bbalet/stopwords library for any of the configured ISO 639-1 languages are
// stopwords, as is every word in the explicit list.
type StopwordFilter struct {
	languages []string
	explicit  map[string]struct{}
	keep      map[string]struct{}
	foldCase  bool
	minLength int
	library   *lru.Cache[string, bool]
}

// NewStopwordFilter builds a filter. When foldCase is set, tokens are
// lowercased before the explicit list is consulted. Tokens shorter than
// minLength runes are dropped; a minLength of 0 disables the length check.
func NewStopwordFilter(languages, explicit []string, foldCase bool, minLength int) *StopwordFilter {
	f := &StopwordFilter{
		languages: append([]string(nil), languages...),
		explicit:  make(map[string]struct{}, len(explicit)),
		foldCase:  foldCase,
		minLength: minLength,
	}
	for _, w := range explicit {
		if foldCase {
			w = strings.ToLower(w)
		}
		f.explicit[w] = struct{}{}
	}
	if len(f.languages) > 0 {
		// Only fails for a non-positive size.
		f.library, _ = lru.New[string, bool](stopwordCacheSize)
	}
	return f
}

// Keep exempts words from the explicit and library lists. Kept words are
// matched case-insensitively and still obey the minimum length.
func (f *StopwordFilter) Keep(words ...string) *StopwordFilter {
	if f.keep == nil {
		f.keep = make(map[string]struct{}, len(words))
	}
	for _, w := range words {
		f.keep[strings.ToLower(w)] = struct{}{}
	}
	return f
}

// IsStopword reports whether tok would be removed by the filter.
func (f *StopwordFilter) IsStopword(tok string) bool {
	if f.minLength > 0 && utf8.RuneCountInString(tok) < f.minLength {
		return true
	}
	if _, found := f.keep[strings.ToLower(tok)]; found {
		return false
	}
	key := tok
	if f.foldCase {
		key = strings.ToLower(tok)
	}
	if _, found := f.explicit[key]; found {
		return true
	}
	return f.inLibrary(tok)
}

// Filter returns the tokens that are not stopwords, preserving order.
func (f *StopwordFilter) Filter(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !f.IsStopword(tok) {
			kept = append(kept, tok)
		}
	}
	return kept
}

// inLibrary probes the library: it exposes no word lists, so a word is a
// stopword when cleaning it leaves nothing behind.
func (f *StopwordFilter) inLibrary(tok string) bool {
	if f.library == nil || strings.IndexFunc(tok, unicode.IsLetter) < 0 {
		return false
	}
	if hit, ok := f.library.Get(tok); ok {
		return hit
	}
	hit := false
	for _, lang := range f.languages {
		if strings.TrimSpace(stopwords.CleanString(tok, lang, false)) == "" {
			hit = true
			break
		}
	}
	f.library.Add(tok, hit)
	return hit
}
