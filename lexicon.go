package ulasan

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Default lexicon sources.
const (
	DefaultPositiveLexiconURL = "https://raw.githubusercontent.com/angelmetanosaa/dataset/main/lexicon_positive.csv"
	DefaultNegativeLexiconURL = "https://raw.githubusercontent.com/angelmetanosaa/dataset/main/lexicon_negative.csv"
	DefaultLexiconTimeout     = 10 * time.Second
)

// LexiconTable holds the word weights used by the polarity scorer. A word
// should appear in only one of the two maps; nothing enforces it, and a word
// present in both contributes both weights.
type LexiconTable struct {
	Positive map[string]int
	Negative map[string]int
}

// Len returns the total number of entries.
func (t LexiconTable) Len() int {
	return len(t.Positive) + len(t.Negative)
}

// LexiconStore fetches the positive and negative tables from their sources
// and caches each table once it has loaded successfully. A source is either
// an http(s) URL or a local file path.
type LexiconStore struct {
	positiveSource string
	negativeSource string
	client         *http.Client
	logger         *zap.Logger

	mu       sync.Mutex
	positive map[string]int
	negative map[string]int
}

// A LexiconOpt configures a LexiconStore.
type LexiconOpt func(s *LexiconStore)

// UsingLexiconSources sets where the positive and negative tables are read
// from.
func UsingLexiconSources(positive, negative string) LexiconOpt {
	return func(s *LexiconStore) {
		s.positiveSource = positive
		s.negativeSource = negative
	}
}

// UsingHTTPClient sets the client used for remote sources.
func UsingHTTPClient(c *http.Client) LexiconOpt {
	return func(s *LexiconStore) {
		s.client = c
	}
}

// WithLexiconTimeout bounds each remote fetch.
func WithLexiconTimeout(d time.Duration) LexiconOpt {
	return func(s *LexiconStore) {
		s.client = &http.Client{Timeout: d}
	}
}

// WithLexiconLogger sets the logger that receives load warnings.
func WithLexiconLogger(l *zap.Logger) LexiconOpt {
	return func(s *LexiconStore) {
		s.logger = l
	}
}

// NewLexiconStore returns a store reading the default sources.
func NewLexiconStore(opts ...LexiconOpt) *LexiconStore {
	s := &LexiconStore{
		positiveSource: DefaultPositiveLexiconURL,
		negativeSource: DefaultNegativeLexiconURL,
		client:         &http.Client{Timeout: DefaultLexiconTimeout},
		logger:         zap.NewNop(),
	}
	for _, applyOpt := range opts {
		applyOpt(s)
	}
	return s
}

// Load returns the lexicon. A table that cannot be fetched comes back empty
// and is reported in warnings rather than as an error, so scoring can go on
// with a degraded lexicon. Failed tables are retried on the next call.
func (s *LexiconStore) Load(ctx context.Context) (LexiconTable, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var warnings []string
	if s.positive == nil {
		table, err := s.fetch(ctx, s.positiveSource)
		if err != nil {
			warnings = append(warnings, s.warn("positive", s.positiveSource, err))
		} else {
			s.positive = table
		}
	}
	if s.negative == nil {
		table, err := s.fetch(ctx, s.negativeSource)
		if err != nil {
			warnings = append(warnings, s.warn("negative", s.negativeSource, err))
		} else {
			s.negative = table
		}
	}

	return LexiconTable{
		Positive: orEmpty(s.positive),
		Negative: orEmpty(s.negative),
	}, warnings
}

func (s *LexiconStore) warn(polarity, source string, err error) string {
	s.logger.Warn("lexicon unavailable, continuing with an empty table",
		zap.String("polarity", polarity),
		zap.String("source", source),
		zap.Error(err))
	return fmt.Sprintf("failed to load %s lexicon from %s: %v", polarity, source, err)
}

func (s *LexiconStore) fetch(ctx context.Context, source string) (map[string]int, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, errors.Wrap(err, "open lexicon")
		}
		defer f.Close()
		return ParseLexicon(f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build lexicon request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch lexicon")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch lexicon: unexpected status %s", resp.Status)
	}
	return ParseLexicon(resp.Body)
}

// ParseLexicon reads comma-separated (word, weight) rows. Rows with fewer than
// two fields or a weight that is not an integer are skipped.
func ParseLexicon(r io.Reader) (map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := make(map[string]int)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parse lexicon")
		}
		if len(row) < 2 {
			continue
		}
		weight, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		table[row[0]] = weight
	}
	return table, nil
}

func orEmpty(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
