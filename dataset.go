package ulasan

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// missingValues are the cell spellings treated as missing.
var missingValues = []string{"", "NA", "NaN", "nan", "null", "<nil>"}

// LabeledColumns is the column order of a labeled dataset export.
var LabeledColumns = []string{
	"content", "cleaned_text", "lowercased_text", "normalized_text",
	"final_text", "polarity_score", "polarity",
}

// PreparationReport summarizes what the preparer removed and produced.
type PreparationReport struct {
	InitialRows    int
	DroppedColumns []string
	MissingRows    int // Rows dropped for a missing value.
	DuplicateRows  int // Rows dropped as exact duplicates.
	CleanedRows    int
	LabelCounts    map[Polarity]int
}

// DatasetPreparer cleans a raw review table and labels every row.
type DatasetPreparer struct {
	normalizer *Normalizer
	scorer     *PolarityScorer
	cfg        DatasetConfig
	logger     *zap.Logger
}

// NewDatasetPreparer returns a preparer. A nil logger disables logging.
func NewDatasetPreparer(n *Normalizer, s *PolarityScorer, cfg DatasetConfig, logger *zap.Logger) *DatasetPreparer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ContentColumn == "" {
		cfg.ContentColumn = "content"
	}
	return &DatasetPreparer{normalizer: n, scorer: s, cfg: cfg, logger: logger}
}

// Prepare reads a CSV table, drops the configured columns, rows with any
// missing value and exact duplicate rows, then normalizes and scores the
// content of every remaining row.
func (p *DatasetPreparer) Prepare(r io.Reader) (LabeledDataset, PreparationReport, error) {
	var report PreparationReport

	raw, err := io.ReadAll(r)
	if err != nil {
		return LabeledDataset{}, report, fmt.Errorf("%w: %w", ErrUnreadableInput, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return LabeledDataset{}, report, ErrEmptyDataset
	}

	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return LabeledDataset{}, report, fmt.Errorf("%w: %w", ErrUnreadableInput, df.Err)
	}
	report.InitialRows = df.Nrow()

	names := df.Names()
	if !contains(names, p.cfg.ContentColumn) {
		return LabeledDataset{}, report, errors.Wrapf(ErrMissingColumn, "%q not in %v", p.cfg.ContentColumn, names)
	}
	for _, col := range p.cfg.DropColumns {
		if col != p.cfg.ContentColumn && contains(names, col) {
			report.DroppedColumns = append(report.DroppedColumns, col)
		}
	}
	if len(report.DroppedColumns) > 0 {
		df = df.Drop(report.DroppedColumns)
		if df.Err != nil {
			return LabeledDataset{}, report, errors.Wrap(df.Err, "drop columns")
		}
	}

	kept := p.completeRows(df)
	report.MissingRows = df.Nrow() - len(kept)
	kept = p.uniqueRows(df, kept)
	report.DuplicateRows = df.Nrow() - report.MissingRows - len(kept)
	if len(kept) == 0 {
		return LabeledDataset{}, report, errors.Wrap(ErrEmptyDataset, "no rows left after cleaning")
	}

	df = df.Subset(kept)
	if df.Err != nil {
		return LabeledDataset{}, report, errors.Wrap(df.Err, "subset rows")
	}
	report.CleanedRows = df.Nrow()

	dataset := p.label(df)
	report.LabelCounts = dataset.LabelCounts()

	p.logger.Info("dataset prepared",
		zap.Int("initial_rows", report.InitialRows),
		zap.Int("cleaned_rows", report.CleanedRows),
		zap.Int("missing_rows", report.MissingRows),
		zap.Int("duplicate_rows", report.DuplicateRows),
		zap.Strings("dropped_columns", report.DroppedColumns))
	return dataset, report, nil
}

// completeRows returns the indexes of rows without a missing value. Cells
// holding only whitespace are present.
func (p *DatasetPreparer) completeRows(df dataframe.DataFrame) []int {
	missing := make([]bool, df.Nrow())
	for _, name := range df.Names() {
		col := df.Col(name)
		records := col.Records()
		for i, isNaN := range col.IsNaN() {
			if isNaN || records[i] == "" {
				missing[i] = true
			}
		}
	}
	var kept []int
	for i, m := range missing {
		if !m {
			kept = append(kept, i)
		}
	}
	return kept
}

// uniqueRows keeps the first occurrence of each distinct row.
func (p *DatasetPreparer) uniqueRows(df dataframe.DataFrame, rows []int) []int {
	records := df.Records()[1:]
	seen := make(map[string]bool, len(rows))
	var kept []int
	for _, i := range rows {
		key := strings.Join(records[i], "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, i)
	}
	return kept
}

func (p *DatasetPreparer) label(df dataframe.DataFrame) LabeledDataset {
	names := df.Names()
	records := df.Records()[1:]
	contentIdx := indexOf(names, p.cfg.ContentColumn)

	dataset := LabeledDataset{Reviews: make([]LabeledReview, 0, len(records))}
	for _, rec := range records {
		review := Review{Content: rec[contentIdx]}
		if len(names) > 1 {
			review.Fields = make(map[string]string, len(names)-1)
			for j, name := range names {
				if j != contentIdx {
					review.Fields[name] = rec[j]
				}
			}
		}
		normalized := p.normalizer.Normalize(review)
		dataset.Reviews = append(dataset.Reviews, LabeledReview{
			NormalizedReview: normalized,
			Polarity:         p.scorer.Score(normalized.FilteredTokens),
		})
	}
	return dataset
}

// WriteCSV exports d with the LabeledColumns layout.
func (d LabeledDataset) WriteCSV(w io.Writer) error {
	n := d.Len()
	content := make([]string, n)
	cleaned := make([]string, n)
	lowered := make([]string, n)
	normalized := make([]string, n)
	final := make([]string, n)
	scores := make([]int, n)
	labels := make([]string, n)
	for i, r := range d.Reviews {
		content[i] = r.Content
		cleaned[i] = r.CleanedText
		lowered[i] = r.LowercasedText
		normalized[i] = r.NormalizedText
		final[i] = r.FinalText
		scores[i] = r.Polarity.Score
		labels[i] = string(r.Polarity.Label)
	}

	df := dataframe.New(
		series.New(content, series.String, LabeledColumns[0]),
		series.New(cleaned, series.String, LabeledColumns[1]),
		series.New(lowered, series.String, LabeledColumns[2]),
		series.New(normalized, series.String, LabeledColumns[3]),
		series.New(final, series.String, LabeledColumns[4]),
		series.New(scores, series.Int, LabeledColumns[5]),
		series.New(labels, series.String, LabeledColumns[6]),
	)
	if df.Err != nil {
		return errors.Wrap(df.Err, "build labeled table")
	}
	return errors.Wrap(df.WriteCSV(w), "write labeled table")
}

func contains(list []string, s string) bool {
	return indexOf(list, s) >= 0
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
