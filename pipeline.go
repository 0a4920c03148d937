package ulasan

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// A PipelineOpt configures a Pipeline.
type PipelineOpt func(p *Pipeline)

// WithLogger sets the logger shared by every component of the pipeline.
func WithLogger(l *zap.Logger) PipelineOpt {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithLexiconStore replaces the store built from the lexicon config.
func WithLexiconStore(s *LexiconStore) PipelineOpt {
	return func(p *Pipeline) {
		p.lexicons = s
	}
}

// WithLexiconTable skips fetching and scores with table.
func WithLexiconTable(table LexiconTable) PipelineOpt {
	return func(p *Pipeline) {
		p.table = &table
	}
}

// WithNormalizer replaces the normalizer named by the config.
func WithNormalizer(n *Normalizer) PipelineOpt {
	return func(p *Pipeline) {
		p.normalizer = n
	}
}

// Pipeline runs labeling, training and evaluation over a review table.
type Pipeline struct {
	cfg        Config
	logger     *zap.Logger
	normalizer *Normalizer
	lexicons   *LexiconStore
	table      *LexiconTable
}

// NewPipeline validates cfg and returns a Pipeline.
func NewPipeline(cfg Config, opts ...PipelineOpt) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{cfg: cfg, logger: zap.NewNop()}
	for _, applyOpt := range opts {
		applyOpt(p)
	}
	if p.normalizer == nil {
		nc, err := NormalizerConfigByName(cfg.Normalizer)
		if err != nil {
			return nil, err
		}
		p.normalizer = NewNormalizer(nc)
	}
	if p.lexicons == nil {
		p.lexicons = NewLexiconStore(
			UsingLexiconSources(cfg.Lexicon.Positive, cfg.Lexicon.Negative),
			WithLexiconTimeout(cfg.Lexicon.Timeout),
			WithLexiconLogger(p.logger.Named("lexicon")),
		)
	}
	return p, nil
}

// Normalizer returns the normalizer applied to every review.
func (p *Pipeline) Normalizer() *Normalizer {
	return p.normalizer
}

// LabelResult is the output of labeling without training.
type LabelResult struct {
	Dataset  LabeledDataset
	Report   PreparationReport
	Warnings []string
}

// Label cleans, normalizes and scores the reviews read from r.
func (p *Pipeline) Label(ctx context.Context, r io.Reader) (*LabelResult, error) {
	table, warnings := p.lexicon(ctx)
	preparer := NewDatasetPreparer(p.normalizer, NewPolarityScorer(table), p.cfg.Dataset, p.logger.Named("dataset"))
	dataset, report, err := preparer.Prepare(r)
	if err != nil {
		return nil, err
	}
	return &LabelResult{Dataset: dataset, Report: report, Warnings: warnings}, nil
}

func (p *Pipeline) lexicon(ctx context.Context) (LexiconTable, []string) {
	if p.table != nil {
		return *p.table, nil
	}
	return p.lexicons.Load(ctx)
}

// RunResult is everything a completed run produced.
type RunResult struct {
	Normalizer  string
	Report      PreparationReport
	Dataset     LabeledDataset
	Split       Split
	Encoder     *LabelEncoder
	SVM         *SVMTrainingResult
	Reduced     *ReducedTrainingResult
	Evaluations []EvaluationReport
	Comparison  Comparison
	Warnings    []string
	Duration    time.Duration
}

// Run labels the reviews read from r, trains both model tracks on the
// training partition and evaluates them on the held-out partition. A panic
// anywhere in the run is logged and returned as ErrInternal.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (res *RunResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Error("run panicked", zap.Any("panic", rec), zap.Stack("stack"))
			res, err = nil, errors.Wrapf(ErrInternal, "%v", rec)
		}
	}()
	start := time.Now()

	labeled, err := p.Label(ctx, r)
	if err != nil {
		return nil, err
	}
	dataset := labeled.Dataset

	enc := FitLabelEncoder(dataset.Labels())
	split, err := SplitDataset(dataset, p.cfg.Dataset.TestSize, p.cfg.Dataset.Seed)
	if err != nil {
		return nil, err
	}
	yTrain, err := enc.Transform(split.Train.Labels())
	if err != nil {
		return nil, err
	}
	yTest, err := enc.Transform(split.Test.Labels())
	if err != nil {
		return nil, err
	}
	p.logger.Info("dataset split",
		zap.Int("train", split.Train.Len()),
		zap.Int("test", split.Test.Len()),
		zap.Bool("stratified", split.Stratified),
		zap.Strings("classes", enc.Classes))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trainTexts := split.Train.Texts()
	svm, err := NewSVMTrainer(p.cfg.SVM, p.cfg.Search, p.logger).Train(ctx, trainTexts, yTrain, enc.Len())
	if err != nil {
		return nil, err
	}
	reduced, err := NewReducedTrainer(p.cfg.Reduced, p.cfg.Search, p.logger).Train(ctx, trainTexts, yTrain, enc.Len())
	if err != nil {
		return nil, err
	}

	testTexts := split.Test.Texts()
	var reports []EvaluationReport
	for _, m := range []TrainedModel{svm.Model, reduced.Model} {
		report := Evaluate(m.Kind(), yTest, m.Predict(testTexts), enc)
		p.logger.Info("model evaluated",
			zap.Stringer("model", m.Kind()),
			zap.Float64("accuracy", report.Accuracy),
			zap.Float64("f1", report.F1))
		reports = append(reports, report)
	}
	cmp := Compare(reports...)
	p.logger.Info("run finished",
		zap.Stringer("winner", cmp.Winner),
		zap.Float64("margin", cmp.Margin),
		zap.Duration("elapsed", time.Since(start)))

	return &RunResult{
		Normalizer:  p.normalizer.Name(),
		Report:      labeled.Report,
		Dataset:     dataset,
		Split:       split,
		Encoder:     enc,
		SVM:         svm,
		Reduced:     reduced,
		Evaluations: reports,
		Comparison:  cmp,
		Warnings:    labeled.Warnings,
		Duration:    time.Since(start),
	}, nil
}

// WriteLabeledCSV writes the labeled dataset to w.
func (r *RunResult) WriteLabeledCSV(w io.Writer) error {
	return r.Dataset.WriteCSV(w)
}

// Artifacts returns the persistable outputs of the run.
func (r *RunResult) Artifacts() Artifacts {
	a := Artifacts{Encoder: r.Encoder}
	if r.SVM != nil && r.SVM.Model != nil {
		a.SVM = r.SVM.Model.Classifier
		a.Vectorizer = r.SVM.Model.Vectorizer
	}
	if r.Reduced != nil {
		a.Pipeline = r.Reduced.Model
	}
	return a
}

// SaveArtifacts writes the run's artifacts to dir.
func (r *RunResult) SaveArtifacts(dir string) error {
	return r.Artifacts().Write(dir)
}
