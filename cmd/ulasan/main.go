package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/ulasan"
)

var (
	configPath string
	verbose    bool
	logger     = zap.NewNop()
)

func loadConfig() (ulasan.Config, error) {
	if configPath == "" {
		cfg := ulasan.DefaultConfig()
		return cfg, cfg.Validate()
	}
	return ulasan.LoadConfig(configPath)
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize TEXT",
		Short: "print every normalization stage of a text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			nc, err := ulasan.NormalizerConfigByName(cfg.Normalizer)
			if err != nil {
				return err
			}
			r := ulasan.NewNormalizer(nc).NormalizeText(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cleaned:    %s\n", r.CleanedText)
			fmt.Fprintf(out, "lowercased: %s\n", r.LowercasedText)
			fmt.Fprintf(out, "normalized: %s\n", r.NormalizedText)
			fmt.Fprintf(out, "tokens:     %q\n", r.Tokens)
			fmt.Fprintf(out, "filtered:   %q\n", r.FilteredTokens)
			fmt.Fprintf(out, "final:      %s\n", r.FinalText)
			return nil
		},
	}
}

func labelCmd() *cobra.Command {
	var input, output string

	cmd := cobra.Command{
		Use:   "label",
		Short: "clean, normalize and label a review table without training",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := ulasan.NewPipeline(cfg, ulasan.WithLogger(logger))
			if err != nil {
				return err
			}
			in, err := openInput(input)
			if err != nil {
				return err
			}
			defer in.Close()

			res, err := p.Label(cmd.Context(), in)
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), res.Warnings)
			printReport(cmd.ErrOrStderr(), res.Report)

			out, err := createOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()
			return res.Dataset.WriteCSV(out)
		},
	}
	cmd.Flags().StringVar(&input, "input", "-", "review CSV with a content column")
	cmd.Flags().StringVar(&output, "output", "-", "labeled CSV destination")
	return &cmd
}

func trainCmd() *cobra.Command {
	var input, output, artifacts, db string

	cmd := cobra.Command{
		Use:   "train",
		Short: "label a review table, train both models and compare them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := ulasan.NewPipeline(cfg, ulasan.WithLogger(logger))
			if err != nil {
				return err
			}
			in, err := openInput(input)
			if err != nil {
				return err
			}
			defer in.Close()

			res, err := p.Run(cmd.Context(), in)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			printWarnings(cmd.ErrOrStderr(), res.Warnings)
			printReport(stdout, res.Report)
			printRun(stdout, res)

			if output != "" {
				out, err := createOutput(output)
				if err != nil {
					return err
				}
				defer out.Close()
				if err := res.WriteLabeledCSV(out); err != nil {
					return err
				}
			}
			if artifacts != "" {
				if err := res.SaveArtifacts(artifacts); err != nil {
					return err
				}
				fmt.Fprintf(stdout, "artifacts written to %s\n", artifacts)
			}
			if db != "" {
				store, err := ulasan.OpenRunStore(cmd.Context(), db)
				if err != nil {
					return err
				}
				defer store.Close()
				id, err := store.SaveRun(cmd.Context(), res)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "run %s stored in %s\n", id, db)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "-", "review CSV with a content column")
	cmd.Flags().StringVar(&output, "output", "", "write the labeled CSV here")
	cmd.Flags().StringVar(&artifacts, "artifacts", "", "write model artifacts to this directory")
	cmd.Flags().StringVar(&db, "db", "", "record the run in this SQLite database")
	return &cmd
}

func predictCmd() *cobra.Command {
	var artifacts, model string

	cmd := cobra.Command{
		Use:   "predict TEXT",
		Short: "classify a text with saved artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := ulasan.ParseModelKind(model)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			nc, err := ulasan.NormalizerConfigByName(cfg.Normalizer)
			if err != nil {
				return err
			}
			a, err := ulasan.LoadArtifacts(artifacts)
			if err != nil {
				return err
			}

			predictor := ulasan.NewPredictor(ulasan.NewNormalizer(nc), a.Encoder, a.Models()...)
			pred, err := predictor.Predict(kind, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model:      %s\n", pred.Model)
			fmt.Fprintf(out, "normalized: %s\n", pred.NormalizedText)
			fmt.Fprintf(out, "label:      %s\n", pred.Label)
			for _, class := range a.Encoder.Classes {
				fmt.Fprintf(out, "  %-10s %.4f\n", class, pred.Probabilities[class])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&artifacts, "artifacts", "artifacts", "directory holding saved artifacts")
	cmd.Flags().StringVar(&model, "model", "svm", "model to use: svm or reduced")
	return &cmd
}

func evaluateCmd() *cobra.Command {
	var input, artifacts string

	cmd := cobra.Command{
		Use:   "evaluate",
		Short: "label a review table and score saved artifacts on its held-out split",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := ulasan.LoadArtifacts(artifacts)
			if err != nil {
				return err
			}
			p, err := ulasan.NewPipeline(cfg, ulasan.WithLogger(logger))
			if err != nil {
				return err
			}
			in, err := openInput(input)
			if err != nil {
				return err
			}
			defer in.Close()

			labeled, err := p.Label(cmd.Context(), in)
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), labeled.Warnings)

			res, err := ulasan.EvaluateArtifacts(a, labeled.Dataset, cfg.Dataset.TestSize, cfg.Dataset.Seed)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printReport(out, labeled.Report)
			fmt.Fprintf(out, "evaluated on %s held-out rows\n", humanize.Comma(int64(res.Split.Test.Len())))
			printEvaluations(out, res.Evaluations, res.Comparison)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "-", "review CSV with a content column")
	cmd.Flags().StringVar(&artifacts, "artifacts", "artifacts", "directory holding saved artifacts")
	return &cmd
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
}

func printReport(w io.Writer, r ulasan.PreparationReport) {
	fmt.Fprintf(w, "rows: %s read, %s missing, %s duplicate, %s kept\n",
		humanize.Comma(int64(r.InitialRows)),
		humanize.Comma(int64(r.MissingRows)),
		humanize.Comma(int64(r.DuplicateRows)),
		humanize.Comma(int64(r.CleanedRows)))
	if len(r.DroppedColumns) > 0 {
		fmt.Fprintf(w, "dropped columns: %s\n", strings.Join(r.DroppedColumns, ", "))
	}

	labels := make([]string, 0, len(r.LabelCounts))
	for l := range r.LabelCounts {
		labels = append(labels, string(l))
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(w, "  %-10s %s\n", l, humanize.Comma(int64(r.LabelCounts[ulasan.Polarity(l)])))
	}
}

func printRun(w io.Writer, res *ulasan.RunResult) {
	fmt.Fprintf(w, "split: %s train, %s test (stratified=%t)\n",
		humanize.Comma(int64(res.Split.Train.Len())),
		humanize.Comma(int64(res.Split.Test.Len())),
		res.Split.Stratified)
	fmt.Fprintf(w, "svm best params: C=%g class_weight=%s (cv f1 %.4f)\n",
		res.SVM.Params.C, res.SVM.Params.ClassWeight, res.SVM.Search.Best().Mean)
	fmt.Fprintf(w, "reduced best params: k=%d n_components=%d C=%g (cv f1 %.4f, vocabulary %s)\n",
		res.Reduced.Params.K, res.Reduced.Params.NComponents, res.Reduced.Params.C,
		res.Reduced.Search.Best().Mean, humanize.Comma(int64(res.Reduced.VocabularySize)))

	printEvaluations(w, res.Evaluations, res.Comparison)
}

func printEvaluations(w io.Writer, evals []ulasan.EvaluationReport, cmp ulasan.Comparison) {
	for _, ev := range evals {
		fmt.Fprintf(w, "\n%s: accuracy %.4f precision %.4f recall %.4f f1 %.4f\n",
			ev.Model, ev.Accuracy, ev.Precision, ev.Recall, ev.F1)
		fmt.Fprintf(w, "  %-10s %s\n", "", strings.Join(ev.Classes, " "))
		for i, row := range ev.Confusion {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = fmt.Sprintf("%*d", len(ev.Classes[j]), v)
			}
			fmt.Fprintf(w, "  %-10s %s\n", ev.Classes[i], strings.Join(cells, " "))
		}
	}
	fmt.Fprintf(w, "\nwinner: %s (margin %.4f)\n", cmp.Winner, cmp.Margin)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ulasan",
		Short:         "sentiment labeling and classification for Indonesian app reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger()
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "development logging")

	rootCmd.AddCommand(normalizeCmd())
	rootCmd.AddCommand(labelCmd())
	rootCmd.AddCommand(trainCmd())
	rootCmd.AddCommand(predictCmd())
	rootCmd.AddCommand(evaluateCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	logger.Sync()
	fail(err)
}

func fail(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "ulasan:", err)
		os.Exit(1)
	}
}
