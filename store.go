package ulasan

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// RunStore records runs, their labeled rows and evaluation reports in
// SQLite.
type RunStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// RunRecord is one stored run.
type RunRecord struct {
	ID         string
	CreatedAt  time.Time
	Normalizer string
	Rows       int
	TrainRows  int
	TestRows   int
	Winner     string
}

// OpenRunStore opens or creates the database at path.
func OpenRunStore(ctx context.Context, path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open run store")
	}

	// A single connection keeps in-memory databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable WAL")
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	if err := initRunSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &RunStore{db: db, entropy: ulid.Monotonic(rand.Reader, 0)}, nil
}

func initRunSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	normalizer TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	train_rows INTEGER NOT NULL,
	test_rows INTEGER NOT NULL,
	winner TEXT
);

CREATE TABLE IF NOT EXISTS labeled_reviews (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	content TEXT NOT NULL,
	final_text TEXT NOT NULL,
	polarity_score INTEGER NOT NULL,
	polarity TEXT NOT NULL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS evaluations (
	run_id TEXT NOT NULL,
	model TEXT NOT NULL,
	accuracy REAL NOT NULL,
	precision REAL NOT NULL,
	recall REAL NOT NULL,
	f1 REAL NOT NULL,
	classes_json TEXT NOT NULL,
	confusion_json TEXT NOT NULL,
	PRIMARY KEY(run_id, model),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return errors.Wrap(err, "init run schema")
}

// Close closes the database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// SaveRun stores the labeled dataset and evaluations of res in a single
// transaction and returns the new run id.
func (s *RunStore) SaveRun(ctx context.Context, res *RunResult) (string, error) {
	now := time.Now().UTC()
	id := s.newID(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	winner := ""
	if len(res.Evaluations) > 0 {
		winner = res.Comparison.Winner.String()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, normalizer, row_count, train_rows, test_rows, winner) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, now.Format(time.RFC3339Nano), res.Normalizer, res.Dataset.Len(),
		res.Split.Train.Len(), res.Split.Test.Len(), winner)
	if err != nil {
		return "", errors.Wrap(err, "insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO labeled_reviews (run_id, position, content, final_text, polarity_score, polarity) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "prepare labeled insert")
	}
	defer stmt.Close()
	for i, r := range res.Dataset.Reviews {
		if _, err := stmt.ExecContext(ctx, id, i, r.Content, r.FinalText, r.Polarity.Score, string(r.Polarity.Label)); err != nil {
			return "", errors.Wrapf(err, "insert labeled row %d", i)
		}
	}

	for _, ev := range res.Evaluations {
		classes, err := json.Marshal(ev.Classes)
		if err != nil {
			return "", errors.Wrap(err, "marshal classes")
		}
		confusion, err := json.Marshal(ev.Confusion)
		if err != nil {
			return "", errors.Wrap(err, "marshal confusion matrix")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO evaluations (run_id, model, accuracy, precision, recall, f1, classes_json, confusion_json) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ev.Model.String(), ev.Accuracy, ev.Precision, ev.Recall, ev.F1, string(classes), string(confusion))
		if err != nil {
			return "", errors.Wrapf(err, "insert %s evaluation", ev.Model)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit run")
	}
	return id, nil
}

// Runs lists stored runs, newest first.
func (s *RunStore) Runs(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, normalizer, row_count, train_rows, test_rows, COALESCE(winner, '') FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec     RunRecord
			created string
		)
		if err := rows.Scan(&rec.ID, &created, &rec.Normalizer, &rec.Rows, &rec.TrainRows, &rec.TestRows, &rec.Winner); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Evaluations returns the stored reports of a run, in model order.
func (s *RunStore) Evaluations(ctx context.Context, runID string) ([]EvaluationReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model, accuracy, precision, recall, f1, classes_json, confusion_json FROM evaluations WHERE run_id = ?`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query evaluations")
	}
	defer rows.Close()

	var out []EvaluationReport
	for rows.Next() {
		var (
			ev                 EvaluationReport
			model              string
			classes, confusion string
		)
		if err := rows.Scan(&model, &ev.Accuracy, &ev.Precision, &ev.Recall, &ev.F1, &classes, &confusion); err != nil {
			return nil, errors.Wrap(err, "scan evaluation")
		}
		if ev.Model, err = ParseModelKind(model); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(classes), &ev.Classes); err != nil {
			return nil, errors.Wrap(err, "decode classes")
		}
		if err := json.Unmarshal([]byte(confusion), &ev.Confusion); err != nil {
			return nil, errors.Wrap(err, "decode confusion matrix")
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortReports(out)
	return out, nil
}

func sortReports(reports []EvaluationReport) {
	sort.Slice(reports, func(i, j int) bool { return reports[i].Model < reports[j].Model })
}

// LabeledReviews returns the labeled rows of a run in their original order.
// Only the stored columns are populated.
func (s *RunStore) LabeledReviews(ctx context.Context, runID string) ([]LabeledReview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content, final_text, polarity_score, polarity FROM labeled_reviews WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query labeled reviews")
	}
	defer rows.Close()

	var out []LabeledReview
	for rows.Next() {
		var (
			r     LabeledReview
			label string
		)
		if err := rows.Scan(&r.Content, &r.FinalText, &r.Polarity.Score, &label); err != nil {
			return nil, errors.Wrap(err, "scan labeled review")
		}
		r.Polarity.Label = Polarity(label)
		out = append(out, r)
	}
	return out, rows.Err()
}
