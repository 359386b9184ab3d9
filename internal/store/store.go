// Package store persists training and evaluation history to SQLite. The
// simulation core never touches it; the trainer and evaluator write runs and
// episodes, the dashboard reads them back.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/openlaps/driftsim/internal/train"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	run_id            TEXT PRIMARY KEY,
	kind              TEXT NOT NULL,
	config_json       TEXT,
	created_unix_nanos INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS episodes (
	episode_id        TEXT PRIMARY KEY,
	run_id            TEXT NOT NULL,
	seq               INTEGER NOT NULL,
	outcome           TEXT NOT NULL,
	total_reward      DOUBLE NOT NULL,
	steps             INTEGER NOT NULL,
	created_unix_nanos INTEGER NOT NULL,
	FOREIGN KEY(run_id) REFERENCES runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_episodes_run ON episodes(run_id, seq);
`

// Store wraps the SQLite connection. Open applies the schema in place; the
// schema is additive-only, so reopening an existing file is safe.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db}, nil
}

// Run is one training or evaluation run.
type Run struct {
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"` // "train", "eval", "check"
	ConfigJSON string    `json:"config_json,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Episode is one recorded episode within a run.
type Episode struct {
	EpisodeID   string    `json:"episode_id"`
	RunID       string    `json:"run_id"`
	Seq         int       `json:"seq"`
	Outcome     string    `json:"outcome"`
	TotalReward float64   `json:"total_reward"`
	Steps       int       `json:"steps"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateRun inserts a new run and returns its generated ID.
func (s *Store) CreateRun(kind string, configJSON []byte) (string, error) {
	runID := uuid.NewString()
	_, err := s.Exec(
		`INSERT INTO runs (run_id, kind, config_json, created_unix_nanos) VALUES (?, ?, ?, ?)`,
		runID, kind, string(configJSON), time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// RecordEpisode appends an episode to a run.
func (s *Store) RecordEpisode(runID string, seq int, outcome string, totalReward float64, steps int) error {
	_, err := s.Exec(
		`INSERT INTO episodes (episode_id, run_id, seq, outcome, total_reward, steps, created_unix_nanos)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), runID, seq, outcome, totalReward, steps, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Query(
		`SELECT run_id, kind, config_json, created_unix_nanos FROM runs ORDER BY created_unix_nanos DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var nanos int64
		var cfg sql.NullString
		if err := rows.Scan(&r.RunID, &r.Kind, &cfg, &nanos); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.ConfigJSON = cfg.String
		r.CreatedAt = time.Unix(0, nanos)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Episodes returns a run's episodes in sequence order.
func (s *Store) Episodes(runID string, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 2000
	}
	rows, err := s.Query(
		`SELECT episode_id, run_id, seq, outcome, total_reward, steps, created_unix_nanos
		 FROM episodes WHERE run_id = ? ORDER BY seq ASC LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		var nanos int64
		if err := rows.Scan(&e.EpisodeID, &e.RunID, &e.Seq, &e.Outcome, &e.TotalReward, &e.Steps, &nanos); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		e.CreatedAt = time.Unix(0, nanos)
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// RunSummary aggregates a run's episodes.
type RunSummary struct {
	RunID       string  `json:"run_id"`
	Episodes    int     `json:"episodes"`
	MeanReward  float64 `json:"mean_reward"`
	BestReward  float64 `json:"best_reward"`
	WorstReward float64 `json:"worst_reward"`
	Finishes    int     `json:"finishes"`
	OffTracks   int     `json:"off_tracks"`
	Timeouts    int     `json:"timeouts"`
}

// Summary computes per-run aggregates in SQL.
func (s *Store) Summary(runID string) (RunSummary, error) {
	row := s.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(AVG(total_reward), 0),
		        COALESCE(MAX(total_reward), 0),
		        COALESCE(MIN(total_reward), 0),
		        COALESCE(SUM(CASE WHEN outcome = 'finish' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN outcome = 'off_track' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN outcome = 'timeout' THEN 1 ELSE 0 END), 0)
		 FROM episodes WHERE run_id = ?`,
		runID,
	)

	summary := RunSummary{RunID: runID}
	err := row.Scan(&summary.Episodes, &summary.MeanReward, &summary.BestReward,
		&summary.WorstReward, &summary.Finishes, &summary.OffTracks, &summary.Timeouts)
	if err != nil {
		return RunSummary{}, fmt.Errorf("scan summary: %w", err)
	}
	return summary, nil
}

// RunSink adapts a Store run to the trainer's EpisodeSink interface,
// numbering episodes as they arrive.
type RunSink struct {
	store *Store
	runID string
	seq   int
}

// NewRunSink creates a sink appending episodes to the given run.
func NewRunSink(s *Store, runID string) *RunSink {
	return &RunSink{store: s, runID: runID}
}

// RecordEpisode implements train.EpisodeSink.
func (rs *RunSink) RecordEpisode(rec train.EpisodeRecord) error {
	rs.seq++
	return rs.store.RecordEpisode(rs.runID, rs.seq, string(rec.Outcome), rec.TotalReward, rec.Steps)
}
