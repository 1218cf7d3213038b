package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/schema"
)

// RunRecord is one row of the runs index
type RunRecord struct {
	RunID        string  `json:"run_id"`
	StartedAt    string  `json:"started_at"`
	FinishedAt   *string `json:"finished_at"`
	Inputs       string  `json:"inputs"`
	SourceCount  int     `json:"source_count"`
	FindingCount int     `json:"finding_count"`
	WarningCount int     `json:"warning_count"`
	Cancelled    bool    `json:"cancelled"`
	RunDir       string  `json:"run_dir"`
}

// RecordFromManifest summarizes a finished run for the index
func RecordFromManifest(m schema.RunManifest, findings int, runDir string) (RunRecord, error) {
	inputs, err := json.Marshal(m.Inputs)
	if err != nil {
		return RunRecord{}, errors.Wrap(err, "encode run inputs")
	}
	return RunRecord{
		RunID:        m.RunID,
		StartedAt:    m.StartedAt,
		FinishedAt:   m.FinishedAt,
		Inputs:       string(inputs),
		SourceCount:  len(m.Sources),
		FindingCount: findings,
		WarningCount: len(m.Warnings),
		Cancelled:    m.Cancelled,
		RunDir:       runDir,
	}, nil
}

// RunStore reads and writes the runs index
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a store over a migrated database
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// RecordRun inserts the run, replacing any earlier row with the same id
func (s *RunStore) RecordRun(ctx context.Context, rec RunRecord) error {
	if rec.RunID == "" {
		return errors.NewInvalidInputError("run record has no run_id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, finished_at, inputs, source_count, finding_count, warning_count, cancelled, run_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			inputs = excluded.inputs,
			source_count = excluded.source_count,
			finding_count = excluded.finding_count,
			warning_count = excluded.warning_count,
			cancelled = excluded.cancelled,
			run_dir = excluded.run_dir`,
		rec.RunID, rec.StartedAt, rec.FinishedAt, rec.Inputs,
		rec.SourceCount, rec.FindingCount, rec.WarningCount, rec.Cancelled, rec.RunDir,
	)
	if err != nil {
		return errors.Wrapf(err, "record run %s", rec.RunID)
	}
	return nil
}

const runColumns = `run_id, started_at, finished_at, inputs, source_count, finding_count, warning_count, cancelled, run_dir`

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate runs")
	}
	return runs, nil
}

// GetRun returns one run, or an error matching errors.ErrNotFound
func (s *RunStore) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("run %s", runID)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (RunRecord, error) {
	var (
		rec      RunRecord
		finished sql.NullString
	)
	err := row.Scan(&rec.RunID, &rec.StartedAt, &finished, &rec.Inputs,
		&rec.SourceCount, &rec.FindingCount, &rec.WarningCount, &rec.Cancelled, &rec.RunDir)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, errors.Wrap(err, "scan run")
	}
	if finished.Valid {
		rec.FinishedAt = &finished.String
	}
	return rec, nil
}
