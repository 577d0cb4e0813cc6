// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package results persists run summaries in PostgreSQL so runs against the
// same environment can be compared over time.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tixload/cli/internal/loadrun"
	"tixload/cli/internal/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StepRow is the stored form of one step's totals.
type StepRow struct {
	Name   string `json:"name"`
	Total  int64  `json:"total"`
	Errors int64  `json:"errors"`
}

// RunSummary is one finished run.
type RunSummary struct {
	ID          uuid.UUID
	Scenario    string
	BaseURL     string
	EventID     string
	StartedAt   time.Time
	Elapsed     time.Duration
	VUs         int
	Iterations  int64
	Failed      int64
	StepSamples int64
	StepErrors  int64
	MeanFlow    time.Duration
	MaxFlow     time.Duration
	Steps       []StepRow
}

// ErrorRate is the share of failed step samples.
func (r RunSummary) ErrorRate() float64 {
	if r.StepSamples == 0 {
		return 0
	}
	return float64(r.StepErrors) / float64(r.StepSamples)
}

// NewRunSummary assembles a summary from the runner report and the recorded totals.
func NewRunSummary(scenario, baseURL, eventID string, vus int, rep loadrun.Report, snap metrics.Snapshot) RunSummary {
	steps := make([]StepRow, 0, len(snap.Steps))
	for _, s := range snap.Steps {
		steps = append(steps, StepRow{Name: s.Name, Total: s.Total, Errors: s.Errors})
	}
	return RunSummary{
		ID:          uuid.New(),
		Scenario:    scenario,
		BaseURL:     baseURL,
		EventID:     eventID,
		StartedAt:   rep.Started,
		Elapsed:     rep.Elapsed,
		VUs:         vus,
		Iterations:  rep.Iterations,
		Failed:      rep.Failed,
		StepSamples: snap.StepSamples,
		StepErrors:  snap.StepErrors,
		MeanFlow:    snap.MeanFlow,
		MaxFlow:     snap.MaxFlow,
		Steps:       steps,
	}
}

// Store reads and writes run summaries.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the results database and verifies the connection.
func Open(ctx context.Context, rawDSN string) (*Store, error) {
	dsn, err := NormalizeDSN(rawDSN)
	if err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, &DSNError{Reason: err.Error()}
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect results database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping results database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS tixload_runs (
	id           uuid PRIMARY KEY,
	scenario     text        NOT NULL,
	base_url     text        NOT NULL,
	event_id     text        NOT NULL,
	started_at   timestamptz NOT NULL,
	elapsed_ms   bigint      NOT NULL,
	vus          integer     NOT NULL,
	iterations   bigint      NOT NULL,
	failed       bigint      NOT NULL,
	step_samples bigint      NOT NULL,
	step_errors  bigint      NOT NULL,
	mean_flow_ms bigint      NOT NULL,
	max_flow_ms  bigint      NOT NULL,
	steps        jsonb       NOT NULL DEFAULT '[]'
)`

const startedIndex = `CREATE INDEX IF NOT EXISTS tixload_runs_started_at ON tixload_runs (started_at DESC)`

// Migrate creates the runs table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range []string{schema, startedIndex} {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate results schema: %w", err)
		}
	}
	return nil
}

// Save inserts r.
func (s *Store) Save(ctx context.Context, r RunSummary) error {
	steps, err := json.Marshal(r.Steps)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO tixload_runs (id, scenario, base_url, event_id, started_at, elapsed_ms, vus,
	iterations, failed, step_samples, step_errors, mean_flow_ms, max_flow_ms, steps)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14::jsonb)`,
		r.ID.String(), r.Scenario, r.BaseURL, r.EventID, r.StartedAt, r.Elapsed.Milliseconds(), r.VUs,
		r.Iterations, r.Failed, r.StepSamples, r.StepErrors, r.MeanFlow.Milliseconds(), r.MaxFlow.Milliseconds(), string(steps),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
SELECT id::text, scenario, base_url, event_id, started_at, elapsed_ms, vus,
	iterations, failed, step_samples, step_errors, mean_flow_ms, max_flow_ms, steps::text
FROM tixload_runs
ORDER BY started_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return pgx.CollectRows(rows, scanRun)
}

func scanRun(row pgx.CollectableRow) (RunSummary, error) {
	var (
		r                      RunSummary
		id, steps              string
		elapsed, mean, maxFlow int64
	)
	err := row.Scan(&id, &r.Scenario, &r.BaseURL, &r.EventID, &r.StartedAt, &elapsed, &r.VUs,
		&r.Iterations, &r.Failed, &r.StepSamples, &r.StepErrors, &mean, &maxFlow, &steps)
	if err != nil {
		return RunSummary{}, err
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return RunSummary{}, err
	}
	if err := json.Unmarshal([]byte(steps), &r.Steps); err != nil {
		return RunSummary{}, fmt.Errorf("run %s steps: %w", id, err)
	}
	r.Elapsed = time.Duration(elapsed) * time.Millisecond
	r.MeanFlow = time.Duration(mean) * time.Millisecond
	r.MaxFlow = time.Duration(maxFlow) * time.Millisecond
	return r, nil
}
