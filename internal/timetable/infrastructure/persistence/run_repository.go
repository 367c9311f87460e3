// Package persistence implements the Run Repository port against the
// shared driver-agnostic database.Connection abstraction, so the same
// queries run unmodified over SQLite (local/dev) or PostgreSQL.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wrenfield/cadence/internal/shared/infrastructure/database"
	"github.com/wrenfield/cadence/internal/timetable/domain"
	"github.com/wrenfield/cadence/internal/timetable/engine"
)

// RunRepository persists terminal engine.RunRecord rows to a
// timetable_runs table. One row is written per finished run (spec §4.8);
// in-flight runs are never visible here, only Started/Progress events
// travel the Progress/Control channel.
type RunRepository struct {
	conn database.Connection
}

// NewRunRepository wraps an already-open connection. Callers on SQLite
// must have applied the embedded timetable_runs migration first; callers
// on PostgreSQL should call EnsureSchema once at startup.
func NewRunRepository(conn database.Connection) *RunRepository {
	return &RunRepository{conn: conn}
}

// EnsureSchema creates the timetable_runs table if it doesn't already
// exist. SQLite installs this table through the shared embedded
// migrations instead; PostgreSQL has no migration runner of its own, so
// callers wire this in at container startup.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if r.conn.Driver() != database.DriverPostgres {
		return nil
	}
	_, err := r.conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS timetable_runs (
    id TEXT PRIMARY KEY,
    requested_at TIMESTAMPTZ NOT NULL,
    algorithm TEXT NOT NULL,
    status TEXT NOT NULL,
    metrics_json JSONB NOT NULL,
    schedule_json JSONB NOT NULL,
    conflicts_json JSONB NOT NULL,
    message TEXT NOT NULL DEFAULT ''
)`)
	if err != nil {
		return fmt.Errorf("ensuring timetable_runs schema: %w", err)
	}
	_, err = r.conn.Exec(ctx, `
CREATE INDEX IF NOT EXISTS idx_timetable_runs_requested_at ON timetable_runs (requested_at DESC)`)
	if err != nil {
		return fmt.Errorf("ensuring timetable_runs index: %w", err)
	}
	return nil
}

// Save upserts a terminal run record.
func (r *RunRepository) Save(ctx context.Context, record *engine.RunRecord) error {
	metricsJSON, err := json.Marshal(record.Metrics)
	if err != nil {
		return fmt.Errorf("marshaling run metrics: %w", err)
	}
	scheduleJSON, err := json.Marshal(assignmentsOf(record.Schedule))
	if err != nil {
		return fmt.Errorf("marshaling run schedule: %w", err)
	}
	conflictsJSON, err := json.Marshal(record.Conflicts)
	if err != nil {
		return fmt.Errorf("marshaling run conflicts: %w", err)
	}

	query := r.rebind(`
INSERT INTO timetable_runs (id, requested_at, algorithm, status, metrics_json, schedule_json, conflicts_json, message)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    requested_at = excluded.requested_at,
    algorithm = excluded.algorithm,
    status = excluded.status,
    metrics_json = excluded.metrics_json,
    schedule_json = excluded.schedule_json,
    conflicts_json = excluded.conflicts_json,
    message = excluded.message`)

	_, err = r.conn.Exec(ctx, query,
		record.ID,
		r.formatTime(record.RequestedAt),
		record.Algorithm,
		string(record.Status),
		string(metricsJSON),
		string(scheduleJSON),
		string(conflictsJSON),
		record.Message,
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", record.ID, err)
	}
	return nil
}

// FindByID returns the record for id, or nil if no run with that id has
// finished yet.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*engine.RunRecord, error) {
	query := r.rebind(`
SELECT id, requested_at, algorithm, status, metrics_json, schedule_json, conflicts_json, message
FROM timetable_runs WHERE id = ?`)

	row := r.conn.QueryRow(ctx, query, id)
	record, err := r.scanRecord(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding run %s: %w", id, err)
	}
	return record, nil
}

// ListRecent returns up to limit runs, most recently requested first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*engine.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.rebind(`
SELECT id, requested_at, algorithm, status, metrics_json, schedule_json, conflicts_json, message
FROM timetable_runs ORDER BY requested_at DESC LIMIT ?`)

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent runs: %w", err)
	}
	defer rows.Close()

	var records []*engine.RunRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *RunRepository) scanRecord(scanner interface{ Scan(...any) error }) (*engine.RunRecord, error) {
	var (
		id, algorithm, status, message string
		requestedAt                    any
		metricsJSON, scheduleJSON, conflictsJSON string
	)
	if err := scanner.Scan(&id, &requestedAt, &algorithm, &status, &metricsJSON, &scheduleJSON, &conflictsJSON, &message); err != nil {
		return nil, err
	}

	requestedAtTime, err := r.parseTime(requestedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing requested_at: %w", err)
	}

	var metrics engine.Metrics
	if err := json.Unmarshal([]byte(metricsJSON), &metrics); err != nil {
		return nil, fmt.Errorf("unmarshaling metrics: %w", err)
	}
	var assignments []domain.Assignment
	if err := json.Unmarshal([]byte(scheduleJSON), &assignments); err != nil {
		return nil, fmt.Errorf("unmarshaling schedule: %w", err)
	}
	schedule := domain.NewSchedule()
	for _, a := range assignments {
		schedule.Add(a)
	}
	var conflicts []domain.Conflict
	if err := json.Unmarshal([]byte(conflictsJSON), &conflicts); err != nil {
		return nil, fmt.Errorf("unmarshaling conflicts: %w", err)
	}

	return &engine.RunRecord{
		ID:          id,
		RequestedAt: requestedAtTime,
		Algorithm:   algorithm,
		Status:      engine.RunStatus(status),
		Metrics:     metrics,
		Schedule:    schedule,
		Conflicts:   conflicts,
		Message:     message,
	}, nil
}

// formatTime renders a timestamp the way each driver's column type
// expects: PostgreSQL's timestamptz column binds a time.Time directly,
// SQLite's TEXT column stores RFC3339.
func (r *RunRepository) formatTime(t time.Time) any {
	if r.conn.Driver() == database.DriverPostgres {
		return t
	}
	return t.Format(time.RFC3339)
}

// parseTime reverses formatTime, accounting for the driver returning
// either a time.Time (PostgreSQL) or a string (SQLite).
func (r *RunRepository) parseTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		return time.Parse(time.RFC3339, val)
	case []byte:
		return time.Parse(time.RFC3339, string(val))
	default:
		return time.Time{}, fmt.Errorf("unsupported requested_at scan type %T", v)
	}
}

// rebind rewrites ?-style placeholders into PostgreSQL's $N style when
// the underlying connection is PostgreSQL; SQLite accepts ? as written.
func (r *RunRepository) rebind(query string) string {
	if r.conn.Driver() != database.DriverPostgres {
		return query
	}
	rebound := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			rebound = append(rebound, '$')
			rebound = append(rebound, []byte(fmt.Sprintf("%d", n))...)
			continue
		}
		rebound = append(rebound, query[i])
	}
	return string(rebound)
}

// assignmentsOf extracts a schedule's assignments for storage; Schedule
// keeps its slice unexported, so this is the only way to serialize one.
func assignmentsOf(schedule *domain.Schedule) []domain.Assignment {
	if schedule == nil {
		return nil
	}
	return schedule.Assignments()
}

var _ engine.RunRepository = (*RunRepository)(nil)
