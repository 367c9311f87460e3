package engine

import (
	"context"
	"time"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// RunStatus is the terminal state a persisted run ended in.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Metrics summarizes a completed or partial run (spec §6.2).
type Metrics struct {
	Algorithm          string
	DurationMs         int64
	Iterations         int
	Fitness            float64
	HardViolationCount int
	SoftScore          float64
	UnscheduledCount   int
}

// RunResult is everything the Engine hands back (or persists) for one
// run: the final schedule, its metrics, and the residual conflicts the
// Conflict Detector found in it.
type RunResult struct {
	RunID     string
	Status    RunStatus
	Metrics   Metrics
	Schedule  *domain.Schedule
	Conflicts []domain.Conflict
	Unplaced  []domain.Session
	Kind      domain.ErrorKind
	Message   string
}

// RunRecord is the Run Repository's persisted shape: a RunResult plus
// the bookkeeping fields the store needs (spec §4.8).
type RunRecord struct {
	ID          string
	RequestedAt time.Time
	Algorithm   string
	Status      RunStatus
	Metrics     Metrics
	Schedule    *domain.Schedule
	Conflicts   []domain.Conflict
	Message     string
}

// RunRepository persists one row per terminal run. Implementations
// live under internal/timetable/infrastructure/persistence, backed by
// SQLite (dev/local default) or PostgreSQL.
type RunRepository interface {
	Save(ctx context.Context, record *RunRecord) error
	FindByID(ctx context.Context, id string) (*RunRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*RunRecord, error)
}
