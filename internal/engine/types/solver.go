// Package types defines the request/response shapes exchanged between the
// Optimization Engine and a solver plugin, independent of the in-process
// solver package so that out-of-process (gRPC) plugins can depend on this
// package alone without pulling in the concrete algorithm implementations.
package types

import (
	"github.com/wrenfield/cadence/internal/engine/sdk"
	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// SolverEngine extends the base Engine with timetable-solving capability.
// A solver engine is handed the full problem instance and asked to return
// a best-effort Schedule, reporting progress as it searches.
type SolverEngine interface {
	sdk.Engine

	// Solve attempts to place every session in input into a schedule that
	// satisfies every hard constraint, reporting incremental progress on
	// progress as the search runs. It returns whatever schedule it has
	// when ctx is cancelled, along with the sessions left unplaced.
	Solve(ctx *sdk.ExecutionContext, input SolveInput, progress ProgressFunc) (*SolveOutput, error)

	// SupportedAlgorithms lists the algorithm identifiers this engine can
	// run, e.g. "greedy", "backtracking", "csp". The Optimization Engine
	// uses this to validate a requested algorithm before dispatching.
	SupportedAlgorithms() []string
}

// ProgressFunc receives incremental search progress. Engines must treat
// calls as non-blocking best-effort notifications: a slow or absent
// receiver must never stall the search.
type ProgressFunc func(ProgressUpdate)

// SolveInput is the complete problem instance handed to a solver engine.
type SolveInput struct {
	// Algorithm selects which search strategy to run. Empty means let the
	// engine choose its own default.
	Algorithm string `json:"algorithm"`

	Sessions   []domain.Session    `json:"sessions"`
	Teachers   []domain.Teacher    `json:"teachers"`
	Classrooms []domain.Classroom  `json:"classrooms"`
	Calendar   *domain.SlotCalendar `json:"-"`

	// SoftWeights overrides the default soft-constraint weighting used to
	// score candidate schedules.
	SoftWeights domain.SoftWeights `json:"soft_weights"`
}

// SolveOutput is the result of running a solver engine to completion or
// cancellation.
type SolveOutput struct {
	Schedule       *domain.Schedule  `json:"-"`
	Unplaced       []domain.Session  `json:"unplaced"`
	HardViolations int               `json:"hard_violations"`
	SoftScore      float64           `json:"soft_score"`
	Iterations     int               `json:"iterations"`
}

// ProgressUpdate mirrors solver.Progress across the plugin boundary so that
// out-of-process engines need not import the solver package.
type ProgressUpdate struct {
	SessionsPlaced int     `json:"sessions_placed"`
	SessionsTotal  int     `json:"sessions_total"`
	BestFitness    float64 `json:"best_fitness"`
	Iteration      int     `json:"iteration"`
	Message        string  `json:"message,omitempty"`
}
