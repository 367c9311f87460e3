// Package solver implements the five optimization algorithms the
// Optimization Engine dispatches to, plus the Hybrid composition of
// CSP and Genetic Algorithm.
package solver

import (
	"context"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// Algorithm names one of the solver variants an Engine run may select.
type Algorithm string

const (
	Greedy       Algorithm = "greedy"
	Backtracking Algorithm = "backtracking"
	SimulatedAnnealing Algorithm = "simulated_annealing"
	Genetic      Algorithm = "genetic"
	CSP          Algorithm = "csp"
	Hybrid       Algorithm = "hybrid"
)

// Input is the fixed problem snapshot every solver variant receives. It
// is read-only for the duration of Solve: solvers never mutate Sessions,
// Teachers, Classrooms, or Calendar.
type Input struct {
	Sessions   []domain.Session
	Teachers   []domain.Teacher
	Classrooms []domain.Classroom
	Calendar   *domain.SlotCalendar
	Checker    *domain.ConstraintChecker
}

// Progress is one point-in-time report emitted on Reporter during a
// run. Solvers emit Progress at their own natural cadence (each
// generation, each restart, each placed session); the Engine forwards
// it onto the Progress/Control channel unmodified.
type Progress struct {
	SessionsPlaced int
	SessionsTotal  int
	BestFitness    float64
	Iteration      int
	Message        string
}

// Reporter receives Progress updates during a run. Implementations must
// not block: the Engine's channel sink is bounded and drops
// intermediate reports under backpressure rather than stall a solver.
type Reporter interface {
	Report(Progress)
}

// ReporterFunc adapts a plain function to a Reporter.
type ReporterFunc func(Progress)

func (f ReporterFunc) Report(p Progress) { f(p) }

// NoopReporter discards every Progress report.
var NoopReporter Reporter = ReporterFunc(func(Progress) {})

// Result is a solver's terminal output: a schedule (possibly partial),
// its unplaced sessions, and the quality metrics the Engine packages
// into the final run result.
type Result struct {
	Schedule        *domain.Schedule
	Unplaced        []domain.Session
	HardViolations  int
	SoftScore       float64
	Iterations      int
	Ledger          *domain.HourLedger
}

// Solver is the capability interface every algorithm variant
// implements, and the interface the plugin framework (internal/engine)
// exposes built-in and loadable implementations through.
type Solver interface {
	// Name identifies the algorithm for diagnostics and result metadata.
	Name() Algorithm
	// Solve attempts to place every session in in.Sessions onto
	// in.Calendar, respecting hard constraints and maximizing soft
	// score. It returns domain.ErrCancelled if ctx is cancelled before
	// completion. When one or more sessions cannot be placed it returns
	// an engine error (Infeasible, or BacktrackLimit for the backtracking
	// variant) together with the partial result it reached.
	Solve(ctx context.Context, in Input, reporter Reporter) (Result, error)
}

// scoreSchedule computes the aggregate hard-violation count and mean
// soft score of every assignment in schedule, used by every solver
// variant to evaluate a candidate without duplicating the traversal.
func scoreSchedule(checker *domain.ConstraintChecker, schedule *domain.Schedule, ledger *domain.HourLedger) (hardViolations int, softScore float64) {
	assignments := schedule.Assignments()
	if len(assignments) == 0 {
		return 0, 0
	}
	total := 0.0
	for _, a := range assignments {
		withoutA := domain.NewSchedule()
		for _, other := range assignments {
			if other.Session.Key != a.Session.Key {
				withoutA.Add(other)
			}
		}
		hardViolations += len(checker.HardViolations(a, withoutA, ledger))
		total += checker.SoftScore(a, withoutA)
	}
	return hardViolations, total / float64(len(assignments))
}
