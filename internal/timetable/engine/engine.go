// Package engine implements the Optimization Engine: the component
// that validates a scheduling snapshot, builds the slot calendar and
// session set once, dispatches the selected solver through the engine
// plugin framework, streams progress, honors cancellation, and
// packages the terminal result (spec §4.5).
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wrenfield/cadence/internal/engine/registry"
	"github.com/wrenfield/cadence/internal/engine/runtime"
	"github.com/wrenfield/cadence/internal/engine/sdk"
	"github.com/wrenfield/cadence/internal/engine/types"
	"github.com/wrenfield/cadence/internal/timetable/calendar"
	"github.com/wrenfield/cadence/internal/timetable/domain"
	"github.com/wrenfield/cadence/internal/timetable/extract"
	"github.com/wrenfield/cadence/internal/timetable/solver"
)

// Built-in engine ids the Optimization Engine dispatches to, keyed by
// the algorithm family each one implements (spec §4.9).
const (
	EngineIDDefault = "cadence.solver.default" // greedy, backtracking, csp
	EngineIDPro     = "cadence.solver.pro"     // simulated_annealing, genetic, hybrid
)

// Input is the immutable scheduling snapshot the Engine runs against
// (spec §6.1).
type Input struct {
	Teachers   []domain.Teacher
	Classrooms []domain.Classroom
	Courses    []domain.Course
	Settings   Settings
}

// Engine is the Optimization Engine. It owns no solver logic itself:
// every algorithm runs behind the engine-plugin registry/executor so
// that built-in and externally loaded solver plugins are dispatched
// identically.
type Engine struct {
	registry *registry.Registry
	executor *runtime.Executor
	repo     RunRepository
	logger   *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// New builds an Optimization Engine over an already-populated solver
// plugin registry. repo may be nil, in which case runs are not
// persisted.
func New(reg *registry.Registry, exec *runtime.Executor, repo RunRepository, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{registry: reg, executor: exec, repo: repo, logger: logger, cancels: make(map[string]context.CancelFunc)}
}

// Cancel raises the cancellation flag for runID, if it is still
// in-flight. The solver observes it at its next suspension point and
// the run ends with a Cancelled event carrying its best-so-far
// schedule. Cancel is idempotent: cancelling an unknown or already
// finished run is a no-op.
func (e *Engine) Cancel(runID string) {
	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
}

// Run executes one solver pass against in, emitting Events on the
// returned channel; the terminal event carries the RunResult. The
// channel closes after exactly one terminal event.
// Callers may cancel the run either by cancelling ctx or by calling
// Cancel with the run id reported on the Started event.
func (e *Engine) Run(ctx context.Context, in Input) (<-chan Event, error) {
	runID := uuid.New().String()

	if err := validate(in); err != nil {
		return nil, err
	}

	cal := calendar.Generate(in.Settings.calendarConfig())
	if len(cal) == 0 {
		return nil, domain.NewEngineError(domain.KindNoFeasibleSlots, "slot calendar produced no slots", nil)
	}
	slotCalendar := domain.NewSlotCalendar(cal)

	teachersByID := make(map[string]domain.Teacher, len(in.Teachers))
	for _, t := range in.Teachers {
		teachersByID[t.ID] = t
	}

	extraction := extract.Extract(in.Courses, teachersByID, in.Settings.SlotMinutes)
	sessionCount := len(extraction.Sessions)

	algorithm := resolveAlgorithm(in.Settings.Algorithm, sessionCount)
	engineID := engineIDFor(algorithm)

	var runCtx context.Context
	var cancel context.CancelFunc
	if in.Settings.DeadlineSeconds > 0 {
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(in.Settings.DeadlineSeconds)*time.Second)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	e.mu.Lock()
	e.cancels[runID] = cancel
	e.mu.Unlock()

	events := newSink(32)
	go e.run(runCtx, cancel, runID, algorithm, engineID, sessionCount, slotCalendar, extraction, in, events)

	return events.Events(), nil
}

func (e *Engine) run(
	ctx context.Context,
	cancel context.CancelFunc,
	runID string,
	algorithm solver.Algorithm,
	engineID string,
	sessionCount int,
	slotCalendar *domain.SlotCalendar,
	extraction extract.Result,
	in Input,
	events *sink,
) {
	defer events.close()
	defer cancel()
	defer func() {
		e.mu.Lock()
		delete(e.cancels, runID)
		e.mu.Unlock()
	}()

	start := time.Now()
	events.emit(Event{Kind: EventStarted, RunID: runID, Algorithm: string(algorithm), SessionCount: sessionCount})

	solverEngine, err := e.registry.Get(ctx, engineID)
	if err != nil {
		e.finishFailed(ctx, runID, algorithm, start, fmt.Errorf("resolving solver engine %s: %w", engineID, err), events)
		return
	}
	if err := solverEngine.Initialize(ctx, sdk.NewEngineConfig(engineID, in.Settings.engineParams())); err != nil {
		e.finishFailed(ctx, runID, algorithm, start, fmt.Errorf("configuring solver engine %s: %w", engineID, err), events)
		return
	}

	weights := in.Settings.SoftWeights
	if weights == (domain.SoftWeights{}) {
		weights = domain.DefaultSoftWeights()
	}

	progressFn := func(update types.ProgressUpdate) {
		percent := 0.0
		if update.SessionsTotal > 0 {
			percent = 100 * float64(update.SessionsPlaced) / float64(update.SessionsTotal)
		}
		events.emit(Event{
			Kind:        EventProgress,
			RunID:       runID,
			Algorithm:   string(algorithm),
			Percent:     percent,
			Phase:       update.Message,
			BestFitness: update.BestFitness,
			Iteration:   update.Iteration,
		})
	}

	input := types.SolveInput{
		Algorithm:   string(algorithm),
		Sessions:    extraction.Sessions,
		Teachers:    in.Teachers,
		Classrooms:  in.Classrooms,
		Calendar:    slotCalendar,
		SoftWeights: weights,
	}

	output, solveErr := e.executor.ExecuteSolve(ctx, engineID, runID, input, progressFn)
	duration := time.Since(start)

	result := e.packageResult(runID, algorithm, duration, output, solveErr, in, slotCalendar)

	var kind EventKind
	switch result.Status {
	case RunCancelled:
		kind = EventCancelled
	case RunFailed:
		kind = EventFailed
	default:
		kind = EventCompleted
	}

	record := &RunRecord{
		ID:          runID,
		RequestedAt: start,
		Algorithm:   string(algorithm),
		Status:      result.Status,
		Metrics:     result.Metrics,
		Schedule:    result.Schedule,
		Conflicts:   result.Conflicts,
		Message:     result.Message,
	}
	if err := e.saveRecord(ctx, record); err != nil {
		e.logger.Warn("failed to persist run", "run_id", runID, "error", err)
	}

	event := Event{Kind: kind, RunID: runID, Algorithm: string(algorithm), Result: &result}
	if kind == EventFailed {
		event.Err = solveErr
	}
	if kind == EventCancelled {
		event.Partial = result.Schedule
	}
	events.emit(event)
}

// packageResult turns a solver's raw output (and error, if any) into
// the Engine's terminal RunResult: chosen algorithm, wall-clock
// duration, iteration count, final fitness, residual conflicts, and
// unscheduled sessions (spec §4.5).
func (e *Engine) packageResult(
	runID string,
	algorithm solver.Algorithm,
	duration time.Duration,
	output *types.SolveOutput,
	solveErr error,
	in Input,
	slotCalendar *domain.SlotCalendar,
) RunResult {
	result := RunResult{RunID: runID}

	var schedule *domain.Schedule
	var unplaced []domain.Session
	var hardViolations int
	var softScore float64
	var iterations int
	if output != nil {
		schedule = output.Schedule
		unplaced = output.Unplaced
		hardViolations = output.HardViolations
		softScore = output.SoftScore
		iterations = output.Iterations
	}
	if schedule == nil {
		schedule = domain.NewSchedule()
	}

	result.Schedule = schedule
	result.Unplaced = unplaced
	result.Metrics = Metrics{
		Algorithm:          string(algorithm),
		DurationMs:         duration.Milliseconds(),
		Iterations:         iterations,
		Fitness:            softScore,
		HardViolationCount: hardViolations,
		SoftScore:          softScore,
		UnscheduledCount:   len(unplaced),
	}

	weights := in.Settings.SoftWeights
	if weights == (domain.SoftWeights{}) {
		weights = domain.DefaultSoftWeights()
	}
	checker := domain.NewConstraintChecker(in.Teachers, in.Classrooms, slotCalendar, weights)
	ledger := domain.NewHourLedger()
	result.Conflicts = domain.DetectConflicts(schedule, checker, ledger)

	switch {
	case solveErr == nil:
		result.Status = RunCompleted
	case errors.Is(solveErr, domain.ErrCancelled):
		result.Status = RunCancelled
		result.Kind = domain.KindCancelled
		result.Message = solveErr.Error()
	default:
		result.Status = RunFailed
		result.Message = solveErr.Error()
		var engineErr *domain.EngineError
		if errors.As(solveErr, &engineErr) {
			result.Kind = engineErr.Kind
		} else {
			result.Kind = domain.KindInternal
		}
	}

	return result
}

func (e *Engine) finishFailed(ctx context.Context, runID string, algorithm solver.Algorithm, start time.Time, err error, events *sink) {
	result := RunResult{
		RunID:   runID,
		Status:  RunFailed,
		Kind:    domain.KindInternal,
		Message: err.Error(),
		Metrics: Metrics{Algorithm: string(algorithm), DurationMs: time.Since(start).Milliseconds()},
	}
	record := &RunRecord{
		ID:          runID,
		RequestedAt: start,
		Algorithm:   string(algorithm),
		Status:      RunFailed,
		Metrics:     result.Metrics,
		Message:     result.Message,
	}
	if saveErr := e.saveRecord(ctx, record); saveErr != nil {
		e.logger.Warn("failed to persist run", "run_id", runID, "error", saveErr)
	}
	events.emit(Event{Kind: EventFailed, RunID: runID, Algorithm: string(algorithm), Err: err, Result: &result})
}

func (e *Engine) saveRecord(ctx context.Context, record *RunRecord) error {
	if e.repo == nil {
		return nil
	}
	return e.repo.Save(ctx, record)
}

// resolveAlgorithm applies the auto-selection thresholds of spec §4.5
// when the caller asks for "auto" or leaves Algorithm unset.
func resolveAlgorithm(requested string, sessionCount int) solver.Algorithm {
	switch solver.Algorithm(requested) {
	case solver.Greedy, solver.Backtracking, solver.SimulatedAnnealing, solver.Genetic, solver.CSP, solver.Hybrid:
		return solver.Algorithm(requested)
	}

	switch {
	case sessionCount <= 50:
		return solver.Greedy
	case sessionCount <= 200:
		return solver.Backtracking
	default:
		return solver.Hybrid
	}
}

// engineIDFor returns the built-in solver plugin id that implements
// algorithm.
func engineIDFor(algorithm solver.Algorithm) string {
	switch algorithm {
	case solver.Greedy, solver.Backtracking, solver.CSP:
		return EngineIDDefault
	default:
		return EngineIDPro
	}
}

// validate checks the input snapshot's structural invariants (spec
// §4.5): non-empty teachers/classrooms/courses, and every course well
// formed.
func validate(in Input) error {
	if len(in.Teachers) == 0 {
		return domain.NewEngineError(domain.KindInvalidInput, "at least one teacher is required", nil)
	}
	if len(in.Classrooms) == 0 {
		return domain.NewEngineError(domain.KindInvalidInput, "at least one classroom is required", nil)
	}
	if len(in.Courses) == 0 {
		return domain.NewEngineError(domain.KindInvalidInput, "at least one course is required", nil)
	}
	for _, t := range in.Teachers {
		if err := t.Validate(); err != nil {
			return domain.NewEngineError(domain.KindInvalidInput, fmt.Sprintf("invalid teacher %q: %v", t.ID, err), nil)
		}
	}
	for _, c := range in.Classrooms {
		if err := c.Validate(); err != nil {
			return domain.NewEngineError(domain.KindInvalidInput, fmt.Sprintf("invalid classroom %q: %v", c.ID, err), nil)
		}
	}
	for _, c := range in.Courses {
		if err := c.Validate(); err != nil {
			return domain.NewEngineError(domain.KindInvalidInput, fmt.Sprintf("invalid course %q: %v", c.ID, err), nil)
		}
	}
	return nil
}
