// Package builtin provides built-in engine implementations that ship with Cadence.
package builtin

import (
	"context"

	"github.com/wrenfield/cadence/internal/engine/sdk"
	"github.com/wrenfield/cadence/internal/engine/types"
	"github.com/wrenfield/cadence/internal/timetable/domain"
	"github.com/wrenfield/cadence/internal/timetable/solver"
)

// DefaultSolverEngine wraps the exact, exhaustive-search solvers: Greedy for
// small inputs, Backtracking and CSP when Greedy alone cannot place every
// session. It is the engine the Optimization Engine falls back to when a
// caller doesn't request a specific algorithm.
type DefaultSolverEngine struct {
	config sdk.EngineConfig
}

// NewDefaultSolverEngine creates a new default solver engine.
func NewDefaultSolverEngine() *DefaultSolverEngine {
	return &DefaultSolverEngine{}
}

// Metadata returns engine metadata.
func (e *DefaultSolverEngine) Metadata() sdk.EngineMetadata {
	return sdk.EngineMetadata{
		ID:            "cadence.solver.default",
		Name:          "Default Solver Engine",
		Version:       "1.0.0",
		Author:        "Cadence",
		Description:   "Built-in solver engine running greedy, backtracking, and CSP search",
		License:       "Proprietary",
		Homepage:      "https://cadence.app",
		Tags:          []string{"solver", "builtin", "default"},
		MinAPIVersion: "1.0.0",
		Capabilities:  []string{"greedy", "backtracking", "csp"},
	}
}

// Type returns the engine type.
func (e *DefaultSolverEngine) Type() sdk.EngineType {
	return sdk.EngineTypeSolver
}

// SupportedAlgorithms lists the algorithm identifiers this engine can run.
func (e *DefaultSolverEngine) SupportedAlgorithms() []string {
	return []string{string(solver.Greedy), string(solver.Backtracking), string(solver.CSP)}
}

// ConfigSchema returns the configuration schema.
func (e *DefaultSolverEngine) ConfigSchema() sdk.ConfigSchema {
	return sdk.ConfigSchema{
		Schema: "https://json-schema.org/draft/2020-12/schema",
		Properties: map[string]sdk.PropertySchema{
			"max_backtracks": {
				Type:        "integer",
				Title:       "Max Backtracks",
				Description: "Upper bound on backtracking steps; exceeding it ends the run with a backtrack-limit error",
				Default:     10000,
				Minimum:     floatPtr(100),
				Maximum:     floatPtr(200000),
				UIHints: sdk.UIHints{
					Widget:   "slider",
					Group:    "Search Limits",
					Order:    1,
					HelpText: "Higher values search longer before declaring the instance infeasible",
				},
			},
			"csp_max_backtracks": {
				Type:        "integer",
				Title:       "CSP Max Backtracks",
				Description: "Backtrack bound for the AC-3 + backtracking phase",
				Default:     20000,
				Minimum:     floatPtr(100),
				Maximum:     floatPtr(500000),
				UIHints: sdk.UIHints{
					Widget: "slider",
					Group:  "Search Limits",
					Order:  2,
				},
			},
		},
		Required: []string{},
	}
}

// Initialize initializes the engine with configuration.
func (e *DefaultSolverEngine) Initialize(ctx context.Context, config sdk.EngineConfig) error {
	e.config = config
	return nil
}

// HealthCheck returns the engine health status.
func (e *DefaultSolverEngine) HealthCheck(ctx context.Context) sdk.HealthStatus {
	return sdk.HealthStatus{
		Healthy: true,
		Message: "default solver engine is healthy",
	}
}

// Shutdown gracefully shuts down the engine.
func (e *DefaultSolverEngine) Shutdown(ctx context.Context) error {
	return nil
}

func (e *DefaultSolverEngine) getIntWithDefault(key string, defaultVal int) int {
	if e.config.Has(key) {
		return e.config.GetInt(key)
	}
	return defaultVal
}

// Solve dispatches to Greedy, Backtracking, or CSP based on input.Algorithm,
// defaulting to Greedy.
func (e *DefaultSolverEngine) Solve(ctx *sdk.ExecutionContext, input types.SolveInput, progress types.ProgressFunc) (*types.SolveOutput, error) {
	in := toSolverInput(input)
	reporter := solver.ReporterFunc(func(p solver.Progress) {
		if progress != nil {
			progress(toProgressUpdate(p))
		}
	})

	var s solver.Solver
	switch input.Algorithm {
	case string(solver.Backtracking):
		cfg := solver.DefaultBacktrackingConfig()
		cfg.MaxBacktracks = e.getIntWithDefault("max_backtracks", cfg.MaxBacktracks)
		s = solver.NewBacktrackingSolver(cfg)
	case string(solver.CSP):
		cfg := solver.DefaultCSPConfig()
		cfg.MaxBacktracks = e.getIntWithDefault("csp_max_backtracks", cfg.MaxBacktracks)
		s = solver.NewCSPSolver(cfg)
	default:
		s = solver.NewGreedySolver()
	}

	ctx.Logger.Debug("dispatching solve", "algorithm", s.Name(), "sessions", len(in.Sessions))

	result, err := s.Solve(ctx.Context(), in, reporter)
	return toSolveOutput(result), err
}

// Ensure DefaultSolverEngine implements types.SolverEngine
var _ types.SolverEngine = (*DefaultSolverEngine)(nil)

func floatPtr(f float64) *float64 {
	return &f
}

func toSolverInput(input types.SolveInput) solver.Input {
	weights := input.SoftWeights
	if weights == (domain.SoftWeights{}) {
		weights = domain.DefaultSoftWeights()
	}
	checker := domain.NewConstraintChecker(input.Teachers, input.Classrooms, input.Calendar, weights)
	return solver.Input{
		Sessions:   input.Sessions,
		Teachers:   input.Teachers,
		Classrooms: input.Classrooms,
		Calendar:   input.Calendar,
		Checker:    checker,
	}
}

func toSolveOutput(result solver.Result) *types.SolveOutput {
	return &types.SolveOutput{
		Schedule:       result.Schedule,
		Unplaced:       result.Unplaced,
		HardViolations: result.HardViolations,
		SoftScore:      result.SoftScore,
		Iterations:     result.Iterations,
	}
}

func toProgressUpdate(p solver.Progress) types.ProgressUpdate {
	return types.ProgressUpdate{
		SessionsPlaced: p.SessionsPlaced,
		SessionsTotal:  p.SessionsTotal,
		BestFitness:    p.BestFitness,
		Iteration:      p.Iteration,
		Message:        p.Message,
	}
}
