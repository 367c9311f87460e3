package builtin

import (
	"context"
	"math/rand"

	"github.com/wrenfield/cadence/internal/engine/sdk"
	"github.com/wrenfield/cadence/internal/engine/types"
	"github.com/wrenfield/cadence/internal/timetable/solver"
)

// SolverEnginePro wraps the metaheuristic solvers: Simulated Annealing,
// Genetic Algorithm, and the CSP-seeded Hybrid. These trade the exact
// solvers' completeness guarantee for scalability on large instances, and
// are what the Optimization Engine reaches for once the "auto" algorithm
// thresholds decide the input is too big for Backtracking.
type SolverEnginePro struct {
	config sdk.EngineConfig
}

// NewSolverEnginePro creates a new pro solver engine.
func NewSolverEnginePro() *SolverEnginePro {
	return &SolverEnginePro{}
}

// Metadata returns engine metadata.
func (e *SolverEnginePro) Metadata() sdk.EngineMetadata {
	return sdk.EngineMetadata{
		ID:            "cadence.solver.pro",
		Name:          "Solver Engine Pro",
		Version:       "1.0.0",
		Author:        "Cadence",
		Description:   "Metaheuristic solver engine running simulated annealing, genetic, and hybrid search",
		License:       "Proprietary",
		Homepage:      "https://cadence.app",
		Tags:          []string{"solver", "pro", "annealing", "genetic", "hybrid"},
		MinAPIVersion: "1.0.0",
		Capabilities:  []string{"simulated_annealing", "genetic", "hybrid"},
	}
}

// Type returns the engine type.
func (e *SolverEnginePro) Type() sdk.EngineType {
	return sdk.EngineTypeSolver
}

// SupportedAlgorithms lists the algorithm identifiers this engine can run.
func (e *SolverEnginePro) SupportedAlgorithms() []string {
	return []string{string(solver.SimulatedAnnealing), string(solver.Genetic), string(solver.Hybrid)}
}

// ConfigSchema returns the configuration schema.
func (e *SolverEnginePro) ConfigSchema() sdk.ConfigSchema {
	return sdk.ConfigSchema{
		Schema: "https://json-schema.org/draft/2020-12/schema",
		Properties: map[string]sdk.PropertySchema{
			"annealing_max_iterations": {
				Type:        "integer",
				Title:       "Annealing Max Iterations",
				Description: "Iteration cap for simulated annealing",
				Default:     10000,
				Minimum:     floatPtr(100),
				Maximum:     floatPtr(1000000),
				UIHints: sdk.UIHints{
					Widget: "slider",
					Group:  "Simulated Annealing",
					Order:  1,
				},
			},
			"annealing_cooling_rate": {
				Type:        "number",
				Title:       "Cooling Rate",
				Description: "Geometric cooling factor applied each iteration",
				Default:     0.995,
				Minimum:     floatPtr(0.8),
				Maximum:     floatPtr(0.9999),
				UIHints: sdk.UIHints{
					Widget: "slider",
					Group:  "Simulated Annealing",
					Order:  2,
				},
			},
			"genetic_population_size": {
				Type:        "integer",
				Title:       "Population Size",
				Description: "Number of chromosomes per generation",
				Default:     60,
				Minimum:     floatPtr(10),
				Maximum:     floatPtr(1000),
				UIHints: sdk.UIHints{
					Widget: "slider",
					Group:  "Genetic",
					Order:  1,
				},
			},
			"genetic_generations": {
				Type:        "integer",
				Title:       "Generations",
				Description: "Number of generations to evolve",
				Default:     150,
				Minimum:     floatPtr(10),
				Maximum:     floatPtr(5000),
				UIHints: sdk.UIHints{
					Widget: "slider",
					Group:  "Genetic",
					Order:  2,
				},
			},
			"hybrid_seed_perturbation": {
				Type:        "boolean",
				Title:       "Seed Perturbation",
				Description: "Seed the genetic population with the CSP solution plus mutated copies of it",
				Default:     true,
				UIHints: sdk.UIHints{
					Widget: "toggle",
					Group:  "Hybrid",
					Order:  1,
				},
			},
			"random_seed": {
				Type:        "integer",
				Title:       "Random Seed",
				Description: "Seed for the stochastic solvers; 0 uses a fixed default seed",
				Default:     0,
				UIHints: sdk.UIHints{
					Widget:   "text",
					Group:    "Reproducibility",
					Order:    1,
					Advanced: true,
				},
			},
		},
		Required: []string{},
	}
}

// Initialize initializes the engine with configuration.
func (e *SolverEnginePro) Initialize(ctx context.Context, config sdk.EngineConfig) error {
	e.config = config
	return nil
}

// HealthCheck returns the engine health status.
func (e *SolverEnginePro) HealthCheck(ctx context.Context) sdk.HealthStatus {
	return sdk.HealthStatus{
		Healthy: true,
		Message: "solver engine pro is healthy",
	}
}

// Shutdown gracefully shuts down the engine.
func (e *SolverEnginePro) Shutdown(ctx context.Context) error {
	return nil
}

func (e *SolverEnginePro) getIntWithDefault(key string, defaultVal int) int {
	if e.config.Has(key) {
		return e.config.GetInt(key)
	}
	return defaultVal
}

func (e *SolverEnginePro) getFloatWithDefault(key string, defaultVal float64) float64 {
	if e.config.Has(key) {
		return e.config.GetFloat(key)
	}
	return defaultVal
}

func (e *SolverEnginePro) getBoolWithDefault(key string, defaultVal bool) bool {
	if e.config.Has(key) {
		return e.config.GetBool(key)
	}
	return defaultVal
}

func (e *SolverEnginePro) randSource() rand.Source {
	seed := e.getIntWithDefault("random_seed", 0)
	if seed == 0 {
		return rand.NewSource(1)
	}
	return rand.NewSource(int64(seed))
}

// Solve dispatches to Simulated Annealing, Genetic, or Hybrid based on
// input.Algorithm, defaulting to Hybrid (the Optimization Engine's pick for
// the largest instances).
func (e *SolverEnginePro) Solve(ctx *sdk.ExecutionContext, input types.SolveInput, progress types.ProgressFunc) (*types.SolveOutput, error) {
	in := toSolverInput(input)
	reporter := solver.ReporterFunc(func(p solver.Progress) {
		if progress != nil {
			progress(toProgressUpdate(p))
		}
	})

	var s solver.Solver
	switch input.Algorithm {
	case string(solver.SimulatedAnnealing):
		cfg := solver.DefaultAnnealingConfig()
		cfg.MaxIterations = e.getIntWithDefault("annealing_max_iterations", cfg.MaxIterations)
		cfg.CoolingRate = e.getFloatWithDefault("annealing_cooling_rate", cfg.CoolingRate)
		s = solver.NewAnnealingSolver(cfg, e.randSource())
	case string(solver.Genetic):
		cfg := solver.DefaultGeneticConfig()
		cfg.PopulationSize = e.getIntWithDefault("genetic_population_size", cfg.PopulationSize)
		cfg.Generations = e.getIntWithDefault("genetic_generations", cfg.Generations)
		s = solver.NewGeneticSolver(cfg, e.randSource())
	default:
		cfg := solver.DefaultHybridConfig()
		cfg.SeedPerturbation = e.getBoolWithDefault("hybrid_seed_perturbation", cfg.SeedPerturbation)
		cfg.Genetic.PopulationSize = e.getIntWithDefault("genetic_population_size", cfg.Genetic.PopulationSize)
		cfg.Genetic.Generations = e.getIntWithDefault("genetic_generations", cfg.Genetic.Generations)
		s = solver.NewHybridSolver(cfg, e.randSource())
	}

	ctx.Logger.Debug("dispatching solve", "algorithm", s.Name(), "sessions", len(in.Sessions))

	result, err := s.Solve(ctx.Context(), in, reporter)
	return toSolveOutput(result), err
}

// Ensure SolverEnginePro implements types.SolverEngine
var _ types.SolverEngine = (*SolverEnginePro)(nil)
