package solver

import (
	"context"
	"errors"
	"math/rand"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// HybridConfig composes a CSP phase with a Genetic Algorithm phase.
type HybridConfig struct {
	CSP     CSPConfig
	Genetic GeneticConfig
	// SeedPerturbation seeds the GA's initial population with the CSP
	// solution plus PopulationSize-1 mutated perturbations of it, rather
	// than a fully random population. Default true (spec's resolved
	// open question on hybrid seeding).
	SeedPerturbation bool
}

// DefaultHybridConfig returns the Engine's default schedule, selected
// automatically for large inputs (spec §4.5's auto thresholds).
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{
		CSP:              CSPConfig{MaxBacktracks: 3000},
		Genetic:          DefaultGeneticConfig(),
		SeedPerturbation: true,
	}
}

// HybridSolver runs CSPSolver to produce a feasible starting point, then
// hands it to GeneticSolver as a seed to polish the soft score further
// (spec §4.4.6). If CSP cannot find a complete solution (and was not
// cancelled), the GA still runs: seeded from CSP's partial schedule when
// SeedPerturbation is set, otherwise from a random population. Either
// way its genes come from each session's full candidate moves, not from
// CSP's propagated domains, so a partial result remains possible.
type HybridSolver struct {
	config HybridConfig
	rand   *rand.Rand
}

func NewHybridSolver(config HybridConfig, source rand.Source) *HybridSolver {
	if source == nil {
		source = rand.NewSource(1)
	}
	return &HybridSolver{config: config, rand: rand.New(source)}
}

func (s *HybridSolver) Name() Algorithm { return Hybrid }

func (s *HybridSolver) Solve(ctx context.Context, in Input, reporter Reporter) (Result, error) {
	cfg := s.config
	if cfg.Genetic.PopulationSize <= 0 {
		cfg = DefaultHybridConfig()
	}

	csp := NewCSPSolver(cfg.CSP)
	cspResult, cspErr := csp.Solve(ctx, in, ReporterFunc(func(p Progress) {
		p.Message = "hybrid/csp: " + p.Message
		reporter.Report(p)
	}))
	if cspErr != nil && errors.Is(cspErr, domain.ErrCancelled) {
		return cspResult, cspErr
	}

	var seed chromosome
	if cfg.SeedPerturbation && cspResult.Schedule != nil {
		seed = chromosomeFrom(cspResult.Schedule)
	}

	ga := NewGeneticSolver(cfg.Genetic, rand.NewSource(s.rand.Int63()))
	gaResult, gaErr := ga.solveFrom(ctx, in, ReporterFunc(func(p Progress) {
		p.Message = "hybrid/genetic: " + p.Message
		reporter.Report(p)
	}), seed)

	if gaErr != nil && errors.Is(gaErr, domain.ErrCancelled) {
		return gaResult, gaErr
	}

	// Keep whichever phase produced the better outcome: the GA is
	// expected to win on soft score, but a CSP solution with fewer
	// unplaced sessions should not be discarded for a "smoother" one
	// that placed less.
	if len(cspResult.Unplaced) < len(gaResult.Unplaced) {
		return cspResult, cspErr
	}
	return gaResult, gaErr
}

func chromosomeFrom(schedule *domain.Schedule) chromosome {
	c := make(chromosome)
	for _, a := range schedule.Assignments() {
		c[a.Session.Key] = Move{
			TeacherID:   a.TeacherID,
			ClassroomID: a.ClassroomID,
			Day:         a.Day,
			StartSlot:   a.StartSlot,
			EndSlot:     a.EndSlot,
		}
	}
	return c
}
