package solver

import (
	"context"
	"math/rand"
	"sort"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// GeneticConfig parameters are the caps the Engine normalizes user
// input into; see spec §4.4.4.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	TournamentSize int
	CrossoverRate  float64
	MutationRate   float64
	ElitismCount   int
}

// DefaultGeneticConfig returns the Engine's default schedule.
func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 60,
		Generations:    150,
		TournamentSize: 4,
		CrossoverRate:  0.8,
		MutationRate:   0.1,
		ElitismCount:   2,
	}
}

// chromosome maps each session key to the move chosen for it. A session
// absent from the map is unplaced in that chromosome.
type chromosome map[string]Move

// GeneticSolver evolves a population of complete (possibly infeasible)
// assignments via tournament selection, single-point crossover over the
// session ordering, and per-gene mutation, keeping the configured
// number of elites every generation.
type GeneticSolver struct {
	config GeneticConfig
	rand   *rand.Rand
}

func NewGeneticSolver(config GeneticConfig, source rand.Source) *GeneticSolver {
	if source == nil {
		source = rand.NewSource(1)
	}
	return &GeneticSolver{config: config, rand: rand.New(source)}
}

func (s *GeneticSolver) Name() Algorithm { return Genetic }

func (s *GeneticSolver) Solve(ctx context.Context, in Input, reporter Reporter) (Result, error) {
	return s.solveFrom(ctx, in, reporter, nil)
}

// solveFrom runs the GA, optionally seeding the initial population with
// seed (used by HybridSolver to continue from a CSP solution).
func (s *GeneticSolver) solveFrom(ctx context.Context, in Input, reporter Reporter, seed chromosome) (Result, error) {
	cfg := s.config
	if cfg.PopulationSize <= 0 {
		cfg = DefaultGeneticConfig()
	}

	domains := make(map[string][]Move, len(in.Sessions))
	for _, session := range in.Sessions {
		domains[session.Key] = candidateMoves(in, session)
	}

	population := s.initialPopulation(in.Sessions, domains, cfg, seed)
	var best chromosome
	bestFitness := -1.0

	for gen := 0; gen < cfg.Generations; gen++ {
		select {
		case <-ctx.Done():
			return s.resultFromChromosome(in, best, gen), domain.ErrCancelled
		default:
		}

		fitnesses := make([]float64, len(population))
		for i, c := range population {
			fitnesses[i] = s.fitness(in, c)
			if fitnesses[i] > bestFitness {
				bestFitness = fitnesses[i]
				best = c
			}
		}

		order := argsortDesc(fitnesses)
		nextGen := make([]chromosome, 0, cfg.PopulationSize)
		for i := 0; i < cfg.ElitismCount && i < len(order); i++ {
			nextGen = append(nextGen, population[order[i]])
		}

		for len(nextGen) < cfg.PopulationSize {
			parentA := s.tournamentSelect(population, fitnesses, cfg.TournamentSize)
			parentB := s.tournamentSelect(population, fitnesses, cfg.TournamentSize)
			child := parentA
			if s.rand.Float64() < cfg.CrossoverRate {
				child = s.crossover(parentA, parentB, in.Sessions)
			}
			child = s.mutate(child, in.Sessions, domains, cfg.MutationRate)
			nextGen = append(nextGen, child)
		}
		population = nextGen

		if gen%10 == 0 {
			reporter.Report(Progress{
				SessionsTotal: len(in.Sessions),
				BestFitness:   bestFitness,
				Iteration:     gen,
				Message:       "genetic: evolving",
			})
		}
	}

	result := s.resultFromChromosome(in, best, cfg.Generations)
	if len(result.Unplaced) > 0 || result.HardViolations > 0 {
		return result, domain.NewEngineError(domain.KindInfeasible, "genetic: best individual still has unresolved constraints", result.Schedule)
	}
	return result, nil
}

func (s *GeneticSolver) initialPopulation(sessions []domain.Session, domains map[string][]Move, cfg GeneticConfig, seed chromosome) []chromosome {
	population := make([]chromosome, 0, cfg.PopulationSize)
	if seed != nil {
		population = append(population, seed)
	}
	for len(population) < cfg.PopulationSize {
		c := make(chromosome, len(sessions))
		for _, session := range sessions {
			moves := domains[session.Key]
			if len(moves) == 0 {
				continue
			}
			if seed != nil && len(population) > 0 {
				// perturb from the seed: usually keep its gene, occasionally randomize.
				if m, ok := seed[session.Key]; ok && s.rand.Float64() > cfg.MutationRate {
					c[session.Key] = m
					continue
				}
			}
			c[session.Key] = moves[s.rand.Intn(len(moves))]
		}
		population = append(population, c)
	}
	return population
}

// fitness scores a chromosome by decoding it into a schedule and
// combining feasibility (sessions successfully placed without hard
// violation) and soft score; infeasible placements are simply skipped
// rather than included, so fitness rewards growing a clean schedule.
func (s *GeneticSolver) fitness(in Input, c chromosome) float64 {
	_, _, hardViolations, softScore, placed := decode(in, c)
	total := len(in.Sessions)
	if total == 0 {
		return 0
	}
	placementRatio := float64(placed) / float64(total)
	penalty := float64(hardViolations) * 0.05
	return placementRatio*0.7 + softScore*0.3 - penalty
}

// decode builds a concrete schedule from a chromosome in session order,
// skipping any gene that would introduce a hard violation.
func decode(in Input, c chromosome) (*domain.Schedule, *domain.HourLedger, int, float64, int) {
	schedule := domain.NewSchedule()
	ledger := domain.NewHourLedger()
	placed := 0
	for _, session := range in.Sessions {
		move, ok := c[session.Key]
		if !ok {
			continue
		}
		candidate := assignmentFor(session, move)
		if len(in.Checker.HardViolations(candidate, schedule, ledger)) > 0 {
			continue
		}
		schedule.Add(candidate)
		applyLedger(ledger, in.Calendar, candidate, 1)
		placed++
	}
	hardViolations, softScore := scoreSchedule(in.Checker, schedule, ledger)
	return schedule, ledger, hardViolations, softScore, placed
}

func (s *GeneticSolver) resultFromChromosome(in Input, c chromosome, generations int) Result {
	if c == nil {
		c = chromosome{}
	}
	schedule, ledger, hardViolations, softScore, _ := decode(in, c)
	return Result{
		Schedule:       schedule,
		Unplaced:       unplacedSessions(in.Sessions, schedule),
		HardViolations: hardViolations,
		SoftScore:      softScore,
		Iterations:     generations,
		Ledger:         ledger,
	}
}

func (s *GeneticSolver) tournamentSelect(population []chromosome, fitnesses []float64, size int) chromosome {
	if size < 1 {
		size = 1
	}
	bestIdx := s.rand.Intn(len(population))
	for i := 1; i < size; i++ {
		candidate := s.rand.Intn(len(population))
		if fitnesses[candidate] > fitnesses[bestIdx] {
			bestIdx = candidate
		}
	}
	return population[bestIdx]
}

// crossover performs single-point crossover over session order: genes
// before the cut come from parentA, genes after from parentB.
func (s *GeneticSolver) crossover(parentA, parentB chromosome, sessions []domain.Session) chromosome {
	if len(sessions) == 0 {
		return chromosome{}
	}
	cut := s.rand.Intn(len(sessions))
	child := make(chromosome, len(sessions))
	for i, session := range sessions {
		source := parentA
		if i >= cut {
			source = parentB
		}
		if m, ok := source[session.Key]; ok {
			child[session.Key] = m
		}
	}
	return child
}

// mutate replaces each gene with a new random candidate independently
// with probability rate.
func (s *GeneticSolver) mutate(c chromosome, sessions []domain.Session, domains map[string][]Move, rate float64) chromosome {
	mutated := make(chromosome, len(c))
	for k, v := range c {
		mutated[k] = v
	}
	for _, session := range sessions {
		moves := domains[session.Key]
		if len(moves) == 0 {
			continue
		}
		if s.rand.Float64() < rate {
			mutated[session.Key] = moves[s.rand.Intn(len(moves))]
		}
	}
	return mutated
}

func argsortDesc(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return values[idx[i]] > values[idx[j]] })
	return idx
}
