package solver

import (
	"context"
	"math"
	"math/rand"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// AnnealingConfig parameters are caps the Engine normalizes user input
// into; see spec §4.4.3.
type AnnealingConfig struct {
	InitialTemperature float64
	CoolingRate        float64 // geometric cooling: T *= CoolingRate each iteration
	MinTemperature     float64
	MaxIterations      int
}

// DefaultAnnealingConfig returns the Engine's default schedule.
func DefaultAnnealingConfig() AnnealingConfig {
	return AnnealingConfig{
		InitialTemperature: 100.0,
		CoolingRate:        0.995,
		MinTemperature:     0.01,
		MaxIterations:      10000,
	}
}

// AnnealingSolver starts from a greedy construction and repeatedly
// proposes a random reassignment of one session, accepting improving
// moves always and worsening moves with Metropolis probability
// exp(-delta/T), cooling T geometrically each iteration.
type AnnealingSolver struct {
	config AnnealingConfig
	rand   *rand.Rand
}

func NewAnnealingSolver(config AnnealingConfig, source rand.Source) *AnnealingSolver {
	if source == nil {
		source = rand.NewSource(1)
	}
	return &AnnealingSolver{config: config, rand: rand.New(source)}
}

func (s *AnnealingSolver) Name() Algorithm { return SimulatedAnnealing }

func (s *AnnealingSolver) Solve(ctx context.Context, in Input, reporter Reporter) (Result, error) {
	cfg := s.config
	if cfg.InitialTemperature <= 0 {
		cfg = DefaultAnnealingConfig()
	}

	greedy := NewGreedySolver()
	current, _ := greedy.Solve(ctx, in, NoopReporter)
	if current.Schedule == nil {
		current.Schedule = domain.NewSchedule()
	}
	if current.Ledger == nil {
		current.Ledger = domain.NewHourLedger()
	}

	currentEnergy := energy(in, current.Schedule, current.Ledger)
	best := cloneState(current)
	bestEnergy := currentEnergy

	temperature := cfg.InitialTemperature
	iterations := 0

	reporter.Report(Progress{
		SessionsPlaced: current.Schedule.Len(),
		SessionsTotal:  len(in.Sessions),
		BestFitness:    -bestEnergy,
		Message:        "annealing: seeded from greedy",
	})

	for iterations < cfg.MaxIterations && temperature > cfg.MinTemperature {
		select {
		case <-ctx.Done():
			return resultFrom(best, in), domain.ErrCancelled
		default:
		}
		iterations++

		proposal, proposedLedger, moved := proposeMove(s.rand, in, current.Schedule, current.Ledger)
		if !moved {
			temperature *= cfg.CoolingRate
			continue
		}

		proposedEnergy := energy(in, proposal, proposedLedger)
		delta := proposedEnergy - currentEnergy

		if delta < 0 || s.rand.Float64() < math.Exp(-delta/temperature) {
			current.Schedule = proposal
			current.Ledger = proposedLedger
			currentEnergy = proposedEnergy

			if currentEnergy < bestEnergy {
				bestEnergy = currentEnergy
				best = cloneState(current)
			}
		}

		temperature *= cfg.CoolingRate

		if iterations%50 == 0 {
			reporter.Report(Progress{
				SessionsPlaced: current.Schedule.Len(),
				SessionsTotal:  len(in.Sessions),
				BestFitness:    -bestEnergy,
				Iteration:      iterations,
				Message:        "annealing: cooling",
			})
		}
	}

	result := resultFrom(best, in)
	result.Iterations = iterations
	if len(result.Unplaced) > 0 {
		return result, domain.NewEngineError(domain.KindInfeasible, "annealing: converged with unplaced sessions", result.Schedule)
	}
	return result, nil
}

func cloneState(r Result) Result {
	return Result{Schedule: r.Schedule.Clone(), Ledger: r.Ledger.Clone()}
}

func resultFrom(r Result, in Input) Result {
	hardViolations, softScore := scoreSchedule(in.Checker, r.Schedule, r.Ledger)
	return Result{
		Schedule:       r.Schedule,
		Unplaced:       unplacedSessions(in.Sessions, r.Schedule),
		HardViolations: hardViolations,
		SoftScore:      softScore,
		Ledger:         r.Ledger,
	}
}

// energy is the quantity Simulated Annealing minimizes: hard violations
// dominate overwhelmingly so the search never prefers a worse-feasible
// solution, with the soft score (inverted) breaking ties among equally
// feasible candidates.
func energy(in Input, schedule *domain.Schedule, ledger *domain.HourLedger) float64 {
	hardViolations, softScore := scoreSchedule(in.Checker, schedule, ledger)
	unplacedPenalty := float64(len(in.Sessions) - schedule.Len())
	return float64(hardViolations)*1000 + unplacedPenalty*500 + (1 - softScore)
}

// proposeMove picks one placed session at random and relocates it to a
// different feasible candidate move, or (if unplaced sessions remain)
// attempts to place one of them; returns ok=false when no change could
// be constructed.
func proposeMove(r *rand.Rand, in Input, schedule *domain.Schedule, ledger *domain.HourLedger) (*domain.Schedule, *domain.HourLedger, bool) {
	unplaced := unplacedSessions(in.Sessions, schedule)
	if len(unplaced) > 0 && r.Float64() < 0.5 {
		session := unplaced[r.Intn(len(unplaced))]
		moves := candidateMoves(in, session)
		if len(moves) == 0 {
			return nil, nil, false
		}
		shuffleMoves(r, moves)
		for _, m := range moves {
			candidate := assignmentFor(session, m)
			proposal := schedule.Clone()
			proposedLedger := ledger.Clone()
			if len(in.Checker.HardViolations(candidate, proposal, proposedLedger)) > 0 {
				continue
			}
			proposal.Add(candidate)
			applyLedger(proposedLedger, in.Calendar, candidate, 1)
			return proposal, proposedLedger, true
		}
		return nil, nil, false
	}

	assignments := schedule.Assignments()
	if len(assignments) == 0 {
		return nil, nil, false
	}
	victim := assignments[r.Intn(len(assignments))]
	moves := candidateMoves(in, victim.Session)
	if len(moves) == 0 {
		return nil, nil, false
	}
	shuffleMoves(r, moves)

	proposal := schedule.Clone()
	proposedLedger := ledger.Clone()
	proposal.Remove(victim.Session.Key)
	applyLedger(proposedLedger, in.Calendar, victim, -1)

	for _, m := range moves {
		candidate := assignmentFor(victim.Session, m)
		if len(in.Checker.HardViolations(candidate, proposal, proposedLedger)) > 0 {
			continue
		}
		proposal.Add(candidate)
		applyLedger(proposedLedger, in.Calendar, candidate, 1)
		return proposal, proposedLedger, true
	}
	return nil, nil, false
}

func shuffleMoves(r *rand.Rand, moves []Move) {
	r.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
}
