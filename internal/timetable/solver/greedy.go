package solver

import (
	"context"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// GreedySolver places sessions one at a time, highest priority first,
// into the first feasible slot it finds, never revisiting an earlier
// decision. It is the fastest variant and the Engine's default choice
// for small inputs (spec §4.4.1).
type GreedySolver struct{}

func NewGreedySolver() *GreedySolver { return &GreedySolver{} }

func (s *GreedySolver) Name() Algorithm { return Greedy }

func (s *GreedySolver) Solve(ctx context.Context, in Input, reporter Reporter) (Result, error) {
	schedule := domain.NewSchedule()
	ledger := domain.NewHourLedger()
	var unplaced []domain.Session

	reporter.Report(Progress{SessionsTotal: len(in.Sessions), Message: "greedy: started"})

	for i, session := range in.Sessions {
		select {
		case <-ctx.Done():
			return Result{Schedule: schedule, Unplaced: unplaced, Ledger: ledger}, domain.ErrCancelled
		default:
		}

		placed := false
		for _, move := range candidateMoves(in, session) {
			candidate := assignmentFor(session, move)
			if len(in.Checker.HardViolations(candidate, schedule, ledger)) > 0 {
				continue
			}
			schedule.Add(candidate)
			applyLedger(ledger, in.Calendar, candidate, 1)
			placed = true
			break
		}
		if !placed {
			unplaced = append(unplaced, session)
		}

		reporter.Report(Progress{
			SessionsPlaced: schedule.Len(),
			SessionsTotal:  len(in.Sessions),
			Iteration:      i + 1,
		})
	}

	hardViolations, softScore := scoreSchedule(in.Checker, schedule, ledger)
	result := Result{
		Schedule:       schedule,
		Unplaced:       unplaced,
		HardViolations: hardViolations,
		SoftScore:      softScore,
		Iterations:     len(in.Sessions),
		Ledger:         ledger,
	}

	if len(unplaced) > 0 {
		return result, domain.NewEngineError(domain.KindInfeasible, "greedy: could not place every session", schedule)
	}
	return result, nil
}
