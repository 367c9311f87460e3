package solver

import (
	"context"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// CSPConfig bounds the backtracking phase that follows AC-3
// propagation.
type CSPConfig struct {
	MaxBacktracks int
}

// DefaultCSPConfig returns a generous backtrack bound: AC-3 has already
// pruned the domains, so the search space remaining is normally small
// (spec §4.4.5).
func DefaultCSPConfig() CSPConfig {
	return CSPConfig{MaxBacktracks: 20000}
}

// CSPSolver models the problem as a binary constraint graph (one
// variable per session, domain = candidate moves) and runs AC-3 to
// remove values with no supporting value in a neighboring session's
// domain before falling back to MRV/LCV backtracking over the reduced
// domains.
type CSPSolver struct {
	config CSPConfig
}

func NewCSPSolver(config CSPConfig) *CSPSolver {
	return &CSPSolver{config: config}
}

func (s *CSPSolver) Name() Algorithm { return CSP }

func (s *CSPSolver) Solve(ctx context.Context, in Input, reporter Reporter) (Result, error) {
	maxBacktracks := s.config.MaxBacktracks
	if maxBacktracks <= 0 {
		maxBacktracks = DefaultCSPConfig().MaxBacktracks
	}

	reporter.Report(Progress{SessionsTotal: len(in.Sessions), Message: "csp: propagating"})

	domains := make(map[string][]Move, len(in.Sessions))
	byKey := make(map[string]domain.Session, len(in.Sessions))
	order := make([]string, 0, len(in.Sessions))
	for _, session := range in.Sessions {
		byKey[session.Key] = session
		domains[session.Key] = candidateMoves(in, session)
		order = append(order, session.Key)
	}

	wiped := propagateAC3(ctx, domains, order)
	if ctx.Err() != nil {
		return Result{Schedule: domain.NewSchedule(), Unplaced: in.Sessions}, domain.ErrCancelled
	}
	if wiped != "" {
		return Result{
			Schedule: domain.NewSchedule(),
			Unplaced: in.Sessions,
		}, domain.NewEngineError(domain.KindInfeasible, "csp: domain of "+wiped+" emptied by propagation", nil)
	}

	bt := &btState{
		in:            in,
		schedule:      domain.NewSchedule(),
		ledger:        domain.NewHourLedger(),
		domains:       domains,
		byKey:         byKey,
		maxBacktracks: maxBacktracks,
		reporter:      reporter,
		total:         len(in.Sessions),
	}

	ok, err := bt.search(ctx, order)
	hardViolations, softScore := scoreSchedule(in.Checker, bt.schedule, bt.ledger)
	unplaced := unplacedSessions(in.Sessions, bt.schedule)

	result := Result{
		Schedule:       bt.schedule,
		Unplaced:       unplaced,
		HardViolations: hardViolations,
		SoftScore:      softScore,
		Iterations:     bt.backtracks,
		Ledger:         bt.ledger,
	}
	if err != nil {
		return result, err
	}
	if !ok {
		return result, domain.NewEngineError(domain.KindInfeasible, "csp: no complete assignment found after propagation", bt.schedule)
	}
	return result, nil
}

// propagateAC3 enforces arc consistency across every pair of sessions:
// a move in session i's domain survives only if some move in session
// j's domain does not conflict with it, for every other session j.
// Returns the session key whose domain emptied, or "" on success.
func propagateAC3(ctx context.Context, domains map[string][]Move, order []string) string {
	type arc struct{ i, j string }
	queue := make([]arc, 0, len(order)*len(order))
	for _, i := range order {
		for _, j := range order {
			if i != j {
				queue = append(queue, arc{i, j})
			}
		}
	}

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return order[0]
		default:
		}

		a := queue[0]
		queue = queue[1:]

		if reviseDomain(domains, a.i, a.j) {
			if len(domains[a.i]) == 0 {
				return a.i
			}
			for _, k := range order {
				if k != a.i && k != a.j {
					queue = append(queue, arc{k, a.i})
				}
			}
		}
	}
	return ""
}

// reviseDomain removes every move from domains[i] that conflicts with
// every move in domains[j], reporting whether it removed anything.
func reviseDomain(domains map[string][]Move, i, j string) bool {
	revised := false
	kept := make([]Move, 0, len(domains[i]))
	for _, mi := range domains[i] {
		hasSupport := false
		for _, mj := range domains[j] {
			if !movesConflict(mi, mj) {
				hasSupport = true
				break
			}
		}
		if hasSupport {
			kept = append(kept, mi)
		} else {
			revised = true
		}
	}
	domains[i] = kept
	return revised
}

func movesConflict(a, b Move) bool {
	if a.Day != b.Day {
		return false
	}
	overlaps := a.StartSlot < b.EndSlot && b.StartSlot < a.EndSlot
	if !overlaps {
		return false
	}
	return a.TeacherID == b.TeacherID || a.ClassroomID == b.ClassroomID
}
