package solver

import (
	"context"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// BacktrackingConfig controls the search bounds of BacktrackingSolver.
type BacktrackingConfig struct {
	// MaxBacktracks caps the number of times the search abandons a
	// session's chosen move and retries another, across the whole run.
	// Exceeding it surfaces ErrBacktrackLimit with the best partial
	// schedule found so far.
	MaxBacktracks int
}

// DefaultBacktrackingConfig returns the Engine's default bound (spec
// §4.4.2: capped backtracks, not exhaustive search).
func DefaultBacktrackingConfig() BacktrackingConfig {
	return BacktrackingConfig{MaxBacktracks: 10000}
}

// BacktrackingSolver performs constructive search with most-constrained
// variable ordering (MRV), least-constraining value ordering (LCV), and
// forward checking: after each placement it discards moves of
// not-yet-placed sessions that the placement would invalidate, failing
// fast when a session's domain empties.
type BacktrackingSolver struct {
	config BacktrackingConfig
}

func NewBacktrackingSolver(config BacktrackingConfig) *BacktrackingSolver {
	return &BacktrackingSolver{config: config}
}

func (s *BacktrackingSolver) Name() Algorithm { return Backtracking }

type btState struct {
	in         Input
	schedule   *domain.Schedule
	ledger     *domain.HourLedger
	domains    map[string][]Move // session key -> remaining candidate moves
	byKey      map[string]domain.Session
	backtracks int
	maxBacktracks int
	reporter   Reporter
	total      int
}

func (s *BacktrackingSolver) Solve(ctx context.Context, in Input, reporter Reporter) (Result, error) {
	state := &btState{
		in:            in,
		schedule:      domain.NewSchedule(),
		ledger:        domain.NewHourLedger(),
		domains:       make(map[string][]Move, len(in.Sessions)),
		byKey:         make(map[string]domain.Session, len(in.Sessions)),
		maxBacktracks: s.config.MaxBacktracks,
		reporter:      reporter,
		total:         len(in.Sessions),
	}
	if state.maxBacktracks <= 0 {
		state.maxBacktracks = DefaultBacktrackingConfig().MaxBacktracks
	}

	unassigned := make([]string, 0, len(in.Sessions))
	for _, session := range in.Sessions {
		state.byKey[session.Key] = session
		state.domains[session.Key] = candidateMoves(in, session)
		unassigned = append(unassigned, session.Key)
	}

	reporter.Report(Progress{SessionsTotal: state.total, Message: "backtracking: started"})

	ok, err := state.search(ctx, unassigned)
	hardViolations, softScore := scoreSchedule(in.Checker, state.schedule, state.ledger)

	unplaced := unplacedSessions(in.Sessions, state.schedule)
	result := Result{
		Schedule:       state.schedule,
		Unplaced:       unplaced,
		HardViolations: hardViolations,
		SoftScore:      softScore,
		Iterations:     state.backtracks,
		Ledger:         state.ledger,
	}
	if err != nil {
		return result, err
	}
	if !ok {
		return result, domain.NewEngineError(domain.KindInfeasible, "backtracking: no complete assignment found", state.schedule)
	}
	return result, nil
}

// search assigns one session per call, chosen by MRV, trying its moves
// in LCV order, and recurses; forward checking prunes other sessions'
// domains on each tentative placement and restores them on backtrack.
func (s *btState) search(ctx context.Context, unassigned []string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, domain.ErrCancelled
	default:
	}

	if len(unassigned) == 0 {
		return true, nil
	}
	if s.backtracks > s.maxBacktracks {
		return false, domain.NewEngineError(domain.KindBacktrackLimit, "backtracking: backtrack limit reached", s.schedule)
	}

	key, rest := selectMRV(unassigned, s.domains)
	session := s.byKey[key]
	moves := orderByLCV(s.domains[key], rest, s.domains)

	for _, move := range moves {
		candidate := assignmentFor(session, move)
		if len(s.in.Checker.HardViolations(candidate, s.schedule, s.ledger)) > 0 {
			continue
		}

		s.schedule.Add(candidate)
		applyLedger(s.ledger, s.in.Calendar, candidate, 1)

		pruned := s.forwardCheck(rest, candidate)
		deadEnd := false
		for _, k := range rest {
			if len(s.domains[k]) == 0 {
				deadEnd = true
				break
			}
		}

		var ok bool
		var err error
		if !deadEnd {
			ok, err = s.search(ctx, rest)
		}

		if ok {
			return true, nil
		}

		s.restore(pruned)
		s.schedule.Remove(session.Key)
		applyLedger(s.ledger, s.in.Calendar, candidate, -1)
		s.backtracks++
		s.reporter.Report(Progress{
			SessionsPlaced: s.schedule.Len(),
			SessionsTotal:  s.total,
			Iteration:      s.backtracks,
			Message:        "backtracking: retrying",
		})

		if err != nil {
			return false, err
		}
		if s.backtracks > s.maxBacktracks {
			return false, domain.NewEngineError(domain.KindBacktrackLimit, "backtracking: backtrack limit reached", s.schedule)
		}
	}

	return false, nil
}

type prunedEntry struct {
	key    string
	moves  []Move
}

// forwardCheck removes, from every still-unassigned session's domain,
// any move that would now directly conflict with candidate (same
// teacher, room, or day/slot overlap), returning what it removed so the
// caller can restore it on backtrack.
func (s *btState) forwardCheck(rest []string, candidate domain.Assignment) []prunedEntry {
	var pruned []prunedEntry
	for _, key := range rest {
		domainMoves := s.domains[key]
		kept := domainMoves[:0:0]
		var removed []Move
		for _, m := range domainMoves {
			if conflictsWith(m, candidate) {
				removed = append(removed, m)
				continue
			}
			kept = append(kept, m)
		}
		if len(removed) > 0 {
			s.domains[key] = kept
			pruned = append(pruned, prunedEntry{key: key, moves: removed})
		}
	}
	return pruned
}

func (s *btState) restore(pruned []prunedEntry) {
	for _, p := range pruned {
		s.domains[p.key] = append(s.domains[p.key], p.moves...)
	}
}

func conflictsWith(m Move, a domain.Assignment) bool {
	if m.Day != a.Day {
		return false
	}
	overlapsSlots := m.StartSlot < a.EndSlot && a.StartSlot < m.EndSlot
	if !overlapsSlots {
		return false
	}
	return m.TeacherID == a.TeacherID || m.ClassroomID == a.ClassroomID
}

// selectMRV picks the unassigned session with the smallest remaining
// domain (minimum-remaining-values heuristic), breaking ties by the
// earliest position in unassigned (which is itself priority-ordered by
// the extractor).
func selectMRV(unassigned []string, domains map[string][]Move) (chosen string, rest []string) {
	best := 0
	for i := 1; i < len(unassigned); i++ {
		if len(domains[unassigned[i]]) < len(domains[unassigned[best]]) {
			best = i
		}
	}
	chosen = unassigned[best]
	rest = make([]string, 0, len(unassigned)-1)
	for i, key := range unassigned {
		if i != best {
			rest = append(rest, key)
		}
	}
	return chosen, rest
}

// orderByLCV orders a session's candidate moves by how few options they
// would eliminate from other unassigned sessions' domains, preferring
// the least constraining choice first.
func orderByLCV(moves []Move, rest []string, domains map[string][]Move) []Move {
	type scored struct {
		move  Move
		count int
	}
	scoredMoves := make([]scored, len(moves))
	for i, m := range moves {
		eliminated := 0
		for _, key := range rest {
			for _, other := range domains[key] {
				if conflictsWith(other, domain.Assignment{Day: m.Day, StartSlot: m.StartSlot, EndSlot: m.EndSlot, TeacherID: m.TeacherID, ClassroomID: m.ClassroomID}) {
					eliminated++
				}
			}
		}
		scoredMoves[i] = scored{move: m, count: eliminated}
	}
	for i := 1; i < len(scoredMoves); i++ {
		j := i
		for j > 0 && scoredMoves[j-1].count > scoredMoves[j].count {
			scoredMoves[j-1], scoredMoves[j] = scoredMoves[j], scoredMoves[j-1]
			j--
		}
	}
	ordered := make([]Move, len(scoredMoves))
	for i, sm := range scoredMoves {
		ordered[i] = sm.move
	}
	return ordered
}

func unplacedSessions(sessions []domain.Session, schedule *domain.Schedule) []domain.Session {
	var unplaced []domain.Session
	for _, s := range sessions {
		if _, ok := schedule.For(s.Key); !ok {
			unplaced = append(unplaced, s)
		}
	}
	return unplaced
}
