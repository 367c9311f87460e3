package domain

import "errors"

// The six error kinds the Optimization Engine surfaces (spec §7). Every
// component boundary returns one of these (wrapped in EngineError) or a
// plain Go error for genuine invariant breaches.
var (
	ErrInvalidInput    = errors.New("timetable: invalid input")
	ErrNoFeasibleSlots = errors.New("timetable: no feasible slots")
	ErrInfeasible      = errors.New("timetable: infeasible")
	ErrBacktrackLimit  = errors.New("timetable: backtrack limit reached")
	ErrCancelled       = errors.New("timetable: cancelled")
	ErrInternal        = errors.New("timetable: internal error")
)

// ErrorKind names one of the six terminal-failure categories a run can
// end in.
type ErrorKind string

const (
	KindInvalidInput    ErrorKind = "invalid_input"
	KindNoFeasibleSlots ErrorKind = "no_feasible_slots"
	KindInfeasible      ErrorKind = "infeasible"
	KindBacktrackLimit  ErrorKind = "backtrack_limit"
	KindCancelled       ErrorKind = "cancelled"
	KindInternal        ErrorKind = "internal"
)

// EngineError wraps one of the sentinel errors above with a
// human-readable message, an optional partial schedule, and any
// diagnostics collected along the way (e.g. Session Extractor
// warnings). It unwraps to its sentinel via errors.Is.
type EngineError struct {
	Kind        ErrorKind
	Message     string
	Partial     *Schedule
	Diagnostics []string
	sentinel    error
}

func (e *EngineError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.sentinel.Error()
}

// Unwrap exposes the underlying sentinel so callers can use
// errors.Is(err, domain.ErrInfeasible) etc.
func (e *EngineError) Unwrap() error {
	return e.sentinel
}

// NewEngineError constructs an EngineError of kind with the given
// message and optional partial schedule/diagnostics.
func NewEngineError(kind ErrorKind, message string, partial *Schedule, diagnostics ...string) *EngineError {
	return &EngineError{
		Kind:        kind,
		Message:     message,
		Partial:     partial,
		Diagnostics: diagnostics,
		sentinel:    sentinelFor(kind),
	}
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindNoFeasibleSlots:
		return ErrNoFeasibleSlots
	case KindInfeasible:
		return ErrInfeasible
	case KindBacktrackLimit:
		return ErrBacktrackLimit
	case KindCancelled:
		return ErrCancelled
	default:
		return ErrInternal
	}
}
