package domain

// ConflictSeverity classifies how serious a detected residual conflict
// is, independent of the ViolationKind that produced it.
type ConflictSeverity string

const (
	SeverityCritical ConflictSeverity = "critical" // teacher/room/student-group
	SeverityHigh     ConflictSeverity = "high"     // capacity/feature
	SeverityMedium   ConflictSeverity = "medium"   // workload excess
	SeverityLow      ConflictSeverity = "low"      // soft-preference violations
)

// Conflict is one residual problem the Conflict Detector found in a
// Schedule, independent of which solver produced it.
type Conflict struct {
	Kind     ViolationKind
	Severity ConflictSeverity
	Day      Weekday
	Keys     []string // session keys of every assignment involved
	Detail   string
}

func severityFor(kind ViolationKind) ConflictSeverity {
	switch kind {
	case ViolationTeacherConflict, ViolationRoomConflict, ViolationStudentGroupConflict:
		return SeverityCritical
	case ViolationCapacityShortfall, ViolationFeatureShortfall:
		return SeverityHigh
	case ViolationWorkloadExceeded:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DetectConflicts is the Conflict Detector (spec §4.6): a post-hoc,
// stateless, idempotent pass over any Schedule. It evaluates every
// assignment against the hard constraints and emits one Conflict per
// distinct violation (deduplicated by kind and the assignments
// involved): teacher/room/student-group overlaps as well as
// availability, capacity, feature and workload violations. It does not
// matter which solver, if any, produced the schedule.
func DetectConflicts(schedule *Schedule, checker *ConstraintChecker, ledger *HourLedger) []Conflict {
	var conflicts []Conflict
	assignments := schedule.Assignments()

	seen := make(map[string]bool)
	for _, a := range assignments {
		violations := checker.HardViolations(a, emptyScheduleExcept(schedule, a.Session.Key), ledger)
		for _, v := range violations {
			pairKey := pairKeyFor(a.Session.Key, v.WithKey, string(v.Kind))
			if seen[pairKey] {
				continue
			}
			seen[pairKey] = true
			keys := []string{a.Session.Key}
			if v.WithKey != "" {
				keys = append(keys, v.WithKey)
			}
			conflicts = append(conflicts, Conflict{
				Kind:     v.Kind,
				Severity: severityFor(v.Kind),
				Day:      a.Day,
				Keys:     keys,
				Detail:   v.Detail,
			})
		}
	}
	return conflicts
}

// emptyScheduleExcept re-checks an assignment already present in
// schedule by checking it against every *other* assignment, avoiding a
// trivial self-conflict.
func emptyScheduleExcept(schedule *Schedule, exceptKey string) *Schedule {
	filtered := NewSchedule()
	for _, a := range schedule.Assignments() {
		if a.Session.Key != exceptKey {
			filtered.Add(a)
		}
	}
	return filtered
}

func pairKeyFor(a, b, kind string) string {
	if a > b {
		a, b = b, a
	}
	return kind + "|" + a + "|" + b
}
