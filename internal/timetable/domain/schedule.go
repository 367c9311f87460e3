package domain

import "sort"

// Schedule is an ordered collection of Assignments. It is solver-local:
// created fresh per run, mutated freely by the owning solver, and
// discarded (its final state copied into a Result) when the run ends.
// Unlike the rest of the ambient stack's aggregates, Schedule carries
// no domain events — there is no outbox to notify; callers observe a
// run's progress through the Progress/Control channel instead.
type Schedule struct {
	assignments []Assignment
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{}
}

// Assignments returns the schedule's assignments ordered by
// (Day, StartSlot).
func (s *Schedule) Assignments() []Assignment {
	out := make([]Assignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}

// Len returns the number of assignments currently in the schedule.
func (s *Schedule) Len() int {
	return len(s.assignments)
}

// Add appends an assignment and keeps the schedule sorted. It performs
// no constraint checking itself — that is the Constraint Checker's
// responsibility, invoked by the solver before calling Add.
func (s *Schedule) Add(a Assignment) {
	s.assignments = append(s.assignments, a)
	s.sort()
}

// Remove deletes the assignment for the given session key, if present.
func (s *Schedule) Remove(sessionKey string) {
	filtered := s.assignments[:0]
	for _, a := range s.assignments {
		if a.Session.Key != sessionKey {
			filtered = append(filtered, a)
		}
	}
	s.assignments = filtered
}

// Replace swaps the assignment for a.Session.Key with a, preserving
// order; used by SA/GA moves that relocate an existing assignment.
func (s *Schedule) Replace(a Assignment) {
	for i := range s.assignments {
		if s.assignments[i].Session.Key == a.Session.Key {
			s.assignments[i] = a
			s.sort()
			return
		}
	}
	s.Add(a)
}

// For returns the assignment for sessionKey, if one exists.
func (s *Schedule) For(sessionKey string) (Assignment, bool) {
	for _, a := range s.assignments {
		if a.Session.Key == sessionKey {
			return a, true
		}
	}
	return Assignment{}, false
}

// ByTeacherDay returns every assignment for teacherID on day.
func (s *Schedule) ByTeacherDay(teacherID string, day Weekday) []Assignment {
	var out []Assignment
	for _, a := range s.assignments {
		if a.TeacherID == teacherID && a.Day == day {
			out = append(out, a)
		}
	}
	return out
}

// ByClassroomDay returns every assignment for classroomID on day.
func (s *Schedule) ByClassroomDay(classroomID string, day Weekday) []Assignment {
	var out []Assignment
	for _, a := range s.assignments {
		if a.ClassroomID == classroomID && a.Day == day {
			out = append(out, a)
		}
	}
	return out
}

// ByStudentGroupDay returns every assignment sharing the student-group
// key on day.
func (s *Schedule) ByStudentGroupDay(courseID, divisionID, batchID string, day Weekday) []Assignment {
	var out []Assignment
	for _, a := range s.assignments {
		c, d, b := a.Session.StudentGroupKey()
		if c == courseID && d == divisionID && b == batchID && a.Day == day {
			out = append(out, a)
		}
	}
	return out
}

// Clone returns a deep-enough copy for solvers that must branch
// (backtracking) or mutate a candidate independently of the current
// best (SA/GA).
func (s *Schedule) Clone() *Schedule {
	clone := &Schedule{assignments: make([]Assignment, len(s.assignments))}
	copy(clone.assignments, s.assignments)
	return clone
}

func (s *Schedule) sort() {
	sort.SliceStable(s.assignments, func(i, j int) bool {
		a, b := s.assignments[i], s.assignments[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.StartSlot < b.StartSlot
	})
}
