package domain

// SoftWeights are the five term weights the soft score combines. They
// are parameters of the Constraint Checker rather than hard-coded
// constants, resolving the specification's open question about
// contradictory quoted weights in different source documents.
type SoftWeights struct {
	PreferredTime    float64
	RoomUtilization  float64
	WorkloadBalance  float64
	ConsecutiveHours float64
	IntraDayGap      float64
}

// DefaultSoftWeights returns the Checker's default term weights,
// summing to 1.0.
func DefaultSoftWeights() SoftWeights {
	return SoftWeights{
		PreferredTime:    0.30,
		RoomUtilization:  0.25,
		WorkloadBalance:  0.20,
		ConsecutiveHours: 0.15,
		IntraDayGap:      0.10,
	}
}

// ConstraintChecker is the stateless pair of pure functions the
// specification calls hardViolations and softScore. It holds only
// read-only snapshot lookups and weight configuration; it never
// retains state across calls. The per-run teacher-hour ledger is
// supplied by the caller on every invocation, not owned by the
// Checker.
type ConstraintChecker struct {
	teachers    map[string]Teacher
	classrooms  map[string]Classroom
	calendar    *SlotCalendar
	softWeights SoftWeights
}

// NewConstraintChecker builds a Checker over a fixed snapshot of
// teachers and classrooms and a fixed slot calendar, with the given
// soft-score weights.
func NewConstraintChecker(teachers []Teacher, classrooms []Classroom, calendar *SlotCalendar, weights SoftWeights) *ConstraintChecker {
	c := &ConstraintChecker{
		teachers:    make(map[string]Teacher, len(teachers)),
		classrooms:  make(map[string]Classroom, len(classrooms)),
		calendar:    calendar,
		softWeights: weights,
	}
	for _, t := range teachers {
		c.teachers[t.ID] = t
	}
	for _, r := range classrooms {
		c.classrooms[r.ID] = r
	}
	return c
}

// HardViolations returns every hard-constraint failure for placing a
// into schedule; it never early-exits, so callers get the complete
// diagnostic list even when they only care whether it is empty.
func (c *ConstraintChecker) HardViolations(a Assignment, schedule *Schedule, ledger *HourLedger) []Violation {
	var violations []Violation

	teacher, hasTeacher := c.teachers[a.TeacherID]
	classroom, hasClassroom := c.classrooms[a.ClassroomID]

	for _, other := range schedule.ByTeacherDay(a.TeacherID, a.Day) {
		if other.Session.Key == a.Session.Key || !a.OverlapsSlots(other) {
			continue
		}
		violations = append(violations, Violation{Kind: ViolationTeacherConflict, WithKey: other.Session.Key})
	}

	for _, other := range schedule.ByClassroomDay(a.ClassroomID, a.Day) {
		if other.Session.Key == a.Session.Key || !a.OverlapsSlots(other) {
			continue
		}
		bothLabs := a.IsLabSession() && other.IsLabSession()
		distinctTeachers := a.TeacherID != other.TeacherID
		distinctCourses := a.Session.CourseID != other.Session.CourseID
		if bothLabs && distinctTeachers && distinctCourses {
			continue
		}
		violations = append(violations, Violation{Kind: ViolationRoomConflict, WithKey: other.Session.Key})
	}

	courseID, divisionID, batchID := a.Session.StudentGroupKey()
	for _, other := range schedule.ByStudentGroupDay(courseID, divisionID, batchID, a.Day) {
		if other.Session.Key == a.Session.Key || !a.OverlapsSlots(other) {
			continue
		}
		bothElective := a.Session.IsElective && other.Session.IsElective
		distinctCourses := a.Session.CourseID != other.Session.CourseID
		if bothElective && distinctCourses {
			continue
		}
		violations = append(violations, Violation{Kind: ViolationStudentGroupConflict, WithKey: other.Session.Key})
	}

	start, end, resolved := c.calendar.Window(a.Day, a.StartSlot, a.EndSlot)
	if !resolved {
		violations = append(violations, Violation{Kind: ViolationTeacherUnavailable, Detail: "slot range unresolvable"})
		violations = append(violations, Violation{Kind: ViolationRoomUnavailable, Detail: "slot range unresolvable"})
	} else {
		if !hasTeacher {
			violations = append(violations, Violation{Kind: ViolationTeacherUnavailable, Detail: "unknown teacher"})
		} else if avail, ok := teacher.AvailableOn(a.Day); !ok || !WithinWindow(start, end, avail.StartTime, avail.EndTime) {
			violations = append(violations, Violation{Kind: ViolationTeacherUnavailable})
		}
		if !hasClassroom {
			violations = append(violations, Violation{Kind: ViolationRoomUnavailable, Detail: "unknown classroom"})
		} else if avail, ok := classroom.AvailableOn(a.Day); !ok || !WithinWindow(start, end, avail.StartTime, avail.EndTime) {
			violations = append(violations, Violation{Kind: ViolationRoomUnavailable})
		}
	}

	if hasClassroom {
		if classroom.Capacity < a.Session.StudentCount {
			violations = append(violations, Violation{Kind: ViolationCapacityShortfall})
		}
		requiresLab := a.Session.RoomConstraints.RequiresLab
		if !classroom.HasFeatures(a.Session.RoomConstraints.RequiredFeatures) || (requiresLab && !classroom.IsLabCapable()) {
			violations = append(violations, Violation{Kind: ViolationFeatureShortfall})
		}
	}

	if hasTeacher {
		durationHours := c.assignmentHours(a)
		if ledger.Hours(a.TeacherID)+durationHours > float64(teacher.MaxHoursPerWeek) {
			violations = append(violations, Violation{Kind: ViolationWorkloadExceeded})
		}
	}

	return violations
}

// assignmentHours estimates the wall-clock hours an assignment
// occupies from its slot span; callers needing exact slot-length
// accounting pass a calendar with uniform slot durations, as the Slot
// Calendar component always produces.
func (c *ConstraintChecker) assignmentHours(a Assignment) float64 {
	slots := a.EndSlot - a.StartSlot
	if slots <= 0 {
		slots = 1
	}
	// A span of zero or fewer slots counts as one slot; a single slot's
	// duration in hours is derived from its start/end time strings.
	return float64(slots) * c.slotHours(a.Day)
}

func (c *ConstraintChecker) slotHours(day Weekday) float64 {
	slots := c.calendar.Day(day)
	if len(slots) == 0 {
		return 1
	}
	start, end := slots[0].StartTime, slots[0].EndTime
	sh, sm := parseHHMM(start)
	eh, em := parseHHMM(end)
	minutes := (eh*60 + em) - (sh*60 + sm)
	if minutes <= 0 {
		return 1
	}
	return float64(minutes) / 60.0
}

func parseHHMM(s string) (hour, minute int) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	return hour, minute
}

// SoftScore computes the weighted [0,1] quality score for placing a
// into schedule, combining the five soft terms.
func (c *ConstraintChecker) SoftScore(a Assignment, schedule *Schedule) float64 {
	w := c.softWeights
	score := w.PreferredTime*c.preferredTimeScore(a) +
		w.RoomUtilization*c.roomUtilizationScore(a) +
		w.WorkloadBalance*c.workloadBalanceScore(a, schedule) +
		w.ConsecutiveHours*c.consecutiveHoursScore(a, schedule) +
		w.IntraDayGap*c.intraDayGapScore(a, schedule)
	total := w.PreferredTime + w.RoomUtilization + w.WorkloadBalance + w.ConsecutiveHours + w.IntraDayGap
	if total == 0 {
		return 0
	}
	return score / total
}

func (c *ConstraintChecker) preferredTimeScore(a Assignment) float64 {
	teacher, ok := c.teachers[a.TeacherID]
	if !ok || len(teacher.PreferredSlots) == 0 {
		return 0.5 // neutral when the teacher expressed no preference
	}
	start, _, ok := c.calendar.Window(a.Day, a.StartSlot, a.EndSlot)
	if !ok {
		return 0.5
	}
	for _, pref := range teacher.PreferredSlots {
		if pref.Day == a.Day && pref.StartTime == start {
			return 1.0
		}
	}
	return 0.0
}

func (c *ConstraintChecker) roomUtilizationScore(a Assignment) float64 {
	classroom, ok := c.classrooms[a.ClassroomID]
	if !ok || classroom.Capacity == 0 {
		return 0.5
	}
	ratio := float64(a.Session.StudentCount) / float64(classroom.Capacity)
	if ratio >= 0.5 && ratio <= 1.0 {
		return 1.0
	}
	if ratio > 1.0 {
		return 0.0
	}
	return ratio / 0.5
}

func (c *ConstraintChecker) workloadBalanceScore(a Assignment, schedule *Schedule) float64 {
	if len(c.teachers) == 0 {
		return 0.5
	}
	loads := make(map[string]int)
	for _, existing := range schedule.Assignments() {
		loads[existing.TeacherID]++
	}
	loads[a.TeacherID]++

	mean, count := 0.0, 0
	for id := range c.teachers {
		mean += float64(loads[id])
		count++
	}
	if count == 0 {
		return 0.5
	}
	mean /= float64(count)

	variance := 0.0
	for id := range c.teachers {
		d := float64(loads[id]) - mean
		variance += d * d
	}
	variance /= float64(count)

	// Lower variance scores higher; squashed into [0,1].
	return 1.0 / (1.0 + variance)
}

func (c *ConstraintChecker) consecutiveHoursScore(a Assignment, schedule *Schedule) float64 {
	const threshold = 3 // consecutive slot-count before penalizing
	run := 1
	for _, other := range schedule.ByTeacherDay(a.TeacherID, a.Day) {
		if other.Session.Key == a.Session.Key {
			continue
		}
		if other.EndSlot == a.StartSlot || a.EndSlot == other.StartSlot {
			run++
		}
	}
	if run <= threshold {
		return 1.0
	}
	return threshold / float64(run)
}

func (c *ConstraintChecker) intraDayGapScore(a Assignment, schedule *Schedule) float64 {
	courseID, divisionID, batchID := a.Session.StudentGroupKey()
	siblings := schedule.ByStudentGroupDay(courseID, divisionID, batchID, a.Day)
	if len(siblings) == 0 {
		return 1.0
	}
	minGap := -1
	for _, sibling := range siblings {
		if sibling.Session.Key == a.Session.Key {
			continue
		}
		gap := a.StartSlot - sibling.EndSlot
		if gap < 0 {
			gap = sibling.StartSlot - a.EndSlot
		}
		if gap < 0 {
			gap = 0
		}
		if minGap == -1 || gap < minGap {
			minGap = gap
		}
	}
	if minGap <= 0 {
		return 1.0
	}
	if minGap == 1 {
		return 0.7
	}
	return 0.4
}
