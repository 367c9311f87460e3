package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondayAvailability() map[Weekday]DayAvailability {
	return map[Weekday]DayAvailability{
		Monday: {Available: true, StartTime: "08:00", EndTime: "17:00"},
	}
}

func testCalendar(t *testing.T) *SlotCalendar {
	t.Helper()
	slots := []TimeSlot{
		{Day: Monday, StartTime: "09:00", EndTime: "10:00", Index: 0},
		{Day: Monday, StartTime: "10:00", EndTime: "11:00", Index: 1},
	}
	return NewSlotCalendar(slots)
}

func TestConstraintChecker_TeacherConflict(t *testing.T) {
	cal := testCalendar(t)
	teacher := Teacher{ID: "t1", MaxHoursPerWeek: 20, Availability: mondayAvailability()}
	room := Classroom{ID: "r1", Capacity: 30, Type: ClassroomLecture, Availability: mondayAvailability()}
	checker := NewConstraintChecker([]Teacher{teacher}, []Classroom{room}, cal, DefaultSoftWeights())

	schedule := NewSchedule()
	existing := Assignment{
		Session:     Session{Key: "s1", StudentCount: 10},
		TeacherID:   "t1",
		ClassroomID: "r1",
		Day:         Monday,
		StartSlot:   0,
		EndSlot:     1,
	}
	schedule.Add(existing)

	candidate := Assignment{
		Session:     Session{Key: "s2", StudentCount: 10},
		TeacherID:   "t1",
		ClassroomID: "r1",
		Day:         Monday,
		StartSlot:   0,
		EndSlot:     1,
	}
	ledger := NewHourLedger()
	violations := checker.HardViolations(candidate, schedule, ledger)

	kinds := make([]ViolationKind, 0, len(violations))
	for _, v := range violations {
		kinds = append(kinds, v.Kind)
	}
	assert.Contains(t, kinds, ViolationTeacherConflict)
	assert.Contains(t, kinds, ViolationRoomConflict)
}

func TestConstraintChecker_LabRoomSharingAllowedForDistinctTeachersAndCourses(t *testing.T) {
	cal := testCalendar(t)
	t1 := Teacher{ID: "t1", MaxHoursPerWeek: 20, Availability: mondayAvailability()}
	t2 := Teacher{ID: "t2", MaxHoursPerWeek: 20, Availability: mondayAvailability()}
	room := Classroom{ID: "lab1", Capacity: 30, Type: ClassroomLab, Availability: mondayAvailability()}
	checker := NewConstraintChecker([]Teacher{t1, t2}, []Classroom{room}, cal, DefaultSoftWeights())

	schedule := NewSchedule()
	schedule.Add(Assignment{
		Session:     Session{Key: "s1", CourseID: "c1", StudentCount: 10, RoomConstraints: RoomConstraints{RequiresLab: true}},
		TeacherID:   "t1",
		ClassroomID: "lab1",
		Day:         Monday,
		StartSlot:   0,
		EndSlot:     1,
	})

	candidate := Assignment{
		Session:     Session{Key: "s2", CourseID: "c2", StudentCount: 10, RoomConstraints: RoomConstraints{RequiresLab: true}},
		TeacherID:   "t2",
		ClassroomID: "lab1",
		Day:         Monday,
		StartSlot:   0,
		EndSlot:     1,
	}
	ledger := NewHourLedger()
	violations := checker.HardViolations(candidate, schedule, ledger)
	for _, v := range violations {
		assert.NotEqual(t, ViolationRoomConflict, v.Kind)
	}
}

func TestConstraintChecker_CapacityAndFeatureShortfall(t *testing.T) {
	cal := testCalendar(t)
	teacher := Teacher{ID: "t1", MaxHoursPerWeek: 20, Availability: mondayAvailability()}
	room := Classroom{ID: "r1", Capacity: 10, Type: ClassroomLecture, Availability: mondayAvailability()}
	checker := NewConstraintChecker([]Teacher{teacher}, []Classroom{room}, cal, DefaultSoftWeights())

	candidate := Assignment{
		Session: Session{
			Key:             "s1",
			StudentCount:    40,
			RoomConstraints: RoomConstraints{RequiredFeatures: map[string]struct{}{"projector": {}}},
		},
		TeacherID:   "t1",
		ClassroomID: "r1",
		Day:         Monday,
		StartSlot:   0,
		EndSlot:     1,
	}
	ledger := NewHourLedger()
	violations := checker.HardViolations(candidate, NewSchedule(), ledger)

	kinds := make(map[ViolationKind]bool)
	for _, v := range violations {
		kinds[v.Kind] = true
	}
	require.True(t, kinds[ViolationCapacityShortfall])
	require.True(t, kinds[ViolationFeatureShortfall])
}

func TestConstraintChecker_WorkloadExceeded(t *testing.T) {
	cal := testCalendar(t)
	teacher := Teacher{ID: "t1", MaxHoursPerWeek: 1, Availability: mondayAvailability()}
	room := Classroom{ID: "r1", Capacity: 30, Type: ClassroomLecture, Availability: mondayAvailability()}
	checker := NewConstraintChecker([]Teacher{teacher}, []Classroom{room}, cal, DefaultSoftWeights())

	ledger := NewHourLedger()
	ledger.Add("t1", 1.0)

	candidate := Assignment{
		Session:     Session{Key: "s1", StudentCount: 10},
		TeacherID:   "t1",
		ClassroomID: "r1",
		Day:         Monday,
		StartSlot:   0,
		EndSlot:     1,
	}
	violations := checker.HardViolations(candidate, NewSchedule(), ledger)

	found := false
	for _, v := range violations {
		if v.Kind == ViolationWorkloadExceeded {
			found = true
		}
	}
	assert.True(t, found)
}
