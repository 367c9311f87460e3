package solver

import (
	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// Move is one candidate placement of a session: a teacher, a classroom,
// and a contiguous slot range on a working day.
type Move struct {
	TeacherID   string
	ClassroomID string
	Day         domain.Weekday
	StartSlot   int
	EndSlot     int
}

// candidateMoves enumerates every structurally valid placement of s:
// every eligible teacher, every classroom meeting s's room constraints,
// every working day, and every contiguous slot window of s's duration.
// It does not check hard constraints against a schedule — callers run
// that separately, since the same candidate list is reused across many
// schedule states during search.
func candidateMoves(in Input, s domain.Session) []Move {
	classroomIDs := eligibleClassrooms(in.Classrooms, s)
	var moves []Move
	for _, teacherID := range s.EligibleTeachers {
		for _, classroomID := range classroomIDs {
			for _, day := range in.Calendar.Days() {
				windows := contiguousWindows(in.Calendar.Day(day), s.DurationSlots)
				for _, w := range windows {
					moves = append(moves, Move{
						TeacherID:   teacherID,
						ClassroomID: classroomID,
						Day:         day,
						StartSlot:   w.start,
						EndSlot:     w.end,
					})
				}
			}
		}
	}
	return moves
}

func eligibleClassrooms(classrooms []domain.Classroom, s domain.Session) []string {
	var ids []string
	for _, c := range classrooms {
		if c.Capacity < s.StudentCount {
			continue
		}
		if !c.HasFeatures(s.RoomConstraints.RequiredFeatures) {
			continue
		}
		if s.RoomConstraints.RequiresLab && !c.IsLabCapable() {
			continue
		}
		ids = append(ids, c.ID)
	}
	return ids
}

type window struct{ start, end int }

// contiguousWindows returns every run of durationSlots consecutive,
// time-adjacent slots within a single day's slot list.
func contiguousWindows(slots []domain.TimeSlot, durationSlots int) []window {
	if durationSlots <= 0 || len(slots) < durationSlots {
		return nil
	}
	var windows []window
	for start := 0; start+durationSlots <= len(slots); start++ {
		contiguous := true
		for i := start; i < start+durationSlots-1; i++ {
			if slots[i].EndTime != slots[i+1].StartTime {
				contiguous = false
				break
			}
		}
		if contiguous {
			windows = append(windows, window{start: start, end: start + durationSlots})
		}
	}
	return windows
}

// assignmentFor builds the Assignment a move produces for session s.
func assignmentFor(s domain.Session, m Move) domain.Assignment {
	return domain.Assignment{
		Session:     s,
		TeacherID:   m.TeacherID,
		ClassroomID: m.ClassroomID,
		Day:         m.Day,
		StartSlot:   m.StartSlot,
		EndSlot:     m.EndSlot,
	}
}

// applyLedger attributes or un-attributes the hours an assignment
// occupies to its teacher, resolving the exact slot span from calendar
// so the ledger matches the Constraint Checker's own accounting.
func applyLedger(ledger *domain.HourLedger, calendar *domain.SlotCalendar, a domain.Assignment, sign float64) {
	ledger.Add(a.TeacherID, sign*slotSpanHours(calendar, a))
}

func slotSpanHours(calendar *domain.SlotCalendar, a domain.Assignment) float64 {
	start, end, ok := calendar.Window(a.Day, a.StartSlot, a.EndSlot)
	if !ok {
		slots := a.EndSlot - a.StartSlot
		if slots <= 0 {
			slots = 1
		}
		return float64(slots)
	}
	sh, sm := splitHHMM(start)
	eh, em := splitHHMM(end)
	minutes := (eh*60 + em) - (sh*60 + sm)
	if minutes <= 0 {
		return 1
	}
	return float64(minutes) / 60.0
}

func splitHHMM(s string) (hour, minute int) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	return hour, minute
}
