package domain

// Assignment places one Session into a (day, slots, teacher, classroom)
// tuple. Assignments are owned by exactly one Schedule and are never
// shared across schedules; solvers create, mutate, and delete them
// freely during a run.
type Assignment struct {
	Session     Session
	TeacherID   string
	ClassroomID string
	Day         Weekday
	StartSlot   int // index into the slot calendar's per-day slot list
	EndSlot     int // exclusive

	// Denormalized display fields, populated by the Engine at result
	// packaging time; never consulted by constraint checks.
	TeacherName   string
	ClassroomName string
}

// SlotRange reports the [StartSlot, EndSlot) half-open range occupied
// by this assignment on Day.
func (a Assignment) SlotRange() (start, end int) {
	return a.StartSlot, a.EndSlot
}

// OverlapsSlots reports whether two assignments on the same day share
// any slot index.
func (a Assignment) OverlapsSlots(other Assignment) bool {
	if a.Day != other.Day {
		return false
	}
	return a.StartSlot < other.EndSlot && other.StartSlot < a.EndSlot
}

// IsLabSession reports whether the assignment's session requires a lab
// or computer room, used by the room-conflict exception.
func (a Assignment) IsLabSession() bool {
	return a.Session.RoomConstraints.RequiresLab
}
