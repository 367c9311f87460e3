package domain

// RoomConstraints carries the room-eligibility requirements of a
// session, copied from its course's SessionSpec at extraction time.
type RoomConstraints struct {
	RequiresLab      bool
	RequiredFeatures map[string]struct{}
}

// Session is the atomic scheduling unit the extractor produces from a
// course: one per required weekly occurrence per division/batch/type.
// Sessions are created once per run and never mutated.
type Session struct {
	Key              string
	CourseID         string
	CourseCode       string
	SessionType      SessionType
	DivisionID       string
	BatchID          string // empty when the session is division-wide
	DurationSlots    int
	EligibleTeachers []string
	RoomConstraints  RoomConstraints
	IsElective       bool
	StudentCount     int
	PriorityScore    int
}

// StudentGroupKey identifies the student cohort a session belongs to,
// used by the student-group hard constraint and the conflict detector.
// BatchID is empty for division-wide sessions.
func (s Session) StudentGroupKey() (courseID, divisionID, batchID string) {
	return s.CourseID, s.DivisionID, s.BatchID
}
