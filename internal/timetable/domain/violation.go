package domain

// ViolationKind enumerates every hard-constraint failure the
// Constraint Checker can report for a candidate Assignment.
type ViolationKind string

const (
	ViolationTeacherConflict      ViolationKind = "teacher_conflict"
	ViolationRoomConflict         ViolationKind = "room_conflict"
	ViolationStudentGroupConflict ViolationKind = "student_group_conflict"
	ViolationTeacherUnavailable   ViolationKind = "teacher_unavailable"
	ViolationRoomUnavailable      ViolationKind = "room_unavailable"
	ViolationCapacityShortfall    ViolationKind = "capacity_shortfall"
	ViolationFeatureShortfall     ViolationKind = "feature_shortfall"
	ViolationWorkloadExceeded     ViolationKind = "workload_exceeded"
)

// Violation is one concrete hard-constraint failure detected for a
// candidate Assignment against a Schedule.
type Violation struct {
	Kind    ViolationKind
	Detail  string
	WithKey string // session key of the conflicting assignment, if any
}
