// Package extract implements the Session Extractor: expanding each
// course into the atomic Sessions solvers schedule.
package extract

import (
	"fmt"
	"sort"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// Warning is a non-fatal diagnostic produced while extracting sessions,
// returned in Result.Warnings rather than raised as an error. The
// Engine's RunResult does not carry these warnings.
type Warning struct {
	CourseID string
	Message  string
}

// Result is the extractor's output: the sessions to schedule, already
// sorted for processing, plus any warnings encountered along the way.
type Result struct {
	Sessions []domain.Session
	Warnings []Warning
}

// Extract expands every course in courses into its constituent
// Sessions, per spec §4.2: one instance per required weekly occurrence
// per division (or batch, for practicals on a divided division).
func Extract(courses []domain.Course, teachers map[string]domain.Teacher, slotMinutes int) Result {
	var result Result

	for _, course := range courses {
		for sessionType, spec := range course.Sessions {
			if spec.SessionsPerWeek <= 0 {
				continue
			}

			eligible := course.EligibleTeachers(sessionType)
			if len(eligible) == 0 {
				result.Warnings = append(result.Warnings, Warning{
					CourseID: course.ID,
					Message:  fmt.Sprintf("no eligible teacher for %s/%s, skipped", course.ID, sessionType),
				})
				continue
			}

			priorityScore := maxPriority(eligible, teachers)
			durationSlots := ceilDiv(spec.DurationMinutes, slotMinutes)

			divisions := course.Divisions
			if len(divisions) == 0 {
				divisions = []domain.Division{{DivisionID: "", StudentCount: 0}}
			}

			for _, division := range divisions {
				if sessionType == domain.SessionPractical && len(division.Batches) > 0 {
					for _, batch := range division.Batches {
						result.Sessions = append(result.Sessions, newSessions(
							course, sessionType, division.DivisionID, batch.BatchID,
							batch.StudentCount, durationSlots, spec, eligible, priorityScore,
							spec.SessionsPerWeek,
						)...)
					}
				} else {
					result.Sessions = append(result.Sessions, newSessions(
						course, sessionType, division.DivisionID, "",
						division.StudentCount, durationSlots, spec, eligible, priorityScore,
						spec.SessionsPerWeek,
					)...)
				}
			}
		}
	}

	sortByPriorityThenDomain(result.Sessions)
	return result
}

func newSessions(
	course domain.Course,
	sessionType domain.SessionType,
	divisionID, batchID string,
	studentCount, durationSlots int,
	spec domain.SessionSpec,
	eligible []string,
	priorityScore int,
	count int,
) []domain.Session {
	sessions := make([]domain.Session, 0, count)
	for i := 0; i < count; i++ {
		key := fmt.Sprintf("%s|%s|%s|%s|%d", course.ID, sessionType, divisionID, batchID, i)
		sessions = append(sessions, domain.Session{
			Key:           key,
			CourseID:      course.ID,
			CourseCode:    course.Code,
			SessionType:   sessionType,
			DivisionID:    divisionID,
			BatchID:       batchID,
			DurationSlots: durationSlots,
			EligibleTeachers: append([]string(nil), eligible...),
			RoomConstraints: domain.RoomConstraints{
				RequiresLab:      spec.RequiresLab,
				RequiredFeatures: spec.RequiredFeatures,
			},
			IsElective:    course.IsElective(),
			StudentCount:  studentCount,
			PriorityScore: priorityScore,
		})
	}
	return sessions
}

func maxPriority(teacherIDs []string, teachers map[string]domain.Teacher) int {
	best := 0
	for _, id := range teacherIDs {
		if t, ok := teachers[id]; ok {
			if score := t.PriorityScore(); score > best {
				best = score
			}
		}
	}
	return best
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 1
	}
	if a <= 0 {
		return 1
	}
	return (a + b - 1) / b
}

// sortByPriorityThenDomain orders sessions by descending priority,
// breaking ties by ascending domain size (MRV): the number of eligible
// teachers stands in for full domain enumeration, which depends on the
// slot calendar and is recomputed by the Backtracking/CSP solvers
// themselves once they hold the calendar.
func sortByPriorityThenDomain(sessions []domain.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].PriorityScore != sessions[j].PriorityScore {
			return sessions[i].PriorityScore > sessions[j].PriorityScore
		}
		return len(sessions[i].EligibleTeachers) < len(sessions[j].EligibleTeachers)
	})
}
