// Package inputs is the JSON-friendly boundary shape for a scheduling
// snapshot: the run command reads a Document from a file (or stdin)
// and converts it into the domain model the Optimization Engine
// consumes. Kept separate from internal/timetable/domain so the
// domain types stay free of serialization concerns.
package inputs

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// Document is the top-level shape of a run's input file.
type Document struct {
	Teachers   []Teacher   `json:"teachers"`
	Classrooms []Classroom `json:"classrooms"`
	Courses    []Course    `json:"courses"`
}

// DayAvailability mirrors domain.DayAvailability with JSON tags.
type DayAvailability struct {
	Available bool   `json:"available"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// PreferredSlot mirrors domain.PreferredSlot with JSON tags.
type PreferredSlot struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
}

// Teacher mirrors domain.Teacher with JSON tags; set-style fields
// (Subjects) are plain string slices here and become
// map[string]struct{} on conversion.
type Teacher struct {
	ID               string                     `json:"id"`
	Name             string                     `json:"name"`
	Type             string                     `json:"type"`
	Priority         string                     `json:"priority,omitempty"`
	MaxHoursPerWeek  int                        `json:"max_hours_per_week"`
	Subjects         []string                   `json:"subjects,omitempty"`
	Availability     map[string]DayAvailability `json:"availability,omitempty"`
	PreferredSlots   []PreferredSlot            `json:"preferred_slots,omitempty"`
}

// Classroom mirrors domain.Classroom with JSON tags.
type Classroom struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Building     string                     `json:"building,omitempty"`
	Capacity     int                        `json:"capacity"`
	Type         string                     `json:"type"`
	Features     []string                   `json:"features,omitempty"`
	Availability map[string]DayAvailability `json:"availability,omitempty"`
}

// SessionSpec mirrors domain.SessionSpec with JSON tags.
type SessionSpec struct {
	DurationMinutes  int      `json:"duration_minutes"`
	SessionsPerWeek  int      `json:"sessions_per_week"`
	RequiresLab      bool     `json:"requires_lab,omitempty"`
	RequiredFeatures []string `json:"required_features,omitempty"`
}

// TeacherAssignment mirrors domain.TeacherAssignment with JSON tags.
type TeacherAssignment struct {
	TeacherID    string   `json:"teacher_id"`
	SessionTypes []string `json:"session_types"`
	IsPrimary    bool     `json:"is_primary,omitempty"`
}

// Batch mirrors domain.Batch with JSON tags.
type Batch struct {
	BatchID      string `json:"batch_id"`
	StudentCount int    `json:"student_count"`
	Type         string `json:"type,omitempty"`
}

// Division mirrors domain.Division with JSON tags.
type Division struct {
	DivisionID   string  `json:"division_id"`
	StudentCount int     `json:"student_count"`
	Batches      []Batch `json:"batches,omitempty"`
}

// Course mirrors domain.Course with JSON tags.
type Course struct {
	ID               string                 `json:"id"`
	Code             string                 `json:"code"`
	Program          string                 `json:"program,omitempty"`
	Year             int                    `json:"year,omitempty"`
	Semester         int                    `json:"semester,omitempty"`
	Department       string                 `json:"department,omitempty"`
	IsCore           bool                   `json:"is_core"`
	Sessions         map[string]SessionSpec `json:"sessions"`
	AssignedTeachers []TeacherAssignment    `json:"assigned_teachers"`
	Divisions        []Division             `json:"divisions,omitempty"`
}

// Decode reads a Document from r.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("inputs: decode document: %w", err)
	}
	return doc, nil
}

// Teachers converts the document's teachers to the domain shape.
func (d Document) Teachers() ([]domain.Teacher, error) {
	out := make([]domain.Teacher, 0, len(d.Teachers))
	for _, t := range d.Teachers {
		availability, err := toAvailability(t.Availability)
		if err != nil {
			return nil, fmt.Errorf("teacher %s: %w", t.ID, err)
		}
		preferred := make([]domain.PreferredSlot, 0, len(t.PreferredSlots))
		for _, p := range t.PreferredSlots {
			day, err := parseWeekday(p.Day)
			if err != nil {
				return nil, fmt.Errorf("teacher %s: %w", t.ID, err)
			}
			preferred = append(preferred, domain.PreferredSlot{Day: day, StartTime: p.StartTime})
		}
		out = append(out, domain.Teacher{
			ID:               t.ID,
			Name:             t.Name,
			Type:             domain.TeacherType(t.Type),
			ExplicitPriority: domain.Priority(t.Priority),
			MaxHoursPerWeek:  t.MaxHoursPerWeek,
			Subjects:         toSet(t.Subjects),
			Availability:     availability,
			PreferredSlots:   preferred,
		})
	}
	return out, nil
}

// Classrooms converts the document's classrooms to the domain shape.
func (d Document) Classrooms() ([]domain.Classroom, error) {
	out := make([]domain.Classroom, 0, len(d.Classrooms))
	for _, c := range d.Classrooms {
		availability, err := toAvailability(c.Availability)
		if err != nil {
			return nil, fmt.Errorf("classroom %s: %w", c.ID, err)
		}
		out = append(out, domain.Classroom{
			ID:           c.ID,
			Name:         c.Name,
			Building:     c.Building,
			Capacity:     c.Capacity,
			Type:         domain.ClassroomType(c.Type),
			Features:     toSet(c.Features),
			Availability: availability,
		})
	}
	return out, nil
}

// Courses converts the document's courses to the domain shape.
func (d Document) Courses() ([]domain.Course, error) {
	out := make([]domain.Course, 0, len(d.Courses))
	for _, c := range d.Courses {
		sessions := make(map[domain.SessionType]domain.SessionSpec, len(c.Sessions))
		for sessionType, spec := range c.Sessions {
			sessions[domain.SessionType(sessionType)] = domain.SessionSpec{
				DurationMinutes:  spec.DurationMinutes,
				SessionsPerWeek:  spec.SessionsPerWeek,
				RequiresLab:      spec.RequiresLab,
				RequiredFeatures: toSet(spec.RequiredFeatures),
			}
		}

		assigned := make([]domain.TeacherAssignment, 0, len(c.AssignedTeachers))
		for _, ta := range c.AssignedTeachers {
			types := make(map[domain.SessionType]struct{}, len(ta.SessionTypes))
			for _, st := range ta.SessionTypes {
				types[domain.SessionType(st)] = struct{}{}
			}
			assigned = append(assigned, domain.TeacherAssignment{
				TeacherID:    ta.TeacherID,
				SessionTypes: types,
				IsPrimary:    ta.IsPrimary,
			})
		}

		divisions := make([]domain.Division, 0, len(c.Divisions))
		for _, dv := range c.Divisions {
			batches := make([]domain.Batch, 0, len(dv.Batches))
			for _, b := range dv.Batches {
				batches = append(batches, domain.Batch{BatchID: b.BatchID, StudentCount: b.StudentCount, Type: b.Type})
			}
			divisions = append(divisions, domain.Division{DivisionID: dv.DivisionID, StudentCount: dv.StudentCount, Batches: batches})
		}

		out = append(out, domain.Course{
			ID:               c.ID,
			Code:             c.Code,
			Program:          c.Program,
			Year:             c.Year,
			Semester:         c.Semester,
			Department:       c.Department,
			IsCore:           c.IsCore,
			Sessions:         sessions,
			AssignedTeachers: assigned,
			Divisions:        divisions,
		})
	}
	return out, nil
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func toAvailability(raw map[string]DayAvailability) (map[domain.Weekday]domain.DayAvailability, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[domain.Weekday]domain.DayAvailability, len(raw))
	for name, avail := range raw {
		day, err := parseWeekday(name)
		if err != nil {
			return nil, err
		}
		out[day] = domain.DayAvailability{Available: avail.Available, StartTime: avail.StartTime, EndTime: avail.EndTime}
	}
	return out, nil
}

var weekdaysByName = map[string]domain.Weekday{
	"monday":    domain.Monday,
	"tuesday":   domain.Tuesday,
	"wednesday": domain.Wednesday,
	"thursday":  domain.Thursday,
	"friday":    domain.Friday,
	"saturday":  domain.Saturday,
	"sunday":    domain.Sunday,
}

func parseWeekday(name string) (domain.Weekday, error) {
	day, ok := weekdaysByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return day, nil
}
