// Package export implements Calendar Export: turning a solved Schedule
// into iCalendar VEVENTs with weekly recurrence, written to an .ics
// file or pushed directly to a CalDAV server.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/wrenfield/cadence/internal/shared/infrastructure/security"
	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// PropXCadence marks a VEVENT as Cadence-generated, mirroring how
// calendar sync tools tag their own events so a later export or
// cleanup pass can tell its events apart from the rest of a calendar.
const PropXCadence = "X-CADENCE"

// Options configures how a Schedule's assignments are projected onto
// real calendar dates. Assignments only carry a Weekday and an index
// into the slot calendar, never an absolute date, so the export needs
// an anchor date for "the Monday of week one" plus a recurrence bound.
type Options struct {
	// CalendarName is the human-readable calendar title, stored in the
	// non-standard but widely-supported X-WR-CALNAME property.
	CalendarName string

	// WeekStart is the Monday of the first week the schedule applies
	// to. Every assignment's Weekday is added as a day offset from it
	// to compute the first occurrence's date.
	WeekStart time.Time

	// Location is the timezone event times are expressed in. Defaults
	// to UTC.
	Location *time.Location

	// Occurrences bounds the weekly recurrence by count. Ignored if
	// Until is set. Defaults to 1 (a single, non-repeating occurrence)
	// if neither is set.
	Occurrences int

	// Until bounds the weekly recurrence by date, taking precedence
	// over Occurrences when both are set.
	Until time.Time
}

func (o Options) resolveLocation() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return time.UTC
}

type slotKey struct {
	day domain.Weekday
	idx int
}

func indexSlots(slots []domain.TimeSlot) map[slotKey]domain.TimeSlot {
	idx := make(map[slotKey]domain.TimeSlot, len(slots))
	for _, s := range slots {
		idx[slotKey{day: s.Day, idx: s.Index}] = s
	}
	return idx
}

// BuildCalendar converts every assignment in schedule into a VEVENT
// and returns the resulting VCALENDAR. slots must be the same slot
// calendar the run that produced schedule was generated against, so
// that each assignment's StartSlot/EndSlot indices resolve to clock
// times.
func BuildCalendar(schedule *domain.Schedule, slots []domain.TimeSlot, opts Options) (*ical.Calendar, error) {
	if opts.WeekStart.IsZero() {
		return nil, fmt.Errorf("export: WeekStart is required")
	}

	idx := indexSlots(slots)
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Cadence//Optimization Core//EN")
	if opts.CalendarName != "" {
		nameProp := ical.NewProp("X-WR-CALNAME")
		nameProp.Value = opts.CalendarName
		cal.Props["X-WR-CALNAME"] = []ical.Prop{*nameProp}
	}

	for _, a := range schedule.Assignments() {
		event, err := buildEvent(a, idx, opts)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, event.Component)
	}

	return cal, nil
}

// WriteICS encodes cal and writes it to path, validating the path
// first to guard against traversal from a caller-supplied --output
// flag.
func WriteICS(cal *ical.Calendar, path string) error {
	f, err := security.SafeCreate(path)
	if err != nil {
		return fmt.Errorf("export: open output file: %w", err)
	}
	defer f.Close()

	enc := ical.NewEncoder(f)
	if err := enc.Encode(cal); err != nil {
		return fmt.Errorf("export: encode calendar: %w", err)
	}
	return nil
}

func buildEvent(a domain.Assignment, idx map[slotKey]domain.TimeSlot, opts Options) (*ical.Event, error) {
	start, ok := idx[slotKey{day: a.Day, idx: a.StartSlot}]
	if !ok {
		return nil, fmt.Errorf("export: no slot for %s index %d", a.Day, a.StartSlot)
	}
	end, ok := idx[slotKey{day: a.Day, idx: a.EndSlot - 1}]
	if !ok {
		return nil, fmt.Errorf("export: no slot for %s index %d", a.Day, a.EndSlot-1)
	}

	loc := opts.resolveLocation()
	date := opts.WeekStart.AddDate(0, 0, int(a.Day))
	dtstart, err := combineDateTime(date, start.StartTime, loc)
	if err != nil {
		return nil, fmt.Errorf("export: %s: %w", a.Session.Key, err)
	}
	dtend, err := combineDateTime(date, end.EndTime, loc)
	if err != nil {
		return nil, fmt.Errorf("export: %s: %w", a.Session.Key, err)
	}

	rruleValue, err := weeklyRRule(a.Day, dtstart, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %s: %w", a.Session.Key, err)
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, a.Session.Key+"@cadence")
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, dtstart)
	event.Props.SetDateTime(ical.PropDateTimeEnd, dtend)
	event.Props.SetText(ical.PropSummary, summaryFor(a))
	if a.ClassroomName != "" {
		event.Props.SetText(ical.PropLocation, a.ClassroomName)
	}
	event.Props.SetText(ical.PropDescription, descriptionFor(a))
	event.Props.SetText(ical.PropRecurrenceRule, rruleValue)

	marker := ical.NewProp(PropXCadence)
	marker.Value = "1"
	event.Props[PropXCadence] = []ical.Prop{*marker}

	return event, nil
}

func summaryFor(a domain.Assignment) string {
	summary := a.Session.CourseCode
	if a.TeacherName != "" {
		summary += " - " + a.TeacherName
	}
	return summary
}

func descriptionFor(a domain.Assignment) string {
	desc := fmt.Sprintf("Session: %s\nType: %s", a.Session.Key, a.Session.SessionType)
	if a.Session.BatchID != "" {
		desc += "\nBatch: " + a.Session.BatchID
	}
	desc += "\n\nManaged by Cadence"
	return desc
}

// combineDateTime resolves an HH:MM slot boundary against a calendar
// date, in loc.
func combineDateTime(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid slot time %q", hhmm)
	}
	var hour, minute int
	if _, err := fmt.Sscanf(parts[0], "%d", &hour); err != nil {
		return time.Time{}, fmt.Errorf("invalid slot time %q", hhmm)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &minute); err != nil {
		return time.Time{}, fmt.Errorf("invalid slot time %q", hhmm)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), nil
}

// weeklyRRule builds the RRULE property value for a weekly-recurring
// session on day, anchored at its first occurrence dtstart.
func weeklyRRule(day domain.Weekday, dtstart time.Time, opts Options) (string, error) {
	roption := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtstart,
		Byweekday: []rrule.Weekday{rruleWeekday(day)},
	}
	switch {
	case !opts.Until.IsZero():
		roption.Until = opts.Until
	case opts.Occurrences > 0:
		roption.Count = opts.Occurrences
	default:
		roption.Count = 1
	}

	r, err := rrule.NewRRule(roption)
	if err != nil {
		return "", fmt.Errorf("build rrule: %w", err)
	}

	for _, line := range strings.Split(r.String(), "\n") {
		if value, ok := strings.CutPrefix(line, "RRULE:"); ok {
			return value, nil
		}
	}
	return "", fmt.Errorf("rrule produced no RRULE line")
}

func rruleWeekday(d domain.Weekday) rrule.Weekday {
	switch d {
	case domain.Monday:
		return rrule.MO
	case domain.Tuesday:
		return rrule.TU
	case domain.Wednesday:
		return rrule.WE
	case domain.Thursday:
		return rrule.TH
	case domain.Friday:
		return rrule.FR
	case domain.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}
