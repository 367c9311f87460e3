// Package calendar implements the Slot Calendar: the component that
// turns working-day/time configuration into the ordered sequence of
// candidate TimeSlots every solver schedules against.
package calendar

import (
	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// Break is one interval, on every working day, during which no slot
// may be produced (e.g. a lunch break).
type Break struct {
	StartTime string
	EndTime   string
}

// Config describes how to generate the slot sequence for a run.
type Config struct {
	WorkingDays      []domain.Weekday
	DayStartTime     string
	DayEndTime       string
	SlotMinutes      int
	Breaks           []Break
	EnforceBreaks    bool
}

// Generate produces the ordered slot sequence: each working day is
// walked from DayStartTime to DayEndTime in SlotMinutes steps, and any
// slot whose interval intersects a break is dropped (when
// EnforceBreaks is true). Returns an empty, non-nil slice if no slots
// are producible — the caller (Engine) maps that to NoFeasibleSlots.
func Generate(cfg Config) []domain.TimeSlot {
	slots := []domain.TimeSlot{}
	if cfg.SlotMinutes <= 0 {
		return slots
	}

	for _, day := range cfg.WorkingDays {
		index := 0
		cursor := cfg.DayStartTime
		for {
			next := addMinutes(cursor, cfg.SlotMinutes)
			if next > cfg.DayEndTime {
				break
			}
			if !(cfg.EnforceBreaks && intersectsBreak(cursor, next, cfg.Breaks)) {
				slots = append(slots, domain.TimeSlot{
					Day:       day,
					StartTime: cursor,
					EndTime:   next,
					Index:     index,
				})
				index++
			}
			cursor = next
		}
	}
	return slots
}

func intersectsBreak(start, end string, breaks []Break) bool {
	for _, b := range breaks {
		if start < b.EndTime && b.StartTime < end {
			return true
		}
	}
	return false
}

// addMinutes adds minutes to an HH:MM time string, returning HH:MM.
func addMinutes(hhmm string, minutes int) string {
	h, m := parseHHMM(hhmm)
	total := h*60 + m + minutes
	h = total / 60
	m = total % 60
	return pad2(h) + ":" + pad2(m)
}

func parseHHMM(s string) (hour, minute int) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	return hour, minute
}

func pad2(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 99 {
		n = 99
	}
	digits := "0123456789"
	return string([]byte{digits[n/10], digits[n%10]})
}
