package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wrenfield/cadence/internal/timetable/calendar"
	"github.com/wrenfield/cadence/internal/timetable/domain"
	"github.com/wrenfield/cadence/internal/timetable/engine"
	"github.com/wrenfield/cadence/pkg/config"
)

// calendarFlags holds the working-hours flags shared by every command
// that must rebuild a run's slot calendar: a RunRecord persists the
// resulting Schedule but not the Settings that produced it, so export
// and conflict commands re-derive the same calendar from flags
// (defaulted from the running configuration) rather than from a
// stored run.
type calendarFlags struct {
	workingDays   string
	startTime     string
	endTime       string
	slotMinutes   int
	breakStart    string
	breakEnd      string
	enforceBreaks bool
}

func addCalendarFlags(cmd *cobra.Command, cfg *config.Config) *calendarFlags {
	f := &calendarFlags{}
	cmd.Flags().StringVar(&f.workingDays, "working-days", cfg.DefaultWorkingDays, "comma-separated working days, e.g. monday,tuesday,wednesday")
	cmd.Flags().StringVar(&f.startTime, "start-time", cfg.DefaultStartTime, "day start time (HH:MM)")
	cmd.Flags().StringVar(&f.endTime, "end-time", cfg.DefaultEndTime, "day end time (HH:MM)")
	cmd.Flags().IntVar(&f.slotMinutes, "slot-minutes", cfg.DefaultSlotMinutes, "slot duration in minutes")
	cmd.Flags().StringVar(&f.breakStart, "break-start", "", "break start time (HH:MM), optional")
	cmd.Flags().StringVar(&f.breakEnd, "break-end", "", "break end time (HH:MM), optional")
	cmd.Flags().BoolVar(&f.enforceBreaks, "enforce-breaks", false, "drop slots overlapping the configured break")
	return f
}

func (f *calendarFlags) breaks() ([]calendar.Break, error) {
	if f.breakStart == "" && f.breakEnd == "" {
		return nil, nil
	}
	if f.breakStart == "" || f.breakEnd == "" {
		return nil, fmt.Errorf("--break-start and --break-end must be set together")
	}
	return []calendar.Break{{StartTime: f.breakStart, EndTime: f.breakEnd}}, nil
}

// calendarConfig translates the flags into the Slot Calendar's
// generation config, for commands that need the slot list directly
// (export, conflicts) without running the Optimization Engine.
func (f *calendarFlags) calendarConfig() (calendar.Config, error) {
	days, err := parseWeekdays(f.workingDays)
	if err != nil {
		return calendar.Config{}, err
	}
	breaks, err := f.breaks()
	if err != nil {
		return calendar.Config{}, err
	}
	return calendar.Config{
		WorkingDays:   days,
		DayStartTime:  f.startTime,
		DayEndTime:    f.endTime,
		SlotMinutes:   f.slotMinutes,
		Breaks:        breaks,
		EnforceBreaks: f.enforceBreaks || len(breaks) > 0,
	}, nil
}

// engineSettings translates the flags into engine.Settings, for the
// run command, which dispatches through the Optimization Engine
// directly instead of calling calendar.Generate itself.
func (f *calendarFlags) engineSettings(algorithm string, deadlineSeconds int) (engine.Settings, error) {
	days, err := parseWeekdays(f.workingDays)
	if err != nil {
		return engine.Settings{}, err
	}
	breaks, err := f.breaks()
	if err != nil {
		return engine.Settings{}, err
	}
	return engine.Settings{
		Algorithm:       algorithm,
		WorkingDays:     days,
		StartTime:       f.startTime,
		EndTime:         f.endTime,
		SlotMinutes:     f.slotMinutes,
		Breaks:          breaks,
		EnforceBreaks:   f.enforceBreaks || len(breaks) > 0,
		DeadlineSeconds: deadlineSeconds,
	}, nil
}

// loadDefaultConfig loads configuration for seeding flag defaults at
// command-registration time, before the container exists. Falls back
// to DefaultSettings-equivalent values if the environment can't be
// read, since a malformed .env should surface at the command, not
// silently here.
func loadDefaultConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil || cfg == nil {
		return &config.Config{
			DefaultAlgorithm:   "auto",
			DefaultSlotMinutes: 60,
			DefaultWorkingDays: "monday,tuesday,wednesday,thursday,friday",
			DefaultStartTime:   "09:00",
			DefaultEndTime:     "17:00",
			ExportCalendarName: "Cadence Timetable",
		}
	}
	return cfg
}

var weekdayNames = map[string]domain.Weekday{
	"monday":    domain.Monday,
	"tuesday":   domain.Tuesday,
	"wednesday": domain.Wednesday,
	"thursday":  domain.Thursday,
	"friday":    domain.Friday,
	"saturday":  domain.Saturday,
	"sunday":    domain.Sunday,
}

func parseWeekdays(raw string) ([]domain.Weekday, error) {
	var days []domain.Weekday
	for _, name := range strings.Split(raw, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown working day %q", name)
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one working day is required")
	}
	return days, nil
}
