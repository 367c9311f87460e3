package engine

import (
	"github.com/wrenfield/cadence/internal/timetable/calendar"
	"github.com/wrenfield/cadence/internal/timetable/domain"
)

// Settings is the caller-supplied run configuration (spec §6.1). Every
// field beyond Algorithm has a documented default; the Engine never
// rejects a run for an unset field, only for conflicting/out-of-range
// ones it cannot normalize.
type Settings struct {
	Algorithm string

	WorkingDays   []domain.Weekday
	StartTime     string
	EndTime       string
	SlotMinutes   int
	Breaks        []calendar.Break
	EnforceBreaks bool

	BalanceWorkload bool
	Seed            int64
	DeadlineSeconds int

	MaxBacktracks      int
	PopulationSize     int
	MaxGenerations     int
	CrossoverRate      float64
	MutationRate       float64
	InitialTemperature float64
	CoolingRate        float64
	MinTemperature     float64
	IterationsPerTemp  int
	MaxIterations      int

	SoftWeights domain.SoftWeights
}

// DefaultSettings returns the Engine's baseline run configuration: a
// Monday-Friday 09:00-17:00 day cut into hour slots, no breaks enforced,
// algorithm left to "auto".
func DefaultSettings() Settings {
	return Settings{
		Algorithm: "auto",
		WorkingDays: []domain.Weekday{
			domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday,
		},
		StartTime:   "09:00",
		EndTime:     "17:00",
		SlotMinutes: 60,
	}
}

// calendarConfig translates the run's working-hours settings into the
// Slot Calendar's generation config.
func (s Settings) calendarConfig() calendar.Config {
	return calendar.Config{
		WorkingDays:   s.WorkingDays,
		DayStartTime:  s.StartTime,
		DayEndTime:    s.EndTime,
		SlotMinutes:   s.SlotMinutes,
		Breaks:        s.Breaks,
		EnforceBreaks: s.EnforceBreaks,
	}
}

// engineParams builds the per-run parameter bag handed to the selected
// solver plugin's Initialize, applying the hard caps spec §4.4
// requires regardless of what the caller asked for.
func (s Settings) engineParams() map[string]any {
	params := make(map[string]any)

	if s.MaxBacktracks > 0 {
		params["max_backtracks"] = s.MaxBacktracks
		params["csp_max_backtracks"] = s.MaxBacktracks
	}
	if s.PopulationSize > 0 {
		params["genetic_population_size"] = clampInt(s.PopulationSize, 30, 100)
	}
	if s.MaxGenerations > 0 {
		params["genetic_generations"] = clampInt(s.MaxGenerations, 100, 300)
	}
	if s.CoolingRate > 0 {
		params["annealing_cooling_rate"] = s.CoolingRate
	}
	if s.MaxIterations > 0 {
		params["annealing_max_iterations"] = s.MaxIterations
	}
	if s.Seed != 0 {
		params["random_seed"] = s.Seed
	}

	return params
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
