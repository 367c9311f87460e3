package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenfield/cadence/internal/shared/infrastructure/security"
	"github.com/wrenfield/cadence/internal/timetable/calendar"
	"github.com/wrenfield/cadence/internal/timetable/engine"
	"github.com/wrenfield/cadence/internal/timetable/export"
)

const dateLayout = "2006-01-02"

var (
	exportCalFlags *calendarFlags

	exportRunID        string
	exportOutput       string
	exportCalendarName string
	exportWeekStart    string
	exportOccurrences  int
	exportUntil        string

	exportCalDAVURL      string
	exportCalDAVUser     string
	exportCalDAVPassword string
	exportCalDAVPath     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a run's schedule to an iCalendar file or a CalDAV server",
	Long: `Export resolves a stored run's Schedule into iCalendar VEVENTs with
weekly recurrence and either writes them to an .ics file (--output) or
publishes them directly to a CalDAV calendar (--caldav-url).

Assignments carry only a weekday and a slot index, never an absolute
date, so export rebuilds the slot calendar from the working-hours
flags below (defaulted from the running configuration) to resolve each
assignment back into a clock time.`,
	RunE: runExport,
}

func init() {
	exportCalFlags = addCalendarFlags(exportCmd, loadDefaultConfig())

	exportCmd.Flags().StringVar(&exportRunID, "run", "", "run id to export (defaults to the most recent run)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "write the calendar to this .ics file")
	exportCmd.Flags().StringVar(&exportCalendarName, "calendar-name", "", "calendar title (defaults to the configured export calendar name)")
	exportCmd.Flags().StringVar(&exportWeekStart, "week-start", "", "Monday of the first week, YYYY-MM-DD (required)")
	exportCmd.Flags().IntVar(&exportOccurrences, "occurrences", 0, "number of weekly occurrences to emit (default 1 if --until is unset)")
	exportCmd.Flags().StringVar(&exportUntil, "until", "", "last date weekly recurrence may reach, YYYY-MM-DD")

	exportCmd.Flags().StringVar(&exportCalDAVURL, "caldav-url", "", "CalDAV server base URL; publishes instead of/in addition to --output")
	exportCmd.Flags().StringVar(&exportCalDAVUser, "caldav-username", "", "CalDAV basic auth username")
	exportCmd.Flags().StringVar(&exportCalDAVPassword, "caldav-password", "", "CalDAV basic auth password")
	exportCmd.Flags().StringVar(&exportCalDAVPath, "caldav-path", "", "CalDAV calendar collection path (defaults to the principal's first calendar)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	c := GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}
	if exportOutput == "" && exportCalDAVURL == "" {
		return fmt.Errorf("one of --output or --caldav-url is required")
	}
	if exportWeekStart == "" {
		return fmt.Errorf("--week-start is required")
	}

	weekStart, err := time.Parse(dateLayout, exportWeekStart)
	if err != nil {
		return fmt.Errorf("invalid --week-start: %w", err)
	}

	calCfg, err := exportCalFlags.calendarConfig()
	if err != nil {
		return err
	}
	slots := calendar.Generate(calCfg)
	if len(slots) == 0 {
		return fmt.Errorf("working-hours flags produced no slots")
	}

	ctx := cmd.Context()
	record, err := resolveRun(ctx, c.RunRepository, exportRunID)
	if err != nil {
		return err
	}
	if record.Schedule == nil || record.Schedule.Len() == 0 {
		return fmt.Errorf("run %s has no scheduled assignments to export", record.ID)
	}

	calendarName := exportCalendarName
	if calendarName == "" {
		calendarName = c.Config.ExportCalendarName
	}

	opts := export.Options{
		CalendarName: calendarName,
		WeekStart:    weekStart,
		Occurrences:  exportOccurrences,
	}
	if exportUntil != "" {
		until, err := time.Parse(dateLayout, exportUntil)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
		opts.Until = until
	}

	if exportOutput != "" {
		path, err := security.ValidateFilePath(exportOutput)
		if err != nil {
			return fmt.Errorf("invalid --output: %w", err)
		}
		cal, err := export.BuildCalendar(record.Schedule, slots, opts)
		if err != nil {
			return err
		}
		if err := export.WriteICS(cal, path); err != nil {
			return err
		}
		fmt.Printf("wrote %d events to %s\n", record.Schedule.Len(), path)
	}

	if exportCalDAVURL != "" {
		publisher := export.NewPublisher(exportCalDAVURL, exportCalDAVUser, exportCalDAVPassword, c.Logger, c.Metrics)
		if exportCalDAVPath != "" {
			publisher = publisher.WithCalendarPath(exportCalDAVPath)
		}
		written, err := publisher.Publish(ctx, record.Schedule, slots, opts)
		if err != nil {
			return err
		}
		fmt.Printf("published %d events to %s\n", written, exportCalDAVURL)
	}

	return nil
}

// resolveRun returns the run identified by id, or the most recently
// persisted run if id is empty.
func resolveRun(ctx context.Context, repo engine.RunRepository, id string) (*engine.RunRecord, error) {
	if repo == nil {
		return nil, fmt.Errorf("run repository not available")
	}
	if id != "" {
		record, err := repo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find run %s: %w", id, err)
		}
		if record == nil {
			return nil, fmt.Errorf("run %s not found", id)
		}
		return record, nil
	}

	recent, err := repo.ListRecent(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	if len(recent) == 0 {
		return nil, fmt.Errorf("no runs found; run %q first", "cadence run")
	}
	return recent[0], nil
}
