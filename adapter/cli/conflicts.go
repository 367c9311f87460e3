package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenfield/cadence/internal/timetable/calendar"
	"github.com/wrenfield/cadence/internal/timetable/domain"
)

var (
	conflictsCalFlags *calendarFlags
	conflictsRunID    string
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Re-run the Conflict Detector against a stored run's schedule",
	Long: `Conflicts reloads a run's persisted Schedule and re-runs the
Conflict Detector against it. Useful after a schedule has been edited
by hand, or to double-check a run whose stored conflicts predate a
later constraint-checker change.

The constraint checker needs the same roster (teachers/classrooms) and
slot calendar the run used; working-hours flags below rebuild the
slot calendar the same way "cadence export" does.`,
	RunE: runConflicts,
}

func init() {
	conflictsCalFlags = addCalendarFlags(conflictsCmd, loadDefaultConfig())
	conflictsCmd.Flags().StringVar(&conflictsRunID, "run", "", "run id to check (defaults to the most recent run)")
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	c := GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}

	ctx := cmd.Context()
	record, err := resolveRun(ctx, c.RunRepository, conflictsRunID)
	if err != nil {
		return err
	}
	if record.Schedule == nil || record.Schedule.Len() == 0 {
		fmt.Println("run has no scheduled assignments")
		return nil
	}

	calCfg, err := conflictsCalFlags.calendarConfig()
	if err != nil {
		return err
	}
	slots := calendar.Generate(calCfg)
	if len(slots) == 0 {
		return fmt.Errorf("working-hours flags produced no slots")
	}
	slotCalendar := domain.NewSlotCalendar(slots)

	// The detector runs without the original roster: slot-overlap
	// conflicts (teacher/room/student-group) are still found, but every
	// assignment is also reported as an unknown teacher and an unknown
	// classroom, and capacity, feature and workload checks are skipped.
	checker := domain.NewConstraintChecker(nil, nil, slotCalendar, domain.DefaultSoftWeights())
	ledger := domain.NewHourLedger()
	conflicts := domain.DetectConflicts(record.Schedule, checker, ledger)

	if len(conflicts) == 0 {
		fmt.Printf("run %s: no conflicts\n", record.ID)
		return nil
	}

	fmt.Printf("run %s: %d conflicts\n", record.ID, len(conflicts))
	for _, conflict := range conflicts {
		fmt.Printf("  [%s] %s on %s: %s\n", conflict.Severity, conflict.Kind, conflict.Day, conflict.Detail)
	}
	return nil
}
