package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wrenfield/cadence/internal/shared/infrastructure/security"
	"github.com/wrenfield/cadence/internal/timetable/engine"
	"github.com/wrenfield/cadence/internal/timetable/inputs"
)

var (
	runCalFlags *calendarFlags

	runInputPath       string
	runAlgorithm       string
	runDeadlineSeconds int
	runJSON            bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve a scheduling snapshot and report the resulting timetable",
	Long: `Run reads a scheduling snapshot (teachers, classrooms, courses) from
--input, dispatches it through the Optimization Engine, streams
progress to stderr, and prints the terminal result: the final
schedule's metrics, any residual conflicts, and unplaced sessions.

The run is persisted via the Run Repository; its id is printed so a
later "cadence export" or "cadence runs show" can find it.`,
	RunE: runRun,
}

func init() {
	cfg := loadDefaultConfig()
	runCalFlags = addCalendarFlags(runCmd, cfg)

	runCmd.Flags().StringVar(&runInputPath, "input", "", "path to a JSON scheduling snapshot (required)")
	runCmd.Flags().StringVar(&runAlgorithm, "algorithm", cfg.DefaultAlgorithm, "solver algorithm, or \"auto\" to size-select one")
	runCmd.Flags().IntVar(&runDeadlineSeconds, "deadline-seconds", cfg.DefaultDeadlineSeconds, "wall-clock deadline for the run, 0 for none")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the terminal result as JSON instead of text")
	_ = runCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	c := GetContainer()
	if c == nil || c.Engine == nil {
		return fmt.Errorf("container not initialized")
	}

	doc, err := loadDocument(runInputPath)
	if err != nil {
		return err
	}

	teachers, err := doc.Teachers()
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	classrooms, err := doc.Classrooms()
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	courses, err := doc.Courses()
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}

	settings, err := runCalFlags.engineSettings(runAlgorithm, runDeadlineSeconds)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	events, err := c.Engine.Run(ctx, engine.Input{
		Teachers:   teachers,
		Classrooms: classrooms,
		Courses:    courses,
		Settings:   settings,
	})
	if err != nil {
		return err
	}

	var result *engine.RunResult
	for event := range events {
		switch event.Kind {
		case engine.EventStarted:
			fmt.Fprintf(os.Stderr, "run %s started: %d sessions, algorithm %s\n", event.RunID, event.SessionCount, event.Algorithm)
		case engine.EventProgress:
			fmt.Fprintf(os.Stderr, "run %s: %.1f%% %s (fitness %.3f)\n", event.RunID, event.Percent, event.Phase, event.BestFitness)
		case engine.EventCompleted, engine.EventFailed, engine.EventCancelled:
			result = event.Result
		}
	}
	if result == nil {
		return fmt.Errorf("run ended without a result")
	}

	if runJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

func loadDocument(path string) (inputs.Document, error) {
	f, err := security.SafeOpen(path)
	if err != nil {
		return inputs.Document{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return inputs.Decode(f)
}

func printResult(result *engine.RunResult) {
	fmt.Printf("run:       %s\n", result.RunID)
	fmt.Printf("status:    %s\n", result.Status)
	fmt.Printf("algorithm: %s\n", result.Metrics.Algorithm)
	fmt.Printf("duration:  %dms\n", result.Metrics.DurationMs)
	fmt.Printf("iterations:%d\n", result.Metrics.Iterations)
	fmt.Printf("fitness:   %.3f\n", result.Metrics.Fitness)
	fmt.Printf("hard violations: %d\n", result.Metrics.HardViolationCount)
	fmt.Printf("unscheduled:     %d\n", result.Metrics.UnscheduledCount)
	if result.Message != "" {
		fmt.Printf("message:   %s\n", result.Message)
	}
	if result.Schedule != nil {
		fmt.Printf("\nscheduled assignments: %d\n", result.Schedule.Len())
	}
	if len(result.Conflicts) > 0 {
		fmt.Printf("\nconflicts (%d):\n", len(result.Conflicts))
		for _, conflict := range result.Conflicts {
			fmt.Printf("  [%s] %s on %s: %s\n", conflict.Severity, conflict.Kind, conflict.Day, conflict.Detail)
		}
	}
	if len(result.Unplaced) > 0 {
		fmt.Printf("\nunplaced sessions (%d):\n", len(result.Unplaced))
		for _, session := range result.Unplaced {
			fmt.Printf("  %s (%s)\n", session.Key, session.SessionType)
		}
	}
}
