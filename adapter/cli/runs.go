package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs persisted by the Run Repository",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetContainer()
		if c == nil || c.RunRepository == nil {
			return fmt.Errorf("run repository not available")
		}

		records, err := c.RunRepository.ListRecent(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no runs found")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s  %-10s  %-20s  %s  fitness=%.3f  unplaced=%d\n",
				r.ID, r.Status, r.Algorithm, r.RequestedAt.Format("2006-01-02 15:04:05"),
				r.Metrics.Fitness, r.Metrics.UnscheduledCount)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the terminal result of a single run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetContainer()
		if c == nil || c.RunRepository == nil {
			return fmt.Errorf("run repository not available")
		}

		record, err := c.RunRepository.FindByID(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("find run %s: %w", args[0], err)
		}
		if record == nil {
			return fmt.Errorf("run %s not found", args[0])
		}

		fmt.Printf("run:       %s\n", record.ID)
		fmt.Printf("requested: %s\n", record.RequestedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("status:    %s\n", record.Status)
		fmt.Printf("algorithm: %s\n", record.Algorithm)
		fmt.Printf("fitness:   %.3f\n", record.Metrics.Fitness)
		fmt.Printf("hard violations: %d\n", record.Metrics.HardViolationCount)
		fmt.Printf("unscheduled:     %d\n", record.Metrics.UnscheduledCount)
		if record.Message != "" {
			fmt.Printf("message:   %s\n", record.Message)
		}
		if record.Schedule != nil {
			fmt.Printf("assignments: %d\n", record.Schedule.Len())
		}
		if len(record.Conflicts) > 0 {
			fmt.Printf("conflicts:   %d\n", len(record.Conflicts))
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
