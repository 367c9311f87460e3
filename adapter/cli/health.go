package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenfield/cadence/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database and engine registry health",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetContainer()
		if c == nil {
			return fmt.Errorf("container not initialized")
		}

		results := c.Health.Check(cmd.Context())
		overall := observability.HealthStatusHealthy
		for name, result := range results {
			fmt.Printf("%-16s %-10s %s\n", name, result.Status, result.Message)
			if result.Status != observability.HealthStatusHealthy && overall == observability.HealthStatusHealthy {
				overall = result.Status
			}
		}

		if overall != observability.HealthStatusHealthy {
			return fmt.Errorf("health check reported status %s", overall)
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
