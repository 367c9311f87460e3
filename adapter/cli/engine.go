package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wrenfield/cadence/internal/engine/sdk"
)

var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Manage solver engines",
	Long:  "Commands for inspecting the built-in and plugin-loaded solver engines the Optimization Engine dispatches runs to.",
}

var engineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered solver engines",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetContainer()
		if c == nil || c.EngineRegistry == nil {
			return fmt.Errorf("engine registry not available")
		}

		entries := c.EngineRegistry.List()
		if len(entries) == 0 {
			fmt.Println("No engines registered")
			return nil
		}

		fmt.Println("Solver Engines:")
		fmt.Println(strings.Repeat("-", 40))

		for _, entry := range entries {
			id, name, version := "", "", ""
			if entry.Manifest != nil {
				id, name, version = entry.Manifest.ID, entry.Manifest.Name, entry.Manifest.Version
			}
			if entry.Engine != nil {
				meta := entry.Engine.Metadata()
				id, name, version = meta.ID, meta.Name, meta.Version
			}

			builtinStr := ""
			if entry.Builtin {
				builtinStr = " [built-in]"
			}
			fmt.Printf("  %s (v%s)%s\n", name, version, builtinStr)
			fmt.Printf("    ID: %s\n", id)
			fmt.Printf("    Status: %s\n", entry.Status)
		}

		fmt.Printf("\nTotal: %d engines\n", c.EngineRegistry.Count())
		return nil
	},
}

var engineInfoCmd = &cobra.Command{
	Use:   "info <engine-id>",
	Short: "Show detailed information about a solver engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetContainer()
		if c == nil || c.EngineRegistry == nil {
			return fmt.Errorf("engine registry not available")
		}

		ctx := cmd.Context()
		engineID := args[0]

		eng, err := c.EngineRegistry.Get(ctx, engineID)
		if err != nil {
			return fmt.Errorf("engine not found: %s", engineID)
		}

		meta := eng.Metadata()
		fmt.Printf("Engine: %s\n", meta.Name)
		fmt.Printf("ID: %s\n", meta.ID)
		fmt.Printf("Version: %s\n", meta.Version)
		fmt.Printf("Type: %s\n", formatEngineType(eng.Type()))

		if meta.Author != "" {
			fmt.Printf("Author: %s\n", meta.Author)
		}
		if meta.Description != "" {
			fmt.Printf("Description: %s\n", meta.Description)
		}
		if meta.License != "" {
			fmt.Printf("License: %s\n", meta.License)
		}
		if meta.Homepage != "" {
			fmt.Printf("Homepage: %s\n", meta.Homepage)
		}
		if len(meta.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(meta.Tags, ", "))
		}
		if meta.MinAPIVersion != "" {
			fmt.Printf("Min API Version: %s\n", meta.MinAPIVersion)
		}
		if len(meta.Capabilities) > 0 {
			fmt.Printf("Capabilities: %s\n", strings.Join(meta.Capabilities, ", "))
		}

		health := eng.HealthCheck(ctx)
		status := "healthy"
		if !health.Healthy {
			status = "unhealthy"
		}
		fmt.Printf("Health: %s", status)
		if health.Message != "" {
			fmt.Printf(" (%s)", health.Message)
		}
		fmt.Println()

		schema := eng.ConfigSchema()
		if len(schema.Properties) > 0 {
			fmt.Printf("\nConfiguration Options:\n")
			for name, prop := range schema.Properties {
				required := ""
				for _, r := range schema.Required {
					if r == name {
						required = " (required)"
						break
					}
				}
				fmt.Printf("  %s%s: %s\n", name, required, prop.Type)
				if prop.Title != "" {
					fmt.Printf("    %s\n", prop.Title)
				}
				if prop.Description != "" {
					fmt.Printf("    %s\n", prop.Description)
				}
				if prop.Default != nil {
					fmt.Printf("    Default: %v\n", prop.Default)
				}
			}
		}

		return nil
	},
}

var engineHealthCmd = &cobra.Command{
	Use:   "health [engine-id]",
	Short: "Check health of solver engines",
	Long:  "Check health of a specific solver engine, or every registered engine if no ID is provided.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetContainer()
		if c == nil || c.EngineRegistry == nil {
			return fmt.Errorf("engine registry not available")
		}

		ctx := cmd.Context()

		if len(args) > 0 {
			engineID := args[0]
			eng, err := c.EngineRegistry.Get(ctx, engineID)
			if err != nil {
				return fmt.Errorf("engine not found: %s", engineID)
			}

			health := eng.HealthCheck(ctx)
			if health.Healthy {
				fmt.Printf("%s: healthy\n", engineID)
			} else {
				fmt.Printf("%s: unhealthy (%s)\n", engineID, health.Message)
			}
			return nil
		}

		entries := c.EngineRegistry.List()
		if len(entries) == 0 {
			fmt.Println("No engines registered")
			return nil
		}

		healthy, unhealthy := 0, 0
		for _, entry := range entries {
			engineID := ""
			if entry.Manifest != nil {
				engineID = entry.Manifest.ID
			}
			if engineID == "" {
				continue
			}

			eng, err := c.EngineRegistry.Get(ctx, engineID)
			if err != nil {
				fmt.Printf("%s: error (%s)\n", engineID, err.Error())
				unhealthy++
				continue
			}

			health := eng.HealthCheck(ctx)
			if health.Healthy {
				fmt.Printf("%s: healthy\n", engineID)
				healthy++
			} else {
				fmt.Printf("%s: unhealthy (%s)\n", engineID, health.Message)
				unhealthy++
			}
		}

		fmt.Printf("\nHealthy: %d, Unhealthy: %d\n", healthy, unhealthy)
		return nil
	},
}

func formatEngineType(t sdk.EngineType) string {
	switch t {
	case sdk.EngineTypeSolver:
		return "Solver"
	default:
		return string(t)
	}
}

func init() {
	rootCmd.AddCommand(engineCmd)
	engineCmd.AddCommand(engineListCmd)
	engineCmd.AddCommand(engineInfoCmd)
	engineCmd.AddCommand(engineHealthCmd)
}
