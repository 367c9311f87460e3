// Package grpc provides gRPC-based plugin communication for Cadence solver
// engines. It uses HashiCorp's go-plugin library for process isolation and
// management.
package grpc

import (
	"github.com/hashicorp/go-plugin"
	"github.com/wrenfield/cadence/internal/engine/sdk"
)

// HandshakeConfig is used to verify that the plugin is compatible.
// Both the core and plugins must use the same handshake configuration.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "CADENCE_ENGINE_PLUGIN",
	MagicCookieValue: "cadence-engine-v1",
}

// PluginMap is the map of plugins we can dispense.
var PluginMap = map[string]plugin.Plugin{
	"solver": &SolverPlugin{},
}

// PluginMapForEngine returns a plugin map for a specific engine type.
func PluginMapForEngine(engineType sdk.EngineType) map[string]plugin.Plugin {
	switch engineType {
	case sdk.EngineTypeSolver:
		return map[string]plugin.Plugin{"engine": &SolverPlugin{}}
	default:
		return nil
	}
}

// SolverPlugin is the plugin.Plugin implementation for solver engines.
type SolverPlugin struct {
	plugin.Plugin
	// Impl is the concrete implementation (plugin-side).
	Impl SolverEnginePlugin
}

// SolverEnginePlugin is the interface for solver engine plugins.
type SolverEnginePlugin interface {
	sdk.Engine
	Solve(ctx *sdk.ExecutionContext, input SolveInput, progress ProgressFunc) (*SolveOutput, error)
	SupportedAlgorithms() []string
}
