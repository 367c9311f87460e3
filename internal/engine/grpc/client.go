package grpc

import (
	"context"

	"github.com/wrenfield/cadence/internal/engine/sdk"
	"github.com/wrenfield/cadence/internal/engine/types"
	"google.golang.org/grpc"
)

// SolverGRPCClient is the host-side gRPC client for solver engines. It wraps
// the gRPC client connection and translates between Go types and protobuf
// messages.
type SolverGRPCClient struct {
	conn *grpc.ClientConn
}

// Metadata returns the engine metadata.
func (c *SolverGRPCClient) Metadata() sdk.EngineMetadata {
	// Will call gRPC Metadata RPC when proto is generated
	return sdk.EngineMetadata{}
}

// Type returns the engine type.
func (c *SolverGRPCClient) Type() sdk.EngineType {
	return sdk.EngineTypeSolver
}

// ConfigSchema returns the configuration schema.
func (c *SolverGRPCClient) ConfigSchema() sdk.ConfigSchema {
	// Will call gRPC ConfigSchema RPC when proto is generated
	return sdk.ConfigSchema{}
}

// Initialize initializes the engine.
func (c *SolverGRPCClient) Initialize(ctx context.Context, config sdk.EngineConfig) error {
	// Will call gRPC Initialize RPC when proto is generated
	return nil
}

// HealthCheck returns the health status.
func (c *SolverGRPCClient) HealthCheck(ctx context.Context) sdk.HealthStatus {
	// Will call gRPC HealthCheck RPC when proto is generated
	return sdk.HealthStatus{Healthy: true}
}

// Shutdown shuts down the engine.
func (c *SolverGRPCClient) Shutdown(ctx context.Context) error {
	// Will call gRPC Shutdown RPC when proto is generated
	return nil
}

// Solve solves a timetable instance.
func (c *SolverGRPCClient) Solve(ctx *sdk.ExecutionContext, input types.SolveInput, progress types.ProgressFunc) (*types.SolveOutput, error) {
	// Will call gRPC Solve RPC when proto is generated
	return &types.SolveOutput{}, nil
}

// SupportedAlgorithms returns the algorithm identifiers the remote engine supports.
func (c *SolverGRPCClient) SupportedAlgorithms() []string {
	// Will call gRPC SupportedAlgorithms RPC when proto is generated
	return nil
}

// Verify interface compliance at compile time.
var _ types.SolverEngine = (*SolverGRPCClient)(nil)
