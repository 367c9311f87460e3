package grpc

import (
	"context"

	"github.com/hashicorp/go-plugin"
	"github.com/wrenfield/cadence/internal/engine/sdk"
	"github.com/wrenfield/cadence/internal/engine/types"
	"google.golang.org/grpc"
)

// GRPCServer is implemented by plugin-side gRPC servers. The solver engine
// wraps the actual engine implementation and handles gRPC communication.

// Ensure the plugin implements the GRPCPlugin interface.
var _ plugin.GRPCPlugin = (*SolverPlugin)(nil)

// GRPCServer returns the gRPC server for solver plugins.
func (p *SolverPlugin) GRPCServer(broker *plugin.GRPCBroker, s *grpc.Server) error {
	// Registration will use generated proto code when available.
	return nil
}

// GRPCClient returns the gRPC client for solver plugins.
func (p *SolverPlugin) GRPCClient(ctx context.Context, broker *plugin.GRPCBroker, c *grpc.ClientConn) (interface{}, error) {
	return &SolverGRPCClient{conn: c}, nil
}

// BaseEngineServer provides common engine functionality for gRPC servers.
type BaseEngineServer struct {
	engine sdk.Engine
}

// NewBaseEngineServer creates a new base engine server.
func NewBaseEngineServer(engine sdk.Engine) *BaseEngineServer {
	return &BaseEngineServer{engine: engine}
}

// Metadata returns the engine metadata.
func (s *BaseEngineServer) Metadata() sdk.EngineMetadata {
	return s.engine.Metadata()
}

// Type returns the engine type.
func (s *BaseEngineServer) Type() sdk.EngineType {
	return s.engine.Type()
}

// ConfigSchema returns the configuration schema.
func (s *BaseEngineServer) ConfigSchema() sdk.ConfigSchema {
	return s.engine.ConfigSchema()
}

// Initialize initializes the engine.
func (s *BaseEngineServer) Initialize(ctx context.Context, config sdk.EngineConfig) error {
	return s.engine.Initialize(ctx, config)
}

// HealthCheck returns the health status.
func (s *BaseEngineServer) HealthCheck(ctx context.Context) sdk.HealthStatus {
	return s.engine.HealthCheck(ctx)
}

// Shutdown shuts down the engine.
func (s *BaseEngineServer) Shutdown(ctx context.Context) error {
	return s.engine.Shutdown(ctx)
}

// SolverGRPCServer wraps a solver engine for gRPC serving.
type SolverGRPCServer struct {
	BaseEngineServer
	impl types.SolverEngine
}

// NewSolverGRPCServer creates a new solver gRPC server.
func NewSolverGRPCServer(impl types.SolverEngine) *SolverGRPCServer {
	return &SolverGRPCServer{
		BaseEngineServer: *NewBaseEngineServer(impl),
		impl:             impl,
	}
}

// Solve handles the Solve RPC.
func (s *SolverGRPCServer) Solve(ctx *sdk.ExecutionContext, input types.SolveInput, progress types.ProgressFunc) (*types.SolveOutput, error) {
	return s.impl.Solve(ctx, input, progress)
}

// SupportedAlgorithms handles the SupportedAlgorithms RPC.
func (s *SolverGRPCServer) SupportedAlgorithms() []string {
	return s.impl.SupportedAlgorithms()
}
