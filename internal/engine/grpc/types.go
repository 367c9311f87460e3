package grpc

import (
	"github.com/wrenfield/cadence/internal/engine/types"
)

// Re-export solver types for plugin interface convenience. This allows
// plugins to import a single package for the engine's request/response
// shapes.
type (
	SolveInput     = types.SolveInput
	SolveOutput    = types.SolveOutput
	ProgressUpdate = types.ProgressUpdate
	ProgressFunc   = types.ProgressFunc
)
