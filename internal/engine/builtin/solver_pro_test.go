package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrenfield/cadence/internal/engine/sdk"
)

func TestSolverEnginePro_SolveHybridPlacesAllSessions(t *testing.T) {
	e := NewSolverEnginePro()
	require.NoError(t, e.Initialize(context.Background(), sdk.NewEngineConfig("cadence.solver.pro", map[string]any{
		"random_seed": 7,
	})))

	out, err := e.Solve(newExecutionContext(), smallSolveInput(t), nil)
	require.NoError(t, err)
	assert.Empty(t, out.Unplaced)
}

func TestSolverEnginePro_SolveAnnealingConverges(t *testing.T) {
	e := NewSolverEnginePro()
	require.NoError(t, e.Initialize(context.Background(), sdk.NewEngineConfig("cadence.solver.pro", map[string]any{
		"random_seed":              7,
		"annealing_max_iterations": 500,
	})))

	input := smallSolveInput(t)
	input.Algorithm = "simulated_annealing"
	out, err := e.Solve(newExecutionContext(), input, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Unplaced)
}

func TestSolverEnginePro_SupportedAlgorithms(t *testing.T) {
	e := NewSolverEnginePro()
	assert.ElementsMatch(t, []string{"simulated_annealing", "genetic", "hybrid"}, e.SupportedAlgorithms())
}
