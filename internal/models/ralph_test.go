package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRalphStatusTerminal(t *testing.T) {
	terminal := []RalphStatus{RalphStatusCompleted, RalphStatusCancelled, RalphStatusMaxReached, RalphStatusError}
	for _, status := range terminal {
		require.True(t, status.Terminal(), "expected %s to be terminal", status)
	}

	nonTerminal := []RalphStatus{RalphStatusIdle, RalphStatusActive, RalphStatusStopping}
	for _, status := range nonTerminal {
		require.False(t, status.Terminal(), "expected %s to be non-terminal", status)
	}
}

func TestTaskProgressPercentage(t *testing.T) {
	require.InDelta(t, 50.0, TaskProgress{Total: 4, Completed: 2}.Percentage(), 0.001)
	require.InDelta(t, 0.0, TaskProgress{}.Percentage(), 0.001)
	require.InDelta(t, 100.0, TaskProgress{Total: 3, Completed: 3}.Percentage(), 0.001)
}

func TestTaskProgressAllDone(t *testing.T) {
	require.True(t, TaskProgress{Total: 2, Completed: 2}.AllDone())
	require.False(t, TaskProgress{Total: 2, Completed: 1}.AllDone())
	require.False(t, TaskProgress{}.AllDone(), "zero tasks is never done")
}

func TestRalphStateValidate(t *testing.T) {
	state := &RalphState{
		Status:      RalphStatusActive,
		ProjectFile: "/tmp/project.md",
		ProjectPath: "/tmp",
	}
	require.NoError(t, state.Validate())

	state.Status = "exploded"
	require.Error(t, state.Validate())

	state.Status = RalphStatusActive
	state.ProjectFile = ""
	require.Error(t, state.Validate())

	state.ProjectFile = "/tmp/project.md"
	state.TasksCompleted = 3
	state.TasksTotal = 2
	require.Error(t, state.Validate())
}

func TestRalphStateTotals(t *testing.T) {
	now := time.Now().UTC()
	state := &RalphState{
		Iterations: []IterationResult{
			{Number: 1, StartedAt: now, CostUSD: 0.5, InputTokens: 100, OutputTokens: 40, ToolCalls: 3},
			{Number: 2, StartedAt: now, CostUSD: 1.25, InputTokens: 50, OutputTokens: 10, ToolCalls: 1},
		},
	}

	require.InDelta(t, 1.75, state.TotalCostUSD(), 0.0001)
	in, out := state.TotalTokens()
	require.Equal(t, 150, in)
	require.Equal(t, 50, out)
	require.Equal(t, 4, state.TotalToolCalls())
}
