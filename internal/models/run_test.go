package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRunRecord(t *testing.T) {
	ended := time.Now().UTC()
	state := &RalphState{
		Status:         RalphStatusCompleted,
		ProjectFile:    "/work/demo/PROJECT.md",
		ProjectPath:    "/work/demo",
		TasksTotal:     3,
		TasksCompleted: 3,
		StartedAt:      ended.Add(-10 * time.Minute),
		EndedAt:        &ended,
		Iterations: []IterationResult{
			{Number: 1, InputTokens: 100, OutputTokens: 40, CostUSD: 0.10, ToolCalls: 5, Model: "claude-sonnet"},
			{Number: 2, InputTokens: 200, OutputTokens: 60, CostUSD: 0.15, ToolCalls: 7},
		},
	}

	record := NewRunRecord(state)
	require.Equal(t, RalphStatusCompleted, record.Status)
	require.Equal(t, 2, record.Iterations)
	require.Equal(t, 300, record.InputTokens)
	require.Equal(t, 100, record.OutputTokens)
	require.InDelta(t, 0.25, record.CostUSD, 1e-9)
	require.Equal(t, 12, record.ToolCalls)
	require.Equal(t, "claude-sonnet", record.Model, "model falls back to the first iteration's")
	require.Equal(t, &ended, record.EndedAt)
}
