package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tOgg1/ralph/internal/models"
)

func TestFormatTokens(t *testing.T) {
	require.Equal(t, "0", formatTokens(0))
	require.Equal(t, "950", formatTokens(950))
	require.Equal(t, "1.2K", formatTokens(1200))
	require.Equal(t, "999.9K", formatTokens(999_949))
	require.Equal(t, "3.4M", formatTokens(3_400_000))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "0s", formatDuration(0))
	require.Equal(t, "0s", formatDuration(-time.Second))
	require.Equal(t, "42s", formatDuration(42*time.Second))
	require.Equal(t, "5m 12s", formatDuration(5*time.Minute+12*time.Second))
	require.Equal(t, "1h 4m", formatDuration(time.Hour+4*time.Minute+30*time.Second))
}

func TestProgressBar(t *testing.T) {
	require.Empty(t, progressBar(models.TaskProgress{}, 10))
	half := progressBar(models.TaskProgress{Total: 2, Completed: 1}, 10)
	require.Contains(t, half, "█████")
	require.Contains(t, half, "░░░░░")
}
