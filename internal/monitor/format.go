package monitor

import (
	"fmt"
	"time"
)

// formatTokens renders a token count compactly: 950, 1.2K, 3.4M.
func formatTokens(count int) string {
	switch {
	case count >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(count)/1_000_000)
	case count >= 1_000:
		return fmt.Sprintf("%.1fK", float64(count)/1_000)
	default:
		return fmt.Sprintf("%d", count)
	}
}

// formatDuration renders a duration compactly: 42s, 5m 12s, 1h 4m.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int(d.Seconds())
	switch {
	case totalSeconds >= 3600:
		return fmt.Sprintf("%dh %dm", totalSeconds/3600, (totalSeconds%3600)/60)
	case totalSeconds >= 60:
		return fmt.Sprintf("%dm %ds", totalSeconds/60, totalSeconds%60)
	default:
		return fmt.Sprintf("%ds", totalSeconds)
	}
}
