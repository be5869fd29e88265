package monitor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tOgg1/ralph/internal/models"
	"github.com/tOgg1/ralph/internal/state"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Faint(true)
	pendingStyle = lipgloss.NewStyle()
)

func (m model) View() string {
	if m.quitting {
		return ""
	}

	header := titleStyle.Render("Ralph Monitor") + dimStyle.Render("  q to quit")

	if m.err != nil {
		if errors.Is(m.err, state.ErrNotFound) {
			return header + "\n\n" + dimStyle.Render("No ralph loop has run in this project yet.")
		}
		return header + "\n\n" + errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.loopState == nil {
		return header + "\n\n" + dimStyle.Render("Loading...")
	}

	sections := []string{
		header,
		panelStyle.Render(m.statusPanel()),
	}
	if !m.hideTasks {
		sections = append(sections, panelStyle.Render(m.taskPanel()))
	}
	if len(m.loopState.Iterations) > 0 {
		sections = append(sections, panelStyle.Render(m.iterationPanel()))
	}
	return strings.Join(sections, "\n")
}

func (m model) statusPanel() string {
	s := m.loopState

	elapsed := time.Since(s.StartedAt)
	if s.EndedAt != nil {
		elapsed = s.EndedAt.Sub(s.StartedAt)
	}

	maxStr := "∞"
	if s.MaxIterations > 0 {
		maxStr = fmt.Sprintf("%d", s.MaxIterations)
	}

	lines := []string{
		fmt.Sprintf("%s  %s", statusSymbol(s.Status), strings.ToUpper(string(s.Status))),
		fmt.Sprintf("Iteration  %d/%s", s.Iteration, maxStr),
		fmt.Sprintf("Elapsed    %s", formatDuration(elapsed)),
	}

	if s.IterationStartedAt != nil {
		lines = append(lines, fmt.Sprintf("Current    %s", formatDuration(time.Since(*s.IterationStartedAt))))
	}

	in, out := s.TotalTokens()
	lines = append(lines,
		fmt.Sprintf("Cost       $%.4f", s.TotalCostUSD()),
		fmt.Sprintf("Tokens     %s in / %s out", formatTokens(in), formatTokens(out)),
	)

	if s.ErrorMessage != "" {
		lines = append(lines, errStyle.Render("Error: "+s.ErrorMessage))
	}
	return strings.Join(lines, "\n")
}

func (m model) taskPanel() string {
	progress := m.loopState.TaskProgressSnapshot()
	lines := []string{
		fmt.Sprintf("Tasks %d/%d (%.0f%%)  %s",
			progress.Completed, progress.Total, progress.Percentage(),
			progressBar(progress, 24)),
	}

	for _, task := range m.tasks {
		if task.Done {
			lines = append(lines, doneStyle.Render("  ✓ "+task.Text))
		} else {
			lines = append(lines, pendingStyle.Render("  ○ "+task.Text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m model) iterationPanel() string {
	iterations := m.loopState.Iterations
	if len(iterations) > m.iterationsShown {
		iterations = iterations[len(iterations)-m.iterationsShown:]
	}

	lines := []string{dimStyle.Render(fmt.Sprintf("%-4s %-9s %-10s %-8s %s", "#", "duration", "cost", "tasks", "note"))}
	for _, it := range iterations {
		note := it.StopReason
		if it.TimedOut {
			note = "timed out"
		}
		lines = append(lines, fmt.Sprintf("%-4d %-9s $%-9.4f %d/%-6d %s",
			it.Number,
			formatDuration(time.Duration(it.DurationSeconds*float64(time.Second))),
			it.CostUSD,
			it.TasksAfter.Completed, it.TasksAfter.Total,
			note,
		))
	}
	return strings.Join(lines, "\n")
}

func statusSymbol(status models.RalphStatus) string {
	switch status {
	case models.RalphStatusActive:
		return activeStyle.Render("●")
	case models.RalphStatusStopping:
		return warnStyle.Render("◐")
	case models.RalphStatusCompleted:
		return activeStyle.Render("✓")
	case models.RalphStatusMaxReached:
		return warnStyle.Render("◆")
	case models.RalphStatusCancelled, models.RalphStatusError:
		return errStyle.Render("✗")
	default:
		return dimStyle.Render("○")
	}
}

func progressBar(progress models.TaskProgress, width int) string {
	if width <= 0 || progress.Total == 0 {
		return ""
	}
	filled := progress.Completed * width / progress.Total
	return activeStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}
