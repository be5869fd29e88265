package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
)

// colorEnabled reports whether styled output should be used on stdout.
func colorEnabled() bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func colorSuccess(s string) string {
	if !colorEnabled() {
		return s
	}
	return successStyle.Render(s)
}

func colorWarn(s string) string {
	if !colorEnabled() {
		return s
	}
	return warnTextStyle.Render(s)
}

func colorError(s string) string {
	if !colorEnabled() {
		return s
	}
	return errorStyle.Render(s)
}

func colorFaint(s string) string {
	if !colorEnabled() {
		return s
	}
	return faintStyle.Render(s)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printKV prints an aligned key-value line.
func printKV(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %-16s %s\n", key, value)
}
