package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/13rac1/claudepod/internal/store"
)

var (
	labelStyle     = lipgloss.NewStyle().Bold(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle       = lipgloss.NewStyle().Faint(true)
)

// styledStatus colors a job status for terminal display.
func styledStatus(status store.JobStatus) string {
	switch status {
	case store.JobStatusCompleted:
		return completedStyle.Render(string(status))
	case store.JobStatusFailed:
		return failedStyle.Render(string(status))
	case store.JobStatusRunning, store.JobStatusPending:
		return runningStyle.Render(string(status))
	default:
		return dimStyle.Render(string(status))
	}
}

// terminalWidth returns the stdout terminal width, or a fallback for
// non-terminal output.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 20 {
		return 80
	}
	return width
}

// wrapToTerminal wraps text to the terminal width.
func wrapToTerminal(text string) string {
	return wordwrap.String(text, terminalWidth())
}
