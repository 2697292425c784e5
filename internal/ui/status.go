package ui

import (
	"os"

	"github.com/amonks/tasktracker/task"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	statusTodoStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	statusInProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	statusDoneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	deletedStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Strikethrough(true)
	labelStyle            = lipgloss.NewStyle().Bold(true)
)

// StatusIcon returns a checkbox-style marker for the status.
func StatusIcon(s task.Status) string {
	switch s {
	case task.StatusTodo:
		return "[ ]"
	case task.StatusInProgress:
		return "[~]"
	case task.StatusDone:
		return "[x]"
	default:
		return "[?]"
	}
}

// StatusLabel returns the status text, colored when stdout is a terminal.
func StatusLabel(s task.Status) string {
	label := StatusIcon(s) + " " + string(s)
	if !ansiEnabled() {
		return label
	}
	switch s {
	case task.StatusTodo:
		return statusTodoStyle.Render(label)
	case task.StatusInProgress:
		return statusInProgressStyle.Render(label)
	case task.StatusDone:
		return statusDoneStyle.Render(label)
	default:
		return label
	}
}

// Deleted dims text belonging to a soft-deleted task.
func Deleted(value string) string {
	if !ansiEnabled() {
		return value
	}
	return deletedStyle.Render(value)
}

// Label renders a field label for detail views.
func Label(value string) string {
	if !ansiEnabled() {
		return value
	}
	return labelStyle.Render(value)
}

// ansiEnabled reports whether stdout should receive color.
func ansiEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
