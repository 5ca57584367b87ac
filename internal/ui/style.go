// Package ui renders terminal output for dbsanitize.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Success renders a green check line
func Success(format string, args ...any) string {
	return successStyle.Render("✓ " + fmt.Sprintf(format, args...))
}

// Warning renders a yellow warning line
func Warning(format string, args ...any) string {
	return warningStyle.Render("⚠ " + fmt.Sprintf(format, args...))
}

// Error renders a red error line
func Error(format string, args ...any) string {
	return errorStyle.Render(fmt.Sprintf(format, args...))
}

// Info renders a blue informational line
func Info(format string, args ...any) string {
	return infoStyle.Render(fmt.Sprintf(format, args...))
}

// Label renders a bold "name:" prefix followed by value
func Label(name, value string) string {
	return boldStyle.Render(name+":") + " " + value
}

// Code renders a block of SQL or YAML
func Code(s string) string {
	return codeStyle.Render(s)
}

// Rule returns a horizontal separator
func Rule(width int) string {
	return strings.Repeat("─", width)
}
