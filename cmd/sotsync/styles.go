package main

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Catppuccin Mocha inspired).
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"} // Blue
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"} // Green
	colorWarning = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"} // Yellow
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"} // Red
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"} // Overlay0
)

// styles holds the lipgloss styles used by command output.
type styles struct {
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Negation lipgloss.Style
	Addition lipgloss.Style
	Wrapper  lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Warning:  lipgloss.NewStyle().Foreground(colorWarning),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(colorError),
		Negation: lipgloss.NewStyle().Foreground(colorError),
		Addition: lipgloss.NewStyle().Foreground(colorSuccess),
		Wrapper:  lipgloss.NewStyle().Foreground(colorMuted),
	}
}

// command renders one command line styled by its effect.
func (s styles) command(cmd string, negation bool) string {
	if negation {
		return s.Negation.Render("- " + cmd)
	}
	return s.Addition.Render("+ " + cmd)
}
