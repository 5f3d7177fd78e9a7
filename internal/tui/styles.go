package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorPrimary = "#F2A900"
	colorSuccess = "#04B575"
	colorError   = "#FF5555"
	colorMuted   = "#626262"
	colorBorder  = "#F2A900"
)

var (
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorPrimary)).
		MarginTop(1).
		MarginBottom(1)

	StatusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorSuccess))

	ErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorError))

	MutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted))

	BotMarkerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorError))

	PickBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorBorder)).
		Padding(1, 2)

	ToggleOnStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colorSuccess))

	ToggleOffStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorMuted))
)
