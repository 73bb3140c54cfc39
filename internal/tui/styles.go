package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle        = lipgloss.NewStyle().Padding(1, 2)
	titleStyle      = lipgloss.NewStyle().Bold(true)
	helpStyle       = lipgloss.NewStyle().Faint(true)
	selectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dirStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	containerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	successStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	warningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	overlayBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
)
