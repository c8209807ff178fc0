package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	valid    lipgloss.Style
	invalid  lipgloss.Style
	disabled lipgloss.Style
	item     lipgloss.Style
	selected lipgloss.Style
	status   lipgloss.Style
	help     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1),
		valid:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		invalid:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		item:     lipgloss.NewStyle().PaddingLeft(4),
		selected: lipgloss.NewStyle().PaddingLeft(2).Bold(true).Foreground(lipgloss.Color("13")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginTop(1),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}
