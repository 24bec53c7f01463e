package autocomplete

import "github.com/charmbracelet/lipgloss"

// Styles contains the style definitions for the widget
type Styles struct {
	Input       lipgloss.Style
	Placeholder lipgloss.Style
	Busy        lipgloss.Style
	Menu        lipgloss.Style
	Item        lipgloss.Style
	Highlight   lipgloss.Style
	Scroll      lipgloss.Style
}

// DefaultStyles returns the default widget styles
func DefaultStyles() Styles {
	return Styles{
		Input:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Placeholder: lipgloss.NewStyle().Faint(true),
		Busy:        lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Menu: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Item:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Background(lipgloss.Color("238")).Bold(true),
		Scroll:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	}
}
