package views

import (
	"github.com/charmbracelet/lipgloss"

	"recpick/internal/autocomplete"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Label         lipgloss.Style
	FocusedLabel  lipgloss.Style
	Marker        lipgloss.Style
	Dim           lipgloss.Style
	Detached      lipgloss.Style
	LogBox        lipgloss.Style
	LogEntry      lipgloss.Style
	Help          lipgloss.Style
	Status        lipgloss.Style
	StatusError   lipgloss.Style
	Input         lipgloss.Style
	Menu          lipgloss.Style
	Scroll        lipgloss.Style
	Highlight     lipgloss.Style
	StatusLoading lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Label:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(10),
		FocusedLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true).Width(10),
		Marker:       lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		Dim:          lipgloss.NewStyle().Faint(true),
		Detached:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Italic(true), // red
		LogBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(0, 1).
			MarginTop(1).
			BorderForeground(lipgloss.Color("241")),
		LogEntry: lipgloss.NewStyle().Foreground(lipgloss.Color("78")), // green
		Help:     lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Input:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Menu:          lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("241")),
		Scroll:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Background(lipgloss.Color("238")).Bold(true),
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
	}
}

// Picker derives the widget styles from the UI palette
func (s *Styles) Picker() *autocomplete.Styles {
	return &autocomplete.Styles{
		Input:       s.Input,
		Placeholder: s.Dim,
		Busy:        s.StatusLoading,
		Menu:        s.Menu,
		Item:        s.Input,
		Highlight:   s.Highlight,
		Scroll:      s.Scroll,
	}
}
