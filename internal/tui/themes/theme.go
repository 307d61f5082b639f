// Package themes holds the TUI color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtle        lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	In            lipgloss.Style
	Out           lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	FocusedField  lipgloss.Style
	Field         lipgloss.Style
	Box           lipgloss.Style
	Header        lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Error         lipgloss.Color
	Success       lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary: lipgloss.Color("#2E86AB"),
	Muted:   lipgloss.Color("#737373"),
	Border:  lipgloss.Color("#404040"),
	Error:   lipgloss.Color("#ef4444"),
	Success: lipgloss.Color("#10b981"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Subtle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Bold: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#2E86AB")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	In: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
	Out: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f97316")),
	StatusInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3b82f6")),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	StatusSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
	FocusedField: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2E86AB")).
		Bold(true),
	Field: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(1, 2),
	Header: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#404040")).
		PaddingBottom(0),
}

// Plain disables colors, for tests and dumb terminals.
var Plain = Theme{
	Title:         lipgloss.NewStyle(),
	Subtle:        lipgloss.NewStyle(),
	Normal:        lipgloss.NewStyle(),
	Bold:          lipgloss.NewStyle(),
	Selected:      lipgloss.NewStyle(),
	In:            lipgloss.NewStyle(),
	Out:           lipgloss.NewStyle(),
	StatusInfo:    lipgloss.NewStyle(),
	StatusError:   lipgloss.NewStyle(),
	StatusSuccess: lipgloss.NewStyle(),
	FocusedField:  lipgloss.NewStyle(),
	Field:         lipgloss.NewStyle(),
	Box:           lipgloss.NewStyle(),
	Header:        lipgloss.NewStyle(),
}
