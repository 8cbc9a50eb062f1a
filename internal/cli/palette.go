package cli

import "github.com/charmbracelet/lipgloss"

var (
	ColorInk       = lipgloss.Color("#E5E9F0")
	ColorDim       = lipgloss.Color("#7A8291")
	ColorAccent    = lipgloss.Color("#88C0D0")
	ColorAccentAlt = lipgloss.Color("#81A1C1")
	ColorSuccess   = lipgloss.Color("#A3BE8C")
	ColorWarn      = lipgloss.Color("#EBCB8B")
	ColorError     = lipgloss.Color("#BF616A")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle  = lipgloss.NewStyle().Foreground(ColorInk)
	valueStyle  = lipgloss.NewStyle().Foreground(ColorInk).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(ColorDim)
	barStyle    = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	fileStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	errorStyle  = lipgloss.NewStyle().Foreground(ColorError)
	bulletStyle = lipgloss.NewStyle().Foreground(ColorDim)
)

// outcomeStyle colours a batch outcome
func outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "success":
		return lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess)
	case "partial":
		return lipgloss.NewStyle().Bold(true).Foreground(ColorWarn)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorError)
	}
}
