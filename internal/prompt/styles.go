package prompt

import "github.com/charmbracelet/lipgloss"

// ANSI palette indices.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	colorWarning = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}
	colorDefault = lipgloss.AdaptiveColor{Light: "7", Dark: "7"}
)

var (
	styleTitle    = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleMessage  = lipgloss.NewStyle().PaddingLeft(2)
	styleOption   = lipgloss.NewStyle().PaddingLeft(4)
	styleSelected = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(colorDefault).
			Background(colorPrimary).
			Bold(true)
	styleHelp = lipgloss.NewStyle().Foreground(colorMuted).PaddingLeft(2)
)
