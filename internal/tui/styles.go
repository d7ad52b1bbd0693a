package tui

import "charm.land/lipgloss/v2"

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorDim    = lipgloss.Color("#6b7280")
	colorHeader = lipgloss.Color("#f9fafb")

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHeader)

	styleMode = lipgloss.NewStyle().
			Bold(true)

	styleAwake = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	styleDim = lipgloss.NewStyle().
			Foreground(colorDim)

	styleOK = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)
)
