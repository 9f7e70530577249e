package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHeader  = lipgloss.NewStyle().Bold(true)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleGood    = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarn    = lipgloss.NewStyle().Foreground(colorYellow)
	styleBad     = lipgloss.NewStyle().Foreground(colorRed)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleSection = lipgloss.NewStyle().MarginTop(1)
)

// rateStyle colours a resolve rate: green from 90%, amber from 50%.
func rateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 0.9:
		return styleGood
	case rate >= 0.5:
		return styleWarn
	default:
		return styleBad
	}
}
