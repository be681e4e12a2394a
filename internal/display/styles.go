package display

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/cortexmem/internal/view"
)

// Palette
const (
	colorPositive = lipgloss.Color("#0ECB81")
	colorNegative = lipgloss.Color("#F6465D")
	colorMuted    = lipgloss.Color("#848E9C")
	colorText     = lipgloss.Color("#EAECEF")
	colorGold     = lipgloss.Color("#F0B90B")
	colorSignal   = lipgloss.Color("#6366F1")
	colorBorder   = lipgloss.Color("#2B3139")
	colorPanel    = lipgloss.Color("#1E2329")
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorText).
		MarginBottom(1)

	textStyle = lipgloss.NewStyle().
		Foreground(colorText)

	mutedStyle = lipgloss.NewStyle().
		Foreground(colorMuted)

	negativeStyle = lipgloss.NewStyle().
		Foreground(colorNegative)

	goldStyle = lipgloss.NewStyle().
		Foreground(colorGold)

	symbolStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorText)

	cycleStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Background(colorBorder).
		Padding(0, 1)

	signalStyle = lipgloss.NewStyle().
		Foreground(colorSignal).
		Padding(0, 1)

	statBoxStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	constraintsStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorGold).
		Padding(0, 1).
		MarginTop(1)

	centerStyle = lipgloss.NewStyle().
		Align(lipgloss.Center).
		Padding(1, 0)
)

func toneColor(t view.Tone) lipgloss.Color {
	switch t {
	case view.TonePositive:
		return colorPositive
	case view.ToneNegative:
		return colorNegative
	case view.ToneText:
		return colorText
	case view.ToneAccent:
		return colorGold
	default:
		return colorMuted
	}
}

func toneStyle(t view.Tone) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(toneColor(t))
}

func badgeStyle(t view.Tone) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(toneColor(t))
	if t == view.ToneNeutral {
		return s.Background(colorBorder)
	}
	return s
}

// cardStyle outlines closed trades in their result color.
func cardStyle(result view.Tone) lipgloss.Style {
	border := colorBorder
	if result != "" {
		border = toneColor(result)
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

// PanelBackground is used by the watch view frame.
func PanelBackground() lipgloss.Color {
	return colorPanel
}
