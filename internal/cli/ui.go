package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// UI styles
var (
	bannerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F0B90B")).
		Align(lipgloss.Center).
		Width(60).
		MarginBottom(1)

	taglineStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#848E9C")).
		Italic(true).
		Align(lipgloss.Center).
		Width(60).
		MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6366F1"))

	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0ECB81"))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F6465D")).
		Bold(true)
)

// DisplayWelcomeBanner shows the welcome banner
func DisplayWelcomeBanner(w io.Writer) {
	fmt.Fprintln(w, bannerStyle.Render("🧠 cortexmem"))
	fmt.Fprintln(w, taglineStyle.Render("What your AI trader remembers"))
}

// DisplayError shows an error message
func DisplayError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("❌ Error: %s", err.Error())))
}

// DisplayInfo shows an info message
func DisplayInfo(w io.Writer, message string) {
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("ℹ️  %s", message)))
}

// DisplaySuccess shows a success message
func DisplaySuccess(w io.Writer, message string) {
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ %s", message)))
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
