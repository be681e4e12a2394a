package display

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/dyike/cortexmem/internal/i18n"
	"github.com/dyike/cortexmem/internal/view"
)

type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat accepts text, table or json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatTable, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, table or json)", s)
	}
}

// Renderer writes memory pages to a terminal or any other writer.
type Renderer struct {
	out   io.Writer
	width int
}

// NewRenderer creates a renderer. width <= 0 means 80 columns.
func NewRenderer(out io.Writer, width int) *Renderer {
	if width <= 0 {
		width = 80
	}
	return &Renderer{out: out, width: width}
}

// Render writes the page in the given format.
func (r *Renderer) Render(page view.Page, format Format) error {
	switch format {
	case FormatJSON:
		return r.RenderJSON(page)
	case FormatTable:
		return r.RenderTable(page)
	default:
		_, err := io.WriteString(r.out, r.Text(page))
		return err
	}
}

// Text returns the styled page.
func (r *Renderer) Text(page view.Page) string {
	var b strings.Builder

	if page.Kind != view.KindReady {
		b.WriteString(placeholder(page, r.width))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(r.header(page))
	b.WriteString("\n")
	b.WriteString(r.summary(page.Summary))
	b.WriteString("\n\n")

	if page.Overall != nil {
		b.WriteString(r.overall(page))
		b.WriteString("\n\n")
	}

	if page.Empty {
		b.WriteString(emptyState(page, r.width))
		b.WriteString("\n\n")
	}
	for _, c := range page.Cards {
		b.WriteString(r.card(c))
		b.WriteString("\n")
	}

	b.WriteString(r.constraints(page))
	b.WriteString("\n")
	return b.String()
}

func (r *Renderer) header(page view.Page) string {
	title := "🧠 " + page.Language.T(i18n.TradeMemory)
	if page.TraderID != "" {
		title += "  " + mutedStyle.Render(page.TraderID)
	}
	return titleStyle.Render(title)
}

func (r *Renderer) summary(s view.Summary) string {
	stats := s.Stats()
	boxWidth := r.width/len(stats) - 2
	if boxWidth < 14 {
		boxWidth = 14
	}

	boxes := make([]string, 0, len(stats))
	for _, st := range stats {
		content := lipgloss.JoinVertical(lipgloss.Left,
			mutedStyle.Render(st.Label),
			toneStyle(st.Tone).Bold(true).Render(st.Value),
			mutedStyle.Render(st.Sub),
		)
		boxes = append(boxes, statBoxStyle.Width(boxWidth).Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (r *Renderer) overall(page view.Page) string {
	o := page.Overall
	lang := page.Language
	line := fmt.Sprintf("%s  %s %s · %s %s · %s %s · %s %s",
		goldStyle.Bold(true).Render(lang.T(i18n.Performance)),
		lang.T(i18n.AvgReturn), view.FormatReturn(o.AvgReturn),
		lang.T(i18n.TotalReturn), view.FormatReturn(o.TotalReturn),
		lang.T(i18n.MaxDrawdown), view.FormatPercent(o.MaxDrawdown, 2),
		lang.T(i18n.RecentTen), view.FormatPercent(o.RecentWinRate, 1),
	)
	return line
}

func (r *Renderer) card(c view.Card) string {
	left := fmt.Sprintf("%s %s", cycleStyle.Render(c.Cycle), mutedStyle.Render(c.Time))
	right := fmt.Sprintf("%s %s", c.RegimeIcon, mutedStyle.Render(c.Regime))
	lines := []string{spread(left, right, r.width-6)}

	main := fmt.Sprintf("%s %s", badgeStyle(c.BadgeTone).Render(c.Badge), symbolStyle.Render(c.Symbol))
	result := ""
	if c.Return != "" {
		result = fmt.Sprintf("%s %s", c.ResultIcon, toneStyle(c.ResultTone).Bold(true).Render(c.Return))
	}
	lines = append(lines, spread(main, result, r.width-6))

	if p := c.Prediction; p != nil {
		pred := fmt.Sprintf("%s: %s", mutedStyle.Render(p.Label), toneStyle(p.Tone).Render(p.Arrow))
		if p.Probability != "" {
			pred += " " + textStyle.Render(p.Probability)
		}
		lines = append(lines, pred)
	}

	if c.Reasoning != "" {
		lines = append(lines, mutedStyle.Width(r.width-6).Render(c.Reasoning))
	}

	if len(c.Signals) > 0 {
		tags := make([]string, 0, len(c.Signals))
		for _, s := range c.Signals {
			tags = append(tags, signalStyle.Render(s))
		}
		lines = append(lines, strings.Join(tags, " "))
	}

	if c.Details != "" {
		lines = append(lines, mutedStyle.Render(c.Details))
	}

	return cardStyle(c.ResultTone).Width(r.width - 2).Render(strings.Join(lines, "\n"))
}

func (r *Renderer) constraints(page view.Page) string {
	lines := []string{goldStyle.Bold(true).Render("🛡️ " + page.ConstraintsTitle)}
	for _, c := range page.Constraints {
		lines = append(lines, goldStyle.Render("•")+" "+mutedStyle.Render(c))
	}
	return constraintsStyle.Width(r.width - 2).Render(strings.Join(lines, "\n"))
}

func placeholder(page view.Page, width int) string {
	msgStyle := mutedStyle
	if page.Kind == view.KindError {
		msgStyle = negativeStyle
	}
	return centerStyle.Width(width).Render(page.Icon + "\n" + msgStyle.Render(page.Message))
}

func emptyState(page view.Page, width int) string {
	return centerStyle.Width(width).Render(strings.Join([]string{
		page.EmptyIcon,
		textStyle.Bold(true).Render(page.EmptyTitle),
		mutedStyle.Render(page.EmptyHint),
	}, "\n"))
}

// spread places left and right on one line, padded to width.
func spread(left, right string, width int) string {
	if right == "" {
		return left
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// tableReasoningLimit keeps the reasoning column readable; text and JSON
// output carry the full card reasoning.
const tableReasoningLimit = 60

// RenderTable prints the summary and one row per card.
func (r *Renderer) RenderTable(page view.Page) error {
	if page.Kind != view.KindReady {
		_, err := fmt.Fprintf(r.out, "%s %s\n", page.Icon, page.Message)
		return err
	}

	for _, st := range page.Summary.Stats() {
		fmt.Fprintf(r.out, "%-16s %-8s %s\n", st.Label, st.Value, st.Sub)
	}
	fmt.Fprintln(r.out)

	if page.Empty {
		fmt.Fprintf(r.out, "%s %s\n%s\n\n", page.EmptyIcon, page.EmptyTitle, page.EmptyHint)
	} else {
		if err := r.cardTable(page.Cards); err != nil {
			return err
		}
	}

	if page.Overall != nil {
		fmt.Fprintln(r.out, r.overall(page))
	}

	fmt.Fprintln(r.out, page.ConstraintsTitle)
	for _, c := range page.Constraints {
		fmt.Fprintf(r.out, "  • %s\n", c)
	}
	return nil
}

// RenderJSON writes the page model as indented JSON.
func (r *Renderer) RenderJSON(page view.Page) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(page)
}

func (r *Renderer) cardTable(cards []view.Card) error {
	withDetails := false
	for _, c := range cards {
		if c.Details != "" {
			withDetails = true
			break
		}
	}

	header := []any{"Cycle", "Time", "Regime", "Trade", "Symbol", "Result", "Prediction", "Signals", "Reasoning"}
	if withDetails {
		header = append(header, "Details")
	}

	table := tablewriter.NewWriter(r.out)
	table.Header(header...)
	for _, c := range cards {
		pred := ""
		if p := c.Prediction; p != nil {
			pred = strings.TrimSpace(p.Arrow + " " + p.Probability)
		}
		row := []any{
			c.Cycle,
			c.Time,
			c.RegimeIcon + " " + c.Regime,
			c.Badge,
			c.Symbol,
			strings.TrimSpace(c.ResultIcon + " " + c.Return),
			pred,
			strings.Join(c.Signals, ", "),
			clip(c.Reasoning, tableReasoningLimit),
		}
		if withDetails {
			row = append(row, c.Details)
		}
		if err := table.Append(row...); err != nil {
			return fmt.Errorf("append trade #%d: %w", c.TradeID, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render trade table: %w", err)
	}
	return nil
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
