package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"boxoffice-pipeline/internal/model"
)

var (
	colorCyan  = lipgloss.Color("#00FFFF")
	colorGray  = lipgloss.Color("#666666")
	colorRed   = lipgloss.Color("#FF0000")
	colorGreen = lipgloss.Color("#00FF00")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1).
			Width(24)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	cardValueStyle = lipgloss.NewStyle().
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)
)

// renderCards lays the metric cards out side by side.
func renderCards(cards []model.MetricCard) string {
	boxes := make([]string, 0, len(cards))
	for _, c := range cards {
		boxes = append(boxes, cardStyle.Render(
			cardLabelStyle.Render(c.Label)+"\n"+cardValueStyle.Render(c.Formatted),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// renderDashboard is the terminal view of one run.
func renderDashboard(d *model.Dashboard) string {
	var b strings.Builder

	selection := "(none)"
	if len(d.Selection) > 0 {
		selection = strings.Join(d.Selection, ", ")
	}
	b.WriteString(titleStyle.Render("Box office: "+selection) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("job %s · variant %s · %s", d.JobID, d.Variant, d.Aggregation)) + "\n")
	b.WriteString(renderCards(d.Cards) + "\n")

	if len(d.Windows) > 0 {
		b.WriteString(titleStyle.Render("Competing windows") + "\n")
		for _, w := range d.Windows {
			fmt.Fprintf(&b, "  %-24s %s → %s\n", w.Movie, w.Start, w.End)
		}
	}
	fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("%d rows plotted, %d charts, %d parse warnings",
		len(d.Combined), len(d.Charts), d.Warnings)))

	for _, e := range d.Exports {
		if e.Success {
			fmt.Fprintf(&b, "  %s %-8s %s (%d)\n", okStyle.Render("✓"), e.Type, e.Path, e.RecordCount)
		} else {
			fmt.Fprintf(&b, "  %s %-8s %s\n", errorStyle.Render("✗"), e.Type, e.Error)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderSelection lists selectable values, marking the resolved defaults.
func renderSelection(values, defaults []string) string {
	isDefault := make(map[string]bool, len(defaults))
	for _, d := range defaults {
		isDefault[d] = true
	}

	lines := make([]string, 0, len(values))
	for _, v := range values {
		if isDefault[v] {
			lines = append(lines, okStyle.Render("* "+v))
		} else {
			lines = append(lines, "  "+v)
		}
	}
	return strings.Join(lines, "\n")
}
