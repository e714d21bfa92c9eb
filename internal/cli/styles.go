// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/transactai/transactai/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or low-confidence results.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	strategyStyles = map[model.Strategy]lipgloss.Style{
		model.StrategyRule:     lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true),
		model.StrategyML:       lipgloss.NewStyle().Foreground(PrimaryColor),
		model.StrategyHybrid:   WarningStyle,
		model.StrategyFallback: SubtleStyle,
	}
)

// RenderDecision formats one decision for terminal display, including the
// "did you mean" candidates on ambiguous hybrid results.
func RenderDecision(d model.Decision) string {
	var b strings.Builder

	style, ok := strategyStyles[d.Strategy]
	if !ok {
		style = SubtleStyle
	}

	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		TitleStyle.Render(d.Category),
		style.Render(string(d.Strategy)),
		SubtleStyle.Render(fmt.Sprintf("%.2f", d.Confidence)),
	))

	if d.Strategy == model.StrategyHybrid {
		if candidates := d.Candidates(); len(candidates) > 1 {
			b.WriteString(SubtleStyle.Render(
				"  did you mean: " + strings.Join(candidates, " / ")))
			b.WriteString("\n")
		}
	}

	for _, entry := range d.Trace {
		b.WriteString(SubtleStyle.Render(fmt.Sprintf("  %-10s %-16s %.3f %s",
			entry.Stage, entry.Label, entry.Score, entry.Detail)))
		b.WriteString("\n")
	}

	return b.String()
}
