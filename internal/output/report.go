package output

import (
	"fmt"
	"strings"
)

// ScoreBar renders a visual bar for a 0.0-1.0 score.
// Example: "████████░░ 0.82"
func ScoreBar(score float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int(score * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(string) string
	switch {
	case score >= 0.7:
		style = func(s string) string { return StyleSuccess.Render(s) }
	case score >= 0.4:
		style = func(s string) string { return StyleWarning.Render(s) }
	default:
		style = func(s string) string { return StyleError.Render(s) }
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.2f", score)))
}

// SeverityBadge returns a styled label for a drift severity.
func SeverityBadge(severity string) string {
	switch severity {
	case "major":
		return StyleError.Render("MAJOR")
	case "moderate":
		return StyleWarning.Render("MODERATE")
	case "minor":
		return StyleWarning.Render("minor")
	default:
		return StyleMuted.Render("none")
	}
}

// TrendArrowPercent returns a styled trend indicator for a percentage delta.
// Positive delta shows an up arrow, negative shows down, zero shows a dash.
func TrendArrowPercent(delta float64, higherIsBetter bool) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}

	isPositive := delta > 0
	isImproved := (isPositive && higherIsBetter) || (!isPositive && !higherIsBetter)

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%.1f%%", delta)
	} else {
		arrow = fmt.Sprintf("▼ %.1f%%", delta)
	}

	if isImproved {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
