package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/gradecast/internal/analytics"
	"github.com/haskel/gradecast/internal/attendance"
)

// Colors
var (
	colorPrimary = lipgloss.Color("86")  // Cyan
	colorSuccess = lipgloss.Color("82")  // Green
	colorWarning = lipgloss.Color("214") // Orange
	colorDanger  = lipgloss.Color("196") // Red
	colorMuted   = lipgloss.Color("245") // Light gray
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)
)

// riskColor maps a risk tier to its badge color.
func riskColor(r analytics.RiskLevel) lipgloss.Color {
	switch r {
	case analytics.RiskLow:
		return colorSuccess
	case analytics.RiskMedium:
		return colorWarning
	default:
		return colorDanger
	}
}

func alertColor(l attendance.AlertLevel) lipgloss.Color {
	switch l {
	case attendance.AlertSuccess:
		return colorSuccess
	case attendance.AlertWarning:
		return colorWarning
	default:
		return colorDanger
	}
}

func badge(text string, color lipgloss.Color) string {
	return badgeStyle.Foreground(color).Render(text)
}

func field(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}
