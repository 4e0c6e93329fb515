package display

import "github.com/charmbracelet/lipgloss"

var (
	colorRed    = lipgloss.Color("#EF4444")
	colorAmber  = lipgloss.Color("#F59E0B")
	colorGreen  = lipgloss.Color("#10B981")
	colorBlue   = lipgloss.Color("#3B82F6")
	colorPurple = lipgloss.Color("#7C3AED")
	colorGray   = lipgloss.Color("#6B7280")

	userBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPurple).
				Padding(0, 1)

	escalationBubbleStyle = assistantBubbleStyle.
				BorderForeground(colorRed)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPurple)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	boldStyle = lipgloss.NewStyle().Bold(true)

	linkStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Underline(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	badgeStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true)

	savedStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorAmber).
			Bold(true)
)

// RiskColor colours a 0-10 risk rating: high is bad.
func RiskColor(rating float64) lipgloss.Color {
	switch {
	case rating >= 7:
		return colorRed
	case rating >= 4:
		return colorAmber
	default:
		return colorGreen
	}
}

// SuitabilityColor colours a 0-10 suitability rating: high is good.
func SuitabilityColor(rating float64) lipgloss.Color {
	switch {
	case rating >= 7:
		return colorGreen
	case rating >= 4:
		return colorAmber
	default:
		return colorRed
	}
}

// SentimentColor maps an article sentiment label to a badge colour.
func SentimentColor(sentiment string) lipgloss.Color {
	switch sentiment {
	case "positive", "Positive":
		return colorGreen
	case "negative", "Negative":
		return colorRed
	case "mixed", "Mixed":
		return colorAmber
	default:
		return colorGray
	}
}
