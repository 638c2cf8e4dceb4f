package ui

import "github.com/charmbracelet/lipgloss"

// Dashboard palette.
const (
	ColorBg      lipgloss.Color = "#0A0A0F"
	ColorSurface lipgloss.Color = "#12121A"
	ColorBorder  lipgloss.Color = "#2A2A4A"

	ColorHealthy  lipgloss.Color = "#39FF14"
	ColorWarning  lipgloss.Color = "#FFAA00"
	ColorCritical lipgloss.Color = "#FF0055"

	ColorText      lipgloss.Color = "#FFFFFF"
	ColorTextDim   lipgloss.Color = "#B4B4D0"
	ColorTextMuted lipgloss.Color = "#6B6B8D"

	ColorAccent lipgloss.Color = "#FF2E97"
	ColorGraph  lipgloss.Color = "#00FFFF"
)

// Per-panel title and border colors.
var (
	ColorCPUBox  lipgloss.Color = "#3D7B46"
	ColorMemBox  lipgloss.Color = "#8A882E"
	ColorNetBox  lipgloss.Color = "#423BA5"
	ColorProcBox lipgloss.Color = "#923535"

	ColorDownload lipgloss.Color = "#00FFFF"
	ColorUpload   lipgloss.Color = "#FF2E97"
)

// Severity thresholds for percentage values.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// MetricColor returns the severity color for a percentage.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// Shared text styles.
var (
	TitleStyle    = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorTextDim)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorText)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorTextMuted)
	SelectedStyle = lipgloss.NewStyle().Foreground(ColorBg).Background(ColorAccent).Bold(true)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
)
