// Package ui provides the drawing primitives the dashboard panels are built
// from: braille graphs, block sparklines, gradient meters and box frames.
//
// Every widget returns plain strings with lipgloss styling. Frame and Place
// additionally embed absolute cursor moves so their output can be written
// anywhere on screen through the compositor.
//
// # Color Scheme
//
//	ColorHealthy  (green) - below WarningThreshold
//	ColorWarning  (amber) - below CriticalThreshold
//	ColorCritical (red)   - at or above CriticalThreshold
//
// MetricColor maps a percentage to one of these.
package ui
