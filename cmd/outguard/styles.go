// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/torhovland/outguard/internal/collision"
)

// Palette. Each color picks its light or dark variant from the terminal
// background.
var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	colorClean   = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	colorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	colorPath    = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
)

var (
	// TitleStyle renders unit descriptions and the command title.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	// SubtitleStyle renders secondary text such as watch notices.
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	// SuccessStyle renders a clean report.
	SuccessStyle = lipgloss.NewStyle().Foreground(colorClean)
	// ErrorStyle renders "error:" labels.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	// WarningStyle renders "warning:" labels and collision markers.
	WarningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	// PathStyle renders output paths.
	PathStyle = lipgloss.NewStyle().Foreground(colorPath)
)

// severityStyle picks the label style for a diagnostic.
func severityStyle(s collision.Severity) lipgloss.Style {
	if s == collision.SeverityError {
		return ErrorStyle
	}
	return WarningStyle
}
