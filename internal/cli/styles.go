// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lexora-tui/internal/ui/styles"
)

func init() {
	// Piped output and NO_COLOR get plain text.
	lipgloss.SetColorProfile(ColorProfile())
}

// =============================================================================
// CLI OUTPUT STYLES
// =============================================================================

var (
	// TitleStyle is used for command headings
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Blue)

	// LabelStyle is used for key/value labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Rose)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// DimStyle is used for hints and secondary lines
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// QuestionStyle marks the echoed question in ask and chat
	QuestionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimary)
)

// =============================================================================
// HELPERS
// =============================================================================

// RenderSeparator renders a horizontal rule capped at 80 cells.
func RenderSeparator() string {
	w := min(TerminalWidth()-4, 80)
	return DimStyle.Render(strings.Repeat("-", max(w, 10)))
}

// RenderField renders one aligned "label  value" line.
func RenderField(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

// RenderSuccess renders a status line prefixed with the success indicator.
func RenderSuccess(msg string) string {
	return SuccessStyle.Render(styles.StatusIndicators.Success) + " " + msg
}

// RenderWarning renders a status line prefixed with the warning indicator.
func RenderWarning(msg string) string {
	return WarningStyle.Render(styles.StatusIndicators.Warning) + " " + msg
}
