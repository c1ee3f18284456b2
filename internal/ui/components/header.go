// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lexora-tui/internal/ui/styles"
	"github.com/jeranaias/lexora-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the one-line title bar.
type Header struct {
	Title        string // brand, default "Lexora"
	Conversation string // active conversation title
	User         string // signed-in display name; empty when signed out
	Width        int
	theme        *styles.Theme
}

// NewHeader creates a header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "Lexora",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders brand and conversation on the left, the user on the right.
func (h *Header) View() string {
	width := max(h.Width, 20)
	inner := width - 2 // Header padding

	right := "signed out"
	if h.User != "" {
		right = h.User
	}
	right = util.FitWidth(right, inner/3)
	rightView := h.theme.HeaderUser.Render(right)

	left := h.theme.HeaderBrand.Render(h.Title)
	if h.Conversation != "" {
		room := inner - lipgloss.Width(left) - lipgloss.Width(rightView) - 4
		if room > 3 {
			left += h.theme.Muted.Render(" / ") + util.FitWidth(h.Conversation, room)
		}
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(rightView)
	if gap < 1 {
		gap = 1
	}
	return h.theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + rightView)
}
