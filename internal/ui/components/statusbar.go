// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lexora-tui/internal/ui/styles"
	"github.com/jeranaias/lexora-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status is the application activity shown at the left of the status bar.
type Status int

const (
	StatusReady Status = iota
	StatusSearching
	StatusUploading
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSearching:
		return "Searching..."
	case StatusUploading:
		return "Uploading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon pairs each status with a text marker so it reads without color.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusSearching, StatusUploading:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom line of the screen.
type StatusBar struct {
	Status        Status
	Conversations int
	Chunks        int
	Watching      string // watched upload folder, empty when off
	Hint          string // key hints, dropped first when space runs out
	Width         int
	theme         *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Status: StatusReady, Width: 80, theme: theme}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.Rose)
	case StatusSearching, StatusUploading:
		return lipgloss.NewStyle().Foreground(styles.Amber)
	default:
		return lipgloss.NewStyle().Foreground(styles.Emerald)
	}
}

// View renders the status bar. Segments are dropped from the right when the
// terminal is too narrow.
func (s *StatusBar) View() string {
	width := max(s.Width, 20)
	inner := width - 2

	segments := []string{
		s.statusStyle().Render(s.Status.Icon() + " " + s.Status.String()),
		fmt.Sprintf("%s chats", util.FormatCount(s.Conversations)),
		fmt.Sprintf("chunks %d", s.Chunks),
	}
	if s.Watching != "" {
		segments = append(segments, "watching "+s.Watching)
	}

	sep := s.theme.Muted.Render(" | ")
	line := strings.Join(segments, sep)
	for len(segments) > 1 && lipgloss.Width(line) > inner {
		segments = segments[:len(segments)-1]
		line = strings.Join(segments, sep)
	}

	if s.Hint != "" {
		hint := s.theme.Help.Render(s.Hint)
		if gap := inner - lipgloss.Width(line) - lipgloss.Width(hint); gap >= 2 {
			line += strings.Repeat(" ", gap) + hint
		}
	}
	return s.theme.StatusBar.Width(width).MaxHeight(1).Render(line)
}
