// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by the ui.theme setting.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// FRAME STYLES
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	StatusBar   lipgloss.Style
	Help        lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar           lipgloss.Style
	SidebarTitle      lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarItemActive lipgloss.Style
	SidebarItemCursor lipgloss.Style

	// ==========================================================================
	// ANSWER PANEL STYLES
	// ==========================================================================

	AnswerPanel   lipgloss.Style
	AnswerHeader  lipgloss.Style
	Question      lipgloss.Style
	EmptyState    lipgloss.Style
	Loading       lipgloss.Style
	ErrorCard     lipgloss.Style
	ErrorTitle    lipgloss.Style
	SourcesHeader lipgloss.Style
	SourceLabel   lipgloss.Style
	SourceBody    lipgloss.Style
	CopyButton    lipgloss.Style
	CopiedButton  lipgloss.Style

	// ==========================================================================
	// COMPOSER STYLES
	// ==========================================================================

	Composer        lipgloss.Style
	ComposerFocused lipgloss.Style
	Advanced        lipgloss.Style
	Muted           lipgloss.Style
}

// NewTheme creates a theme that follows the terminal background.
func NewTheme() *Theme {
	return NewThemeNamed(ThemeAuto)
}

// NewThemeNamed creates a theme for "auto", "dark" or "light". Unknown names
// behave like "auto". Forcing dark or light also sets lipgloss's background
// flag so every AdaptiveColor resolves consistently.
func NewThemeNamed(name string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThemeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ThemeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)
	t.HeaderUser = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Background(SlateDeep).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Slate).
		Padding(0, 1)
	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		MarginBottom(1)
	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.SidebarItemActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)
	t.SidebarItemCursor = lipgloss.NewStyle().
		Background(BlueDeep).
		Foreground(TextPrimary)

	// Answer panel
	t.AnswerPanel = lipgloss.NewStyle().
		Padding(0, 1)
	t.AnswerHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue)
	t.Question = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)
	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 0)
	t.Loading = lipgloss.NewStyle().
		Foreground(Amber)
	t.ErrorCard = lipgloss.NewStyle().
		Background(RoseDeep).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)
	t.ErrorTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)
	t.SourcesHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		MarginTop(1)
	t.SourceLabel = lipgloss.NewStyle().
		Foreground(Blue)
	t.SourceBody = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(4)
	t.CopyButton = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.CopiedButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)

	// Composer
	t.Composer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Slate)
	t.ComposerFocused = t.Composer.
		BorderForeground(Blue)
	t.Advanced = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(1)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	return LayoutFor(t.Width)
}

// LayoutFor classifies a terminal width.
func LayoutFor(width int) LayoutMode {
	if width < 60 {
		return LayoutNarrow
	}
	if width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// SidebarWidth returns the sidebar's column count for a mode; zero hides it.
func (m LayoutMode) SidebarWidth() int {
	switch m {
	case LayoutWide:
		return 32
	case LayoutMedium:
		return 24
	default:
		return 0
	}
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-99 columns
	LayoutWide                     // >= 100 columns
)
