// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Lexora TUI.
//
// Colors are lipgloss.AdaptiveColor values so one palette serves light and
// dark terminals. Theme bundles the composed styles used by the shell and
// renderer, and classifies the terminal width into a LayoutMode:
//
//	LayoutNarrow  < 60 columns   sidebar hidden
//	LayoutMedium  60-99 columns  compact sidebar
//	LayoutWide    >= 100 columns full sidebar
//
// The theme setting ("auto", "dark", "light") decides whether the adaptive
// colors follow the terminal's detected background or a forced one.
package styles
