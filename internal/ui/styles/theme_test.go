// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeNamed(t *testing.T) {
	dark := NewThemeNamed(ThemeDark)
	if !dark.IsDark {
		t.Error("dark theme should report IsDark")
	}

	light := NewThemeNamed(ThemeLight)
	if light.IsDark {
		t.Error("light theme should not report IsDark")
	}

	if got := light.AnswerHeader.Render("Simplified Answer"); got == "" {
		t.Error("styles should be initialized")
	}
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		width   int
		want    LayoutMode
		sidebar int
	}{
		{40, LayoutNarrow, 0},
		{59, LayoutNarrow, 0},
		{60, LayoutMedium, 24},
		{99, LayoutMedium, 24},
		{100, LayoutWide, 32},
		{180, LayoutWide, 32},
	}

	for _, tt := range tests {
		got := LayoutFor(tt.width)
		if got != tt.want {
			t.Errorf("LayoutFor(%d) = %v, want %v", tt.width, got, tt.want)
		}
		if got.SidebarWidth() != tt.sidebar {
			t.Errorf("SidebarWidth for %d = %d, want %d", tt.width, got.SidebarWidth(), tt.sidebar)
		}
	}
}

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()
	theme.SetSize(50, 20)
	if theme.GetLayoutMode() != LayoutNarrow {
		t.Error("50 columns should be narrow")
	}
	theme.SetSize(120, 40)
	if theme.GetLayoutMode() != LayoutWide {
		t.Error("120 columns should be wide")
	}
}
