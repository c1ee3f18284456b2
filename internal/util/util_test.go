// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("hello, world!"), 0o644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "hello, world!", string(content))
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("data"), 0o600))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestAtomicWriteFile_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("initial"), 0o644))
	require.NoError(t, AtomicWriteFile(path, []byte("updated"), 0o644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "updated", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must be renamed or removed")
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 8, "hello..."},
		{"tiny max", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
		{"unicode", "日本語テキスト", 5, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, TruncateRunes(tt.in, tt.max))
		})
	}
}

func TestPrefixRunes(t *testing.T) {
	require.Equal(t, "Sect", PrefixRunes("Section 302", 4))
	require.Equal(t, "abc", PrefixRunes("abc", 30))
	require.Equal(t, "", PrefixRunes("abc", 0))
	require.Equal(t, "§ 3", PrefixRunes("§ 302", 3))
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Foo", "Foo"},
		{"trim", "  Foo  ", "Foo"},
		{"newlines", "line one\n\nline\ttwo", "line one line two"},
		{"only space", " \n\t ", ""},
		// "e" + combining acute composes to a single rune.
		{"nfc", "cafe\u0301", "caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CollapseSpace(tt.in))
		})
	}
}

func TestFitWidth(t *testing.T) {
	require.Equal(t, "short", FitWidth("short", 10))
	require.Equal(t, "", FitWidth("anything", 0))

	wide := FitWidth("日本語日本語", 7)
	require.LessOrEqual(t, runewidth.StringWidth(wide), 7)
	require.Contains(t, wide, Ellipsis)
}

func TestPadWidth(t *testing.T) {
	require.Equal(t, "ab   ", PadWidth("ab", 5))
	require.Equal(t, 6, runewidth.StringWidth(PadWidth("日本", 6)))
	require.Equal(t, 4, runewidth.StringWidth(PadWidth("abcdefgh", 4)))
}

func TestFormatCount(t *testing.T) {
	require.Equal(t, "7", FormatCount(7))
	require.Equal(t, "12,345", FormatCount(12345))
}
