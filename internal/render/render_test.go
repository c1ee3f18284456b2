// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/ui/styles"
)

func newTestRenderer() *Renderer {
	return NewRenderer(Options{
		Theme:         styles.NewThemeNamed(styles.ThemeDark),
		MarkdownStyle: "notty",
		Formatter:     "noop",
		ShowSources:   true,
	})
}

func payload(t *testing.T, v any) model.AnswerPayload {
	t.Helper()
	p, err := model.NewPayload(v)
	require.NoError(t, err)
	return p
}

// =============================================================================
// RENDER STATE TESTS
// =============================================================================

func TestRender_Loading(t *testing.T) {
	r := newTestRenderer()
	out := r.Render(payload(t, map[string]any{"answer": "old"}), true, 80, State{Spinner: "*"})

	require.Contains(t, out, "* "+LoadingText)
	require.NotContains(t, out, "old")
}

func TestRender_EmptyState(t *testing.T) {
	out := newTestRenderer().Render(model.AnswerPayload{}, false, 80, State{})
	require.Contains(t, out, EmptyText)
}

func TestRender_UnableToAnswer(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"unrecognized object", map[string]any{"foo": 1}, UnableGeneric},
		{"empty answer", map[string]any{"answer": ""}, UnableGeneric},
		{"error field", map[string]any{"error": "index not built"}, "index not built"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := newTestRenderer().Render(payload(t, tt.payload), false, 80, State{})
			require.Contains(t, out, UnableTitle)
			require.Contains(t, out, tt.want)
			require.NotContains(t, out, AnswerTitle)
		})
	}
}

func TestRender_AnswerWithSources(t *testing.T) {
	p := payload(t, map[string]any{
		"answer": "Section 302 prescribes punishment for murder.",
		"sources": []any{
			map[string]any{"source": "ipc.pdf", "content": "Whoever commits murder shall be punished"},
			map[string]any{"name": "crpc.pdf"},
		},
	})
	r := newTestRenderer()

	collapsed := r.Render(p, false, 80, State{Cursor: -1})
	require.Contains(t, collapsed, AnswerTitle)
	require.Contains(t, collapsed, "["+CopyLabel+"]")
	require.Contains(t, collapsed, "punishment for murder")
	require.Contains(t, collapsed, "Sources (2)")
	require.Contains(t, collapsed, "1. ipc.pdf")
	require.Contains(t, collapsed, "2. crpc.pdf")
	require.NotContains(t, collapsed, "Whoever commits")

	expanded := r.Render(p, false, 80, State{Expanded: map[int]bool{0: true}, Cursor: 0, Copied: true})
	require.Contains(t, expanded, "Whoever commits")
	require.Contains(t, expanded, "["+CopiedLabel+"]")
}

func TestRender_JSONAnswerIsHighlighted(t *testing.T) {
	p := payload(t, map[string]any{"answer": map[string]any{"section": "302"}})

	out := newTestRenderer().Render(p, false, 80, State{})
	require.Contains(t, out, AnswerTitle)
	require.Contains(t, out, `"section": "302"`)
}

func TestRender_HidesSourcesWhenDisabled(t *testing.T) {
	r := NewRenderer(Options{MarkdownStyle: "notty", Formatter: "noop"})
	p := payload(t, map[string]any{"answer": "a", "sources": []any{map[string]any{"source": "x.pdf"}}})

	require.NotContains(t, r.Render(p, false, 80, State{}), "x.pdf")
}

func TestRender_PackageLevelDefaults(t *testing.T) {
	require.Contains(t, Render(model.AnswerPayload{}, false, 60), EmptyText)
	require.Contains(t, Render(model.AnswerPayload{}, true, 60), LoadingText)
}

func TestPlain(t *testing.T) {
	p := payload(t, map[string]any{
		"answer":        "Bail is a right for bailable offences.",
		"source_chunks": []any{map[string]any{"text": "...", "metadata": map[string]any{"source": "crpc.pdf"}}},
	})
	require.Equal(t, "Bail is a right for bailable offences.\n\nSources:\n1. crpc.pdf", Plain(p))
	require.Equal(t, UnableTitle+": "+UnableGeneric, Plain(payload(t, map[string]any{})))
	require.Equal(t, EmptyText, Plain(model.AnswerPayload{}))
}

// =============================================================================
// ANSWER VIEW TESTS
// =============================================================================

func TestAnswerView_ResetOnNewExchange(t *testing.T) {
	v := NewAnswerView()
	v.Focus("ex-1")
	v.Toggle(0)
	v.Toggle(2)
	require.True(t, v.Expanded(0))
	require.True(t, v.State().Expanded[2])

	v.Focus("ex-1")
	require.True(t, v.Expanded(0), "same exchange keeps state")

	v.Focus("ex-2")
	require.False(t, v.Expanded(0))
	require.False(t, v.Expanded(2))
	require.Equal(t, -1, v.State().Cursor)
}

func TestAnswerView_Cursor(t *testing.T) {
	v := NewAnswerView()
	v.MoveCursor(1, 3)
	require.Equal(t, 0, v.State().Cursor)
	v.MoveCursor(5, 3)
	require.Equal(t, 2, v.State().Cursor)
	v.ToggleCursor()
	require.True(t, v.Expanded(2))
	v.MoveCursor(1, 0)
	require.Equal(t, -1, v.State().Cursor)
}

func TestAnswerView_CopyConfirmation(t *testing.T) {
	var copied string
	v := NewAnswerView()
	v.Clipboard = func(s string) error { copied = s; return nil }
	v.Focus("ex-1")

	cmd, err := v.Copy(payload(t, map[string]any{"answer": "Section 302 defines murder."}))
	require.NoError(t, err)
	require.NotNil(t, cmd)
	require.Equal(t, "Section 302 defines murder.", copied)
	require.True(t, v.Copied())

	// A second copy restarts the timer; the first tick must not clear it.
	_, err = v.Copy(payload(t, map[string]any{"answer": "again"}))
	require.NoError(t, err)
	v.Update(CopyExpiredMsg{Seq: 1})
	require.True(t, v.Copied())
	v.Update(CopyExpiredMsg{Seq: 2})
	require.False(t, v.Copied())
}

func TestAnswerView_CopyErrors(t *testing.T) {
	v := NewAnswerView()
	v.Clipboard = func(string) error { return errors.New("no clipboard") }

	_, err := v.Copy(payload(t, map[string]any{"foo": 1}))
	require.ErrorIs(t, err, ErrNothingToCopy)

	_, err = v.Copy(payload(t, map[string]any{"answer": "x"}))
	require.EqualError(t, err, "no clipboard")
	require.False(t, v.Copied())
}
