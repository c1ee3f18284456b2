// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/config"
	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/render"
	"github.com/jeranaias/lexora-tui/internal/ui/styles"
	"github.com/jeranaias/lexora-tui/internal/upload"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeQuerier struct {
	mu       sync.Mutex
	requests []api.QueryRequest
	payload  model.AnswerPayload
	err      error
}

func (f *fakeQuerier) Query(ctx context.Context, req api.QueryRequest) (model.AnswerPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.payload, f.err
}

type fakeStore struct {
	saves int
}

func (f *fakeStore) SaveWorkspace(ctx context.Context, ws *model.Workspace) error {
	f.saves++
	return nil
}

type fakeUploadClient struct {
	calls int
}

func (f *fakeUploadClient) UploadFile(ctx context.Context, path, docType string) (*api.UploadResult, error) {
	f.calls++
	n := 7
	return &api.UploadResult{Status: "success", ChunksStored: &n}, nil
}

func newTestShell(t *testing.T, q Querier) (*Model, *fakeStore) {
	t.Helper()
	theme := styles.NewThemeNamed(styles.ThemeDark)
	store := &fakeStore{}
	m := New(Options{
		Config: config.Default(),
		Theme:  theme,
		Client: q,
		Store:  store,
		Renderer: render.NewRenderer(render.Options{
			Theme:         theme,
			MarkdownStyle: "notty",
			Formatter:     "noop",
			WordWrap:      80,
			ShowSources:   true,
		}),
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, store
}

func payload(t *testing.T, v any) model.AnswerPayload {
	t.Helper()
	p, err := model.NewPayload(v)
	require.NoError(t, err)
	return p
}

func press(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

// collect runs cmd, expanding batches, and returns every message produced
// within the timeout.
func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	out := make(chan tea.Msg, 16)
	var wg sync.WaitGroup
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			out <- msg
		}()
	}
	run(cmd)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("commands did not finish")
	}
	close(out)

	var msgs []tea.Msg
	for msg := range out {
		msgs = append(msgs, msg)
	}
	return msgs
}

func ask(t *testing.T, m *Model, question string) []tea.Msg {
	t.Helper()
	m.composer.SetValue(question)
	return collect(t, press(m, tea.KeyEnter))
}

func deliver[T any](t *testing.T, m *Model, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			m.Update(v)
			return v
		}
	}
	var zero T
	t.Fatalf("no %T among %d messages", zero, len(msgs))
	return zero
}

func lastToast(t *testing.T, m *Model) string {
	t.Helper()
	toasts := m.toasts.Toasts()
	require.NotEmpty(t, toasts)
	return toasts[0].Message
}

// =============================================================================
// QUERY FLOW
// =============================================================================

func TestShell_EmptyState(t *testing.T) {
	m, _ := newTestShell(t, &fakeQuerier{})
	require.Contains(t, m.View(), "Upload a document and ask a question")
}

func TestShell_QuerySuccess(t *testing.T) {
	q := &fakeQuerier{payload: payload(t, map[string]any{
		"answer":  "Bail is the conditional release of an accused person.",
		"sources": []any{map[string]any{"source": "crpc.pdf", "content": "Section 436"}},
	})}
	m, store := newTestShell(t, q)
	convID := m.ws.ActiveID()

	m.composer.SetValue("What is bail?")
	cmd := press(m, tea.KeyEnter)

	require.True(t, m.ws.Loading)
	require.True(t, m.composer.Submitting())
	require.Empty(t, m.composer.Value())
	require.Contains(t, m.View(), "Searching for answer...")

	ev := deliver[model.QuerySucceeded](t, m, collect(t, cmd))
	require.Equal(t, convID, ev.ConversationID)
	require.Equal(t, "What is bail?", ev.Question)

	require.False(t, m.ws.Loading)
	require.False(t, m.composer.Submitting())
	require.Len(t, q.requests, 1)
	require.Equal(t, 5, q.requests[0].NChunks)
	require.Nil(t, q.requests[0].DocType)

	conv := m.ws.Active()
	require.Equal(t, 1, conv.Len())
	require.Equal(t, "Bail is the conditional releas...", conv.Title)
	require.Equal(t, 1, store.saves)

	view := m.View()
	require.Contains(t, view, "Simplified Answer")
	require.Contains(t, view, "crpc.pdf")
}

func TestShell_QueryFailure(t *testing.T) {
	q := &fakeQuerier{err: &api.ClientError{Type: api.ErrTypeStatus, Message: "backend down", Status: 500}}
	m, _ := newTestShell(t, q)

	deliver[model.QueryFailed](t, m, ask(t, m, "What is bail?"))

	require.False(t, m.ws.Loading)
	require.Equal(t, "backend down", m.ws.LastError)
	require.False(t, m.composer.Submitting())
	require.Empty(t, m.composer.Value(), "failed question is not restored")
	require.Equal(t, 0, m.ws.Active().Len())
	require.Equal(t, "Error: backend down", lastToast(t, m))
	require.Contains(t, m.View(), "Error: backend down")
}

func TestShell_EmptyQuestionSendsNothing(t *testing.T) {
	q := &fakeQuerier{}
	m, _ := newTestShell(t, q)

	m.composer.SetValue("   ")
	require.Nil(t, press(m, tea.KeyEnter))
	require.False(t, m.ws.Loading)
	require.Empty(t, q.requests)
}

func TestShell_UnableToAnswer(t *testing.T) {
	q := &fakeQuerier{payload: payload(t, map[string]any{"status": "ok"})}
	m, _ := newTestShell(t, q)

	deliver[model.QuerySucceeded](t, m, ask(t, m, "Anything?"))
	view := m.View()
	require.Contains(t, view, "Unable to Answer")
	require.Contains(t, view, "No answer found in the response.")
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

func TestShell_NewAndDeleteConversation(t *testing.T) {
	m, store := newTestShell(t, &fakeQuerier{})
	first := m.ws.ActiveID()

	press(m, tea.KeyCtrlX)
	require.Equal(t, 1, m.ws.Len())
	require.Equal(t, "Cannot delete the only conversation", lastToast(t, m))

	press(m, tea.KeyCtrlN)
	require.Equal(t, 2, m.ws.Len())
	second := m.ws.ActiveID()
	require.NotEqual(t, first, second)
	require.Equal(t, model.DefaultTitle, m.ws.Active().Title)

	press(m, tea.KeyCtrlX)
	require.Equal(t, 1, m.ws.Len())
	require.Equal(t, first, m.ws.ActiveID())
	require.Equal(t, 2, store.saves)
}

func TestShell_Rename(t *testing.T) {
	m, _ := newTestShell(t, &fakeQuerier{})

	press(m, tea.KeyCtrlR)
	require.Equal(t, ModeRename, m.Mode())
	require.Equal(t, model.DefaultTitle, m.prompt.Value())

	m.prompt.SetValue("  Bail law  ")
	press(m, tea.KeyEnter)
	require.Equal(t, ModeNormal, m.Mode())
	require.Equal(t, "Bail law", m.ws.Active().Title)

	press(m, tea.KeyCtrlR)
	m.prompt.SetValue("   ")
	press(m, tea.KeyEnter)
	require.Equal(t, "Bail law", m.ws.Active().Title)

	press(m, tea.KeyCtrlR)
	m.prompt.SetValue("Discarded")
	press(m, tea.KeyEsc)
	require.Equal(t, "Bail law", m.ws.Active().Title)
}

func TestShell_SidebarSelect(t *testing.T) {
	m, _ := newTestShell(t, &fakeQuerier{})
	first := m.ws.ActiveID()
	press(m, tea.KeyCtrlN)

	// Tab from the composer goes to the answer panel, then wraps to the sidebar.
	press(m, tea.KeyTab)
	press(m, tea.KeyTab)
	require.Equal(t, FocusSidebar, m.Focus())

	press(m, tea.KeyUp)
	press(m, tea.KeyEnter)
	require.Equal(t, first, m.ws.ActiveID())
}

// =============================================================================
// LAYOUT
// =============================================================================

func TestShell_ResponsiveSidebar(t *testing.T) {
	m, _ := newTestShell(t, &fakeQuerier{})
	require.True(t, m.SidebarVisible())
	require.Contains(t, m.View(), "Conversations")

	m.Update(tea.WindowSizeMsg{Width: 50, Height: 30})
	require.True(t, m.SidebarVisible(), "an open sidebar covers the panel on narrow screens")
	require.False(t, m.mainVisible())

	press(m, tea.KeyCtrlB)
	require.False(t, m.SidebarVisible())
	require.True(t, m.mainVisible())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	press(m, tea.KeyCtrlB)
	require.True(t, m.SidebarVisible())
	require.True(t, m.mainVisible())
}

// =============================================================================
// ANSWER INTERACTION
// =============================================================================

func TestShell_ToggleSourceAndCopy(t *testing.T) {
	q := &fakeQuerier{payload: payload(t, map[string]any{
		"answer":  "Murder is punishable under Section 302.",
		"sources": []any{map[string]any{"source": "ipc.pdf", "content": "Whoever commits murder"}},
	})}
	m, _ := newTestShell(t, q)
	deliver[model.QuerySucceeded](t, m, ask(t, m, "Punishment for murder?"))

	var copied string
	m.answer.Clipboard = func(s string) error { copied = s; return nil }

	press(m, tea.KeyTab)
	require.Equal(t, FocusAnswer, m.Focus())
	require.NotContains(t, m.View(), "Whoever commits murder")

	press(m, tea.KeyDown)
	press(m, tea.KeyEnter)
	require.True(t, m.answer.Expanded(0))
	require.Contains(t, m.View(), "Whoever commits murder")

	require.NotNil(t, press(m, tea.KeyCtrlY))
	require.Equal(t, "Murder is punishable under Section 302.", copied)
	require.True(t, m.answer.Copied())
	require.Contains(t, m.View(), render.CopiedLabel)
}

// =============================================================================
// UPLOAD
// =============================================================================

func TestShell_UploadRejectsNonPDF(t *testing.T) {
	fc := &fakeUploadClient{}
	m, _ := newTestShell(t, &fakeQuerier{})
	m.uploader = upload.New(fc, "", nil)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	press(m, tea.KeyCtrlU)
	require.Equal(t, ModeUpload, m.Mode())
	m.prompt.SetValue(path)
	press(m, tea.KeyEnter)

	require.Equal(t, "Only PDF files allowed", lastToast(t, m))
	require.Zero(t, fc.calls)
}

func TestShell_UploadPDF(t *testing.T) {
	fc := &fakeUploadClient{}
	m, _ := newTestShell(t, &fakeQuerier{})
	m.uploader = upload.New(fc, "", nil)

	path := filepath.Join(t.TempDir(), "ipc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	press(m, tea.KeyCtrlU)
	m.prompt.SetValue(path)
	cmd := press(m, tea.KeyEnter)
	require.True(t, m.uploading)

	deliver[uploadDoneMsg](t, m, collect(t, cmd))
	require.False(t, m.uploading)
	require.Equal(t, "Stored 7 chunks", lastToast(t, m))
	require.Equal(t, 1, fc.calls)
	require.Equal(t, 0, m.ws.Active().Len(), "uploads never touch conversations")
}

func TestShell_UploadDisabled(t *testing.T) {
	m, _ := newTestShell(t, &fakeQuerier{})
	press(m, tea.KeyCtrlU)
	require.Equal(t, ModeNormal, m.Mode())
	require.True(t, strings.Contains(lastToast(t, m), "not configured"))
}
