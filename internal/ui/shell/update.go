// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lexora-tui/internal/composer"
	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/render"
	"github.com/jeranaias/lexora-tui/internal/ui/components"
	"github.com/jeranaias/lexora-tui/internal/upload"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.rendered = make(map[string]string)
		m.refresh(false)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case model.QuerySucceeded:
		return m, m.finishQuery(msg, nil)

	case model.QueryFailed:
		return m, m.finishQuery(msg, errors.New(msg.Message))

	case uploadDoneMsg:
		m.uploading = false
		return m, m.uploadToast(msg.Result)

	case watchResultMsg:
		res := msg.Result
		res.Message = filepath.Base(res.Path) + ": " + res.Message
		cmd := m.uploadToast(res)
		if m.watcher != nil {
			cmd = tea.Batch(cmd, waitForWatch(m.watcher.Results()))
		}
		return m, cmd

	case spinner.TickMsg:
		if !m.ws.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.setContent(false)
		return m, cmd

	case render.CopyExpiredMsg:
		m.answer.Update(msg)
		m.refresh(false)
		return m, nil

	case components.ToastTickMsg:
		if !m.toasts.Tick() {
			m.toastTicker = false
			m.layout()
			return m, nil
		}
		m.layout()
		return m, components.ToastTickCmd()
	}

	// Everything else (cursor blink and the like) goes to the focused input.
	var cmd tea.Cmd
	switch {
	case m.mode != ModeNormal:
		m.prompt, cmd = m.prompt.Update(msg)
	case m.focus == FocusComposer:
		cmd, _ = m.composer.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.mode != ModeNormal {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NewChat):
		return m.newConversation()
	case key.Matches(msg, m.keys.Upload):
		return m.openPrompt(ModeUpload)
	case key.Matches(msg, m.keys.RenameChat):
		return m.openPrompt(ModeRename)
	case key.Matches(msg, m.keys.DeleteChat):
		return m.deleteConversation(m.selectedID())
	case key.Matches(msg, m.keys.Copy):
		return m.copyAnswer()
	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebarOpen = !m.sidebarOpen
		if !m.SidebarVisible() && m.focus == FocusSidebar {
			return m.setFocus(FocusComposer)
		}
		if m.SidebarVisible() && !m.mainVisible() {
			return m.setFocus(FocusSidebar)
		}
		m.refresh(false)
		return nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.layout()
		return nil
	case key.Matches(msg, m.keys.FocusNext):
		return m.cycleFocus(1)
	case key.Matches(msg, m.keys.FocusPrev):
		return m.cycleFocus(-1)
	}

	switch m.focus {
	case FocusSidebar:
		return m.handleSidebarKey(msg)
	case FocusAnswer:
		return m.handleAnswerKey(msg)
	default:
		return m.handleComposerKey(msg)
	}
}

func (m *Model) handleComposerKey(msg tea.KeyMsg) tea.Cmd {
	before := m.composer.Height()
	cmd, submit := m.composer.Update(msg)
	if m.composer.Height() != before {
		m.layout()
	}
	if submit {
		return m.submit()
	}
	return cmd
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	n := m.ws.Len()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, n-1)
	case key.Matches(msg, m.keys.Select):
		return m.selectConversation(m.selectedID())
	case msg.String() == "d" || msg.String() == "delete":
		return m.deleteConversation(m.selectedID())
	case msg.String() == "r":
		return m.openPrompt(ModeRename)
	case msg.String() == "n":
		return m.newConversation()
	case key.Matches(msg, m.keys.Back):
		return m.setFocus(FocusComposer)
	}
	return nil
}

func (m *Model) handleAnswerKey(msg tea.KeyMsg) tea.Cmd {
	n := len(m.focusedSources())
	switch {
	case key.Matches(msg, m.keys.Up):
		m.answer.MoveCursor(-1, n)
		m.refresh(false)
	case key.Matches(msg, m.keys.Down):
		m.answer.MoveCursor(1, n)
		m.refresh(false)
	case key.Matches(msg, m.keys.Select):
		m.answer.ToggleCursor()
		m.refresh(false)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
	case msg.String() == "home" || msg.String() == "g":
		m.viewport.GotoTop()
	case msg.String() == "end" || msg.String() == "G":
		m.viewport.GotoBottom()
	case msg.String() == "c":
		return m.copyAnswer()
	case key.Matches(msg, m.keys.Back):
		return m.setFocus(FocusComposer)
	}
	return nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		return m.closePrompt()
	case tea.KeyEnter:
		value := m.prompt.Value()
		mode := m.mode
		closeCmd := m.closePrompt()
		if mode == ModeRename {
			return tea.Batch(closeCmd, m.renameConversation(m.selectedID(), value))
		}
		return tea.Batch(closeCmd, m.startUpload(value))
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

// =============================================================================
// FOCUS
// =============================================================================

func (m *Model) setFocus(f Focus) tea.Cmd {
	if f == FocusSidebar && !m.SidebarVisible() {
		f = FocusComposer
	}
	if (f == FocusComposer || f == FocusAnswer) && !m.mainVisible() {
		m.sidebarOpen = false
	}
	m.focus = f
	if f == FocusSidebar {
		m.cursor = max(m.ws.ActiveIndex(), 0)
	}

	var cmd tea.Cmd
	if f == FocusComposer {
		cmd = m.composer.Focus()
	} else {
		m.composer.Blur()
	}
	m.refresh(false)
	return cmd
}

func (m *Model) cycleFocus(delta int) tea.Cmd {
	order := []Focus{FocusComposer, FocusAnswer}
	if m.SidebarVisible() {
		order = []Focus{FocusSidebar, FocusComposer, FocusAnswer}
	}
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	next := order[(idx+delta+len(order))%len(order)]
	return m.setFocus(next)
}

// =============================================================================
// PROMPTS
// =============================================================================

func (m *Model) openPrompt(mode Mode) tea.Cmd {
	switch mode {
	case ModeUpload:
		if m.uploader == nil {
			return m.toast(components.ToastKindWarning, "Uploads are not configured")
		}
		m.prompt.Prompt = "Upload PDF: "
		m.prompt.Placeholder = "path/to/document.pdf"
		m.prompt.SetValue("")
	case ModeRename:
		conv, ok := m.ws.Get(m.selectedID())
		if !ok {
			return nil
		}
		m.prompt.Prompt = "Rename: "
		m.prompt.Placeholder = "conversation title"
		m.prompt.SetValue(conv.Title)
		m.prompt.CursorEnd()
	}
	m.mode = mode
	m.composer.Blur()
	m.layout()
	return m.prompt.Focus()
}

func (m *Model) closePrompt() tea.Cmd {
	m.mode = ModeNormal
	m.prompt.Blur()
	m.prompt.SetValue("")
	m.layout()
	if m.focus == FocusComposer {
		return m.composer.Focus()
	}
	return nil
}

// =============================================================================
// ACTIONS
// =============================================================================

// selectedID is the sidebar cursor's conversation while the sidebar has
// focus, otherwise the active one.
func (m *Model) selectedID() string {
	if m.focus == FocusSidebar {
		convs := m.ws.Conversations()
		if m.cursor >= 0 && m.cursor < len(convs) {
			return convs[m.cursor].ID
		}
	}
	return m.ws.ActiveID()
}

func (m *Model) submit() tea.Cmd {
	if m.client == nil {
		return m.toast(components.ToastKindError, "Error: no backend configured")
	}
	ev, req, err := m.composer.Submit(m.ws.ActiveID())
	switch {
	case errors.Is(err, composer.ErrEmptyQuestion):
		return nil
	case err != nil:
		return m.toast(components.ToastKindWarning, err.Error())
	}

	if _, err := m.ws.Apply(ev); err != nil {
		m.log.Error("apply submit", "error", err)
	}
	m.pending = &ev
	m.failedIn = ""
	m.log.Info("query submitted", "conversation", ev.ConversationID, "n_chunks", req.NChunks)
	m.refresh(true)
	return tea.Batch(queryCmd(m.client, req, ev), m.spinner.Tick)
}

func (m *Model) finishQuery(ev model.Event, failure error) tea.Cmd {
	m.pending = nil
	target, err := m.ws.Apply(ev)
	if err != nil {
		m.log.Error("apply query result", "error", err)
	}
	cmds := []tea.Cmd{m.composer.Finish(failure)}
	if m.focus != FocusComposer {
		m.composer.Blur()
	}

	if failure != nil {
		m.failedIn = target
		m.log.Warn("query failed", "conversation", target, "error", failure)
		cmds = append(cmds, m.toast(components.ToastKindError, "Error: "+failure.Error()))
	}
	cmds = append(cmds, m.persist())
	m.refresh(true)
	return tea.Batch(cmds...)
}

func (m *Model) newConversation() tea.Cmd {
	c := m.ws.CreateConversation()
	m.cursor = m.ws.ActiveIndex()
	m.log.Debug("conversation created", "id", c.ID)
	cmd := m.persist()
	m.refresh(true)
	if m.focus == FocusSidebar {
		return cmd
	}
	return tea.Batch(cmd, m.setFocus(FocusComposer))
}

func (m *Model) selectConversation(id string) tea.Cmd {
	if err := m.ws.SetActive(id); err != nil {
		return m.toast(components.ToastKindError, err.Error())
	}
	cmd := m.persist()
	m.refresh(true)
	if !m.mainVisible() {
		return tea.Batch(cmd, m.setFocus(FocusComposer))
	}
	return cmd
}

func (m *Model) deleteConversation(id string) tea.Cmd {
	if err := m.ws.DeleteConversation(id); err != nil {
		if errors.Is(err, model.ErrLastConversation) {
			return m.toast(components.ToastKindWarning, "Cannot delete the only conversation")
		}
		return m.toast(components.ToastKindError, err.Error())
	}
	m.cursor = min(m.cursor, m.ws.Len()-1)
	cmd := m.persist()
	m.refresh(true)
	return cmd
}

func (m *Model) renameConversation(id, title string) tea.Cmd {
	if err := m.ws.RenameConversation(id, title); err != nil {
		// Blank input keeps the old title.
		if errors.Is(err, model.ErrEmptyTitle) {
			return nil
		}
		return m.toast(components.ToastKindError, err.Error())
	}
	cmd := m.persist()
	m.refresh(false)
	return cmd
}

func (m *Model) copyAnswer() tea.Cmd {
	ex, ok := m.focusedExchange()
	if !ok {
		return m.toast(components.ToastKindWarning, render.ErrNothingToCopy.Error())
	}
	cmd, err := m.answer.Copy(ex.Payload)
	if err != nil {
		return m.toast(components.ToastKindWarning, err.Error())
	}
	m.refresh(false)
	return cmd
}

func (m *Model) startUpload(path string) tea.Cmd {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return nil
	}
	if err := upload.Validate(path); err != nil {
		return m.toast(components.ToastKindError, upload.FailureMessage(err))
	}
	if m.uploading || m.uploader.Busy() {
		return m.toast(components.ToastKindWarning, upload.ErrBusy.Error())
	}
	m.uploading = true
	m.log.Info("upload started", "file", filepath.Base(path))
	return uploadCmd(m.uploader, path)
}

func (m *Model) uploadToast(res upload.Result) tea.Cmd {
	if res.OK() {
		return m.toast(components.ToastKindSuccess, res.Message)
	}
	return m.toast(components.ToastKindError, res.Message)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
