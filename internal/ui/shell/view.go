// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/render"
	"github.com/jeranaias/lexora-tui/internal/ui/components"
	"github.com/jeranaias/lexora-tui/internal/util"
)

// =============================================================================
// ANSWER PANEL CONTENT
// =============================================================================

// focusedExchange is the newest exchange of the active conversation. It is
// the one whose sources and copy state are interactive.
func (m *Model) focusedExchange() (model.Exchange, bool) {
	conv := m.ws.Active()
	if conv == nil {
		return model.Exchange{}, false
	}
	return conv.Last()
}

func (m *Model) focusedSources() []model.Source {
	ex, ok := m.focusedExchange()
	if !ok {
		return nil
	}
	return ex.Payload.Sources()
}

// refresh rebuilds the panel content and chrome after a state change.
func (m *Model) refresh(gotoBottom bool) {
	ex, ok := m.focusedExchange()
	if ok {
		m.answer.Focus(ex.ID)
	} else {
		m.answer.Focus("")
	}

	conv := m.ws.Active()
	if conv != nil {
		m.header.Conversation = conv.Title
	}
	m.status.Conversations = m.ws.Len()
	m.status.Chunks = m.composer.Chunks()
	m.status.Hint = m.hint()
	switch {
	case m.ws.Loading:
		m.status.Status = components.StatusSearching
	case m.uploading:
		m.status.Status = components.StatusUploading
	case m.failedIn != "":
		m.status.Status = components.StatusError
	default:
		m.status.Status = components.StatusReady
	}
	if m.cursor >= m.ws.Len() {
		m.cursor = m.ws.Len() - 1
	}

	m.layout()
	m.static = m.buildStatic(conv)
	m.setContent(gotoBottom)
}

// buildStatic renders every settled exchange. Older answers come from the
// cache; the focused one is rendered with its live view state.
func (m *Model) buildStatic(conv *model.Conversation) string {
	width := m.panelWidth()
	loadingHere := m.pending != nil && conv != nil && m.pending.ConversationID == conv.ID

	if conv == nil || (conv.Len() == 0 && !loadingHere) {
		return m.renderer.Render(model.AnswerPayload{}, false, width, render.State{Cursor: -1})
	}

	var b strings.Builder
	last := conv.Len() - 1
	for i, ex := range conv.Exchanges {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.theme.Question.Render(util.FitWidth("Q: "+util.CollapseSpace(ex.Question), width)))
		b.WriteString("\n")

		if i == last {
			b.WriteString(m.renderer.Render(ex.Payload, false, width, m.answer.State()))
			continue
		}
		view, ok := m.rendered[ex.ID]
		if !ok {
			view = m.renderer.Render(ex.Payload, false, width, render.State{Cursor: -1})
			m.rendered[ex.ID] = view
		}
		b.WriteString(view)
	}

	if m.failedIn == conv.ID && m.ws.LastError != "" {
		b.WriteString("\n\n")
		b.WriteString(m.theme.ErrorTitle.Render("Error: " + m.ws.LastError))
	}
	return b.String()
}

// setContent appends the loading line to the static content.
func (m *Model) setContent(gotoBottom bool) {
	content := m.static
	conv := m.ws.Active()
	if m.pending != nil && conv != nil && m.pending.ConversationID == conv.ID {
		width := m.panelWidth()
		var b strings.Builder
		if conv.Len() > 0 {
			b.WriteString(content)
			b.WriteString("\n\n")
		}
		b.WriteString(m.theme.Question.Render(util.FitWidth("Q: "+util.CollapseSpace(m.pending.Question), width)))
		b.WriteString("\n")
		b.WriteString(m.renderer.Render(model.AnswerPayload{}, true, width, render.State{Spinner: m.spinner.View()}))
		content = b.String()
	}
	m.viewport.SetContent(m.theme.AnswerPanel.Render(content))
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) hint() string {
	switch m.focus {
	case FocusSidebar:
		return "enter open  n new  r rename  d delete  esc back"
	case FocusAnswer:
		return "up/down source  enter expand  c copy  esc back"
	default:
		return "tab panes  C-n new  C-u upload  F1 help"
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full screen.
func (m *Model) View() string {
	rows := []string{m.header.View(), m.bodyView()}

	if m.toasts.HasToasts() {
		rows = append(rows, components.RenderToastStack(m.toasts.Toasts(), m.width))
	}
	if m.mode != ModeNormal {
		rows = append(rows, m.prompt.View())
	}
	rows = append(rows, m.composer.View(), m.status.View())
	if m.showHelp {
		rows = append(rows, m.theme.Help.Render(m.help.View(m.keys)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) bodyView() string {
	height := m.viewport.Height
	sw := m.sidebarWidth()
	if sw == 0 {
		return m.viewport.View()
	}
	side := m.sidebarView(sw, height)
	if !m.mainVisible() {
		return side
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, side, m.viewport.View())
}

// sidebarView lists conversations, scrolled to keep the cursor visible.
func (m *Model) sidebarView(width, height int) string {
	t := m.theme
	inner := max(width-3, 4) // border and padding

	convs := m.ws.Conversations()
	activeID := m.ws.ActiveID()

	lines := []string{t.SidebarTitle.Render(util.FitWidth("Conversations", inner))}
	visible := max(height-2, 1)

	start := 0
	if m.focus == FocusSidebar && m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(convs))

	for i := start; i < end; i++ {
		c := convs[i]
		marker := "  "
		if c.ID == activeID {
			marker = "* "
		}
		label := util.PadWidth(marker+util.FitWidth(c.Title, inner-2), inner)

		style := t.SidebarItem
		switch {
		case m.focus == FocusSidebar && i == m.cursor:
			style = t.SidebarItemCursor
		case c.ID == activeID:
			style = t.SidebarItemActive
		}
		lines = append(lines, style.Render(label))
	}

	return t.Sidebar.
		Width(width - 1).
		Height(height).
		MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}
