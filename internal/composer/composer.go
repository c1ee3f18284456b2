// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/config"
	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/ui/styles"
)

// Placeholder is shown in the empty input.
const Placeholder = "Ask your question..."

var (
	// ErrEmptyQuestion is returned by Submit when the trimmed input is empty.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrBusy is returned by Submit while a question is in flight.
	ErrBusy = errors.New("a question is already being answered")
)

// State is the composer's submission state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// ClampChunks limits n to [config.MinChunks, config.MaxChunks].
func ClampChunks(n int) int {
	if n < config.MinChunks {
		return config.MinChunks
	}
	if n > config.MaxChunks {
		return config.MaxChunks
	}
	return n
}

// =============================================================================
// COMPOSER
// =============================================================================

// Composer owns the input area and submission state.
type Composer struct {
	input    textarea.Model
	keys     KeyMap
	state    State
	chunks   int
	docType  *string
	advanced bool
	theme    *styles.Theme
}

// New creates an idle composer. chunks is clamped.
func New(chunks int, theme *styles.Theme) *Composer {
	if theme == nil {
		theme = styles.NewTheme()
	}
	keys := DefaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = Placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(3)
	// Enter is reserved for submit.
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Focus()

	return &Composer{
		input:  ta,
		keys:   keys,
		chunks: ClampChunks(chunks),
		theme:  theme,
	}
}

// Update handles input while idle. Keys are ignored while submitting. The
// returned bool is true when the user asked to submit.
func (c *Composer) Update(msg tea.Msg) (tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		if c.state == StateSubmitting {
			return nil, false
		}
		switch {
		case key.Matches(km, c.keys.Submit):
			return nil, true
		case key.Matches(km, c.keys.ToggleAdvanced):
			c.advanced = !c.advanced
			return nil, false
		case key.Matches(km, c.keys.MoreChunks):
			c.IncChunks()
			return nil, false
		case key.Matches(km, c.keys.FewerChunks):
			c.DecChunks()
			return nil, false
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd, false
}

// Submit validates the input and moves to Submitting. The input is cleared.
func (c *Composer) Submit(conversationID string) (model.QuerySubmitted, api.QueryRequest, error) {
	if c.state == StateSubmitting {
		return model.QuerySubmitted{}, api.QueryRequest{}, ErrBusy
	}
	question := strings.TrimSpace(c.input.Value())
	if question == "" {
		return model.QuerySubmitted{}, api.QueryRequest{}, ErrEmptyQuestion
	}

	c.input.Reset()
	c.input.Blur()
	c.state = StateSubmitting

	ev := model.QuerySubmitted{ConversationID: conversationID, Question: question}
	req := api.QueryRequest{Question: question, DocType: c.docType, NChunks: ClampChunks(c.chunks)}
	return ev, req, nil
}

// Finish returns to Idle after a query completes. A failed question is not
// restored to the input.
func (c *Composer) Finish(error) tea.Cmd {
	c.state = StateIdle
	return c.input.Focus()
}

// =============================================================================
// ACCESSORS
// =============================================================================

func (c *Composer) State() State { return c.state }
func (c *Composer) Submitting() bool { return c.state == StateSubmitting }
func (c *Composer) Value() string { return c.input.Value() }
func (c *Composer) SetValue(s string) { c.input.SetValue(s) }
func (c *Composer) Chunks() int { return c.chunks }
func (c *Composer) Advanced() bool { return c.advanced }
func (c *Composer) ToggleAdvanced() { c.advanced = !c.advanced }
func (c *Composer) Keys() KeyMap { return c.keys }
func (c *Composer) Focused() bool { return c.input.Focused() }
func (c *Composer) Blur() { c.input.Blur() }
func (c *Composer) SetChunks(n int) { c.chunks = ClampChunks(n) }
func (c *Composer) IncChunks() { c.SetChunks(c.chunks + 1) }
func (c *Composer) DecChunks() { c.SetChunks(c.chunks - 1) }

// Focus focuses the input unless a question is in flight.
func (c *Composer) Focus() tea.Cmd {
	if c.state == StateSubmitting {
		return nil
	}
	return c.input.Focus()
}

// SetDocType restricts retrieval to one document type; "" means all.
func (c *Composer) SetDocType(docType string) {
	if docType == "" {
		c.docType = nil
		return
	}
	c.docType = &docType
}

// SetWidth sizes the input to the footer width.
func (c *Composer) SetWidth(width int) {
	// border
	c.input.SetWidth(max(width-2, 10))
}

// Height returns the rendered height in rows.
func (c *Composer) Height() int {
	h := c.input.Height() + 2
	if c.advanced {
		h++
	}
	return h
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the input and, when open, the advanced settings line.
func (c *Composer) View() string {
	frame := c.theme.Composer
	if c.input.Focused() {
		frame = c.theme.ComposerFocused
	}
	view := frame.Render(c.input.View())
	if !c.advanced {
		return view
	}
	line := fmt.Sprintf("Chunks: %d (%d-%d)  %s / %s",
		c.chunks, config.MinChunks, config.MaxChunks,
		c.keys.MoreChunks.Help().Key, c.keys.FewerChunks.Help().Key)
	return lipgloss.JoinVertical(lipgloss.Left, view, c.theme.Advanced.Render(line))
}
