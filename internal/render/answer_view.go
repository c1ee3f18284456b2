// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lexora-tui/internal/model"
)

// CopiedDuration is how long the copy confirmation stays visible.
const CopiedDuration = 2 * time.Second

// ErrNothingToCopy is returned when the answer has no resolvable text.
var ErrNothingToCopy = errors.New("nothing to copy")

// CopyExpiredMsg ends a copy confirmation. Seq ties it to the copy that
// started it so an older tick cannot clear a newer confirmation.
type CopyExpiredMsg struct {
	Seq int
}

// AnswerView is the view state of the focused answer.
type AnswerView struct {
	exchangeID string
	expanded   map[int]bool
	cursor     int
	copied     bool
	copySeq    int

	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error
}

// NewAnswerView returns an empty view state using the system clipboard.
func NewAnswerView() *AnswerView {
	return &AnswerView{
		expanded:  map[int]bool{},
		cursor:    -1,
		Clipboard: clipboard.WriteAll,
	}
}

// Focus points the view at an exchange. A different exchange resets the
// expand state, the cursor and any copy confirmation.
func (v *AnswerView) Focus(exchangeID string) {
	if exchangeID == v.exchangeID {
		return
	}
	v.exchangeID = exchangeID
	v.expanded = map[int]bool{}
	v.cursor = -1
	v.copied = false
}

// ExchangeID returns the focused exchange.
func (v *AnswerView) ExchangeID() string {
	return v.exchangeID
}

// Toggle flips the source at index i.
func (v *AnswerView) Toggle(i int) {
	if i < 0 {
		return
	}
	v.expanded[i] = !v.expanded[i]
}

// ToggleCursor flips the highlighted source.
func (v *AnswerView) ToggleCursor() {
	v.Toggle(v.cursor)
}

// MoveCursor moves the source highlight by delta within [0, n).
func (v *AnswerView) MoveCursor(delta, n int) {
	if n <= 0 {
		v.cursor = -1
		return
	}
	c := v.cursor + delta
	if v.cursor < 0 {
		c = 0
		if delta < 0 {
			c = n - 1
		}
	}
	v.cursor = min(max(c, 0), n-1)
}

// Expanded reports whether source i is expanded.
func (v *AnswerView) Expanded(i int) bool {
	return v.expanded[i]
}

// Copied reports whether the confirmation is showing.
func (v *AnswerView) Copied() bool {
	return v.copied
}

// State returns the render state for the focused answer.
func (v *AnswerView) State() State {
	expanded := make(map[int]bool, len(v.expanded))
	for k, val := range v.expanded {
		expanded[k] = val
	}
	return State{Expanded: expanded, Cursor: v.cursor, Copied: v.copied}
}

// Copy puts the answer's primary text on the clipboard and starts the
// confirmation timer.
func (v *AnswerView) Copy(p model.AnswerPayload) (tea.Cmd, error) {
	text, ok := p.PrimaryText()
	if !ok || text.Body == "" {
		return nil, ErrNothingToCopy
	}
	if err := v.Clipboard(text.Body); err != nil {
		return nil, err
	}
	v.copied = true
	v.copySeq++
	seq := v.copySeq
	return tea.Tick(CopiedDuration, func(time.Time) tea.Msg {
		return CopyExpiredMsg{Seq: seq}
	}), nil
}

// Update handles CopyExpiredMsg.
func (v *AnswerView) Update(msg tea.Msg) {
	if m, ok := msg.(CopyExpiredMsg); ok && m.Seq == v.copySeq {
		v.copied = false
	}
}
