// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrLastConversation is returned when deleting the only conversation.
	ErrLastConversation = errors.New("cannot delete the last conversation")
	// ErrConversationNotFound is returned for an unknown conversation id.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrEmptyTitle is returned when a rename is blank after trimming.
	ErrEmptyTitle = errors.New("title cannot be empty")
)

// =============================================================================
// WORKSPACE
// =============================================================================

// Workspace is the client's application state: the set of conversations,
// which one is active, and whether a query is in flight. It always holds at
// least one conversation.
type Workspace struct {
	conversations []*Conversation
	activeID      string
	removed       []string

	// Loading is true between QuerySubmitted and its completion event.
	Loading bool
	// LastError is the message of the most recent failed query.
	LastError string
}

// NewWorkspace returns a workspace with one empty, active conversation.
func NewWorkspace() *Workspace {
	w := &Workspace{}
	w.CreateConversation()
	return w
}

// Restore rebuilds a workspace from persisted conversations. An empty list
// yields a fresh default conversation; an unknown activeID selects the first.
func Restore(convs []*Conversation, activeID string) *Workspace {
	w := &Workspace{}
	for _, c := range convs {
		if c == nil {
			continue
		}
		w.conversations = append(w.conversations, c.Clone())
	}
	if len(w.conversations) == 0 {
		w.CreateConversation()
		return w
	}
	w.activeID = w.conversations[0].ID
	if w.indexOf(activeID) >= 0 {
		w.activeID = activeID
	}
	return w
}

// Len returns the number of conversations.
func (w *Workspace) Len() int {
	return len(w.conversations)
}

// Conversations returns copies of all conversations in display order.
func (w *Workspace) Conversations() []*Conversation {
	out := make([]*Conversation, len(w.conversations))
	for i, c := range w.conversations {
		out[i] = c.Clone()
	}
	return out
}

// Get returns a copy of the conversation with the given id.
func (w *Workspace) Get(id string) (*Conversation, bool) {
	i := w.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return w.conversations[i].Clone(), true
}

// ActiveID returns the id of the active conversation.
func (w *Workspace) ActiveID() string {
	return w.activeID
}

// Active returns a copy of the active conversation.
func (w *Workspace) Active() *Conversation {
	c, _ := w.Get(w.activeID)
	return c
}

// ActiveIndex returns the position of the active conversation.
func (w *Workspace) ActiveIndex() int {
	return w.indexOf(w.activeID)
}

// CreateConversation appends an empty conversation and makes it active.
func (w *Workspace) CreateConversation() *Conversation {
	c := NewConversation()
	w.conversations = append(w.conversations, c)
	w.activeID = c.ID
	return c.Clone()
}

// DeleteConversation removes a conversation. Deleting the last remaining
// one is refused with ErrLastConversation and changes nothing. When the
// active conversation is removed, the selection moves to the one that took
// its place, or to the new last one.
func (w *Workspace) DeleteConversation(id string) error {
	i := w.indexOf(id)
	if i < 0 {
		return ErrConversationNotFound
	}
	if len(w.conversations) == 1 {
		return ErrLastConversation
	}

	w.conversations = append(w.conversations[:i], w.conversations[i+1:]...)
	w.removed = append(w.removed, id)
	if w.activeID == id {
		if i >= len(w.conversations) {
			i = len(w.conversations) - 1
		}
		w.activeID = w.conversations[i].ID
	}
	return nil
}

// Removed returns the ids deleted from this workspace, oldest first.
func (w *Workspace) Removed() []string {
	return append([]string(nil), w.removed...)
}

// RenameConversation sets a trimmed, non-empty title. Blank input returns
// ErrEmptyTitle and leaves the existing title in place.
func (w *Workspace) RenameConversation(id, title string) error {
	i := w.indexOf(id)
	if i < 0 {
		return ErrConversationNotFound
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	w.conversations[i].Title = title
	w.conversations[i].UpdatedAt = time.Now()
	return nil
}

// AppendAnswer records a backend answer in a conversation. The first answer
// of a conversation also sets its title.
func (w *Workspace) AppendAnswer(id, question string, payload AnswerPayload) (Exchange, error) {
	i := w.indexOf(id)
	if i < 0 {
		return Exchange{}, ErrConversationNotFound
	}
	ex := NewAnswerExchange(question, payload)
	w.conversations[i].append(ex)
	return ex, nil
}

// SetActive selects a conversation.
func (w *Workspace) SetActive(id string) error {
	if w.indexOf(id) < 0 {
		return ErrConversationNotFound
	}
	w.activeID = id
	return nil
}

// SelectOffset moves the active selection by delta, clamped to the list.
func (w *Workspace) SelectOffset(delta int) {
	i := w.indexOf(w.activeID) + delta
	if i < 0 {
		i = 0
	}
	if i >= len(w.conversations) {
		i = len(w.conversations) - 1
	}
	w.activeID = w.conversations[i].ID
}

func (w *Workspace) indexOf(id string) int {
	for i, c := range w.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}
