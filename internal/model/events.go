// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "fmt"

// Event is a query lifecycle notification consumed by Workspace.Apply.
type Event interface {
	event()
}

// QuerySubmitted marks the start of a query for a conversation.
type QuerySubmitted struct {
	ConversationID string
	Question       string
}

// QuerySucceeded carries the backend answer for a submitted query.
type QuerySucceeded struct {
	ConversationID string
	Question       string
	Payload        AnswerPayload
}

// QueryFailed carries the user-facing message of a failed query.
type QueryFailed struct {
	ConversationID string
	Message        string
}

func (QuerySubmitted) event() {}
func (QuerySucceeded) event() {}
func (QueryFailed) event()    {}

// Apply is the single update function for query events. It returns the id
// of the conversation the event touched.
//
// An answer whose conversation was deleted while the query was in flight is
// recorded in the active conversation instead of being dropped.
func (w *Workspace) Apply(ev Event) (string, error) {
	switch ev := ev.(type) {
	case QuerySubmitted:
		w.Loading = true
		w.LastError = ""
		return ev.ConversationID, nil

	case QuerySucceeded:
		w.Loading = false
		target := ev.ConversationID
		if w.indexOf(target) < 0 {
			target = w.activeID
		}
		if _, err := w.AppendAnswer(target, ev.Question, ev.Payload); err != nil {
			return "", err
		}
		return target, nil

	case QueryFailed:
		w.Loading = false
		w.LastError = ev.Message
		return ev.ConversationID, nil

	default:
		return "", fmt.Errorf("unhandled event %T", ev)
	}
}
