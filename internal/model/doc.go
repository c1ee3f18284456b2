// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the client-side state of lexora: conversations,
// their exchanges, and the backend answer payloads they record.
//
// # Key Types
//
//   - Workspace: the owned application state (conversation set, active
//     selection, loading flag, last error)
//   - Conversation: a titled, ordered list of exchanges
//   - Exchange: one recorded turn, tagged by ExchangeKind
//   - AnswerPayload: the raw backend answer with field-resolution accessors
//   - Event: QuerySubmitted, QuerySucceeded, QueryFailed
//
// # Usage
//
// All mutation goes through Workspace methods or the Apply reducer:
//
//	ws := model.NewWorkspace()
//	id := ws.ActiveID()
//	ws.Apply(model.QuerySubmitted{ConversationID: id, Question: q})
//	ws.Apply(model.QuerySucceeded{ConversationID: id, Question: q, Payload: p})
//
// A Workspace is not safe for concurrent use; the TUI mutates it only from
// its update loop.
package model
