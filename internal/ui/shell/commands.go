// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/upload"
)

// Querier answers questions. *api.Client satisfies it.
type Querier interface {
	Query(ctx context.Context, req api.QueryRequest) (model.AnswerPayload, error)
}

// Persister saves the workspace. *storage.ConversationStore satisfies it.
type Persister interface {
	SaveWorkspace(ctx context.Context, ws *model.Workspace) error
}

// queryCmd runs one query. The client applies its own timeout.
func queryCmd(q Querier, req api.QueryRequest, ev model.QuerySubmitted) tea.Cmd {
	return func() tea.Msg {
		payload, err := q.Query(context.Background(), req)
		if err != nil {
			return model.QueryFailed{ConversationID: ev.ConversationID, Message: err.Error()}
		}
		return model.QuerySucceeded{
			ConversationID: ev.ConversationID,
			Question:       ev.Question,
			Payload:        payload,
		}
	}
}

func uploadCmd(u *upload.Uploader, path string) tea.Cmd {
	return func() tea.Msg {
		return uploadDoneMsg{Result: u.Upload(context.Background(), path)}
	}
}

// waitForWatch blocks on the next watcher result. It yields nil once the
// watcher is closed, which ends the loop.
func waitForWatch(results <-chan upload.Result) tea.Cmd {
	if results == nil {
		return nil
	}
	return func() tea.Msg {
		res, ok := <-results
		if !ok {
			return nil
		}
		return watchResultMsg{Result: res}
	}
}
