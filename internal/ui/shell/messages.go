// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import "github.com/jeranaias/lexora-tui/internal/upload"

// Query completions are delivered as model.QuerySucceeded and
// model.QueryFailed, which the shell feeds to Workspace.Apply unchanged.

// uploadDoneMsg reports a manual upload started from the prompt.
type uploadDoneMsg struct {
	Result upload.Result
}

// watchResultMsg reports an upload done by the folder watcher.
type watchResultMsg struct {
	Result upload.Result
}
