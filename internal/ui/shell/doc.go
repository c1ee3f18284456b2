// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell is the top-level Bubble Tea model of the terminal client.
//
// # Layout
//
//	+------------------------------------------------+
//	| header: brand / conversation            user   |
//	+------------+-----------------------------------+
//	| sidebar    | answer panel (viewport)           |
//	|            |                                   |
//	+------------+-----------------------------------+
//	| [rename/upload prompt]                         |
//	| composer                                       |
//	| status bar                                     |
//	+------------------------------------------------+
//
// The sidebar collapses on narrow terminals and can be toggled. The shell owns
// the model.Workspace; query completions arrive as model.QuerySucceeded or
// model.QueryFailed messages and go through Workspace.Apply before the
// workspace is persisted.
package shell
