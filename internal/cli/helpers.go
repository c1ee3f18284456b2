// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/model"
)

// Chunk count bounds accepted by the query endpoint.
const (
	minChunks = 1
	maxChunks = 10
)

// expandHome replaces a leading "~" with the home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// chunksFor returns the -n flag when set, else the configured default.
func chunksFor(cmd *cobra.Command, flagValue int) (int, error) {
	n := cfg.Query.NChunks
	if cmd.Flags().Changed("chunks") {
		n = flagValue
	}
	if n < minChunks || n > maxChunks {
		return 0, NewValidationError("chunks", strconv.Itoa(n), fmt.Sprintf("must be between %d and %d", minChunks, maxChunks))
	}
	return n, nil
}

// docTypeFilter returns the query filter, nil meaning all document types.
func docTypeFilter(flagValue string) *string {
	dt := strings.TrimSpace(flagValue)
	if dt == "" {
		dt = strings.TrimSpace(cfg.Query.DocType)
	}
	if dt == "" {
		return nil
	}
	return &dt
}

// findConversation resolves ref against ws. An empty ref or "active" is the
// active conversation; otherwise ref is a full id or a unique id prefix.
func findConversation(ws *model.Workspace, ref string) (*model.Conversation, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "active" {
		if conv := ws.Active(); conv != nil {
			return conv, nil
		}
		return nil, NewNotFoundError("conversation", "active")
	}
	if conv, ok := ws.Get(ref); ok {
		return conv, nil
	}

	var match *model.Conversation
	for _, conv := range ws.Conversations() {
		if !strings.HasPrefix(conv.ID, ref) {
			continue
		}
		if match != nil {
			return nil, NewValidationError("conversation id", ref, "matches more than one conversation, use more characters")
		}
		match = conv
	}
	if match == nil {
		return nil, NewNotFoundError("conversation", ref)
	}
	return match, nil
}

// loadWorkspace restores the saved workspace.
func loadWorkspace(ctx context.Context) (*model.Workspace, error) {
	ws, err := convStore.LoadWorkspace(ctx)
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	return ws, nil
}

// shortID is the id prefix shown in listings.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
