// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strings"

	"github.com/jeranaias/lexora-tui/internal/util"
)

// FormatConversationList renders metadata as a fixed-width table for the CLI.
// The active conversation is marked with "*".
func FormatConversationList(metas []ConversationMeta) string {
	if len(metas) == 0 {
		return "No conversations found."
	}

	var sb strings.Builder
	sb.WriteString("  " + util.PadWidth("ID", 10) + " " + util.PadWidth("Updated", 17) + " " +
		util.PadWidth("Turns", 6) + " Title\n")
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	for _, m := range metas {
		marker := "  "
		if m.Active {
			marker = "* "
		}
		id := util.PrefixRunes(m.ID, 8)
		sb.WriteString(marker +
			util.PadWidth(id, 10) + " " +
			util.PadWidth(m.UpdatedAt.Format("2006-01-02 15:04"), 17) + " " +
			util.PadWidth(util.FormatCount(m.ExchangeCount), 6) + " " +
			util.FitWidth(m.Title, 36) + "\n")
	}
	return sb.String()
}
