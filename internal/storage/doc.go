// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations and small key/value settings in a
// local SQLite database (~/.lexora/lexora.db).
//
// The schema is managed by embedded golang-migrate migrations. A workspace is
// saved as a whole after each state change; exchanges are append-only, so a
// save only inserts rows it has not seen.
package storage
