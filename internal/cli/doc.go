// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the lexora command line.
//
// The root command opens the local database, restores the saved session and
// builds the API client before any subcommand runs. With no subcommand the
// interactive shell starts.
//
// # Commands
//
//	lexora                       start the TUI (same as "lexora tui")
//	lexora ask <question>        one-shot question, rendered answer on stdout
//	lexora chat                  line-based REPL with input history
//	lexora upload <file.pdf>     ingest one PDF (--watch dir keeps uploading)
//	lexora signin | signup       authenticate against the auth service
//	lexora logout | whoami       clear or show the stored session
//	lexora docs count|list|types|clear
//	lexora summarize <text>
//	lexora conversations list|new|rename|delete
//	lexora export <id>           write a conversation as md, json or yaml
//	lexora config show|path|init|get|set
//	lexora version
//
// Commands that print data accept --json for machine-readable output.
package cli
