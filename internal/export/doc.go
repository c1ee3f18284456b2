// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to Markdown, JSON or YAML.
//
// # Formats
//
//   - Markdown: readable transcript with YAML frontmatter
//   - JSON: the full record, raw backend payloads included
//   - YAML: the same record as JSON
//
// # Usage
//
//	exp, err := export.ForFormat("md", export.DefaultOptions())
//	data, err := exp.Export(conv)
//
// or write straight to a file named after the conversation title:
//
//	path, err := export.ExportToFile(conv, exp, opts)
package export
