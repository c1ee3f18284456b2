// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload sends PDF documents to the backend for ingestion.
//
// Uploader checks a single file locally (extension, existence, not a
// directory) before any request goes out and refuses a second upload while
// one is in flight. Watcher turns a folder into a drop box: PDFs created or
// rewritten there are uploaded after a quiet period, one at a time.
package upload
