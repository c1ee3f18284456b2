// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns an answer payload into terminal output.
//
// Render is a pure function of the payload, the loading flag, the width and
// the per-answer view state (which sources are expanded, whether the copy
// confirmation is showing). Prose is rendered as Markdown with glamour;
// answers that arrive as structured JSON are highlighted with chroma.
//
// AnswerView holds that view state for the answer currently in focus and
// resets itself whenever a different exchange takes focus.
package render
