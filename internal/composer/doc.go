// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer is the question input: a multi-line text area, the
// retrieval depth (chunk count) setting, and the Idle/Submitting state that
// keeps a second question from going out while one is in flight.
package composer
