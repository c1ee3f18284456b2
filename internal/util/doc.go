// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across lexora packages.
//
// String helpers are rune and display-width aware so titles, previews and
// sidebar rows never split a multi-byte character:
//
//	title := util.PrefixRunes(util.CollapseSpace(answer), 30) + util.Ellipsis
//	row := util.PadWidth(title, 24)
//
// AtomicWriteFile is used for every file the client writes (config, exports,
// the session secret) so a crash never leaves a half-written file behind.
package util
