// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components holds the small view pieces shared by the shell: the
// header bar, the status bar and auto-dismissing toasts.
//
// Components are plain structs with a View method. They hold no Bubble Tea
// state of their own except ToastManager, which is ticked by ToastTickCmd.
package components
