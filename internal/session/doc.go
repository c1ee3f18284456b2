// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session keeps the signed-in user's token and profile.
//
// Both values live in the local key/value table and are written or removed
// together. The token is sealed with AES-256-GCM under a key derived with
// PBKDF2-SHA-256 from a per-install secret file; sealed values carry the
// "ENC:" prefix.
package session
