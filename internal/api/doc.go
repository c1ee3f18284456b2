// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the LexoraAI backend.
//
// Two base URLs are used: the retrieval service (query, upload, summarize and
// document inventory) and the auth service (sign up, sign in). Every call runs
// under its own timeout and a shared token-bucket limiter. Failures are
// returned as *ClientError; the message prefers whatever text the server sent.
//
// Usage:
//
//	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: "http://localhost:8000"})
//	payload, err := client.Query(ctx, api.QueryRequest{Question: "What is Section 302?", NChunks: 5})
package api
