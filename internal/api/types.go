// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "strings"

// =============================================================================
// QUERY TYPES
// =============================================================================

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Question string `json:"question"`
	// DocType filters retrieval; nil is sent as JSON null.
	DocType *string `json:"doc_type"`
	NChunks int     `json:"n_chunks"`
}

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	Text     string `json:"text"`
	Question string `json:"question"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// =============================================================================
// UPLOAD TYPES
// =============================================================================

// UploadResult is the ingestion acknowledgment.
type UploadResult struct {
	Status       string `json:"status"`
	Filename     string `json:"filename,omitempty"`
	DocType      string `json:"doc_type,omitempty"`
	ChunksStored *int   `json:"chunks_stored,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Failed reports the in-band error form ({status: "error"}).
func (r *UploadResult) Failed() bool {
	return strings.EqualFold(r.Status, "error")
}

// =============================================================================
// AUTH TYPES
// =============================================================================

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// SigninRequest is the body of POST /auth/signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the opaque profile object returned by the auth service.
type User map[string]any

// DisplayName returns the best human label in the profile.
func (u User) DisplayName() string {
	for _, key := range []string{"username", "name", "email"} {
		if s, ok := u[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Email returns the email field if present.
func (u User) Email() string {
	s, _ := u["email"].(string)
	return s
}

// AuthResponse is returned by sign up and sign in.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// DocumentChunk is one stored chunk as listed by the backend.
type DocumentChunk struct {
	ChunkID        string `json:"chunk_id"`
	Source         string `json:"source"`
	DocType        string `json:"doc_type"`
	ChunkNumber    int    `json:"chunk_number"`
	TextPreview    string `json:"text_preview"`
	FullTextLength int    `json:"full_text_length"`
}

// DocumentList is the response of GET /api/documents/list.
type DocumentList struct {
	TotalChunks int             `json:"total_chunks"`
	Showing     int             `json:"showing"`
	Documents   []DocumentChunk `json:"documents"`
}

type countResponse struct {
	TotalChunks int    `json:"total_chunks"`
	Error       string `json:"error,omitempty"`
}

type listResponse struct {
	DocumentList
	Error string `json:"error,omitempty"`
}

type typesResponse struct {
	DocumentTypes []string `json:"document_types"`
	Count         int      `json:"count"`
	Error         string   `json:"error,omitempty"`
}

type clearResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
