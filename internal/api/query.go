// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"strings"

	"github.com/jeranaias/lexora-tui/internal/model"
)

// =============================================================================
// QUERY
// =============================================================================

// Query asks a question and returns the backend's payload untouched.
// Interpreting the payload is left to model.AnswerPayload.
func (c *Client) Query(ctx context.Context, req QueryRequest) (model.AnswerPayload, error) {
	if strings.TrimSpace(req.Question) == "" {
		return model.AnswerPayload{}, &ClientError{Type: ErrTypeInvalidRequest, Message: "question is required"}
	}

	body, err := c.postJSON(ctx, c.config.BaseURL, "/api/query", req, c.config.QueryTimeout)
	if err != nil {
		return model.AnswerPayload{}, err
	}

	payload, err := model.ParsePayload(body)
	if err != nil {
		return model.AnswerPayload{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	c.log.Info("query answered", "n_chunks", req.NChunks, "bytes", len(body))
	return payload, nil
}

// Summarize asks the backend to simplify text in the context of question.
func (c *Client) Summarize(ctx context.Context, text, question string) (string, error) {
	body, err := c.postJSON(ctx, c.config.BaseURL, "/api/summarize",
		SummarizeRequest{Text: text, Question: question}, c.config.RequestTimeout)
	if err != nil {
		return "", err
	}
	var resp summarizeResponse
	if err := decode(body, &resp); err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// SummarizeOrRaw returns the summary, or text itself when summarization
// fails or comes back empty.
func (c *Client) SummarizeOrRaw(ctx context.Context, text, question string) string {
	summary, err := c.Summarize(ctx, text, question)
	if err != nil {
		c.log.Warn("summarize failed, using raw text", "error", err)
		return text
	}
	if strings.TrimSpace(summary) == "" {
		return text
	}
	return summary
}
