// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultListLimit matches the service's own default page size.
const DefaultListLimit = 50

// =============================================================================
// DOCUMENT INVENTORY
// =============================================================================

func docTypeQuery(docType string) url.Values {
	q := url.Values{}
	if docType != "" {
		q.Set("doc_type", docType)
	}
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	body, err := c.do(ctx, request{
		method:  http.MethodGet,
		url:     c.endpoint(c.config.BaseURL, path, q),
		timeout: c.config.RequestTimeout,
	})
	if err != nil {
		return err
	}
	return decode(body, out)
}

// DocumentCount returns the number of stored chunks, optionally for one type.
func (c *Client) DocumentCount(ctx context.Context, docType string) (int, error) {
	var resp countResponse
	if err := c.get(ctx, "/api/documents/count", docTypeQuery(docType), &resp); err != nil {
		return 0, err
	}
	if resp.Error != "" {
		return 0, &ClientError{Type: ErrTypeRejected, Message: resp.Error}
	}
	return resp.TotalChunks, nil
}

// ListDocuments returns up to limit chunk previews.
func (c *Client) ListDocuments(ctx context.Context, limit int, docType string) (*DocumentList, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := docTypeQuery(docType)
	q.Set("limit", strconv.Itoa(limit))

	var resp listResponse
	if err := c.get(ctx, "/api/documents/list", q, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &ClientError{Type: ErrTypeRejected, Message: resp.Error}
	}
	return &resp.DocumentList, nil
}

// DocumentTypes returns the distinct document types in the store.
func (c *Client) DocumentTypes(ctx context.Context) ([]string, error) {
	var resp typesResponse
	if err := c.get(ctx, "/api/documents/types", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &ClientError{Type: ErrTypeRejected, Message: resp.Error}
	}
	return resp.DocumentTypes, nil
}

// ClearDocuments deletes stored chunks, all of them when docType is empty.
func (c *Client) ClearDocuments(ctx context.Context, docType string) (string, error) {
	body, err := c.do(ctx, request{
		method:  http.MethodPost,
		url:     c.endpoint(c.config.BaseURL, "/api/documents/clear", docTypeQuery(docType)),
		timeout: c.config.RequestTimeout,
	})
	if err != nil {
		return "", err
	}
	var resp clearResponse
	if err := decode(body, &resp); err != nil {
		return "", err
	}
	if resp.Status == "error" {
		return "", &ClientError{Type: ErrTypeRejected, Message: resp.Message}
	}
	return resp.Message, nil
}
