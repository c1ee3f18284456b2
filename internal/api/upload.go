// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// DefaultDocType is sent when no document type is configured.
const DefaultDocType = "general"

// =============================================================================
// UPLOAD
// =============================================================================

// UploadFile opens path and uploads it. Extension checks are the caller's job.
func (c *Client) UploadFile(ctx context.Context, path, docType string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "cannot open file", Cause: err}
	}
	defer f.Close()
	return c.UploadPDF(ctx, filepath.Base(path), f, docType)
}

// UploadPDF streams r as the multipart "file" field. doc_type travels both as
// a form field and as a query parameter, since the service reads it from the
// query string. An in-band {status: "error"} reply is returned as an error.
func (c *Client) UploadPDF(ctx context.Context, filename string, r io.Reader, docType string) (*UploadResult, error) {
	if docType == "" {
		docType = DefaultDocType
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(mw, filename, r, docType))
	}()

	body, err := c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoint(c.config.BaseURL, "/api/upload-pdf", url.Values{"doc_type": {docType}}),
		body:        pr,
		contentType: mw.FormDataContentType(),
		timeout:     c.config.UploadTimeout,
	})
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := decode(body, &result); err != nil {
		return nil, err
	}
	if result.Failed() {
		msg := result.Message
		if msg == "" {
			msg = "upload failed"
		}
		return &result, &ClientError{Type: ErrTypeRejected, Message: msg}
	}

	c.log.Info("document uploaded", "filename", filename, "doc_type", docType, "chunks", chunkCount(result.ChunksStored))
	return &result, nil
}

func writeUploadForm(mw *multipart.Writer, filename string, r io.Reader, docType string) error {
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.WriteField("doc_type", docType); err != nil {
		return err
	}
	return mw.Close()
}

func chunkCount(n *int) int {
	if n == nil {
		return -1
	}
	return *n
}
