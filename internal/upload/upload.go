// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/util"
)

// User-facing messages.
const (
	MsgOnlyPDF  = "Only PDF files allowed"
	MsgUploaded = "Document uploaded successfully"
)

var (
	// ErrNotPDF is returned for files without a .pdf extension.
	ErrNotPDF = errors.New(MsgOnlyPDF)
	// ErrIsDir is returned when the path is a directory.
	ErrIsDir = errors.New("path is a directory, choose one PDF file")
	// ErrBusy is returned while another upload is in flight.
	ErrBusy = errors.New("an upload is already in progress")
)

// Client is the subset of api.Client used for uploads.
type Client interface {
	UploadFile(ctx context.Context, path, docType string) (*api.UploadResult, error)
}

// Result describes one upload attempt.
type Result struct {
	Path    string
	Chunks  *int
	Message string
	Err     error
}

// OK reports whether the upload succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// IsPDF reports whether path has a .pdf extension, ignoring case.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Validate checks path locally. No request is made.
func Validate(path string) error {
	if !IsPDF(path) {
		return ErrNotPDF
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		return ErrIsDir
	}
	return nil
}

// SuccessMessage formats the acknowledgment for a stored document.
func SuccessMessage(res *api.UploadResult) string {
	if res != nil && res.ChunksStored != nil {
		return fmt.Sprintf("Stored %s chunks", util.FormatCount(*res.ChunksStored))
	}
	return MsgUploaded
}

// FailureMessage formats a failed upload. Local validation errors are shown
// as they are; remote failures get the "Upload failed:" prefix.
func FailureMessage(err error) string {
	if errors.Is(err, ErrNotPDF) || errors.Is(err, ErrIsDir) || errors.Is(err, ErrBusy) {
		return err.Error()
	}
	return "Upload failed: " + err.Error()
}

// =============================================================================
// UPLOADER
// =============================================================================

// Uploader uploads one file at a time.
type Uploader struct {
	client  Client
	docType string
	busy    atomic.Bool
	log     *slog.Logger
}

// New creates an Uploader. An empty docType sends api.DefaultDocType.
func New(client Client, docType string, logger *slog.Logger) *Uploader {
	if docType == "" {
		docType = api.DefaultDocType
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{client: client, docType: docType, log: logger.With("component", "upload")}
}

// DocType returns the document type sent with uploads.
func (u *Uploader) DocType() string {
	return u.docType
}

// Busy reports whether an upload is in flight.
func (u *Uploader) Busy() bool {
	return u.busy.Load()
}

// Upload validates and uploads path. The returned Result always carries a
// user-facing Message.
func (u *Uploader) Upload(ctx context.Context, path string) Result {
	res := Result{Path: path}

	if err := Validate(path); err != nil {
		res.Err = err
		res.Message = FailureMessage(err)
		return res
	}
	if !u.busy.CompareAndSwap(false, true) {
		res.Err = ErrBusy
		res.Message = FailureMessage(ErrBusy)
		return res
	}
	defer u.busy.Store(false)

	ack, err := u.client.UploadFile(ctx, path, u.docType)
	if err != nil {
		u.log.Warn("upload failed", "file", filepath.Base(path), "error", err)
		res.Err = err
		res.Message = FailureMessage(err)
		return res
	}

	res.Chunks = ack.ChunksStored
	res.Message = SuccessMessage(ack)
	return res
}
