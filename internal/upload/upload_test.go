// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package upload

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	docType string
	block   chan struct{}
	result  *api.UploadResult
	err     error
}

func (f *fakeClient) UploadFile(ctx context.Context, path, docType string) (*api.UploadResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filepath.Base(path))
	f.docType = docType
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &api.UploadResult{Status: "success"}, nil
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o600))
	return path
}

func intPtr(n int) *int { return &n }

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	pdf := writeFile(t, dir, "ipc.pdf")
	upper := writeFile(t, dir, "CRPC.PDF")
	txt := writeFile(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.pdf"), 0o700))

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"pdf", pdf, nil},
		{"upper case extension", upper, nil},
		{"text file", txt, ErrNotPDF},
		{"no extension", filepath.Join(dir, "README"), ErrNotPDF},
		{"directory", filepath.Join(dir, "folder.pdf"), ErrIsDir},
		{"missing", filepath.Join(dir, "missing.pdf"), os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.path)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMessages(t *testing.T) {
	require.Equal(t, "Stored 12 chunks", SuccessMessage(&api.UploadResult{ChunksStored: intPtr(12)}))
	require.Equal(t, "Stored 0 chunks", SuccessMessage(&api.UploadResult{ChunksStored: intPtr(0)}))
	require.Equal(t, MsgUploaded, SuccessMessage(&api.UploadResult{Status: "success"}))
	require.Equal(t, MsgUploaded, SuccessMessage(nil))

	require.Equal(t, "Only PDF files allowed", FailureMessage(ErrNotPDF))
	require.Equal(t, "Upload failed: boom", FailureMessage(errors.New("boom")))
}

// =============================================================================
// UPLOADER TESTS
// =============================================================================

func TestUploader_RejectsNonPDFWithoutRequest(t *testing.T) {
	fc := &fakeClient{}
	u := New(fc, "", nil)

	res := u.Upload(context.Background(), writeFile(t, t.TempDir(), "notes.txt"))
	require.False(t, res.OK())
	require.Equal(t, "Only PDF files allowed", res.Message)
	require.Empty(t, fc.Calls())
}

func TestUploader_Success(t *testing.T) {
	fc := &fakeClient{result: &api.UploadResult{Status: "success", ChunksStored: intPtr(42)}}
	u := New(fc, "", nil)

	res := u.Upload(context.Background(), writeFile(t, t.TempDir(), "ipc.pdf"))
	require.True(t, res.OK())
	require.Equal(t, "Stored 42 chunks", res.Message)
	require.Equal(t, 42, *res.Chunks)
	require.Equal(t, api.DefaultDocType, fc.docType)
	require.False(t, u.Busy())
}

func TestUploader_Failure(t *testing.T) {
	fc := &fakeClient{err: &api.ClientError{Type: api.ErrTypeRejected, Message: "unsupported PDF"}}
	u := New(fc, "ipc", nil)

	res := u.Upload(context.Background(), writeFile(t, t.TempDir(), "ipc.pdf"))
	require.False(t, res.OK())
	require.Equal(t, "Upload failed: unsupported PDF", res.Message)
	require.Equal(t, "ipc", fc.docType)
}

func TestUploader_BusyWhileInFlight(t *testing.T) {
	fc := &fakeClient{block: make(chan struct{})}
	u := New(fc, "", nil)
	dir := t.TempDir()
	first := writeFile(t, dir, "a.pdf")
	second := writeFile(t, dir, "b.pdf")

	done := make(chan Result, 1)
	go func() { done <- u.Upload(context.Background(), first) }()

	require.Eventually(t, u.Busy, time.Second, 5*time.Millisecond)

	res := u.Upload(context.Background(), second)
	require.ErrorIs(t, res.Err, ErrBusy)

	close(fc.block)
	require.True(t, (<-done).OK())
	require.Equal(t, []string{"a.pdf"}, fc.Calls())
	require.False(t, u.Busy())
}

func TestUploader_AgainstBackend(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/api/upload-pdf", r.URL.Path)
		assert.Equal(t, "general", r.URL.Query().Get("doc_type"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "no text extracted"})
	}))
	t.Cleanup(srv.Close)

	client := api.NewClientWithConfig(&api.ClientConfig{BaseURL: srv.URL, UploadTimeout: 2 * time.Second})
	u := New(client, "", nil)
	dir := t.TempDir()

	res := u.Upload(context.Background(), writeFile(t, dir, "notes.txt"))
	require.Equal(t, MsgOnlyPDF, res.Message)
	require.EqualValues(t, 0, requests.Load())

	res = u.Upload(context.Background(), writeFile(t, dir, "scan.pdf"))
	require.Equal(t, "Upload failed: no text extracted", res.Message)
	require.EqualValues(t, 1, requests.Load())
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestNewWatcher_RejectsFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.pdf")
	_, err := NewWatcher(New(&fakeClient{}, "", nil), path, 0, nil)
	require.Error(t, err)
}

func TestWatcher_UploadsNewPDFs(t *testing.T) {
	dir := t.TempDir()
	fc := &fakeClient{result: &api.UploadResult{Status: "success", ChunksStored: intPtr(3)}}

	w, err := NewWatcher(New(fc, "", nil), dir, 50*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Close() })

	writeFile(t, dir, "notes.txt")
	writeFile(t, dir, "judgment.pdf")

	select {
	case res := <-w.Results():
		require.True(t, res.OK())
		require.Equal(t, "judgment.pdf", filepath.Base(res.Path))
		require.Equal(t, "Stored 3 chunks", res.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("no upload result")
	}

	require.Equal(t, []string{"judgment.pdf"}, fc.Calls())
}

func TestWatcher_StartFailureClosesWatcher(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")
	require.NoError(t, os.Mkdir(dir, 0o755))

	w, err := NewWatcher(New(&fakeClient{}, "", nil), dir, 0, nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	require.Error(t, w.Start(context.Background()))

	_, open := <-w.Results()
	require.False(t, open, "results must be closed after a failed start")
	require.NotPanics(t, func() { _ = w.Close() })
}

func TestWatcher_CloseTwice(t *testing.T) {
	w, err := NewWatcher(New(&fakeClient{}, "", nil), t.TempDir(), 0, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, w.Close())
	require.NotPanics(t, func() { require.NoError(t, w.Close()) })
}
