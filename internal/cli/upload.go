// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/upload"
)

var (
	uploadDocType string
	uploadWatch   string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file.pdf]",
	Short: "Upload a PDF for question answering",
	Long: `Upload one PDF to the document store.

The file is split into chunks by the backend and becomes searchable by
ask, chat and the shell. Only .pdf files are accepted.

With --watch, every PDF saved into the folder is uploaded after a short
quiet period until you press Ctrl+C.

Examples:
  lexora upload judgment.pdf
  lexora upload --doc-type ipc indian_penal_code.pdf
  lexora upload --watch ~/Downloads/cases`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadDocType, "doc-type", "", "document type tag (default from config)")
	uploadCmd.Flags().StringVarP(&uploadWatch, "watch", "w", "", "keep uploading PDFs saved into this folder")
}

// uploadReport is the --json data of one upload.
type uploadReport struct {
	File    string `json:"file"`
	OK      bool   `json:"ok"`
	Chunks  *int   `json:"chunks_stored,omitempty"`
	Message string `json:"message"`
}

// resultError carries the display message of a failed upload.
type resultError struct {
	res upload.Result
}

func (e *resultError) Error() string { return e.res.Message }
func (e *resultError) Unwrap() error { return e.res.Err }

func runUpload(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && uploadWatch == "" {
		return NewValidationError("arguments", "", "give a PDF file or --watch <dir>")
	}
	ctx := commandContext(cmd)

	docType := cfg.Upload.DocType
	if cmd.Flags().Changed("doc-type") {
		docType = uploadDocType
	}
	u := upload.New(client, docType, logger)

	if len(args) == 1 {
		stop := func() {}
		if !jsonOutput {
			stop = startProgress(cmd.ErrOrStderr(), "Uploading "+filepath.Base(args[0])+"...")
		}
		res := u.Upload(ctx, expandHome(args[0]))
		stop()
		if err := reportUpload(cmd, res, false); err != nil {
			return err
		}
	}
	if uploadWatch == "" {
		return nil
	}

	dir := expandHome(uploadWatch)
	w, err := upload.NewWatcher(u, dir, cfg.WatchDebounce(), logger)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Start(ctx); err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Fprintln(cmd.ErrOrStderr(), DimStyle.Render("Watching "+dir+" for PDFs. Press Ctrl+C to stop."))
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case res, ok := <-w.Results():
			if !ok {
				return nil
			}
			// Failures are reported and watching continues.
			if err := reportUpload(cmd, res, true); err != nil && !jsonOutput {
				DisplayError(cmd.ErrOrStderr(), cmd.CommandPath(), err, false)
			}
		}
	}
}

// reportUpload prints res and returns its error when it failed. In JSON
// mode a failed single upload is left to the error envelope, while watched
// results are always printed.
func reportUpload(cmd *cobra.Command, res upload.Result, watching bool) error {
	if jsonOutput && (res.OK() || watching) {
		report := uploadReport{File: res.Path, OK: res.OK(), Chunks: res.Chunks, Message: res.Message}
		if err := printJSON(cmd, report); err != nil {
			return err
		}
	}
	if !res.OK() {
		return &resultError{res: res}
	}
	if !jsonOutput {
		printUploadOK(cmd.OutOrStdout(), res)
	}
	return nil
}

func printUploadOK(w io.Writer, res upload.Result) {
	fmt.Fprintln(w, RenderSuccess(filepath.Base(res.Path)+": "+res.Message))
}
