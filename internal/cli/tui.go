// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/session"
	"github.com/jeranaias/lexora-tui/internal/ui/shell"
	"github.com/jeranaias/lexora-tui/internal/upload"
)

var tuiWatch string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive shell (default)",
	Long: `Start the interactive shell.

The sidebar lists conversations, the composer at the bottom sends questions
and the panel in the middle shows answers with their sources. Press F1 for
key bindings.

Examples:
  lexora
  lexora tui --watch ~/Documents/cases`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiWatch, "watch", "", "upload PDFs saved into this folder")
	rootCmd.Flags().StringVar(&tuiWatch, "watch", "", "upload PDFs saved into this folder")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if err := RequiresTTY("the interactive shell"); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	ws, err := convStore.LoadWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}

	var user string
	if sess, err := sessions.Load(ctx); err == nil {
		user = sess.User.DisplayName()
	} else if !errors.Is(err, session.ErrNoSession) {
		logger.Warn("session unavailable", "error", err)
	}

	uploader := upload.New(client, cfg.Upload.DocType, logger)

	var watcher *upload.Watcher
	if tuiWatch != "" {
		dir := expandHome(tuiWatch)
		watcher, err = upload.NewWatcher(uploader, dir, cfg.WatchDebounce(), logger)
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Start(ctx); err != nil {
			return err
		}
	}

	m := shell.New(shell.Options{
		Config:    cfg,
		Workspace: ws,
		Client:    client,
		Store:     convStore,
		Uploader:  uploader,
		Watcher:   watcher,
		WatchDir:  tuiWatch,
		User:      user,
		Logger:    logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run shell: %w", err)
	}
	return nil
}
