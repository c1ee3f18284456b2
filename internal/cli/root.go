// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/config"
	"github.com/jeranaias/lexora-tui/internal/session"
	"github.com/jeranaias/lexora-tui/internal/storage"
)

var (
	// Version and Commit are set at build time.
	Version = "0.1.0"
	Commit  = "dev"

	// Global flags
	verbose    bool
	jsonOutput bool
	configFile string

	// Shared state built by setup
	cfg       *config.Config
	logger    *slog.Logger
	logClose  func() error
	db        *storage.DB
	convStore *storage.ConversationStore
	sessions  *session.Store
	client    *api.Client

	// sealerIterations is the PBKDF2 work factor for the token sealer.
	sealerIterations = session.PBKDF2Iterations
)

// DBFile is the database name inside the data directory.
const DBFile = storage.DatabaseFile

// Setup levels a command can request through its annotations.
const (
	setupKey    = "lexora:setup"
	setupNone   = "none"
	setupConfig = "config"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lexora",
	Short: "Ask questions about your legal documents",
	Long: `Lexora is a terminal client for the LexoraAI legal document assistant.

Upload PDFs, ask questions in plain language and read simplified answers
with the source passages they came from. Conversations are kept locally
in ~/.lexora/lexora.db.

Run without a command to start the interactive shell.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
	RunE: runTUI,
}

// Execute runs the root command and prints any error.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer teardown()

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		out := rootCmd.ErrOrStderr()
		if jsonOutput {
			out = rootCmd.OutOrStdout()
		}
		DisplayError(out, cmd.CommandPath(), err, jsonOutput)
	}
	return err
}

// SetVersion records build information for version output.
func SetVersion(version, commit string) {
	if version != "" {
		Version = version
		rootCmd.Version = version
	}
	if commit != "" {
		Commit = commit
	}
}

func init() {
	rootCmd.SetVersionTemplate("lexora {{.Version}}\n")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr at debug level")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.lexora/config.toml)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(signinCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// =============================================================================
// SETUP AND TEARDOWN
// =============================================================================

// setupLevel returns the annotation of cmd or its nearest annotated parent.
func setupLevel(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if level, ok := c.Annotations[setupKey]; ok {
			return level
		}
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return setupNone
		}
	}
	return ""
}

func setup(cmd *cobra.Command, args []string) error {
	level := setupLevel(cmd)
	if level == setupNone {
		return nil
	}

	var err error
	if configFile != "" {
		cfg, err = config.LoadFromPath(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	config.SetGlobal(cfg)
	if level == setupConfig {
		return nil
	}

	if err := setupLogging(cmd); err != nil {
		return err
	}

	dataDir, err := cfg.DataDir()
	if err != nil {
		return fmt.Errorf("resolve data directory: %w", err)
	}
	db, err = storage.Open(filepath.Join(dataDir, DBFile), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	convStore = storage.NewConversationStore(db, cfg.Storage.MaxConversations)

	sealer, err := session.NewSealer(filepath.Join(dataDir, session.SecretFile), sealerIterations)
	if err != nil {
		return fmt.Errorf("load session secret: %w", err)
	}
	sessions = session.NewStore(db, sealer, logger)
	if _, err := sessions.Load(commandContext(cmd)); err != nil && !errors.Is(err, session.ErrNoSession) {
		// An unreadable token is treated as signed out.
		logger.Warn("stored session ignored", "error", err)
	}

	client = api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:        cfg.API.BaseURL,
		AuthURL:        cfg.API.AuthURL,
		QueryTimeout:   cfg.QueryTimeout(),
		UploadTimeout:  cfg.UploadTimeout(),
		RequestTimeout: cfg.RequestTimeout(),
		RatePerSec:     cfg.API.RatePerSec,
		Burst:          cfg.API.Burst,
		UserAgent:      "lexora/" + Version,
		Logger:         logger,
	})
	client.SetTokenSource(sessions.Token)

	logger.Debug("lexora ready", "command", cmd.CommandPath(), "base_url", cfg.API.BaseURL, "data_dir", dataDir)
	return nil
}

// setupLogging writes JSON to the log file and, with --verbose, text to stderr.
func setupLogging(cmd *cobra.Command) error {
	logFile, err := cfg.LogFile()
	if err != nil {
		return fmt.Errorf("resolve log file: %w", err)
	}
	level := cfg.LogLevel()
	var console = cmd.ErrOrStderr()
	if verbose {
		level = slog.LevelDebug
	} else {
		console = nil
	}
	logger, logClose = config.SetupLogger(logFile, level, console)
	slog.SetDefault(logger)
	return nil
}

// teardown closes what setup opened. It is safe to call more than once.
func teardown() {
	if db != nil {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
		db = nil
	}
	if logClose != nil {
		_ = logClose()
		logClose = nil
	}
}

// commandContext returns the command's context, never nil.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// printJSON writes a success envelope for cmd.
func printJSON(cmd *cobra.Command, data any) error {
	return NewJSONResponse(cmd.CommandPath(), data).Write(cmd.OutOrStdout())
}
