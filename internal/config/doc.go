// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and logger setup for lexora.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// # Configuration Precedence
//
// Later sources win:
//   - Built-in defaults
//   - ~/.lexora/config.toml (or config.json when no TOML exists)
//   - .env in the working directory, then ~/.lexora/.env
//   - Environment variables (LEXORA_<SECTION>_<KEY>)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	logFile, _ := cfg.LogFile()
//	logger, cleanup := config.SetupLogger(logFile, cfg.LogLevel(), nil)
//	defer cleanup()
package config
