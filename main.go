// Lexora - a terminal client for the LexoraAI legal document assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/jeranaias/lexora-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	cli.SetVersion(Version, GitCommit)
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
