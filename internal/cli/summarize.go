// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var (
	summarizeQuestion string
	summarizeStrict   bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <text | ->",
	Short: "Simplify a passage of legal text",
	Long: `Ask the backend to restate legal text in plain language.

Pass "-" to read the text from stdin. When the service fails the original
text is printed unchanged; use --strict to fail instead.

Examples:
  lexora summarize "Whoever commits murder shall be punished with death..."
  pdftotext clause.pdf - | lexora summarize - --question "Who pays costs?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeQuestion, "question", "q", "", "question the summary should answer")
	summarizeCmd.Flags().BoolVar(&summarizeStrict, "strict", false, "return an error instead of the original text")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(b)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return NewValidationError("text", "", "nothing to summarize")
	}

	ctx := commandContext(cmd)
	var summary string
	if summarizeStrict {
		var err error
		if summary, err = client.Summarize(ctx, text, summarizeQuestion); err != nil {
			return err
		}
	} else {
		summary = client.SummarizeOrRaw(ctx, text, summarizeQuestion)
	}

	if jsonOutput {
		return printJSON(cmd, map[string]any{"summary": summary, "question": summarizeQuestion})
	}
	width := min(cfg.UI.WordWrap, TerminalWidth()-2)
	if ColorsEnabled() {
		summary = strings.Trim(newRenderer().Markdown(summary, width), "\n")
	} else {
		summary = WrapText(summary, width)
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}
