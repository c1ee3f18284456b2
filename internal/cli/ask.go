// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/composer"
	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/render"
	"github.com/jeranaias/lexora-tui/internal/ui/styles"
	"github.com/jeranaias/lexora-tui/internal/util"
)

// sourcePreviewRunes caps the source excerpt printed under an answer.
const sourcePreviewRunes = 160

var (
	askChunks       int
	askDocType      string
	askRaw          bool
	askNoSave       bool
	askConversation string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the answer",
	Long: `Ask one question about your uploaded documents.

The answer is rendered as Markdown with its sources listed below. The
exchange is saved to the active conversation unless --no-save is given.

Examples:
  lexora ask "What is the punishment under Section 302?"
  lexora ask -n 8 "Explain anticipatory bail"
  lexora ask --raw "What does Article 21 protect?"
  lexora ask --json "Define cognizable offence" | jq .data.answer`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askChunks, "chunks", "n", 5, "number of document chunks to retrieve (1-10)")
	askCmd.Flags().StringVar(&askDocType, "doc-type", "", "only search documents of this type")
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "print the backend response as JSON")
	askCmd.Flags().BoolVar(&askNoSave, "no-save", false, "do not record the exchange")
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "conversation id or prefix to record into (default active)")
}

// askResult is the --json data of ask.
type askResult struct {
	ConversationID string         `json:"conversation_id,omitempty"`
	Question       string         `json:"question"`
	Answer         string         `json:"answer,omitempty"`
	Error          string         `json:"error,omitempty"`
	Sources        []model.Source `json:"sources"`
	Payload        any            `json:"payload"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return composer.ErrEmptyQuestion
	}
	n, err := chunksFor(cmd, askChunks)
	if err != nil {
		return err
	}

	var ws *model.Workspace
	var convID string
	if !askNoSave {
		if ws, err = loadWorkspace(ctx); err != nil {
			return err
		}
		conv, err := findConversation(ws, askConversation)
		if err != nil {
			return err
		}
		convID = conv.ID
		if _, err := ws.Apply(model.QuerySubmitted{ConversationID: convID, Question: question}); err != nil {
			return err
		}
	}

	var stop func()
	if !jsonOutput && !askRaw {
		stop = startProgress(cmd.ErrOrStderr(), render.LoadingText)
	}
	start := time.Now()
	payload, err := client.Query(ctx, api.QueryRequest{
		Question: question,
		DocType:  docTypeFilter(askDocType),
		NChunks:  n,
	})
	if stop != nil {
		stop()
	}
	if err != nil {
		return err
	}
	logger.Info("query answered", "chunks", n, "duration", time.Since(start))

	if ws != nil {
		if _, err := ws.Apply(model.QuerySucceeded{ConversationID: convID, Question: question, Payload: payload}); err != nil {
			return err
		}
		if err := convStore.SaveWorkspace(ctx, ws); err != nil {
			return fmt.Errorf("save conversation: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		return printJSON(cmd, newAskResult(convID, question, payload))
	case askRaw:
		raw := indentJSON(payload.Raw())
		if ColorsEnabled() {
			raw = newRenderer().JSON(raw)
		}
		fmt.Fprintln(out, strings.TrimRight(raw, "\n"))
		return nil
	}
	printAnswer(out, newRenderer(), payload)
	return nil
}

func newAskResult(convID, question string, p model.AnswerPayload) askResult {
	res := askResult{
		ConversationID: convID,
		Question:       question,
		Sources:        p.Sources(),
		Payload:        p,
	}
	if res.Sources == nil {
		res.Sources = []model.Source{}
	}
	if text, ok := p.PrimaryText(); ok {
		res.Answer = text.Body
	} else {
		res.Error = p.ErrorText()
		if res.Error == "" {
			res.Error = render.UnableGeneric
		}
	}
	return res
}

// =============================================================================
// ANSWER OUTPUT
// =============================================================================

// newRenderer builds a renderer for stdout. Without colors the markdown
// and JSON output stay plain.
func newRenderer() *render.Renderer {
	opts := render.Options{
		Theme:       styles.NewThemeNamed(cfg.UI.Theme),
		WordWrap:    min(cfg.UI.WordWrap, TerminalWidth()-2),
		ShowSources: cfg.UI.ShowSources,
	}
	if !ColorsEnabled() {
		opts.MarkdownStyle = "notty"
		opts.Formatter = "noop"
	}
	return render.NewRenderer(opts)
}

// printAnswer writes the answer, or the unable-to-answer card, and sources.
func printAnswer(w io.Writer, r *render.Renderer, p model.AnswerPayload) {
	if !ColorsEnabled() {
		fmt.Fprintln(w, render.Plain(p))
		return
	}

	width := min(cfg.UI.WordWrap, TerminalWidth()-2)
	text, ok := p.PrimaryText()
	if !ok {
		msg := p.ErrorText()
		if msg == "" {
			msg = render.UnableGeneric
		}
		fmt.Fprintln(w, ErrorStyle.Render(render.UnableTitle))
		fmt.Fprintln(w, WrapText(msg, width))
		return
	}

	fmt.Fprintln(w, TitleStyle.Render(render.AnswerTitle))
	if text.JSON {
		fmt.Fprintln(w, strings.TrimRight(r.JSON(text.Body), "\n"))
	} else {
		fmt.Fprintln(w, strings.Trim(r.Markdown(text.Body, width), "\n"))
	}

	sources := p.Sources()
	if !cfg.UI.ShowSources || len(sources) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render(render.SourcesTitle))
	for i, src := range sources {
		fmt.Fprintf(w, "%d. %s\n", i+1, src.Label)
		if body := util.CollapseSpace(src.Body); body != "" {
			fmt.Fprintln(w, DimStyle.Render("   "+util.TruncateRunes(body, sourcePreviewRunes)))
		}
	}
}

func indentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
