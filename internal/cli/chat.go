// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/config"
	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/render"
	"github.com/jeranaias/lexora-tui/internal/storage"
	"github.com/jeranaias/lexora-tui/internal/upload"
	"github.com/jeranaias/lexora-tui/internal/util"
)

// HistoryFile is the REPL input history inside the config directory.
const HistoryFile = "chat_history"

var chatChunks int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Line-based chat with history",
	Long: `Start a line-based chat in the active conversation.

Every line is sent as a question. Lines starting with "/" are commands:

  /new                start a new conversation
  /list               list conversations
  /switch <id>        make another conversation active
  /rename <title>     rename the active conversation
  /delete             delete the active conversation
  /upload <file.pdf>  upload a document
  /chunks <n>         set chunks per query (1-10)
  /help               show this help
  /exit, /quit        leave

Arrow keys walk the input history, which is kept in ~/.lexora/chat_history.`,
	Args: cobra.NoArgs,
}

func init() {
	// RunE is assigned here rather than in the literal: runChat's command
	// handler prints chatCmd.Long, which would be an initialization cycle.
	chatCmd.RunE = runChat
	chatCmd.Flags().IntVarP(&chatChunks, "chunks", "n", 5, "number of document chunks to retrieve (1-10)")
}

// =============================================================================
// INPUT
// =============================================================================

// ChatInput provides input history and line editing for the REPL.
type ChatInput struct {
	line        *liner.State
	historyFile string
}

// NewChatInput creates a ChatInput and loads saved history.
func NewChatInput() *ChatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	in := &ChatInput{line: line, historyFile: filepath.Join(dir, HistoryFile)}
	if f, err := os.Open(in.historyFile); err == nil {
		_, _ = in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

// ReadInput prompts for one line. Non-empty lines are added to history.
func (c *ChatInput) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history (0600) and restores the terminal.
func (c *ChatInput) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

// ChatSession is the REPL state. It owns the workspace for its lifetime.
type ChatSession struct {
	ws       *model.Workspace
	client   *api.Client
	store    *storage.ConversationStore
	uploader *upload.Uploader
	renderer *render.Renderer
	out      io.Writer
	errOut   io.Writer
	chunks   int
	docType  *string
	asked    int
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	n, err := chunksFor(cmd, chatChunks)
	if err != nil {
		return err
	}
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}
	s := &ChatSession{
		ws:       ws,
		client:   client,
		store:    convStore,
		uploader: upload.New(client, cfg.Upload.DocType, logger),
		renderer: newRenderer(),
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
		chunks:   n,
		docType:  docTypeFilter(""),
	}

	input := NewChatInput()
	defer input.Close()

	s.printBanner()
	for {
		line, err := input.ReadInput("lexora> ")
		if err != nil {
			// Ctrl+C, Ctrl+D and closed input all end the chat.
			fmt.Fprintln(s.out)
			break
		}
		more, err := s.HandleLine(ctx, line)
		if err != nil {
			fmt.Fprintf(s.errOut, "%s %v\n", ErrorStyle.Render("Error:"), err)
		}
		if !more {
			break
		}
	}
	fmt.Fprintln(s.out, DimStyle.Render(fmt.Sprintf("%d questions asked.", s.asked)))
	return nil
}

func (s *ChatSession) printBanner() {
	conv := s.ws.Active()
	fmt.Fprintln(s.out, TitleStyle.Render("Lexora chat"))
	fmt.Fprintln(s.out, DimStyle.Render(fmt.Sprintf("Conversation %s: %s. Type /help for commands.", shortID(conv.ID), conv.Title)))
}

// HandleLine processes one input line. It returns false when the chat
// should end.
func (s *ChatSession) HandleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true, nil
	case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
		return false, nil
	case strings.HasPrefix(line, "/"):
		return s.handleCommand(ctx, line)
	}
	return true, s.ask(ctx, line)
}

func (s *ChatSession) ask(ctx context.Context, question string) error {
	convID := s.ws.ActiveID()
	if _, err := s.ws.Apply(model.QuerySubmitted{ConversationID: convID, Question: question}); err != nil {
		return err
	}

	stop := startProgress(s.errOut, render.LoadingText)
	payload, err := s.client.Query(ctx, api.QueryRequest{Question: question, DocType: s.docType, NChunks: s.chunks})
	stop()
	if err != nil {
		_, _ = s.ws.Apply(model.QueryFailed{ConversationID: convID, Message: err.Error()})
		return err
	}

	if _, err := s.ws.Apply(model.QuerySucceeded{ConversationID: convID, Question: question, Payload: payload}); err != nil {
		return err
	}
	s.asked++
	printAnswer(s.out, s.renderer, payload)
	fmt.Fprintln(s.out)
	return s.save(ctx)
}

func (s *ChatSession) save(ctx context.Context) error {
	if err := s.store.SaveWorkspace(ctx, s.ws); err != nil {
		return fmt.Errorf("save conversations: %w", err)
	}
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (s *ChatSession) handleCommand(ctx context.Context, line string) (bool, error) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "exit", "quit", "q":
		return false, nil

	case "help", "h", "?":
		fmt.Fprintln(s.out, chatCmd.Long)

	case "new":
		conv := s.ws.CreateConversation()
		fmt.Fprintln(s.out, RenderSuccess("Started conversation "+shortID(conv.ID)))
		return true, s.save(ctx)

	case "list", "ls":
		metas := make([]storage.ConversationMeta, 0, s.ws.Len())
		for _, conv := range s.ws.Conversations() {
			metas = append(metas, metaOf(conv, conv.ID == s.ws.ActiveID()))
		}
		fmt.Fprint(s.out, storage.FormatConversationList(metas))

	case "switch", "open":
		conv, err := findConversation(s.ws, arg)
		if err != nil {
			return true, err
		}
		if err := s.ws.SetActive(conv.ID); err != nil {
			return true, err
		}
		fmt.Fprintln(s.out, RenderSuccess("Switched to "+conv.Title))
		return true, s.save(ctx)

	case "rename":
		if err := s.ws.RenameConversation(s.ws.ActiveID(), arg); err != nil {
			return true, err
		}
		fmt.Fprintln(s.out, RenderSuccess("Renamed to "+s.ws.Active().Title))
		return true, s.save(ctx)

	case "delete":
		if err := s.ws.DeleteConversation(s.ws.ActiveID()); err != nil {
			return true, err
		}
		fmt.Fprintln(s.out, RenderSuccess("Deleted. Active: "+s.ws.Active().Title))
		return true, s.save(ctx)

	case "upload":
		res := s.uploader.Upload(ctx, expandHome(arg))
		if !res.OK() {
			return true, errors.New(res.Message)
		}
		fmt.Fprintln(s.out, RenderSuccess(res.Message))

	case "chunks":
		n, err := strconv.Atoi(arg)
		if err != nil || n < minChunks || n > maxChunks {
			return true, NewValidationError("chunks", arg, fmt.Sprintf("must be between %d and %d", minChunks, maxChunks))
		}
		s.chunks = n
		fmt.Fprintln(s.out, RenderSuccess("Chunks per query: "+strconv.Itoa(n)))

	default:
		return true, NewValidationError("command", "/"+name, "unknown, type /help")
	}
	return true, nil
}

// metaOf summarizes a conversation for listings.
func metaOf(conv *model.Conversation, active bool) storage.ConversationMeta {
	meta := storage.ConversationMeta{
		ID:            conv.ID,
		Title:         conv.Title,
		CreatedAt:     conv.CreatedAt,
		UpdatedAt:     conv.UpdatedAt,
		ExchangeCount: conv.Len(),
		Active:        active,
	}
	if conv.Len() > 0 {
		meta.Preview = util.TruncateRunes(conv.Exchanges[0].Question, 80)
	}
	return meta
}
