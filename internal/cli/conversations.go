// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/storage"
)

var (
	convSearch string
	convTitle  string
	convYes    bool
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv", "c"},
	Short:   "Manage saved conversations",
	Long: `Manage the conversations stored in ~/.lexora/lexora.db.

Conversations are addressed by id or by any unique id prefix, as printed
by "lexora conversations list". "active" names the active conversation.

Examples:
  lexora conversations list
  lexora conversations list --search bail
  lexora conversations show 3f2a
  lexora conversations rename 3f2a "Bail under CrPC"
  lexora conversations delete 3f2a --yes`,
	RunE: runConversationsList,
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Args:  cobra.NoArgs,
	RunE:  runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a conversation (default active)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConversationsShow,
}

var conversationsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new conversation and make it active",
	Args:  cobra.NoArgs,
	RunE:  runConversationsNew,
}

var conversationsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a conversation",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runConversationsRename,
}

var conversationsUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Make a conversation active",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsUse,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsDelete,
}

func init() {
	conversationsCmd.Flags().StringVarP(&convSearch, "search", "s", "", "only titles or questions containing this text")
	conversationsListCmd.Flags().StringVarP(&convSearch, "search", "s", "", "only titles or questions containing this text")
	conversationsNewCmd.Flags().StringVar(&convTitle, "title", "", "title for the new conversation")
	conversationsDeleteCmd.Flags().BoolVarP(&convYes, "yes", "y", false, "do not ask for confirmation")

	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)
	conversationsCmd.AddCommand(conversationsNewCmd)
	conversationsCmd.AddCommand(conversationsRenameCmd)
	conversationsCmd.AddCommand(conversationsUseCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	metas, err := convStore.Search(commandContext(cmd), convSearch)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, metas)
	}
	fmt.Fprint(cmd.OutOrStdout(), storage.FormatConversationList(metas))
	if len(metas) == 0 {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace(commandContext(cmd))
	if err != nil {
		return err
	}
	ref := ""
	if len(args) == 1 {
		ref = args[0]
	}
	conv, err := findConversation(ws, ref)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, conv)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render(conv.Title))
	fmt.Fprintln(out, DimStyle.Render(fmt.Sprintf("%s  updated %s", conv.ID, conv.UpdatedAt.Format("2006-01-02 15:04"))))
	if conv.Len() == 0 {
		fmt.Fprintln(out, DimStyle.Render("No questions yet."))
		return nil
	}
	r := newRenderer()
	for _, ex := range conv.Exchanges {
		fmt.Fprintln(out)
		fmt.Fprintln(out, RenderSeparator())
		fmt.Fprintln(out, QuestionStyle.Render("Q: "+ex.Question))
		fmt.Fprintln(out)
		printAnswer(out, r, ex.Payload)
	}
	return nil
}

func runConversationsNew(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}
	conv := ws.CreateConversation()
	if title := strings.TrimSpace(convTitle); title != "" {
		if err := ws.RenameConversation(conv.ID, title); err != nil {
			return err
		}
	}
	if err := convStore.SaveWorkspace(ctx, ws); err != nil {
		return err
	}

	conv = ws.Active()
	if jsonOutput {
		return printJSON(cmd, conv)
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess(fmt.Sprintf("Created %s (%s)", conv.Title, shortID(conv.ID))))
	return nil
}

func runConversationsRename(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}
	conv, err := findConversation(ws, args[0])
	if err != nil {
		return err
	}
	if err := ws.RenameConversation(conv.ID, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	if err := convStore.SaveWorkspace(ctx, ws); err != nil {
		return err
	}

	conv, _ = ws.Get(conv.ID)
	if jsonOutput {
		return printJSON(cmd, conv)
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess("Renamed to "+conv.Title))
	return nil
}

func runConversationsUse(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}
	conv, err := findConversation(ws, args[0])
	if err != nil {
		return err
	}
	if err := ws.SetActive(conv.ID); err != nil {
		return err
	}
	if err := convStore.SaveWorkspace(ctx, ws); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, map[string]string{"active": conv.ID})
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess("Active: "+conv.Title))
	return nil
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}
	conv, err := findConversation(ws, args[0])
	if err != nil {
		return err
	}
	if ws.Len() == 1 {
		return fmt.Errorf("%w: create another one first", model.ErrLastConversation)
	}
	if err := Confirm(cmd.ErrOrStderr(), fmt.Sprintf("Delete %q", conv.Title), ConfirmationOptions{Yes: convYes, JSONMode: jsonOutput}); err != nil {
		return err
	}
	if err := ws.DeleteConversation(conv.ID); err != nil {
		return err
	}
	if err := convStore.SaveWorkspace(ctx, ws); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd, map[string]string{"deleted": conv.ID, "active": ws.ActiveID()})
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess(fmt.Sprintf("Deleted %s. Active: %s", conv.Title, ws.Active().Title)))
	return nil
}
