// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/util"
)

var (
	docsDocType string
	docsLimit   int
	docsYes     bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Inspect or clear the document store",
	Long: `Inspect the chunks stored by the backend.

Subcommands:
  count   number of stored chunks
  list    chunk previews
  types   document types in the store
  clear   delete stored chunks

Examples:
  lexora docs count
  lexora docs list --doc-type ipc -l 20
  lexora docs clear --doc-type draft --yes`,
	RunE: runDocsCount,
}

var docsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of stored chunks",
	Args:  cobra.NoArgs,
	RunE:  runDocsCount,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored chunk previews",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List document types",
	Args:  cobra.NoArgs,
	RunE:  runDocsTypes,
}

var docsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete stored chunks (all, or one --doc-type)",
	Args:  cobra.NoArgs,
	RunE:  runDocsClear,
}

func init() {
	docsCmd.PersistentFlags().StringVarP(&docsDocType, "doc-type", "t", "", "limit to one document type")
	docsListCmd.Flags().IntVarP(&docsLimit, "limit", "l", api.DefaultListLimit, "max chunks to list")
	docsClearCmd.Flags().BoolVarP(&docsYes, "yes", "y", false, "do not ask for confirmation")

	docsCmd.AddCommand(docsCountCmd)
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsTypesCmd)
	docsCmd.AddCommand(docsClearCmd)
}

func runDocsCount(cmd *cobra.Command, args []string) error {
	n, err := client.DocumentCount(commandContext(cmd), docsDocType)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, map[string]any{"total_chunks": n, "doc_type": docsDocType})
	}
	label := "Stored chunks"
	if docsDocType != "" {
		label += " (" + docsDocType + ")"
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderField(label, util.FormatCount(n)))
	return nil
}

func runDocsList(cmd *cobra.Command, args []string) error {
	list, err := client.ListDocuments(commandContext(cmd), docsLimit, docsDocType)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, list)
	}

	out := cmd.OutOrStdout()
	if len(list.Documents) == 0 {
		fmt.Fprintln(out, "No documents stored. Upload one with 'lexora upload <file.pdf>'.")
		return nil
	}
	width := TerminalWidth()
	for _, doc := range list.Documents {
		fmt.Fprintf(out, "%s %s\n",
			TitleStyle.Render(fmt.Sprintf("%s #%d", doc.Source, doc.ChunkNumber)),
			DimStyle.Render("["+doc.DocType+"]"))
		if preview := util.CollapseSpace(doc.TextPreview); preview != "" {
			fmt.Fprintln(out, "  "+util.FitWidth(preview, width-2))
		}
	}
	fmt.Fprintln(out, DimStyle.Render(fmt.Sprintf("Showing %s of %s chunks",
		util.FormatCount(list.Showing), util.FormatCount(list.TotalChunks))))
	return nil
}

func runDocsTypes(cmd *cobra.Command, args []string) error {
	types, err := client.DocumentTypes(commandContext(cmd))
	if err != nil {
		return err
	}
	if jsonOutput {
		if types == nil {
			types = []string{}
		}
		return printJSON(cmd, map[string]any{"document_types": types})
	}
	out := cmd.OutOrStdout()
	if len(types) == 0 {
		fmt.Fprintln(out, "No document types yet.")
		return nil
	}
	for _, t := range types {
		fmt.Fprintln(out, t)
	}
	return nil
}

func runDocsClear(cmd *cobra.Command, args []string) error {
	action := "Delete ALL stored chunks"
	if docsDocType != "" {
		action = "Delete stored chunks of type " + docsDocType
	}
	if err := Confirm(cmd.ErrOrStderr(), action, ConfirmationOptions{Yes: docsYes, JSONMode: jsonOutput}); err != nil {
		return err
	}

	msg, err := client.ClearDocuments(commandContext(cmd), docsDocType)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, map[string]any{"message": msg, "doc_type": docsDocType})
	}
	if msg == "" {
		msg = "Documents cleared"
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess(msg))
	return nil
}
