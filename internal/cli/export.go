// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/export"
	"github.com/jeranaias/lexora-tui/internal/util"
)

var (
	exportFormat     string
	exportOutput     string
	exportDir        string
	exportNoSources  bool
	exportNoMetadata bool
)

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Export a conversation to Markdown, JSON or YAML",
	Long: `Export a conversation (default: the active one).

Without -o the file is written to --dir with a name built from the title
and the current time. Use "-o -" to print to stdout.

Examples:
  lexora export
  lexora export 3f2a --format json -o bail.json
  lexora export --format yaml -o - | less`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "output format: "+strings.Join(export.Formats(), ", "))
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, - for stdout")
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "directory for generated file names")
	exportCmd.Flags().BoolVar(&exportNoSources, "no-sources", false, "leave out source citations")
	exportCmd.Flags().BoolVar(&exportNoMetadata, "no-metadata", false, "leave out the Markdown frontmatter")
}

func runExport(cmd *cobra.Command, args []string) error {
	opts := &export.Options{
		OutputDir:       expandHome(exportDir),
		IncludeMetadata: !exportNoMetadata,
		IncludeSources:  !exportNoSources,
	}
	exporter, err := export.ForFormat(exportFormat, opts)
	if err != nil {
		return NewValidationError("format", exportFormat, "use one of "+strings.Join(export.Formats(), ", "))
	}

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

	var path string
	switch exportOutput {
	case "-":
		data, err := exporter.Export(conv)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	case "":
		if path, err = export.ExportToFile(conv, exporter, opts); err != nil {
			return err
		}
	default:
		data, err := exporter.Export(conv)
		if err != nil {
			return err
		}
		path = expandHome(exportOutput)
		if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	}

	logger.Info("conversation exported", "id", conv.ID, "format", exportFormat, "path", path)
	if jsonOutput {
		return printJSON(cmd, map[string]string{"id": conv.ID, "path": path, "mime_type": exporter.MimeType()})
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess(fmt.Sprintf("Exported %q to %s", conv.Title, path)))
	return nil
}
