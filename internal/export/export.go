// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/util"
)

// ErrNilConversation is returned when there is nothing to export.
var ErrNilConversation = errors.New("conversation is nil")

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation to one output format.
type Exporter interface {
	Export(conv *model.Conversation) ([]byte, error)

	// FileExtension includes the leading dot.
	FileExtension() string

	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where ExportToFile writes. Default: current directory.
	OutputDir string

	// IncludeMetadata adds the frontmatter block to Markdown.
	IncludeMetadata bool

	// IncludeSources lists citations under each answer.
	IncludeSources bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:       ".",
		IncludeMetadata: true,
		IncludeSources:  true,
	}
}

// Formats lists the accepted format names.
func Formats() []string {
	return []string{"md", "json", "yaml"}
}

// ForFormat returns the exporter for a format name. Aliases: markdown, yml.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	case "yaml", "yml":
		return NewYAMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use %s)", format, strings.Join(Formats(), ", "))
	}
}

// ExportToFile exports conv into opts.OutputDir and returns the file path.
// The file name is derived from the title and the current time.
func ExportToFile(conv *model.Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("lexora_%s_%s%s",
		sanitizeFilename(conv.Title),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}

	outputPath := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// RECORD
// =============================================================================

// Record is the structured form shared by the JSON and YAML exporters.
type Record struct {
	ID        string           `json:"id" yaml:"id"`
	Title     string           `json:"title" yaml:"title"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" yaml:"updated_at"`
	Exchanges []ExchangeRecord `json:"exchanges" yaml:"exchanges"`
}

// ExchangeRecord is one question and its resolved answer.
type ExchangeRecord struct {
	ID        string         `json:"id" yaml:"id"`
	Question  string         `json:"question" yaml:"question"`
	Answer    string         `json:"answer,omitempty" yaml:"answer,omitempty"`
	Error     string         `json:"error,omitempty" yaml:"error,omitempty"`
	Sources   []model.Source `json:"sources,omitempty" yaml:"sources,omitempty"`
	Payload   any            `json:"payload,omitempty" yaml:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

// NewRecord flattens conv for structured export.
func NewRecord(conv *model.Conversation, includeSources bool) (*Record, error) {
	if conv == nil {
		return nil, ErrNilConversation
	}

	rec := &Record{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Exchanges: make([]ExchangeRecord, 0, len(conv.Exchanges)),
	}
	for _, ex := range conv.Exchanges {
		er := ExchangeRecord{
			ID:        ex.ID,
			Question:  ex.Question,
			CreatedAt: ex.CreatedAt,
		}
		if text, ok := ex.Payload.PrimaryText(); ok {
			er.Answer = text.Body
		} else {
			er.Error = ex.Payload.ErrorText()
		}
		if includeSources {
			er.Sources = ex.Payload.Sources()
		}
		if !ex.Payload.IsZero() {
			if err := json.Unmarshal(ex.Payload.Raw(), &er.Payload); err != nil {
				return nil, fmt.Errorf("exchange %s: %w", ex.ID, err)
			}
		}
		rec.Exchanges = append(rec.Exchanges, er)
	}
	return rec, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	s = util.PrefixRunes(strings.TrimSuffix(s, util.Ellipsis), 50)

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r), r < 32, r == 127:
			b.WriteRune('-')
		case r == ' ' || r == '\t':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	if out := strings.Trim(b.String(), "_-."); out != "" {
		return out
	}
	return "conversation"
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
