// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/lexora-tui/internal/model"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations as a readable transcript.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

type frontmatter struct {
	Title     string `yaml:"title"`
	ID        string `yaml:"id"`
	Created   string `yaml:"created"`
	Updated   string `yaml:"updated"`
	Exchanges int    `yaml:"exchanges"`
	Exported  string `yaml:"exported"`
	Generator string `yaml:"generator"`
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, ErrNilConversation
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		fm, err := yaml.Marshal(frontmatter{
			Title:     conv.Title,
			ID:        conv.ID,
			Created:   conv.CreatedAt.Format(time.RFC3339),
			Updated:   conv.UpdatedAt.Format(time.RFC3339),
			Exchanges: conv.Len(),
			Exported:  time.Now().Format(time.RFC3339),
			Generator: "lexora",
		})
		if err != nil {
			return nil, fmt.Errorf("frontmatter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(fm)
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(conv.Title))

	if conv.Len() == 0 {
		sb.WriteString("_No questions yet._\n")
		return []byte(sb.String()), nil
	}

	for i, ex := range conv.Exchanges {
		if i > 0 {
			sb.WriteString("---\n\n")
		}
		e.writeExchange(&sb, ex)
	}

	fmt.Fprintf(&sb, "---\n\n*Exported from Lexora on %s*\n", formatTimestamp(time.Now()))
	return []byte(sb.String()), nil
}

func (e *MarkdownExporter) FileExtension() string { return ".md" }

func (e *MarkdownExporter) MimeType() string { return "text/markdown" }

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func (e *MarkdownExporter) writeExchange(sb *strings.Builder, ex model.Exchange) {
	fmt.Fprintf(sb, "### Question <sub>%s</sub>\n\n", formatShortTimestamp(ex.CreatedAt))
	sb.WriteString(quote(ex.Question))
	sb.WriteString("\n\n")

	text, ok := ex.Payload.PrimaryText()
	if !ok {
		msg := ex.Payload.ErrorText()
		if msg == "" {
			msg = "No answer found in the response."
		}
		fmt.Fprintf(sb, "### Unable to Answer\n\n%s\n\n", msg)
		return
	}

	sb.WriteString("### Answer\n\n")
	if text.JSON {
		fmt.Fprintf(sb, "```json\n%s\n```\n\n", text.Body)
	} else {
		sb.WriteString(strings.TrimSpace(text.Body))
		sb.WriteString("\n\n")
	}

	if !e.options.IncludeSources {
		return
	}
	sources := ex.Payload.Sources()
	if len(sources) == 0 {
		return
	}
	sb.WriteString("**Sources**\n\n")
	for i, src := range sources {
		fmt.Fprintf(sb, "%d. **%s**\n", i+1, escapeMarkdown(src.Label))
		if body := strings.TrimSpace(src.Body); body != "" {
			for _, line := range strings.Split(body, "\n") {
				sb.WriteString("   > ")
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
	}
	sb.WriteString("\n")
}

// quote renders text as a Markdown blockquote.
func quote(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

// escapeMarkdown escapes characters that break headings and list labels.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		"#", "\\#",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
	)
	return r.Replace(s)
}
