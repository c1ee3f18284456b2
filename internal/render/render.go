// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/ui/styles"
	"github.com/jeranaias/lexora-tui/internal/util"
)

// User-facing text.
const (
	LoadingText   = "Searching for answer..."
	EmptyText     = "Upload a document and ask a question"
	UnableTitle   = "Unable to Answer"
	UnableGeneric = "No answer found in the response."
	AnswerTitle   = "Simplified Answer"
	SourcesTitle  = "Sources"
	CopyLabel     = "Copy"
	CopiedLabel   = "Copied"
)

// State is the per-answer view state.
type State struct {
	// Expanded reports whether the source at an index shows its body.
	Expanded map[int]bool
	// Cursor is the highlighted source, -1 for none.
	Cursor int
	// Copied shows the copy confirmation.
	Copied bool
	// Spinner is the current spinner frame for the loading line.
	Spinner string
}

// Options configures a Renderer.
type Options struct {
	Theme *styles.Theme
	// MarkdownStyle is a glamour standard style ("dark", "light", "notty");
	// empty follows the theme.
	MarkdownStyle string
	// Formatter is the chroma formatter name (default "terminal256").
	Formatter string
	// WordWrap caps the text width (default 100).
	WordWrap int
	// ShowSources lists sources under the answer (default true via NewRenderer).
	ShowSources bool
}

// Renderer renders payloads. Markdown renderers are cached per width.
type Renderer struct {
	opts Options

	mu       sync.Mutex
	markdown map[int]*glamour.TermRenderer
}

// NewRenderer creates a Renderer, filling zero-value options.
func NewRenderer(opts Options) *Renderer {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "light"
		if opts.Theme.IsDark {
			opts.MarkdownStyle = "dark"
		}
	}
	if opts.Formatter == "" {
		opts.Formatter = "terminal256"
	}
	if opts.WordWrap <= 0 {
		opts.WordWrap = 100
	}
	return &Renderer{opts: opts, markdown: map[int]*glamour.TermRenderer{}}
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Render renders p with a shared default renderer and no view state.
func Render(p model.AnswerPayload, loading bool, width int) string {
	defaultOnce.Do(func() {
		defaultRenderer = NewRenderer(Options{ShowSources: true})
	})
	return defaultRenderer.Render(p, loading, width, State{Cursor: -1})
}

// Render produces the view for one answer.
func (r *Renderer) Render(p model.AnswerPayload, loading bool, width int, st State) string {
	t := r.opts.Theme
	if width <= 0 {
		width = 80
	}

	if loading {
		spin := st.Spinner
		if spin == "" {
			spin = styles.StatusIndicators.Pending
		}
		return t.Loading.Render(spin + " " + LoadingText)
	}
	if p.IsZero() {
		return t.EmptyState.Render(EmptyText)
	}

	text, ok := p.PrimaryText()
	if !ok {
		return r.renderUnable(p, width)
	}

	var b strings.Builder
	b.WriteString(r.header(width, st.Copied))
	b.WriteString("\n")
	if text.JSON {
		b.WriteString(highlight(text.Body, "json", r.opts.Formatter, "monokai"))
	} else {
		b.WriteString(strings.Trim(r.markdownText(text.Body, width), "\n"))
	}

	if r.opts.ShowSources {
		if sources := p.Sources(); len(sources) > 0 {
			b.WriteString("\n")
			b.WriteString(r.renderSources(sources, width, st))
		}
	}
	return b.String()
}

func (r *Renderer) header(width int, copied bool) string {
	t := r.opts.Theme
	title := t.AnswerHeader.Render(AnswerTitle)
	button := t.CopyButton.Render("[" + CopyLabel + "]")
	if copied {
		button = t.CopiedButton.Render("[" + CopiedLabel + "]")
	}
	gap := width - lipgloss.Width(title) - lipgloss.Width(button)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + button
}

func (r *Renderer) renderUnable(p model.AnswerPayload, width int) string {
	t := r.opts.Theme
	msg := p.ErrorText()
	if msg == "" {
		msg = UnableGeneric
	}
	body := t.ErrorTitle.Render(UnableTitle) + "\n" + msg
	return t.ErrorCard.Width(max(width-2, 20)).Render(body)
}

func (r *Renderer) renderSources(sources []model.Source, width int, st State) string {
	t := r.opts.Theme
	var b strings.Builder
	b.WriteString(t.SourcesHeader.Render(fmt.Sprintf("%s (%d)", SourcesTitle, len(sources))))
	for i, src := range sources {
		marker := "+"
		if st.Expanded[i] {
			marker = "-"
		}
		line := fmt.Sprintf("%s %d. %s", marker, i+1, util.FitWidth(src.Label, max(width-8, 10)))
		if i == st.Cursor {
			line = t.SidebarItemCursor.Render(line)
		} else {
			line = t.SourceLabel.Render(line)
		}
		b.WriteString("\n" + line)
		if st.Expanded[i] && src.Body != "" {
			b.WriteString("\n" + t.SourceBody.Width(max(width-4, 20)).Render(src.Body))
		}
	}
	return b.String()
}

// markdownText renders Markdown at the given width, falling back to the raw
// text when glamour fails.
func (r *Renderer) markdownText(text string, width int) string {
	wrap := min(max(width-2, 20), r.opts.WordWrap)

	r.mu.Lock()
	md, ok := r.markdown[wrap]
	if !ok {
		var err error
		md, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.opts.MarkdownStyle),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			md = nil
		}
		r.markdown[wrap] = md
	}
	r.mu.Unlock()

	if md == nil {
		return text
	}
	out, err := md.Render(text)
	if err != nil {
		return text
	}
	return out
}

// Markdown renders text for terminal output, as used by the CLI.
func (r *Renderer) Markdown(text string, width int) string {
	return r.markdownText(text, width)
}

// =============================================================================
// PLAIN TEXT
// =============================================================================

// Plain renders p without styling, for pipes and logs.
func Plain(p model.AnswerPayload) string {
	if p.IsZero() {
		return EmptyText
	}
	text, ok := p.PrimaryText()
	if !ok {
		msg := p.ErrorText()
		if msg == "" {
			msg = UnableGeneric
		}
		return UnableTitle + ": " + msg
	}

	var b strings.Builder
	b.WriteString(text.Body)
	if sources := p.Sources(); len(sources) > 0 {
		b.WriteString("\n\n" + SourcesTitle + ":\n")
		for i, src := range sources {
			fmt.Fprintf(&b, "%d. %s\n", i+1, src.Label)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
