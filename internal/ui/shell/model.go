// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lexora-tui/internal/composer"
	"github.com/jeranaias/lexora-tui/internal/config"
	"github.com/jeranaias/lexora-tui/internal/model"
	"github.com/jeranaias/lexora-tui/internal/render"
	"github.com/jeranaias/lexora-tui/internal/ui/components"
	"github.com/jeranaias/lexora-tui/internal/ui/styles"
	"github.com/jeranaias/lexora-tui/internal/upload"
)

// saveTimeout bounds one workspace write.
const saveTimeout = 5 * time.Second

// =============================================================================
// FOCUS AND MODE
// =============================================================================

// Focus is the pane receiving keys.
type Focus int

const (
	FocusComposer Focus = iota
	FocusSidebar
	FocusAnswer
)

// Mode is an input prompt shown above the composer.
type Mode int

const (
	ModeNormal Mode = iota
	ModeRename
	ModeUpload
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options wires the shell to its collaborators.
type Options struct {
	Config    *config.Config
	Theme     *styles.Theme
	Workspace *model.Workspace

	Client Querier
	// Store persists the workspace after each change; nil keeps it in memory.
	Store Persister
	// Uploader enables the upload prompt; nil disables it.
	Uploader *upload.Uploader
	// Watcher, when set, has its results shown as toasts.
	Watcher *upload.Watcher
	// WatchDir labels the watched folder in the status bar.
	WatchDir string

	// User is the signed-in display name.
	User string

	// Renderer overrides the answer renderer (tests use a plain one).
	Renderer *render.Renderer
	Logger   *slog.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	cfg    *config.Config
	theme  *styles.Theme
	ws     *model.Workspace
	client Querier
	store  Persister
	log    *slog.Logger

	uploader *upload.Uploader
	watcher  *upload.Watcher

	composer *composer.Composer
	renderer *render.Renderer
	answer   *render.AnswerView
	viewport viewport.Model
	spinner  spinner.Model
	prompt   textinput.Model
	help     help.Model
	header   *components.Header
	status   *components.StatusBar
	toasts   *components.ToastManager
	keys     KeyMap

	focus       Focus
	mode        Mode
	cursor      int // sidebar cursor
	sidebarOpen bool
	showHelp    bool
	toastTicker bool
	uploading   bool

	width  int
	height int

	// pending is the question in flight, shown with the loading line.
	pending *model.QuerySubmitted
	// failedIn is the conversation whose last query failed.
	failedIn string

	// rendered caches answer views of settled exchanges at the current width.
	rendered map[string]string
	// static is the panel content without the loading line.
	static string
}

// New creates the shell model.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewThemeNamed(cfg.UI.Theme)
	}
	ws := opts.Workspace
	if ws == nil {
		ws = model.NewWorkspace()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.NewRenderer(render.Options{
			Theme:       theme,
			WordWrap:    cfg.UI.WordWrap,
			ShowSources: cfg.UI.ShowSources,
		})
	}

	c := composer.New(cfg.Query.NChunks, theme)
	c.SetDocType(cfg.Query.DocType)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Loading

	prompt := textinput.New()
	prompt.CharLimit = 512

	header := components.NewHeader(theme)
	header.User = opts.User

	status := components.NewStatusBar(theme)
	if opts.WatchDir != "" {
		status.Watching = filepath.Base(opts.WatchDir)
	}

	m := &Model{
		cfg:         cfg,
		theme:       theme,
		ws:          ws,
		client:      opts.Client,
		store:       opts.Store,
		log:         logger.With("component", "shell"),
		uploader:    opts.Uploader,
		watcher:     opts.Watcher,
		composer:    c,
		renderer:    renderer,
		answer:      render.NewAnswerView(),
		viewport:    viewport.New(80, 20),
		spinner:     sp,
		prompt:      prompt,
		help:        help.New(),
		header:      header,
		status:      status,
		toasts:      components.NewToastManager(),
		keys:        DefaultKeyMap(),
		sidebarOpen: cfg.UI.Sidebar,
		width:       80,
		height:      24,
		rendered:    make(map[string]string),
	}
	m.cursor = max(ws.ActiveIndex(), 0)
	m.refresh(true)
	return m
}

// Init starts the composer cursor and the watcher loop.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.composer.Focus()}
	if m.watcher != nil {
		cmds = append(cmds, waitForWatch(m.watcher.Results()))
	}
	return tea.Batch(cmds...)
}

// Workspace returns the owned workspace.
func (m *Model) Workspace() *model.Workspace {
	return m.ws
}

// Focus returns the focused pane.
func (m *Model) Focus() Focus {
	return m.focus
}

// Mode returns the active prompt mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// =============================================================================
// LAYOUT
// =============================================================================

// sidebarWidth is zero when the sidebar is hidden. On narrow terminals an
// open sidebar takes the whole body.
func (m *Model) sidebarWidth() int {
	if !m.sidebarOpen {
		return 0
	}
	layout := styles.LayoutFor(m.width)
	if layout == styles.LayoutNarrow {
		return m.width
	}
	return layout.SidebarWidth()
}

// SidebarVisible reports whether the sidebar is drawn.
func (m *Model) SidebarVisible() bool {
	return m.sidebarWidth() > 0
}

// mainVisible is false while a narrow-screen sidebar covers the panel.
func (m *Model) mainVisible() bool {
	return m.sidebarWidth() < m.width
}

func (m *Model) mainWidth() int {
	return max(m.width-m.sidebarWidth(), 0)
}

// panelWidth is the text width inside the answer panel.
func (m *Model) panelWidth() int {
	return max(m.mainWidth()-2, 10)
}

// layout sizes the viewport to what is left after fixed rows.
func (m *Model) layout() {
	m.header.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.composer.SetWidth(m.width)
	m.prompt.Width = max(m.width-20, 10)
	m.help.Width = m.width

	m.viewport.Width = m.mainWidth()
	m.viewport.Height = max(m.bodyHeight(), 1)
}

func (m *Model) bodyHeight() int {
	fixed := 1 + m.composer.Height() + 1 // header, composer, status
	if m.mode != ModeNormal {
		fixed++
	}
	if m.showHelp {
		fixed += lipgloss.Height(m.help.View(m.keys))
	}
	if m.toasts.HasToasts() {
		fixed += lipgloss.Height(components.RenderToastStack(m.toasts.Toasts(), m.width))
	}
	return max(m.height-fixed, 3)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persist writes the workspace. Failures are logged and reported as a toast.
func (m *Model) persist() tea.Cmd {
	if m.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := m.store.SaveWorkspace(ctx, m.ws); err != nil {
		m.log.Error("save workspace", "error", err)
		return m.toast(components.ToastKindError, "Could not save conversations: "+err.Error())
	}
	return nil
}

// toast shows a message and starts the expiry ticker if idle.
func (m *Model) toast(kind components.ToastKind, msg string) tea.Cmd {
	m.toasts.Add(kind, msg)
	m.layout()
	if m.toastTicker {
		return nil
	}
	m.toastTicker = true
	return components.ToastTickCmd()
}
