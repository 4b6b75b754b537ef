package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comfyq/internal/comfyui"
	"github.com/five82/comfyq/internal/config"
	"github.com/five82/comfyq/internal/logtail"
	"github.com/five82/comfyq/internal/prefs"
	"github.com/five82/comfyq/internal/state"
	"github.com/five82/comfyq/internal/storage"
)

// View is the active screen.
type View int

const (
	ViewQueue View = iota
	ViewSystem
	ViewHistory
	ViewLogs
)

var viewNames = []string{"queue", "system", "history", "logs"}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return "queue"
}

func parseView(name string) View {
	for i, n := range viewNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return View(i)
		}
	}
	return ViewQueue
}

const (
	logTailLines   = 500
	actionTimeout  = 10 * time.Second
	sparklineLimit = 120
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    comfyui.Controller
	Store     *state.Store
	Samples   storage.Storage
	Refresh   func(context.Context) error
	Config    *config.Config
	PollTick  time.Duration
	ThemeName string
	View      string
	PrefsPath string
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx       context.Context
	client    comfyui.Controller
	store     *state.Store
	samples   storage.Storage
	refresh   func(context.Context) error
	config    *config.Config
	prefsPath string
	pollTick  time.Duration
	keys      keyMap

	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	viewport    viewport.Model

	snapshot state.Snapshot
	depth    []storage.Sample
	logLines []string
	info     *comfyui.ServerInfo

	showHelp         bool
	confirmInterrupt bool
	notice           string
	noticeIsError    bool
}

// New creates the model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	return Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		samples:     opts.Samples,
		refresh:     opts.Refresh,
		config:      opts.Config,
		prefsPath:   opts.PrefsPath,
		pollTick:    pollTick,
		keys:        defaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		currentView: parseView(opts.View),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick), m.fetchCmd()}
	if m.client != nil {
		cmds = append(cmds, serverInfoCmd(m.ctx, m.client))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.contentWidth(), m.contentHeight())
			m.ready = true
		} else {
			m.viewport.Width = m.contentWidth()
			m.viewport.Height = m.contentHeight()
		}
		m.syncViewport()
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tickCmd(m.pollTick))

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.depth = msg.depth
		if m.currentView == ViewLogs {
			m.logLines = msg.logs
		}
		m.syncViewport()
		return m, nil

	case serverInfoMsg:
		if msg.err == nil {
			info := msg.info
			m.info = &info
		} else {
			m.info = nil
		}
		return m, nil

	case refreshMsg:
		if msg.err != nil {
			m.setNotice("Refresh failed: "+comfyui.Classify(msg.err), true)
		} else {
			m.setNotice("Refreshed", false)
		}
		return m, m.fetchCmd()

	case interruptMsg:
		switch {
		case msg.err != nil:
			m.setNotice("Interrupt failed: "+comfyui.Classify(msg.err), true)
		case msg.result.Decoded:
			m.setNotice("Interrupt accepted", false)
		default:
			m.setNotice("Interrupt sent", false)
		}
		return m, m.refreshCmd()
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.confirmInterrupt {
		return m.renderConfirm()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderBox(m.viewTitle(), m.viewport.View(), m.width, m.height-2))
	return b.String()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.confirmInterrupt {
		m.confirmInterrupt = false
		if key.Matches(msg, m.keys.Confirm) && m.client != nil {
			m.setNotice("Interrupting...", false)
			return m, interruptCmd(m.ctx, m.client)
		}
		m.setNotice("Interrupt cancelled", false)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.syncViewport()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m.switchView(View((int(m.currentView) + 1) % len(viewNames)))
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(View((int(m.currentView) + len(viewNames) - 1) % len(viewNames)))
	case key.Matches(msg, m.keys.ViewQueue):
		return m.switchView(ViewQueue)
	case key.Matches(msg, m.keys.ViewSystem):
		return m.switchView(ViewSystem)
	case key.Matches(msg, m.keys.ViewHistory):
		return m.switchView(ViewHistory)
	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)
	case key.Matches(msg, m.keys.Interrupt):
		if m.client == nil {
			return m, nil
		}
		m.confirmInterrupt = true
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.setNotice("Refreshing...", false)
		return m, m.refreshCmd()
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	if v == m.currentView {
		return m, nil
	}
	m.currentView = v
	m.savePrefs()
	m.syncViewport()
	m.viewport.GotoTop()
	if v == ViewLogs {
		m.viewport.GotoBottom()
		return m, m.fetchCmd()
	}
	return m, nil
}

func (m *Model) savePrefs() {
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, View: m.currentView.String()})
}

func (m *Model) setNotice(text string, isError bool) {
	m.notice = text
	m.noticeIsError = isError
}

// syncViewport re-renders the active view into the viewport.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderContent())
	if m.currentView == ViewLogs && atBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) contentWidth() int {
	return max(m.width-2, 0)
}

// contentHeight leaves room for header, command bar and box borders.
func (m Model) contentHeight() int {
	return max(m.height-4, 0)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewSystem:
		return m.renderSystem()
	case ViewHistory:
		return m.renderHistory()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderQueue()
	}
}

func (m Model) viewTitle() string {
	switch m.currentView {
	case ViewSystem:
		return "System"
	case ViewHistory:
		return "History"
	case ViewLogs:
		return "Logs"
	default:
		return "Queue"
	}
}

func (m Model) logPath() string {
	if m.config == nil {
		return ""
	}
	return m.config.LogFile
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot state.Snapshot
	depth    []storage.Sample
	logs     []string
}

type serverInfoMsg struct {
	info comfyui.ServerInfo
	err  error
}

type refreshMsg struct{ err error }

type interruptMsg struct {
	result comfyui.InterruptResult
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchCmd() tea.Cmd {
	store, samples := m.store, m.samples
	logPath := ""
	if m.currentView == ViewLogs {
		logPath = m.logPath()
	}
	return func() tea.Msg {
		var msg snapshotMsg
		if store != nil {
			msg.snapshot = store.Snapshot()
		}
		if samples != nil {
			msg.depth, _ = samples.Latest(sparklineLimit)
		}
		if logPath != "" {
			msg.logs, _ = logtail.Read(logPath, logTailLines)
		}
		return msg
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, refresh, client := m.ctx, m.refresh, m.client
	cmds := []tea.Cmd{}
	if refresh != nil {
		cmds = append(cmds, func() tea.Msg {
			callCtx, cancel := context.WithTimeout(ctx, actionTimeout)
			defer cancel()
			return refreshMsg{err: refresh(callCtx)}
		})
	}
	if client != nil {
		cmds = append(cmds, serverInfoCmd(ctx, client))
	}
	return tea.Batch(cmds...)
}

func serverInfoCmd(ctx context.Context, client comfyui.Controller) tea.Cmd {
	return func() tea.Msg {
		callCtx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		info, err := client.ServerInfo(callCtx)
		return serverInfoMsg{info: info, err: err}
	}
}

func interruptCmd(ctx context.Context, client comfyui.Controller) tea.Cmd {
	return func() tea.Msg {
		callCtx, cancel := context.WithTimeout(ctx, actionTimeout)
		defer cancel()
		result, err := client.Interrupt(callCtx)
		return interruptMsg{result: result, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or
// the context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
