package app

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	insightsdto "tally/internal/modules/insights/dto"
	plugindto "tally/internal/modules/plugin/dto"
	trackerdto "tally/internal/modules/tracker/dto"
	transferdto "tally/internal/modules/transfer/dto"
	"tally/internal/ui/components"
	"tally/internal/ui/theme"
	insightsview "tally/internal/ui/views/insights"
	pluginsview "tally/internal/ui/views/plugins"
	sessionsview "tally/internal/ui/views/sessions"
	stopwatchview "tally/internal/ui/views/stopwatch"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type trackerPort interface {
	Start(ctx context.Context, input trackerdto.StartInput) (trackerdto.SessionOutput, error)
	Pause(ctx context.Context) (trackerdto.SessionOutput, error)
	Resume(ctx context.Context) (trackerdto.SessionOutput, error)
	Stop(ctx context.Context, input trackerdto.StopInput) (trackerdto.SessionOutput, error)
	Abort(ctx context.Context) (trackerdto.SessionOutput, error)
	GetActive(ctx context.Context) (trackerdto.SessionOutput, error)
	ListSessions(ctx context.Context) ([]trackerdto.SessionOutput, error)
	ListTags(ctx context.Context) ([]trackerdto.TagOutput, error)
	CreateTag(ctx context.Context, name string) (trackerdto.TagOutput, error)
	DeleteTag(ctx context.Context, name string) error
}

type transferPort interface {
	Import(ctx context.Context, content string) (transferdto.ImportOutcome, error)
	Export(ctx context.Context) (transferdto.ExportOutput, error)
}

type insightsPort interface {
	TagReport(ctx context.Context, input insightsdto.ReportInput) (insightsdto.TagReport, error)
}

type pluginPort interface {
	ListCommands(ctx context.Context, pluginName string) ([]plugindto.CommandInfo, error)
	Report(ctx context.Context, input plugindto.ExecuteInput) (plugindto.ExecuteOutput, error)
	Export(ctx context.Context, input plugindto.ExecuteInput) (plugindto.ExecuteOutput, error)
	PrepareTTY(ctx context.Context, input plugindto.TTYPrepareInput) (plugindto.TTYPrepareOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabStopwatch tabID = iota
	tabSessions
	tabInsights
	tabPlugins
	tabCount
)

var tabLabels = [tabCount]string{
	"Stopwatch", "Sessions", "Insights", "Plugins",
}

// ─── async messages ───────────────────────────────────────────────────────────

type tagMutatedMsg struct {
	tag trackerdto.TagOutput
	op  string // "created" or "deleted"
	err error
}

type importDoneMsg struct {
	path    string
	outcome transferdto.ImportOutcome
	err     error
}

type exportDoneMsg struct {
	path     string
	exported int
	err      error
}

type pluginTTYReadyMsg struct {
	plan plugindto.TTYPrepareOutput
	err  error
}

type pluginTTYDoneMsg struct{ err error }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Enter   key.Binding
	Pause   key.Binding
	StopKey key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Pause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		StopKey: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop session")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter},
		{k.Pause, k.StopKey},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay, and the command palette. All business logic is delegated to port
// interfaces; all rendering is delegated to sub-views.
type Model struct {
	dataDir string

	// ports used at this orchestration level only
	tracker  trackerPort
	transfer transferPort
	plugin   pluginPort

	// sub-views (one per tab)
	watchView    stopwatchview.Model
	sessionsView sessionsview.Model
	insightsView insightsview.Model
	pluginView   pluginsview.Model

	// global UI state
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	running   bool
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(
	dataDir string,
	tracker trackerPort,
	transfer transferPort,
	insights insightsPort,
	plugin pluginPort,
) Model {
	var pluginV pluginsview.Model
	if plugin != nil {
		pluginV = pluginsview.New(pluginPortBridge{p: plugin}, dataDir)
	} else {
		pluginV = pluginsview.New(nil, dataDir)
	}

	return Model{
		dataDir:      dataDir,
		tracker:      tracker,
		transfer:     transfer,
		plugin:       plugin,
		watchView:    stopwatchview.New(trackerPortBridge{p: tracker}),
		sessionsView: sessionsview.New(sessionsPortBridge{p: tracker}),
		insightsView: insightsview.New(insights),
		pluginView:   pluginV,
		activeTab:    tabStopwatch,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.watchView.Init(),
		m.sessionsView.Init(),
		m.insightsView.Init(),
		m.pluginView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	// SessionChangedMsg is produced by the stopwatch view but bubbles up
	// through the top level so we can refresh the sessions tab and keep the
	// plugin context current.
	case stopwatchview.SessionChangedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
		} else {
			m.status = "session " + msg.Action
			switch msg.Action {
			case "started", "resumed", "recovered":
				m.running = true
				if msg.Session.Tag != nil {
					m.pluginView.SetContext(msg.Session.Tag.Name, msg.Session.ID)
				}
			case "stopped", "aborted":
				m.running = false
				cmds = append(cmds, m.sessionsView.Reload())
			}
		}
		var cmd tea.Cmd
		m.watchView, cmd = m.watchView.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	// View-specific async results are routed to their owning view directly:
	// they may arrive while another tab is active.
	case stopwatchview.ActiveLoadedMsg, stopwatchview.TagsLoadedMsg:
		var cmd tea.Cmd
		m.watchView, cmd = m.watchView.Update(msg)
		if active, ok := msg.(stopwatchview.ActiveLoadedMsg); ok && active.Err == nil && active.Session.ID != "" {
			m.running = true
			m.status = "session recovered: " + active.Session.Title
			if active.Session.Tag != nil {
				m.pluginView.SetContext(active.Session.Tag.Name, active.Session.ID)
			}
		}
		return m, cmd

	case sessionsview.LoadedMsg:
		var cmd tea.Cmd
		m.sessionsView, cmd = m.sessionsView.Update(msg)
		return m, cmd

	case insightsview.ReportLoadedMsg:
		var cmd tea.Cmd
		m.insightsView, cmd = m.insightsView.Update(msg)
		return m, cmd

	case pluginsview.CommandsLoadedMsg, pluginsview.ExecDoneMsg:
		var cmd tea.Cmd
		m.pluginView, cmd = m.pluginView.Update(msg)
		return m, cmd

	case importDoneMsg:
		if msg.err != nil {
			m.status = "import failed: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("imported %d of %d rows from %s (%d duplicates skipped)",
			msg.outcome.Succeeded, msg.outcome.RowsSeen, msg.path, len(msg.outcome.Duplicates))
		return m, m.sessionsView.Reload()

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("exported %d sessions to %s", msg.exported, msg.path)
		}

	case tagMutatedMsg:
		if msg.err != nil {
			m.status = "tag " + msg.op + " failed: " + msg.err.Error()
		} else if msg.op == "created" {
			m.status = fmt.Sprintf("tag created: %s (%s)", msg.tag.Name, msg.tag.Color)
		} else {
			m.status = "tag deleted"
		}

	case pluginsview.TTYRequestMsg:
		return m, m.preparePluginTTYCmd(plugindto.TTYPrepareInput{
			PluginName: msg.PluginName,
			CommandID:  msg.CommandID,
			TagName:    m.sessionsView.SelectedTagName(),
			SessionID:  m.sessionsView.SelectedSessionID(),
			DataDir:    m.dataDir,
			Cwd:        m.dataDir,
		})

	case pluginTTYReadyMsg:
		if msg.err != nil {
			m.status = "plugin tty prepare: " + msg.err.Error()
			return m, nil
		}
		if len(msg.plan.Argv) == 0 {
			m.status = "plugin tty: empty argv"
			return m, nil
		}
		cmd := osexec.Command(msg.plan.Argv[0], msg.plan.Argv[1:]...)
		if msg.plan.Cwd != "" {
			cmd.Dir = msg.plan.Cwd
		}
		env := os.Environ()
		for k, v := range msg.plan.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
		m.status = "plugin tty running"
		return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
			return pluginTTYDoneMsg{err: err}
		})

	case pluginTTYDoneMsg:
		if msg.err != nil {
			m.status = "plugin tty error: " + msg.err.Error()
		} else {
			m.status = "plugin tty completed"
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when it is capturing free-form typing.
		if m.subViewTyping() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabStopwatch:
		m.watchView, tabCmd = m.watchView.Update(msg)
	case tabSessions:
		m.sessionsView, tabCmd = m.sessionsView.Update(msg)
	case tabInsights:
		m.insightsView, tabCmd = m.insightsView.Update(msg)
	case tabPlugins:
		m.pluginView, tabCmd = m.pluginView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabStopwatch:
		return m.watchView.View()
	case tabSessions:
		return m.sessionsView.View()
	case tabInsights:
		return m.insightsView.View()
	case tabPlugins:
		return m.pluginView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "tally  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.running {
		left = theme.Hot.Render("● tracking") + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "start":
		if len(parts) < 2 {
			m.status = "usage: start <title> [@tag]"
			return m, nil
		}
		title, tag := splitTitleTag(strings.TrimSpace(strings.TrimPrefix(input, parts[0])))
		m.activeTab = tabStopwatch
		return m, m.watchView.StartSession(title, tag)

	case "pause":
		m.activeTab = tabStopwatch
		return m, func() tea.Msg {
			s, err := m.tracker.Pause(context.Background())
			return stopwatchview.SessionChangedMsg{Session: s, Action: "paused", Err: err}
		}

	case "resume":
		m.activeTab = tabStopwatch
		return m, func() tea.Msg {
			s, err := m.tracker.Resume(context.Background())
			return stopwatchview.SessionChangedMsg{Session: s, Action: "resumed", Err: err}
		}

	case "stop":
		if len(parts) < 2 {
			m.status = "usage: stop <rating> [comment]"
			return m, nil
		}
		var rating float64
		if _, err := fmt.Sscanf(parts[1], "%f", &rating); err != nil {
			m.status = "invalid rating"
			return m, nil
		}
		comment := strings.TrimSpace(strings.TrimPrefix(input, parts[0]+" "+parts[1]))
		m.activeTab = tabStopwatch
		return m, func() tea.Msg {
			s, err := m.tracker.Stop(context.Background(), trackerdto.StopInput{Rating: rating, Comment: comment})
			return stopwatchview.SessionChangedMsg{Session: s, Action: "stopped", Err: err}
		}

	case "abort":
		m.activeTab = tabStopwatch
		return m, func() tea.Msg {
			s, err := m.tracker.Abort(context.Background())
			return stopwatchview.SessionChangedMsg{Session: s, Action: "aborted", Err: err}
		}

	case "tag:new":
		if len(parts) < 2 {
			m.status = "usage: tag:new <name>"
			return m, nil
		}
		return m, m.createTagCmd(parts[1])

	case "tag:delete":
		if len(parts) < 2 {
			m.status = "usage: tag:delete <name>"
			return m, nil
		}
		return m, m.deleteTagCmd(parts[1])

	case "import:file":
		if len(parts) < 2 {
			m.status = "usage: import:file <path>"
			return m, nil
		}
		return m, m.importFileCmd(parts[1])

	case "export:file":
		if len(parts) < 2 {
			m.status = "usage: export:file <path>"
			return m, nil
		}
		return m, m.exportFileCmd(parts[1])

	case "stats":
		if len(parts) < 2 {
			m.status = "usage: stats <tag> [min-percentile]"
			return m, nil
		}
		minPct := 0.0
		if len(parts) >= 3 {
			fmt.Sscanf(parts[2], "%f", &minPct)
		}
		m.activeTab = tabInsights
		return m, m.insightsView.LoadTag(parts[1], minPct)

	case "plugin:report":
		if len(parts) < 4 {
			m.status = "usage: plugin:report <plugin> <command> <tag>"
			return m, nil
		}
		m.activeTab = tabPlugins
		return m, m.pluginView.ExecCommand(parts[1], parts[2], "report", parts[3])

	case "plugin:export":
		if len(parts) < 3 {
			m.status = "usage: plugin:export <plugin> <command>"
			return m, nil
		}
		m.activeTab = tabPlugins
		return m, m.pluginView.ExecCommand(parts[1], parts[2], "export", "")

	case "plugin:tty":
		if len(parts) < 3 {
			m.status = "usage: plugin:tty <plugin> <command>"
			return m, nil
		}
		return m, m.preparePluginTTYCmd(plugindto.TTYPrepareInput{
			PluginName: parts[1],
			CommandID:  parts[2],
			TagName:    m.sessionsView.SelectedTagName(),
			SessionID:  m.sessionsView.SelectedSessionID(),
			DataDir:    m.dataDir,
			Cwd:        m.dataDir,
		})

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewTyping reports whether the active tab is capturing free-form input,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewTyping() bool {
	switch m.activeTab {
	case tabStopwatch:
		return m.watchView.Typing()
	case tabSessions:
		return m.sessionsView.Filtering()
	case tabInsights:
		return m.insightsView.Filtering()
	case tabPlugins:
		return m.pluginView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.watchView, _ = m.watchView.Update(sz)
	m.sessionsView, _ = m.sessionsView.Update(sz)
	m.insightsView, _ = m.insightsView.Update(sz)
	m.pluginView, _ = m.pluginView.Update(sz)
}

// splitTitleTag separates "write report @work" into title and tag name.
func splitTitleTag(raw string) (string, string) {
	fields := strings.Fields(raw)
	var titleParts []string
	tag := ""
	for _, f := range fields {
		if strings.HasPrefix(f, "@") && len(f) > 1 {
			tag = f[1:]
			continue
		}
		titleParts = append(titleParts, f)
	}
	return strings.Join(titleParts, " "), tag
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) createTagCmd(name string) tea.Cmd {
	return func() tea.Msg {
		tag, err := m.tracker.CreateTag(context.Background(), name)
		return tagMutatedMsg{tag: tag, op: "created", err: err}
	}
}

func (m Model) deleteTagCmd(name string) tea.Cmd {
	return func() tea.Msg {
		err := m.tracker.DeleteTag(context.Background(), name)
		return tagMutatedMsg{op: "deleted", err: err}
	}
}

func (m Model) importFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			return importDoneMsg{path: path, err: err}
		}
		outcome, err := m.transfer.Import(context.Background(), string(raw))
		return importDoneMsg{path: path, outcome: outcome, err: err}
	}
}

func (m Model) exportFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.transfer.Export(context.Background())
		if err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		if err := os.WriteFile(path, []byte(out.Content), 0o644); err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		return exportDoneMsg{path: path, exported: out.Exported}
	}
}

func (m Model) preparePluginTTYCmd(input plugindto.TTYPrepareInput) tea.Cmd {
	return func() tea.Msg {
		if m.plugin == nil {
			return pluginTTYReadyMsg{err: fmt.Errorf("plugin adapter not configured")}
		}
		plan, err := m.plugin.PrepareTTY(context.Background(), input)
		return pluginTTYReadyMsg{plan: plan, err: err}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type trackerPortBridge struct{ p trackerPort }

func (b trackerPortBridge) Start(ctx context.Context, input trackerdto.StartInput) (trackerdto.SessionOutput, error) {
	return b.p.Start(ctx, input)
}
func (b trackerPortBridge) Pause(ctx context.Context) (trackerdto.SessionOutput, error) {
	return b.p.Pause(ctx)
}
func (b trackerPortBridge) Resume(ctx context.Context) (trackerdto.SessionOutput, error) {
	return b.p.Resume(ctx)
}
func (b trackerPortBridge) Stop(ctx context.Context, input trackerdto.StopInput) (trackerdto.SessionOutput, error) {
	return b.p.Stop(ctx, input)
}
func (b trackerPortBridge) Abort(ctx context.Context) (trackerdto.SessionOutput, error) {
	return b.p.Abort(ctx)
}
func (b trackerPortBridge) GetActive(ctx context.Context) (trackerdto.SessionOutput, error) {
	return b.p.GetActive(ctx)
}
func (b trackerPortBridge) ListTags(ctx context.Context) ([]trackerdto.TagOutput, error) {
	return b.p.ListTags(ctx)
}

type sessionsPortBridge struct{ p trackerPort }

func (b sessionsPortBridge) ListSessions(ctx context.Context) ([]trackerdto.SessionOutput, error) {
	return b.p.ListSessions(ctx)
}

type pluginPortBridge struct{ p pluginPort }

func (b pluginPortBridge) ListCommands(ctx context.Context, name string) ([]plugindto.CommandInfo, error) {
	return b.p.ListCommands(ctx, name)
}
func (b pluginPortBridge) Report(ctx context.Context, input plugindto.ExecuteInput) (plugindto.ExecuteOutput, error) {
	return b.p.Report(ctx, input)
}
func (b pluginPortBridge) Export(ctx context.Context, input plugindto.ExecuteInput) (plugindto.ExecuteOutput, error) {
	return b.p.Export(ctx, input)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
