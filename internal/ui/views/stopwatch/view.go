package stopwatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tally/internal/modules/tracker/dto"
	"tally/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type TrackerPort interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	Pause(ctx context.Context) (dto.SessionOutput, error)
	Resume(ctx context.Context) (dto.SessionOutput, error)
	Stop(ctx context.Context, input dto.StopInput) (dto.SessionOutput, error)
	Abort(ctx context.Context) (dto.SessionOutput, error)
	GetActive(ctx context.Context) (dto.SessionOutput, error)
	ListTags(ctx context.Context) ([]dto.TagOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// SessionChangedMsg bubbles up to the app model so other tabs can refresh.
type SessionChangedMsg struct {
	Session dto.SessionOutput
	Action  string // "started", "paused", "resumed", "stopped", "aborted"
	Err     error
}

type ActiveLoadedMsg struct {
	Session dto.SessionOutput
	Err     error
}

type TagsLoadedMsg struct {
	Tags []dto.TagOutput
	Err  error
}

type tickMsg time.Time

// ─── pane ────────────────────────────────────────────────────────────────────

type pane int

const (
	paneIdle    pane = iota // no live session, title input focused
	paneRunning             // session active or paused
	paneRating              // stop requested, rating input focused
)

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port TrackerPort
	pane pane

	titleInput  textinput.Model
	ratingInput textinput.Model

	session dto.SessionOutput
	tags    []dto.TagOutput

	// Display-only elapsed bookkeeping. base holds the accumulated duration
	// the store knows about; resumedAt marks when local ticking started.
	base      time.Duration
	resumedAt time.Time

	status string
	width  int
	height int
}

func New(port TrackerPort) Model {
	ti := textinput.New()
	ti.Placeholder = "what are you working on? (append @tag to label it)"
	ti.CharLimit = 200
	ti.Focus()

	ri := textinput.New()
	ri.Placeholder = "rating 0-5, optionally followed by a comment"
	ri.CharLimit = 200

	return Model{
		port:        port,
		pane:        paneIdle,
		titleInput:  ti,
		ratingInput: ri,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadActiveCmd(), m.loadTagsCmd(), textinput.Blink)
}

// Running reports whether a live session is shown, so the app model can keep
// the status bar in sync.
func (m Model) Running() bool { return m.pane != paneIdle }

// Typing reports whether one of the text inputs has focus. The app model
// checks this to avoid consuming global keys while the user types.
func (m Model) Typing() bool {
	return m.titleInput.Focused() || m.ratingInput.Focused()
}

// StartSession is the palette entry point: it bypasses the input pane.
func (m *Model) StartSession(title, tagName string) tea.Cmd {
	return m.startCmd(title, tagName)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ActiveLoadedMsg:
		if msg.Err == nil && msg.Session.ID != "" {
			m.adoptSession(msg.Session, "recovered")
			return m, m.tickCmd()
		}

	case TagsLoadedMsg:
		if msg.Err == nil {
			m.tags = msg.Tags
		}

	case SessionChangedMsg:
		if msg.Err != nil {
			m.status = msg.Err.Error()
			return m, nil
		}
		switch msg.Action {
		case "started", "resumed":
			m.adoptSession(msg.Session, msg.Action)
			return m, m.tickCmd()
		case "paused":
			m.base = time.Duration(msg.Session.DurationMS) * time.Millisecond
			m.session = msg.Session
			m.status = "paused"
		case "stopped", "aborted":
			m.pane = paneIdle
			m.session = dto.SessionOutput{}
			m.base = 0
			m.titleInput.SetValue("")
			m.titleInput.Focus()
			m.status = msg.Action
		}

	case tickMsg:
		if m.pane == paneRunning && m.session.State == "active" {
			return m, m.tickCmd()
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	switch m.pane {
	case paneIdle:
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		cmds = append(cmds, cmd)
	case paneRating:
		var cmd tea.Cmd
		m.ratingInput, cmd = m.ratingInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.pane {
	case paneIdle:
		if msg.String() == "enter" {
			title, tag := splitTitleTag(m.titleInput.Value())
			if title == "" {
				m.status = "a title is required"
				return m, nil
			}
			return m, m.startCmd(title, tag)
		}
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd

	case paneRunning:
		switch msg.String() {
		case " ", "p":
			if m.session.State == "active" {
				return m, m.pauseCmd()
			}
			return m, m.resumeCmd()
		case "x":
			m.pane = paneRating
			m.ratingInput.SetValue("")
			return m, m.ratingInput.Focus()
		case "A":
			return m, m.abortCmd()
		}

	case paneRating:
		switch msg.String() {
		case "esc":
			m.pane = paneRunning
			m.ratingInput.Blur()
			return m, nil
		case "enter":
			rating, comment, err := splitRatingComment(m.ratingInput.Value())
			if err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.ratingInput.Blur()
			return m, m.stopCmd(rating, comment)
		}
		var cmd tea.Cmd
		m.ratingInput, cmd = m.ratingInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var body string
	switch m.pane {
	case paneIdle:
		body = m.renderIdle()
	case paneRunning:
		body = m.renderRunning()
	case paneRating:
		body = m.renderRunning() + "\n\n" +
			theme.Title.Render("Rate this session") + "\n" +
			m.ratingInput.View() + "\n" +
			theme.Muted.Render("enter: save  esc: keep going")
	}
	if m.status != "" {
		body += "\n\n" + theme.Muted.Render(m.status)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) adoptSession(s dto.SessionOutput, status string) {
	m.pane = paneRunning
	m.session = s
	m.base = time.Duration(s.DurationMS) * time.Millisecond
	m.resumedAt = time.Now()
	m.titleInput.Blur()
	m.status = status
}

func (m Model) elapsed() time.Duration {
	if m.session.State == "active" {
		return m.base + time.Since(m.resumedAt)
	}
	return m.base
}

func (m Model) renderIdle() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Start a session") + "\n\n")
	sb.WriteString(m.titleInput.View() + "\n\n")
	if len(m.tags) > 0 {
		names := make([]string, len(m.tags))
		for i, t := range m.tags {
			names[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("@" + t.Name)
		}
		sb.WriteString(theme.Muted.Render("tags: ") + strings.Join(names, "  ") + "\n\n")
	}
	sb.WriteString(theme.Muted.Render("enter: start"))
	return sb.String()
}

func (m Model) renderRunning() string {
	e := m.elapsed()
	clock := fmt.Sprintf("%02d:%02d:%02d",
		int(e.Hours()), int(e.Minutes())%60, int(e.Seconds())%60)

	var sb strings.Builder
	sb.WriteString(theme.Timer.Render(clock) + "\n\n")
	sb.WriteString(theme.Title.Render(m.session.Title))
	if m.session.Tag != nil {
		tagStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.session.Tag.Color))
		sb.WriteString("  " + tagStyle.Render("@"+m.session.Tag.Name))
	}
	sb.WriteString("\n")
	if m.session.State == "paused" {
		sb.WriteString(theme.Hot.Render("⏸ paused") + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("space: pause/resume  x: stop  A: abort"))
	return sb.String()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadActiveCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.port.GetActive(context.Background())
		return ActiveLoadedMsg{Session: s, Err: err}
	}
}

func (m Model) loadTagsCmd() tea.Cmd {
	return func() tea.Msg {
		tags, err := m.port.ListTags(context.Background())
		return TagsLoadedMsg{Tags: tags, Err: err}
	}
}

func (m Model) startCmd(title, tagName string) tea.Cmd {
	return func() tea.Msg {
		s, err := m.port.Start(context.Background(), dto.StartInput{Title: title, TagName: tagName})
		return SessionChangedMsg{Session: s, Action: "started", Err: err}
	}
}

func (m Model) pauseCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.port.Pause(context.Background())
		return SessionChangedMsg{Session: s, Action: "paused", Err: err}
	}
}

func (m Model) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.port.Resume(context.Background())
		return SessionChangedMsg{Session: s, Action: "resumed", Err: err}
	}
}

func (m Model) stopCmd(rating float64, comment string) tea.Cmd {
	return func() tea.Msg {
		s, err := m.port.Stop(context.Background(), dto.StopInput{Rating: rating, Comment: comment})
		return SessionChangedMsg{Session: s, Action: "stopped", Err: err}
	}
}

func (m Model) abortCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.port.Abort(context.Background())
		return SessionChangedMsg{Session: s, Action: "aborted", Err: err}
	}
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

func splitRatingComment(raw string) (float64, string, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("enter a rating between 0 and 5")
	}
	rating, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid rating: %s", fields[0])
	}
	return rating, strings.Join(fields[1:], " "), nil
}
