package sessions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tally/internal/modules/tracker/dto"
	"tally/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type SessionsPort interface {
	ListSessions(ctx context.Context) ([]dto.SessionOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Sessions []dto.SessionOutput
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type sessionItem struct {
	session dto.SessionOutput
}

func (i sessionItem) Title() string { return i.session.Title }

func (i sessionItem) Description() string {
	day := time.UnixMilli(i.session.Timestamp).Format("02/01/2006 15:04")
	desc := day + "  " + formatDuration(i.session.DurationMS)
	if i.session.Tag != nil {
		desc += "  @" + i.session.Tag.Name
	}
	return desc
}

func (i sessionItem) FilterValue() string {
	v := i.session.Title
	if i.session.Tag != nil {
		v += " " + i.session.Tag.Name
	}
	return v
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    SessionsPort
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port SessionsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		detail:  vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload refetches the session list. The app model calls this after a
// session ends or a CSV import completes.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.port.ListSessions(context.Background())
		return LoadedMsg{Sessions: sessions, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Sessions — " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Sessions))
		for i, s := range msg.Sessions {
			items[i] = sessionItem{session: s}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			m.detail.SetContent(m.renderDetail())
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading sessions…")
	}

	listW := m.width * 45 / 100
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// SelectedTagName returns the selected session's tag, if any. Used by the app
// model to seed the plugin execution context.
func (m Model) SelectedTagName() string {
	if item, ok := m.list.SelectedItem().(sessionItem); ok && item.session.Tag != nil {
		return item.session.Tag.Name
	}
	return ""
}

// SelectedSessionID returns the selected session's ID, if any.
func (m Model) SelectedSessionID() string {
	if item, ok := m.list.SelectedItem().(sessionItem); ok {
		return item.session.ID
	}
	return ""
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 45 / 100
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(sessionItem)
	if !ok {
		return theme.Muted.Render("Select a session to see details")
	}
	s := item.session
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("when:     ") + time.UnixMilli(s.Timestamp).Format("02/01/2006 15:04:05") + "\n")
	sb.WriteString(theme.Muted.Render("duration: ") + formatDuration(s.DurationMS) + "\n")
	sb.WriteString(theme.Muted.Render("state:    ") + s.State + "\n")
	sb.WriteString(fmt.Sprintf("%s%.1f / 5\n", theme.Muted.Render("rating:   "), s.Rating))
	if s.Tag != nil {
		tagStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Tag.Color))
		sb.WriteString(theme.Muted.Render("tag:      ") + tagStyle.Render("@"+s.Tag.Name) + "\n")
	}
	if s.Comment != "" {
		sb.WriteString("\n" + s.Comment + "\n")
	}
	return sb.String()
}

func formatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	mi := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, mi)
	}
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%02ds", mi, sec)
}
