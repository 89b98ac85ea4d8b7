package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tally/internal/modules/insights/dto"
	"tally/internal/ui/theme"
)

const defaultBuckets = 10

// ─── port ────────────────────────────────────────────────────────────────────

type InsightsPort interface {
	TagReport(ctx context.Context, input dto.ReportInput) (dto.TagReport, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type ReportLoadedMsg struct {
	Report dto.TagReport
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port InsightsPort

	tagInput textinput.Model
	report   viewport.Model
	spinner  spinner.Model

	loaded          bool
	loading         bool
	excludeOutliers bool
	width           int
	height          int
}

func New(port InsightsPort) Model {
	ti := textinput.New()
	ti.Placeholder = "tag name (press enter to analyze)"
	ti.CharLimit = 80
	ti.Focus()

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Green)

	return Model{
		port:     port,
		tagInput: ti,
		report:   vp,
		spinner:  sp,
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// LoadTag triggers a report for the named tag without going through the
// input flow. Used by the command palette.
func (m *Model) LoadTag(tagName string, minPercentile float64) tea.Cmd {
	m.tagInput.SetValue(tagName)
	m.loading = true
	return tea.Batch(m.loadReportCmd(tagName, minPercentile), m.spinner.Tick)
}

// Filtering reports whether the tag input currently has focus, so the app
// model yields key events while the user types.
func (m Model) Filtering() bool { return m.tagInput.Focused() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.report.Width = m.width - 4
		m.report.Height = m.height - 5

	case ReportLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.report.SetContent(theme.Bad.Render("report failed: " + msg.Err.Error()))
			m.loaded = true
			return m, nil
		}
		m.report.SetContent(m.renderReport(msg.Report))
		m.report.GotoTop()
		m.loaded = true

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch {
		case m.tagInput.Focused():
			switch msg.String() {
			case "enter":
				name := strings.TrimSpace(m.tagInput.Value())
				if name != "" {
					m.loading = true
					m.tagInput.Blur()
					cmds = append(cmds, m.loadReportCmd(name, 0), m.spinner.Tick)
				}
			case "esc":
				m.tagInput.Blur()
			default:
				var cmd tea.Cmd
				m.tagInput, cmd = m.tagInput.Update(msg)
				cmds = append(cmds, cmd)
			}
		default:
			switch msg.String() {
			case "/":
				cmds = append(cmds, m.tagInput.Focus())
			case "o":
				m.excludeOutliers = !m.excludeOutliers
				name := strings.TrimSpace(m.tagInput.Value())
				if name != "" {
					m.loading = true
					cmds = append(cmds, m.loadReportCmd(name, 0), m.spinner.Tick)
				}
			default:
				var cmd tea.Cmd
				m.report, cmd = m.report.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)
	}

	if m.tagInput.Focused() {
		var cmd tea.Cmd
		m.tagInput, cmd = m.tagInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Crunching numbers…")
	}

	header := theme.Title.Render("Insights") + "  " + m.tagInput.View() + "\n" +
		theme.Muted.Render(fmt.Sprintf("/: change tag  o: toggle outlier removal (now %v)  ↑/↓: scroll", m.excludeOutliers)) + "\n"

	if !m.loaded {
		body := lipgloss.Place(m.width, m.height-3, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Enter a tag name to see its daily statistics"))
		return lipgloss.JoinVertical(lipgloss.Left, header, body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.report.View())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderReport(r dto.TagReport) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("@"+r.TagName) + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf(
		"%d days tracked  —  %d filtered  —  %d outliers removed\n\n",
		r.DaysTracked, r.FilteredDays, r.RemovedOutliers)))

	if r.Stats.Count == 0 {
		sb.WriteString(theme.Muted.Render("No completed sessions for this tag yet"))
		return sb.String()
	}

	s := r.Stats
	sb.WriteString(theme.Muted.Render("total:  ") + formatMS(s.Sum) + "\n")
	sb.WriteString(theme.Muted.Render("mean:   ") + formatMS(s.Mean) + "/day\n")
	sb.WriteString(theme.Muted.Render("median: ") + formatMS(s.Median) + "/day\n")
	if s.Mode != nil {
		sb.WriteString(theme.Muted.Render("mode:   ") + "around " + formatMS(*s.Mode) + "/day\n")
	}
	sb.WriteString(theme.Muted.Render("stddev: ") + formatMS(s.StdDev) + "\n")
	sb.WriteString(theme.Muted.Render("range:  ") + formatMS(s.Min) + " – " + formatMS(s.Max) + "\n")

	if len(r.Histogram) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Distribution (z-scores)") + "\n")
		sb.WriteString(m.renderHistogram(r.Histogram))
	}

	if len(r.Days) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Recent days") + "\n")
		days := r.Days
		if len(days) > 14 {
			days = days[len(days)-14:]
		}
		for _, d := range days {
			marker := " "
			if d.ZScore > 1 {
				marker = theme.Hot.Render("▲")
			} else if d.ZScore < -1 {
				marker = theme.Bad.Render("▼")
			}
			sb.WriteString(fmt.Sprintf("%s %s  %s  z=%+.2f  p%.0f\n",
				marker, d.Day, formatMS(d.TotalMS), d.ZScore, d.Percentile))
		}
	}
	return sb.String()
}

func (m Model) renderHistogram(buckets []dto.HistogramBucket) string {
	maxCount := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	if maxCount == 0 {
		return ""
	}
	barW := m.width - 30
	if barW < 10 {
		barW = 10
	}
	barStyle := lipgloss.NewStyle().Foreground(theme.Sapphire)

	var sb strings.Builder
	for _, b := range buckets {
		w := b.Count * barW / maxCount
		sb.WriteString(fmt.Sprintf("%+6.2f..%+6.2f %s %d\n",
			b.Lower, b.Upper, barStyle.Render(strings.Repeat("█", w)), b.Count))
	}
	return sb.String()
}

func (m Model) loadReportCmd(tagName string, minPercentile float64) tea.Cmd {
	exclude := m.excludeOutliers
	return func() tea.Msg {
		report, err := m.port.TagReport(context.Background(), dto.ReportInput{
			TagName:         tagName,
			MinPercentile:   minPercentile,
			ExcludeOutliers: exclude,
			Buckets:         defaultBuckets,
		})
		return ReportLoadedMsg{Report: report, Err: err}
	}
}

func formatMS(ms float64) string {
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	mi := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, mi)
	}
	return fmt.Sprintf("%dm", mi)
}
