// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hexahedra/cubik/internal/model"
	"github.com/hexahedra/cubik/internal/stats"
	"github.com/hexahedra/cubik/internal/store"
)

const (
	tabOverview = iota
	tabHistory
	tabTrend
)

const plotHeight = 12

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs         []string
	activeTab    int
	overview     viewport.Model
	trend        viewport.Model
	historyTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "History", "Trend"},
	}
	m.overview = viewport.New(0, 0)
	m.trend = viewport.New(0, 0)
	m.initHistoryTable()
	m.refreshReport()
	return m
}

func (m *Model) refreshReport() {
	sess, ok := resolveSession(m.store, m.cfg.Session)
	if !ok {
		m.errMsg = fmt.Sprintf("session %q not found", m.cfg.Session)
		return
	}
	m.errMsg = ""
	m.report = stats.BuildReport(sess, m.cfg)
	m.refreshContent()
}

func resolveSession(st *store.Store, name string) (model.Session, bool) {
	if name == "" {
		return st.ActiveSession()
	}
	for _, sess := range st.Sessions() {
		if sess.Name == name {
			return sess, true
		}
	}
	return model.Session{}, false
}

func (m *Model) initHistoryTable() {
	columns := []table.Column{
		{Title: "#", Width: 5},
		{Title: "Time", Width: 10},
		{Title: "Ao5", Width: 10},
		{Title: "Ao12", Width: 10},
		{Title: "When", Width: 17},
		{Title: "Scramble", Width: 50},
	}
	m.historyTable = table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("#8C8C8C")).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	m.historyTable.SetStyles(styles)
}

func (m *Model) refreshContent() {
	rows := make([]table.Row, 0, len(m.report.Solves))
	for i, s := range m.report.Solves {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", len(m.report.Solves)-i),
			stats.FormatSolveTime(s),
			stats.FormatAverage(s.Ao5),
			stats.FormatAverage(s.Ao12),
			time.UnixMilli(s.Timestamp).Format("2006-01-02 15:04"),
			s.Scramble,
		})
	}
	m.historyTable.SetRows(rows)
	m.overview.SetContent(m.renderOverview())
	m.trend.SetContent(m.renderTrend())
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := m.height - 4
		if contentHeight < 1 {
			contentHeight = 1
		}
		m.overview.Width = m.width
		m.overview.Height = contentHeight
		m.trend.Width = m.width
		m.trend.Height = contentHeight
		m.historyTable.SetHeight(contentHeight)
		m.refreshContent()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab", "right":
			m.activeTab = (m.activeTab + 1) % len(m.tabs)
			return m, nil
		case "shift+tab", "left":
			m.activeTab = (m.activeTab + len(m.tabs) - 1) % len(m.tabs)
			return m, nil
		}
	}
	var cmd tea.Cmd
	switch m.activeTab {
	case tabHistory:
		m.historyTable, cmd = m.historyTable.Update(msg)
	case tabTrend:
		m.trend, cmd = m.trend.Update(msg)
	default:
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	nav := m.renderNav()
	if m.errMsg != "" {
		return nav + "\n" + errorStyle.Render(m.errMsg)
	}
	var content string
	switch m.activeTab {
	case tabHistory:
		content = m.historyTable.View()
	case tabTrend:
		content = m.trend.View()
	default:
		content = m.overview.View()
	}
	help := headerStyle.Render("tab switch · arrows/scroll navigate · q quit")
	return nav + "\n" + content + "\n" + help
}

func (m *Model) renderNav() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
			continue
		}
		parts = append(parts, inactiveNavStyle.Render(tab))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderOverview() string {
	r := m.report
	cards := []struct {
		title string
		value string
	}{
		{"Session", r.SessionName},
		{"Solves", fmt.Sprintf("%d", r.TotalSolves)},
		{"Best", stats.FormatAverage(r.BestSingle)},
		{"Ao5", stats.FormatAverage(r.CurrentAo5)},
		{"Best Ao5", stats.FormatAverage(r.BestAo5)},
		{"Ao12", stats.FormatAverage(r.CurrentAo12)},
		{"Best Ao12", stats.FormatAverage(r.BestAo12)},
		{"Mean", stats.FormatAverage(r.Mean)},
	}
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		body := cardTitleStyle.Render(c.title) + "\n" + cardValueStyle.Render(c.value)
		rendered = append(rendered, cardStyle.Render(body))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	extra := ""
	if r.BestPossibleAo5.Kind != model.AverageNotComputed {
		extra = headerStyle.Render(fmt.Sprintf("Ao5 range: %s .. %s",
			stats.FormatAverage(r.BestPossibleAo5), stats.FormatAverage(r.WorstPossibleAo5)))
	}
	if extra == "" {
		return row
	}
	return row + "\n" + extra
}

func (m *Model) renderTrend() string {
	var buf bytes.Buffer
	width := 0
	if m.width > 0 {
		width = stats.PlotWidthFor(m.width)
	}
	if err := stats.RenderTrend(&buf, m.report.Solves, m.cfg.Window, width, plotHeight); err != nil {
		return errorStyle.Render(err.Error())
	}
	if buf.Len() == 0 {
		return "No finished solves to plot yet."
	}
	return buf.String()
}
