// Package tui provides the Bubble Tea timer interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hexahedra/cubik/internal/model"
	"github.com/hexahedra/cubik/internal/scramble"
	statsPkg "github.com/hexahedra/cubik/internal/stats"
	"github.com/hexahedra/cubik/internal/store"
)

type timerState int

const (
	stateIdle timerState = iota
	stateInspecting
	stateRunning
	stateStopped
)

const (
	tickInterval      = 50 * time.Millisecond
	inspectionSeconds = 15
	// Starting between 15s and 17s of inspection is a +2; later is a DNF.
	inspectionPlus2Limit = 17
)

type promptKind int

const (
	promptNone promptKind = iota
	promptNewSession
	promptRenameSession
)

var (
	scrambleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	runningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FD962")).Bold(true)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
)

type tickMsg time.Time

// Model implements the Bubble Tea timer UI.
type Model struct {
	config model.Config
	store  *store.Store
	nav    *scramble.Navigator

	width  int
	height int

	state           timerState
	startedAt       time.Time
	elapsed         time.Duration
	inspectionStart time.Time
	inspectionUsed  int

	lastSolveID string
	errMsg      string

	prompt promptKind
	input  textinput.Model
}

// NewModel constructs a timer TUI model.
func NewModel(cfg model.Config, st *store.Store, nav *scramble.Navigator) *Model {
	input := textinput.New()
	input.CharLimit = 40
	return &Model{
		config: cfg,
		store:  st,
		nav:    nav,
		input:  input,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		switch m.state {
		case stateRunning:
			m.elapsed = time.Since(m.startedAt)
			return m, tick()
		case stateInspecting:
			return m, tick()
		default:
			return m, nil
		}
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.updateKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.state == stateRunning {
		// Any key stops the timer.
		m.stopTimer()
		return m, nil
	}
	switch msg.Type {
	case tea.KeySpace:
		return m.handleSpace()
	case tea.KeyLeft:
		if m.state == stateIdle || m.state == stateStopped {
			m.nav.Prev()
			m.state = stateIdle
		}
		return m, nil
	case tea.KeyRight:
		if m.state == stateIdle || m.state == stateStopped {
			m.nav.Next()
			m.state = stateIdle
		}
		return m, nil
	case tea.KeyTab:
		m.cycleSession()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		m.deleteLastSolve()
		return m, nil
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "o":
		m.reclassifyLast(model.PenaltyOK)
	case "2":
		m.reclassifyLast(model.PenaltyPlus2)
	case "d":
		m.reclassifyLast(model.PenaltyDNF)
	case "n":
		m.openPrompt(promptNewSession, "")
	case "r":
		if sess, ok := m.store.ActiveSession(); ok {
			m.openPrompt(promptRenameSession, sess.Name)
		}
	case "C":
		if err := m.store.ClearActiveSession(context.Background()); err != nil {
			m.errMsg = err.Error()
		}
		m.lastSolveID = ""
		m.state = stateIdle
	}
	return m, nil
}

func (m *Model) handleSpace() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateIdle, stateStopped:
		if m.config.Inspection {
			m.state = stateInspecting
			m.inspectionStart = time.Now()
			return m, tick()
		}
		m.startTimer(0)
		return m, tick()
	case stateInspecting:
		m.startTimer(int(time.Since(m.inspectionStart).Seconds()))
		return m, tick()
	default:
		return m, nil
	}
}

func (m *Model) startTimer(inspectionUsed int) {
	m.state = stateRunning
	m.startedAt = time.Now()
	m.elapsed = 0
	m.inspectionUsed = inspectionUsed
	m.errMsg = ""
}

func (m *Model) stopTimer() {
	m.elapsed = time.Since(m.startedAt)
	m.state = stateStopped

	penalty := model.PenaltyOK
	if m.config.Inspection {
		switch {
		case m.inspectionUsed > inspectionPlus2Limit:
			penalty = model.PenaltyDNF
		case m.inspectionUsed > inspectionSeconds:
			penalty = model.PenaltyPlus2
		}
	}
	solve := model.Solve{
		TimeMillis:    m.elapsed.Milliseconds(),
		Scramble:      m.nav.Current(),
		Timestamp:     time.Now().UnixMilli(),
		Penalty:       penalty,
		InspectionSec: m.inspectionUsed,
		Puzzle:        m.config.Puzzle,
	}
	if err := m.store.AddSolve(context.Background(), solve); err != nil {
		m.errMsg = err.Error()
		return
	}
	if sess, ok := m.store.ActiveSession(); ok && len(sess.Solves) > 0 {
		m.lastSolveID = sess.Solves[0].ID
	}
	m.nav.Next()
}

func (m *Model) reclassifyLast(p model.Penalty) {
	if m.lastSolveID == "" {
		return
	}
	patch := store.SolvePatch{Penalty: &p}
	if err := m.store.UpdateSolve(context.Background(), m.lastSolveID, patch); err != nil {
		m.errMsg = err.Error()
	}
}

func (m *Model) deleteLastSolve() {
	if m.lastSolveID == "" {
		return
	}
	if err := m.store.DeleteSolve(context.Background(), m.lastSolveID); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.lastSolveID = ""
	if sess, ok := m.store.ActiveSession(); ok && len(sess.Solves) > 0 {
		m.lastSolveID = sess.Solves[0].ID
	}
	m.state = stateIdle
}

func (m *Model) cycleSession() {
	sessions := m.store.Sessions()
	if len(sessions) < 2 {
		return
	}
	active := m.store.ActiveSessionID()
	next := sessions[0].ID
	for i, sess := range sessions {
		if sess.ID == active {
			next = sessions[(i+1)%len(sessions)].ID
			break
		}
	}
	if err := m.store.SwitchSession(context.Background(), next); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.lastSolveID = ""
	m.state = stateIdle
}

func (m *Model) openPrompt(kind promptKind, initial string) {
	m.prompt = kind
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		ctx := context.Background()
		var err error
		switch m.prompt {
		case promptNewSession:
			if name != "" {
				if err = m.store.CreateSession(ctx, name); err == nil {
					sessions := m.store.Sessions()
					err = m.store.SwitchSession(ctx, sessions[len(sessions)-1].ID)
					m.lastSolveID = ""
				}
			}
		case promptRenameSession:
			err = m.store.RenameSession(ctx, m.store.ActiveSessionID(), name)
		}
		if err != nil {
			m.errMsg = err.Error()
		}
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.prompt != promptNone {
		title := "New session name:"
		if m.prompt == promptRenameSession {
			title = "Rename session:"
		}
		content := title + "\n" + m.input.View()
		return m.place(content)
	}

	var center string
	switch m.state {
	case stateInspecting:
		left := inspectionSeconds - int(time.Since(m.inspectionStart).Seconds())
		style := runningStyle
		if left <= 0 {
			style = warnStyle
		}
		center = style.Render(fmt.Sprintf("Inspection %d", left))
	case stateRunning:
		center = runningStyle.Render(statsPkg.FormatMillis(m.elapsed.Milliseconds()))
	case stateStopped:
		center = timeStyle.Render(m.lastSolveDisplay())
	default:
		center = timeStyle.Render("0.00")
	}

	scrambleLine := scrambleStyle.Render(m.nav.Current())
	body := scrambleLine + "\n\n" + center
	if m.errMsg != "" {
		body += "\n" + warnStyle.Render(m.errMsg)
	}
	footer := footerStyle.Render(m.renderFooter())
	help := helpStyle.Render("space start/stop · o/2/d penalty · bksp delete · tab session · n new · r rename · q quit")

	if m.width == 0 || m.height < 4 {
		return body + "\n" + footer + "\n" + help
	}
	bodyHeight := m.height - 2
	placed := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	helpLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, help)
	return placed + "\n" + footerLine + "\n" + helpLine
}

func (m *Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) lastSolveDisplay() string {
	sess, ok := m.store.ActiveSession()
	if !ok || len(sess.Solves) == 0 {
		return statsPkg.FormatMillis(m.elapsed.Milliseconds())
	}
	return statsPkg.FormatSolveTime(sess.Solves[0])
}

func (m *Model) renderFooter() string {
	sess, ok := m.store.ActiveSession()
	if !ok {
		return ""
	}
	return renderFooterLine(sess)
}

// renderFooterLine builds the session status line; split out for tests.
func renderFooterLine(sess model.Session) string {
	segments := []string{
		fmt.Sprintf("%s (%d)", sess.Name, len(sess.Solves)),
	}
	if len(sess.Solves) > 0 {
		cur := sess.Solves[0]
		segments = append(segments,
			"Ao5 "+statsPkg.FormatAverage(cur.Ao5),
			"Ao12 "+statsPkg.FormatAverage(cur.Ao12),
			"Mean "+statsPkg.FormatAverage(statsPkg.SessionMean(sess.Solves)),
		)
	}
	return strings.Join(segments, "  ")
}
