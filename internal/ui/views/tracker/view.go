package tracker

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"sleeptrack/internal/modules/sleep/dto"
	"sleeptrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	StartTracking(ctx context.Context) error
	StopTracking(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// ─── messages ────────────────────────────────────────────────────────────────

type CommandDoneMsg struct {
	Command string
	Err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	ctx     context.Context
	port    Port
	printer *message.Printer
	state   dto.TrackerState
	history viewport.Model
	spinner spinner.Model
	busy    bool
	width   int
	height  int
}

func New(ctx context.Context, port Port, printer *message.Printer) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(0, 1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{ctx: ctx, port: port, printer: printer, history: vp, spinner: sp}
}

// SetState replaces the bound tracker state.
func (m Model) SetState(state dto.TrackerState) Model {
	m.state = state
	m.history.SetContent(state.FormattedHistory)
	return m
}

func (m Model) State() dto.TrackerState { return m.state }

func (m Model) Busy() bool { return m.busy }

// Start, Stop and Clear do nothing while the matching button is hidden or
// another command is in flight.
func (m Model) Start() (Model, tea.Cmd) {
	if m.busy || !m.state.StartVisible {
		return m, nil
	}
	return m.dispatch("start", m.port.StartTracking)
}

func (m Model) Stop() (Model, tea.Cmd) {
	if m.busy || !m.state.StopVisible {
		return m, nil
	}
	return m.dispatch("stop", m.port.StopTracking)
}

func (m Model) Clear() (Model, tea.Cmd) {
	if m.busy || !m.state.ClearVisible {
		return m, nil
	}
	return m.dispatch("clear", m.port.ClearAll)
}

func (m Model) dispatch(command string, fn func(context.Context) error) (Model, tea.Cmd) {
	m.busy = true
	ctx := m.ctx
	run := func() tea.Msg {
		return CommandDoneMsg{Command: command, Err: fn(ctx)}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case CommandDoneMsg:
		m.busy = false

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var vCmd tea.Cmd
	m.history, vCmd = m.history.Update(msg)
	cmds = append(cmds, vCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	pane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Render(m.history.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.renderButtons(), m.renderCurrent(), pane)
}

func (m *Model) resize() {
	const chrome = 6
	m.history.Width = max(m.width-2, 0)
	m.history.Height = max(m.height-chrome, 1)
}

func (m Model) renderButtons() string {
	var parts []string
	if m.state.StartVisible {
		parts = append(parts, theme.ButtonGo.Render("s "+m.printer.Sprintf("tracker.start")))
	}
	if m.state.StopVisible {
		parts = append(parts, theme.Button.Render("x "+m.printer.Sprintf("tracker.stop")))
	}
	if m.state.ClearVisible {
		parts = append(parts, theme.ButtonDanger.Render("c "+m.printer.Sprintf("tracker.clear")))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if m.busy {
		row += " " + m.spinner.View()
	}
	return row
}

func (m Model) renderCurrent() string {
	cur := m.state.Current
	if cur == nil {
		return ""
	}
	started := cur.StartTime.In(time.Local).Format("15:04")
	return theme.Hot.Render("● ") + m.printer.Sprintf("tracker.started") + " " + theme.Muted.Render(started)
}
