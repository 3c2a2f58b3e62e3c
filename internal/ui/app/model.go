package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"sleeptrack/internal/modules/sleep/dto"
	sleepin "sleeptrack/internal/modules/sleep/port/in"
	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/ui/theme"
	qualityview "sleeptrack/internal/ui/views/quality"
	trackerview "sleeptrack/internal/ui/views/tracker"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type trackerPort interface {
	trackerview.Port
	Refresh(ctx context.Context) error
	ConsumeNavigation()
	ConsumeClearedEvent()
	Snapshot() dto.TrackerState
}

type qualityFactory interface {
	ForSession(sessionID int64) sleepin.Quality
}

// ─── screens ─────────────────────────────────────────────────────────────────

type screenID int

const (
	screenTracker screenID = iota
	screenQuality
)

type refreshedMsg struct{ err error }

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Start key.Binding
	Stop  key.Binding
	Clear key.Binding
	Up    key.Binding
	Down  key.Binding
	Rate  key.Binding
	Back  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Clear: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "choose")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↑/↓", "choose")),
		Rate:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter/0-5", "rate")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "skip")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Clear, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Clear},
		{k.Up, k.Rate, k.Back},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It binds the tracker screen to the
// tracker state manager and opens a quality screen whenever the tracker asks
// for a rating.
type Model struct {
	ctx       context.Context
	tracker   trackerPort
	qualities qualityFactory
	feed      *Feed
	printer   *message.Printer

	trackView   trackerview.Model
	qualityView qualityview.Model
	rating      sleepin.Quality

	screen   screenID
	keys     keyMap
	help     help.Model
	showHelp bool
	status   string
	width    int
	height   int
}

func NewModel(ctx context.Context, tracker trackerPort, qualities qualityFactory, printer *message.Printer, feed *Feed) Model {
	return Model{
		ctx:       ctx,
		tracker:   tracker,
		qualities: qualities,
		feed:      feed,
		printer:   printer,
		trackView: trackerview.New(ctx, tracker, printer),
		screen:    screenTracker,
		keys:      defaultKeys(),
		help:      help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.feed.wait(m.ctx)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.width
		var cmd tea.Cmd
		m.trackView, cmd = m.trackView.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height - 3})
		return m, cmd

	case trackerChangedMsg:
		m = m.sync()
		return m, m.feed.wait(m.ctx)

	case trackerview.CommandDoneMsg:
		if msg.Err != nil {
			m.status = describeError(msg.Command, msg.Err)
		} else if msg.Command == "start" {
			m.status = m.printer.Sprintf("tracker.started")
		}

	case qualityview.RatedMsg:
		m.qualityView, _ = m.qualityView.Update(msg)
		switch {
		case msg.Err != nil:
			m.status = describeError("rate", msg.Err)
			return m, nil
		case msg.Back:
			m.status = fmt.Sprintf("#%d: %s", msg.SessionID, m.printer.Sprintf(fmt.Sprintf("quality.%d", msg.Quality)))
		default:
			m.status = fmt.Sprintf("#%d: %s", msg.SessionID, apperrors.ErrNotFound)
		}
		m = m.closeRating()
		return m, m.refreshCmd()

	case refreshedMsg:
		if msg.err != nil {
			m.status = describeError("refresh", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m = m.closeRating()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		}
		if m.screen == screenQuality {
			return m.updateQualityKeys(msg)
		}
		var cmd tea.Cmd
		switch {
		case key.Matches(msg, m.keys.Start):
			m.trackView, cmd = m.trackView.Start()
			return m, cmd
		case key.Matches(msg, m.keys.Stop):
			m.trackView, cmd = m.trackView.Stop()
			return m, cmd
		case key.Matches(msg, m.keys.Clear):
			m.trackView, cmd = m.trackView.Clear()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.trackView, cmd = m.trackView.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) updateQualityKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Up):
		m.qualityView = m.qualityView.Up()
	case key.Matches(msg, m.keys.Down):
		m.qualityView = m.qualityView.Down()
	case key.Matches(msg, m.keys.Rate):
		m.qualityView, cmd = m.qualityView.Submit()
	case key.Matches(msg, m.keys.Back):
		m = m.closeRating()
		return m, m.refreshCmd()
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
			m.qualityView, cmd = m.qualityView.Select(int(s[0] - '0'))
		}
	}
	return m, cmd
}

// sync copies the tracker snapshot into the tracker screen and consumes any
// pending events.
func (m Model) sync() Model {
	state := m.tracker.Snapshot()
	m.trackView = m.trackView.SetState(state)

	if state.ShowCleared {
		m.status = m.printer.Sprintf("tracker.cleared")
		m.tracker.ConsumeClearedEvent()
	}
	if state.PendingQuality != 0 && m.screen == screenTracker {
		m.rating = m.qualities.ForSession(state.PendingQuality)
		m.qualityView = qualityview.New(m.ctx, m.rating, state.PendingQuality, m.printer)
		m.screen = screenQuality
		m.tracker.ConsumeNavigation()
	}
	return m
}

func (m Model) closeRating() Model {
	if m.rating != nil {
		m.rating.Close()
		m.rating = nil
	}
	m.screen = screenTracker
	return m
}

func (m Model) refreshCmd() tea.Cmd {
	ctx, tracker := m.ctx, m.tracker
	return func() tea.Msg {
		return refreshedMsg{err: tracker.Refresh(ctx)}
	}
}

func describeError(command string, err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return command + ": canceled"
	case errors.Is(err, apperrors.ErrSessionOpen):
		return command + ": " + apperrors.ErrSessionOpen.Error()
	default:
		return command + " failed: " + err.Error()
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	title := lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).
		Render(theme.Title.Render("sleeptrack"))
	status := m.renderStatusBar()

	var content string
	switch {
	case m.showHelp:
		content = m.help.View(m.keys)
	case m.screen == screenQuality:
		content = lipgloss.Place(m.width, max(m.height-3, 1), lipgloss.Center, lipgloss.Center, m.qualityView.View())
	default:
		content = m.trackView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, content, status)
}

func (m Model) renderStatusBar() string {
	left := m.status
	if strings.Contains(left, "failed") {
		left = theme.Failure.Render(left)
	}
	right := theme.Muted.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// Screen reports which screen is in front, for tests and the program shell.
func (m Model) Screen() string {
	if m.screen == screenQuality {
		return "quality"
	}
	return "tracker"
}

func (m Model) Status() string { return m.status }
