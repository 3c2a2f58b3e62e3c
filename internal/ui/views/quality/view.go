package quality

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/message"

	"sleeptrack/internal/modules/sleep/domain"
	"sleeptrack/internal/modules/sleep/dto"
	"sleeptrack/internal/ui/theme"
)

type Port interface {
	SetQuality(ctx context.Context, value int) error
	ConsumeNavigation()
	Snapshot() dto.QualityState
}

// RatedMsg reports the outcome of a rating. Back is false when the session
// no longer exists.
type RatedMsg struct {
	SessionID int64
	Quality   int
	Back      bool
	Err       error
}

type Model struct {
	ctx       context.Context
	port      Port
	printer   *message.Printer
	sessionID int64
	cursor    int
	busy      bool
}

func New(ctx context.Context, port Port, sessionID int64, printer *message.Printer) Model {
	return Model{
		ctx:       ctx,
		port:      port,
		printer:   printer,
		sessionID: sessionID,
		cursor:    domain.QualityMax,
	}
}

func (m Model) SessionID() int64 { return m.sessionID }

func (m Model) Cursor() int { return m.cursor }

func (m Model) Up() Model {
	if m.cursor < domain.QualityMax {
		m.cursor++
	}
	return m
}

func (m Model) Down() Model {
	if m.cursor > domain.QualityMin {
		m.cursor--
	}
	return m
}

// Select moves the cursor to value and rates with it.
func (m Model) Select(value int) (Model, tea.Cmd) {
	if !domain.ValidQuality(value) {
		return m, nil
	}
	m.cursor = value
	return m.Submit()
}

func (m Model) Submit() (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	ctx, port, id, value := m.ctx, m.port, m.sessionID, m.cursor
	return m, func() tea.Msg {
		if err := port.SetQuality(ctx, value); err != nil {
			return RatedMsg{SessionID: id, Quality: value, Err: err}
		}
		back := port.Snapshot().NavigateBack
		if back {
			port.ConsumeNavigation()
		}
		return RatedMsg{SessionID: id, Quality: value, Back: back}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(RatedMsg); ok {
		m.busy = false
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(m.printer.Sprintf("quality.prompt")))
	b.WriteString("  ")
	b.WriteString(theme.Muted.Render(fmt.Sprintf("#%d", m.sessionID)))
	b.WriteString("\n\n")
	for q := domain.QualityMax; q >= domain.QualityMin; q-- {
		stars := strings.Repeat("★", q) + strings.Repeat("☆", domain.QualityMax-q)
		label := fmt.Sprintf("%d %s %s", q, theme.Stars.Render(stars), m.printer.Sprintf(fmt.Sprintf("quality.%d", q)))
		if q == m.cursor {
			b.WriteString(theme.Selected.Render("> ") + label)
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}
	return theme.Pane.Render(b.String())
}
