package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"sleeptrack/internal/modules/sleep/dto"
)

// Feed coalesces tracker notifications into a single pending wake-up so a
// slow render loop never blocks the state manager.
type Feed struct {
	ch chan struct{}
}

func NewFeed() *Feed {
	return &Feed{ch: make(chan struct{}, 1)}
}

// Push matches the tracker Subscribe callback. The model re-reads the
// snapshot when it wakes, so the state argument is not carried over.
func (f *Feed) Push(dto.TrackerState) {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

type trackerChangedMsg struct{}

func (f *Feed) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.ch:
			return trackerChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}
