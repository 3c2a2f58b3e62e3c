package in

import (
	"context"
	"fmt"

	"sleeptrack/internal/modules/sleep/dto"
	sleepin "sleeptrack/internal/modules/sleep/port/in"
)

// CLIHandler drives the state managers for one-shot commands. Tracker calls
// wait for the initial load before issuing their command.
type CLIHandler struct {
	tracker   sleepin.Tracker
	qualities sleepin.QualityFactory
}

func NewCLIHandler(tracker sleepin.Tracker, qualities sleepin.QualityFactory) CLIHandler {
	return CLIHandler{tracker: tracker, qualities: qualities}
}

func (h CLIHandler) Start(ctx context.Context) (dto.SessionOutput, error) {
	if err := h.tracker.Wait(ctx); err != nil {
		return dto.SessionOutput{}, err
	}
	if err := h.tracker.StartTracking(ctx); err != nil {
		return dto.SessionOutput{}, err
	}
	state := h.tracker.Snapshot()
	if state.Current == nil {
		return dto.SessionOutput{}, fmt.Errorf("session not visible after start")
	}
	return *state.Current, nil
}

// Stop ends the open session. ok is false when nothing was being tracked.
func (h CLIHandler) Stop(ctx context.Context) (sessionID int64, ok bool, err error) {
	if err := h.tracker.Wait(ctx); err != nil {
		return 0, false, err
	}
	if err := h.tracker.StopTracking(ctx); err != nil {
		return 0, false, err
	}
	state := h.tracker.Snapshot()
	if state.PendingQuality == 0 {
		return 0, false, nil
	}
	h.tracker.ConsumeNavigation()
	return state.PendingQuality, true, nil
}

// Rate reports rated=false when the session does not exist.
func (h CLIHandler) Rate(ctx context.Context, sessionID int64, quality int) (rated bool, err error) {
	q := h.qualities.ForSession(sessionID)
	defer q.Close()
	if err := q.SetQuality(ctx, quality); err != nil {
		return false, err
	}
	rated = q.Snapshot().NavigateBack
	q.ConsumeNavigation()
	return rated, nil
}

func (h CLIHandler) Clear(ctx context.Context) error {
	if err := h.tracker.Wait(ctx); err != nil {
		return err
	}
	if err := h.tracker.ClearAll(ctx); err != nil {
		return err
	}
	h.tracker.ConsumeClearedEvent()
	return nil
}

func (h CLIHandler) Status(ctx context.Context) (dto.TrackerState, error) {
	if err := h.tracker.Wait(ctx); err != nil {
		return dto.TrackerState{}, err
	}
	return h.tracker.Snapshot(), nil
}

func (h CLIHandler) History(ctx context.Context) (string, error) {
	state, err := h.Status(ctx)
	if err != nil {
		return "", err
	}
	return state.FormattedHistory, nil
}
