package usecase

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"sleeptrack/internal/modules/sleep/domain"
	"sleeptrack/internal/modules/sleep/dto"
	sleepin "sleeptrack/internal/modules/sleep/port/in"
	sleepout "sleeptrack/internal/modules/sleep/port/out"
	"sleeptrack/internal/modules/sleep/service"
	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/platform/logging"
	"sleeptrack/internal/platform/metrics"
	"sleeptrack/internal/platform/observable"
)

// Tracker holds the state of the tracking screen: the open session, the
// history, the derived button visibility and the one-shot events the screen
// reacts to.
type Tracker struct {
	*runner
	svc *service.SessionService

	ready   chan struct{}
	initErr error

	current *observable.Value[*domain.Session]
	history *observable.Value[[]domain.Session]

	currentOut       *observable.Value[*dto.SessionOutput]
	historyOut       *observable.Value[[]dto.SessionOutput]
	startVisible     *observable.Value[bool]
	stopVisible      *observable.Value[bool]
	clearVisible     *observable.Value[bool]
	formattedHistory *observable.Value[string]

	navigateToQuality *observable.Event[int64]
	showCleared       *observable.Event[struct{}]
}

var _ sleepin.Tracker = (*Tracker)(nil)

// NewTracker starts loading the open session and the history in the
// background. Commands issued afterwards run once that load has finished.
func NewTracker(svc *service.SessionService, formatter sleepout.HistoryFormatter, opts ...Option) *Tracker {
	t := &Tracker{
		runner:            newRunner("tracker", buildOptions(opts)),
		svc:               svc,
		ready:             make(chan struct{}),
		current:           observable.NewValue[*domain.Session](nil),
		history:           observable.NewValue([]domain.Session{}),
		navigateToQuality: observable.NewEvent[int64](),
		showCleared:       observable.NewEvent[struct{}](),
	}
	t.currentOut = observable.Map(t.current, func(s *domain.Session) *dto.SessionOutput {
		if s == nil {
			return nil
		}
		out := toOutput(*s)
		return &out
	})
	t.historyOut = observable.Map(t.history, func(sessions []domain.Session) []dto.SessionOutput {
		out := make([]dto.SessionOutput, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, toOutput(s))
		}
		return out
	})
	t.startVisible = observable.Map(t.current, func(s *domain.Session) bool { return s == nil })
	t.stopVisible = observable.Map(t.current, func(s *domain.Session) bool { return s != nil })
	t.clearVisible = observable.Map(t.history, func(sessions []domain.Session) bool { return len(sessions) > 0 })
	t.formattedHistory = observable.Map(t.history, formatter.Format)

	// The lane is fresh, so this never blocks; it puts the initial load ahead
	// of every command.
	_ = t.lane.Acquire(context.Background())
	go func() {
		defer close(t.ready)
		defer t.lane.Release()
		t.initErr = t.reload(t.life)
		if t.initErr != nil && t.life.Err() == nil {
			t.logger.Error("initial load failed", logging.Err(t.initErr))
		}
	}()
	return t
}

// Wait blocks until the initial load has finished and returns its error.
func (t *Tracker) Wait(ctx context.Context) error {
	select {
	case <-t.ready:
		return t.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartTracking persists a new session and makes it current. It fails with
// ErrSessionOpen while storage still has an open session.
func (t *Tracker) StartTracking(ctx context.Context) error {
	return t.run(ctx, "start", func(ctx context.Context) (metrics.ResultLabel, error) {
		session, err := t.svc.Start(ctx)
		if errors.Is(err, apperrors.ErrSessionOpen) {
			if reloadErr := t.reload(ctx); reloadErr != nil {
				return metrics.ResultFailed, reloadErr
			}
			return metrics.ResultRejected, err
		}
		if err != nil {
			return metrics.ResultFailed, err
		}
		t.logger.Info("tracking started", logging.SessionID(session.ID))
		if err := t.reload(ctx); err != nil {
			return metrics.ResultFailed, err
		}
		return metrics.ResultSuccess, nil
	})
}

// StopTracking ends the current session and asks the screen to navigate to
// the quality rating. Without a current session it does nothing.
func (t *Tracker) StopTracking(ctx context.Context) error {
	return t.run(ctx, "stop", func(ctx context.Context) (metrics.ResultLabel, error) {
		current := t.current.Get()
		if current == nil {
			return metrics.ResultNoop, nil
		}
		ended, stopped, err := t.svc.Stop(ctx, *current)
		if err != nil {
			return metrics.ResultFailed, err
		}
		if !stopped {
			t.logger.Debug("session to stop is gone", logging.SessionID(current.ID))
			if err := t.reload(ctx); err != nil {
				return metrics.ResultFailed, err
			}
			return metrics.ResultNoop, nil
		}
		// The end time is persisted, so nothing is open any more even if the
		// reload below fails.
		err = t.commit(ctx, func() {
			t.current.Set(nil)
			t.navigateToQuality.Fire(ended.ID)
			t.metrics.SetTracking(false)
		})
		if err != nil {
			return metrics.ResultCanceled, err
		}
		t.logger.Info("tracking stopped", logging.SessionID(ended.ID))
		if err := t.reload(ctx); err != nil {
			return metrics.ResultFailed, err
		}
		return metrics.ResultSuccess, nil
	})
}

// ClearAll deletes every session and raises the cleared event, even when
// there was nothing to delete.
func (t *Tracker) ClearAll(ctx context.Context) error {
	return t.run(ctx, "clear", func(ctx context.Context) (metrics.ResultLabel, error) {
		if err := t.svc.Clear(ctx); err != nil {
			return metrics.ResultFailed, err
		}
		if err := t.commit(ctx, func() { t.showCleared.Fire(struct{}{}) }); err != nil {
			return metrics.ResultCanceled, err
		}
		t.logger.Info("sessions cleared")
		if err := t.reload(ctx); err != nil {
			return metrics.ResultFailed, err
		}
		return metrics.ResultSuccess, nil
	})
}

// Refresh re-reads the open session and the history from storage.
func (t *Tracker) Refresh(ctx context.Context) error {
	return t.run(ctx, "refresh", func(ctx context.Context) (metrics.ResultLabel, error) {
		if err := t.reload(ctx); err != nil {
			return metrics.ResultFailed, err
		}
		return metrics.ResultSuccess, nil
	})
}

func (t *Tracker) ConsumeNavigation() {
	t.navigateToQuality.Consume()
}

func (t *Tracker) ConsumeClearedEvent() {
	t.showCleared.Consume()
}

// Close cancels any running command. Later commands fail with ErrClosed.
func (t *Tracker) Close() {
	t.close()
}

func (t *Tracker) reload(ctx context.Context) error {
	open, ok, err := t.svc.CurrentOpen(ctx)
	if err != nil {
		return err
	}
	history, err := t.svc.History(ctx)
	if err != nil {
		return err
	}
	return t.commit(ctx, func() {
		t.history.Set(history)
		if ok {
			t.current.Set(&open)
		} else {
			t.current.Set(nil)
		}
		t.metrics.SetTracking(ok)
	})
}

func (t *Tracker) Current() observable.Observable[*dto.SessionOutput]  { return t.currentOut }
func (t *Tracker) History() observable.Observable[[]dto.SessionOutput] { return t.historyOut }
func (t *Tracker) StartVisible() observable.Observable[bool]           { return t.startVisible }
func (t *Tracker) StopVisible() observable.Observable[bool]            { return t.stopVisible }
func (t *Tracker) ClearVisible() observable.Observable[bool]           { return t.clearVisible }
func (t *Tracker) FormattedHistory() observable.Observable[string]     { return t.formattedHistory }
func (t *Tracker) NavigateToQuality() observable.Signal[int64]         { return t.navigateToQuality }
func (t *Tracker) ShowCleared() observable.Signal[struct{}]            { return t.showCleared }

func (t *Tracker) Snapshot() dto.TrackerState {
	state := dto.TrackerState{
		History:          slices.Clone(t.historyOut.Get()),
		StartVisible:     t.startVisible.Get(),
		StopVisible:      t.stopVisible.Get(),
		ClearVisible:     t.clearVisible.Get(),
		FormattedHistory: t.formattedHistory.Get(),
	}
	if current := t.currentOut.Get(); current != nil {
		c := *current
		state.Current = &c
	}
	if id, ok := t.navigateToQuality.Pending(); ok {
		state.PendingQuality = id
	}
	_, state.ShowCleared = t.showCleared.Pending()
	return state
}

// Subscribe calls fn with a fresh snapshot now and after every state change.
func (t *Tracker) Subscribe(fn func(dto.TrackerState)) (unsubscribe func()) {
	var armed atomic.Bool
	notify := func() {
		if armed.Load() {
			fn(t.Snapshot())
		}
	}
	unsubs := []func(){
		t.current.Subscribe(func(*domain.Session) { notify() }),
		t.history.Subscribe(func([]domain.Session) { notify() }),
		t.navigateToQuality.Subscribe(func(int64, bool) { notify() }),
		t.showCleared.Subscribe(func(struct{}, bool) { notify() }),
	}
	armed.Store(true)
	fn(t.Snapshot())
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func toOutput(s domain.Session) dto.SessionOutput {
	return dto.SessionOutput{
		ID:        s.ID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Quality:   s.Quality,
		Open:      s.IsOpen(),
		Duration:  s.Duration(),
	}
}
