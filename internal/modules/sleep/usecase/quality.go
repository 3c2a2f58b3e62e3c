package usecase

import (
	"context"

	"sleeptrack/internal/modules/sleep/dto"
	sleepin "sleeptrack/internal/modules/sleep/port/in"
	"sleeptrack/internal/modules/sleep/service"
	"sleeptrack/internal/platform/logging"
	"sleeptrack/internal/platform/metrics"
	"sleeptrack/internal/platform/observable"
)

// Quality rates a single session, bound at construction.
type Quality struct {
	*runner
	svc          *service.SessionService
	sessionID    int64
	navigateBack *observable.Event[struct{}]
}

var _ sleepin.Quality = (*Quality)(nil)

func NewQuality(sessionID int64, svc *service.SessionService, opts ...Option) *Quality {
	return &Quality{
		runner:       newRunner("quality", buildOptions(opts)),
		svc:          svc,
		sessionID:    sessionID,
		navigateBack: observable.NewEvent[struct{}](),
	}
}

// SetQuality stores value on the bound session and raises the navigate-back
// event. A session that no longer exists is left alone and no event is raised.
func (q *Quality) SetQuality(ctx context.Context, value int) error {
	return q.run(ctx, "set_quality", func(ctx context.Context) (metrics.ResultLabel, error) {
		_, found, err := q.svc.Rate(ctx, q.sessionID, value)
		if err != nil {
			return metrics.ResultFailed, err
		}
		if !found {
			q.logger.Debug("session to rate not found", logging.SessionID(q.sessionID))
			return metrics.ResultNoop, nil
		}
		if err := q.commit(ctx, func() { q.navigateBack.Fire(struct{}{}) }); err != nil {
			return metrics.ResultCanceled, err
		}
		q.logger.Info("session rated", logging.SessionID(q.sessionID), logging.Quality(value))
		return metrics.ResultSuccess, nil
	})
}

func (q *Quality) ConsumeNavigation() {
	q.navigateBack.Consume()
}

func (q *Quality) SessionID() int64 { return q.sessionID }

func (q *Quality) NavigateBack() observable.Signal[struct{}] { return q.navigateBack }

func (q *Quality) Snapshot() dto.QualityState {
	_, back := q.navigateBack.Pending()
	return dto.QualityState{SessionID: q.sessionID, NavigateBack: back}
}

func (q *Quality) Subscribe(fn func(dto.QualityState)) (unsubscribe func()) {
	return q.navigateBack.Subscribe(func(struct{}, bool) { fn(q.Snapshot()) })
}

func (q *Quality) Close() {
	q.close()
}

// QualityFactory creates Quality managers sharing one service and option set.
type QualityFactory struct {
	svc  *service.SessionService
	opts []Option
}

var _ sleepin.QualityFactory = QualityFactory{}

func NewQualityFactory(svc *service.SessionService, opts ...Option) QualityFactory {
	return QualityFactory{svc: svc, opts: opts}
}

func (f QualityFactory) ForSession(sessionID int64) sleepin.Quality {
	return NewQuality(sessionID, f.svc, f.opts...)
}
