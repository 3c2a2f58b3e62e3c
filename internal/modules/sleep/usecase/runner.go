package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/platform/lane"
	"sleeptrack/internal/platform/logging"
	"sleeptrack/internal/platform/metrics"
)

type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics metrics.Recorder
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(recorder metrics.Recorder) Option {
	return func(o *options) { o.metrics = recorder }
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.Discard(), metrics: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	if o.metrics == nil {
		o.metrics = metrics.NoopRecorder{}
	}
	return o
}

// runner serializes the commands of one state manager and ties them to the
// manager's lifetime. In-memory state is only changed through commit, which
// refuses once the command's context is done.
type runner struct {
	component string
	logger    *slog.Logger
	metrics   metrics.Recorder

	lane     *lane.Lane
	life     context.Context
	cancel   context.CancelFunc
	commitMu sync.RWMutex
}

func newRunner(component string, o options) *runner {
	life, cancel := context.WithCancel(context.Background())
	return &runner{
		component: component,
		logger:    o.logger.With(logging.Component(component)),
		metrics:   o.metrics,
		lane:      lane.New(),
		life:      life,
		cancel:    cancel,
	}
}

// run executes fn alone on the lane under a context cancelled by either the
// caller or close.
func (r *runner) run(ctx context.Context, command string, fn func(context.Context) (metrics.ResultLabel, error)) error {
	if r.life.Err() != nil {
		return apperrors.ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.life, cancel)
	defer stop()

	began := time.Now()
	if err := r.lane.Acquire(ctx); err != nil {
		r.finish(command, began, metrics.ResultCanceled, err)
		return err
	}
	result, err := func() (metrics.ResultLabel, error) {
		defer r.lane.Release()
		return fn(ctx)
	}()

	if err != nil {
		result = classify(err)
	}
	r.finish(command, began, result, err)
	return err
}

// commit applies a state change unless ctx is done. It holds off close until
// the change, including subscriber notification, has been applied; subscribers
// must therefore not call close.
func (r *runner) commit(ctx context.Context, apply func()) error {
	r.commitMu.RLock()
	defer r.commitMu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	apply()
	return nil
}

func (r *runner) close() {
	r.commitMu.Lock()
	r.cancel()
	r.commitMu.Unlock()
}

func (r *runner) finish(command string, began time.Time, result metrics.ResultLabel, err error) {
	elapsed := time.Since(began)
	r.metrics.IncCommand(r.component, command, result)
	r.metrics.ObserveCommandDuration(r.component, command, elapsed)

	attrs := []any{logging.Command(command), logging.DurationMS(float64(elapsed.Microseconds()) / 1000)}
	switch result {
	case metrics.ResultFailed:
		var storageErr *apperrors.StorageError
		if errors.As(err, &storageErr) {
			r.metrics.IncStorageError(storageErr.Op)
		}
		r.logger.Error("command failed", append(attrs, logging.Err(err))...)
	case metrics.ResultRejected, metrics.ResultCanceled:
		r.logger.Warn("command not applied", append(attrs, logging.Err(err))...)
	default:
		r.logger.Debug("command done", append(attrs, slog.String("result", string(result)))...)
	}
}

func classify(err error) metrics.ResultLabel {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCanceled
	case errors.Is(err, apperrors.ErrSessionOpen), errors.Is(err, apperrors.ErrInvalidInput):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailed
	}
}
