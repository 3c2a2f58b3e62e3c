package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	sleepoutadapter "sleeptrack/internal/modules/sleep/adapter/out"
	"sleeptrack/internal/modules/sleep/domain"
	sleepout "sleeptrack/internal/modules/sleep/port/out"
	"sleeptrack/internal/modules/sleep/service"
	"sleeptrack/internal/modules/sleep/usecase"
	apperrors "sleeptrack/internal/platform/errors"
)

const waitTimeout = 5 * time.Second

type countFormatter struct{}

func (countFormatter) Format(sessions []domain.Session) string {
	return fmt.Sprintf("%d sessions", len(sessions))
}

func newStore(t *testing.T) *sleepoutadapter.SQLiteSessionStore {
	t.Helper()
	store, err := sleepoutadapter.NewSQLiteSessionStore(filepath.Join(t.TempDir(), "sleep.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newClock(ms int64) *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(time.UnixMilli(ms))
}

func newTracker(t *testing.T, store sleepout.SessionStore, clk *clockwork.FakeClock) *usecase.Tracker {
	t.Helper()
	tracker := usecase.NewTracker(service.NewSessionService(clk, store), countFormatter{})
	t.Cleanup(tracker.Close)
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := tracker.Wait(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	return tracker
}

var errDisk = errors.New("disk I/O error")

// faultyStore fails or blocks selected operations and forwards the rest.
type faultyStore struct {
	sleepout.SessionStore
	fail map[string]bool

	// when block is set, Insert and Update signal entered and wait for
	// release or cancellation
	block   bool
	entered chan struct{}
	release chan struct{}
}

func newFaultyStore(inner sleepout.SessionStore) *faultyStore {
	return &faultyStore{
		SessionStore: inner,
		fail:         map[string]bool{},
		entered:      make(chan struct{}, 8),
		release:      make(chan struct{}),
	}
}

func (f *faultyStore) check(op string) error {
	if f.fail[op] {
		return apperrors.NewStorageError(op, errDisk)
	}
	return nil
}

func (f *faultyStore) wait(ctx context.Context) error {
	if !f.block {
		return nil
	}
	f.entered <- struct{}{}
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *faultyStore) MostRecentOpen(ctx context.Context) (domain.Session, error) {
	if err := f.check("open"); err != nil {
		return domain.Session{}, err
	}
	return f.SessionStore.MostRecentOpen(ctx)
}

func (f *faultyStore) FindByID(ctx context.Context, id int64) (domain.Session, error) {
	if err := f.check("find"); err != nil {
		return domain.Session{}, err
	}
	return f.SessionStore.FindByID(ctx, id)
}

func (f *faultyStore) List(ctx context.Context) ([]domain.Session, error) {
	if err := f.check("list"); err != nil {
		return nil, err
	}
	return f.SessionStore.List(ctx)
}

func (f *faultyStore) Insert(ctx context.Context, session domain.Session) (int64, error) {
	if err := f.check("insert"); err != nil {
		return 0, err
	}
	if err := f.wait(ctx); err != nil {
		return 0, err
	}
	return f.SessionStore.Insert(ctx, session)
}

func (f *faultyStore) Update(ctx context.Context, session domain.Session) error {
	if err := f.check("update"); err != nil {
		return err
	}
	if err := f.wait(ctx); err != nil {
		return err
	}
	return f.SessionStore.Update(ctx, session)
}

func (f *faultyStore) Clear(ctx context.Context) error {
	if err := f.check("clear"); err != nil {
		return err
	}
	return f.SessionStore.Clear(ctx)
}

func waitEntered(t *testing.T, f *faultyStore) {
	t.Helper()
	select {
	case <-f.entered:
	case <-time.After(waitTimeout):
		t.Fatalf("store call never started")
	}
}
