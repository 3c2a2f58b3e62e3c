package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sleepoutadapter "sleeptrack/internal/modules/sleep/adapter/out"
	"sleeptrack/internal/modules/sleep/domain"
	apperrors "sleeptrack/internal/platform/errors"
)

func openStore(t *testing.T) *sleepoutadapter.SQLiteSessionStore {
	t.Helper()
	store, err := sleepoutadapter.NewSQLiteSessionStore(filepath.Join(t.TempDir(), "nested", "sleep.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInsertAssignsMonotonicIDsAndRoundTrips(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openStore(t)

	first, err := store.Insert(ctx, domain.NewSession(time.UnixMilli(1_000)))
	if err != nil {
		t.Fatalf("insert first: %v", err)
	}
	second, err := store.Insert(ctx, domain.NewSession(time.UnixMilli(2_000)).End(time.UnixMilli(3_500)))
	if err != nil {
		t.Fatalf("insert second: %v", err)
	}
	if second <= first {
		t.Fatalf("expected increasing ids, got %d then %d", first, second)
	}
	got, err := store.FindByID(ctx, second)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.StartTime.UnixMilli() != 2_000 || got.EndTime.UnixMilli() != 3_500 || got.Quality != domain.QualityUnset {
		t.Fatalf("unexpected round trip: %+v", got)
	}
	if _, err := store.FindByID(ctx, second+1); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMostRecentOpenOnlyConsidersNewestRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openStore(t)
	if _, err := store.MostRecentOpen(ctx); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("empty table: expected ErrNotFound, got %v", err)
	}

	openID, err := store.Insert(ctx, domain.NewSession(time.UnixMilli(100)))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := store.MostRecentOpen(ctx)
	if err != nil || got.ID != openID || !got.IsOpen() {
		t.Fatalf("expected open session %d, got %+v err=%v", openID, got, err)
	}

	got = got.End(time.UnixMilli(500))
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.MostRecentOpen(ctx); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("ended session is not open: got %v", err)
	}
}

func TestListNewestFirstAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openStore(t)
	empty, err := store.List(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v err=%v", empty, err)
	}
	for _, start := range []int64{300, 100, 200} {
		if _, err := store.Insert(ctx, domain.NewSession(time.UnixMilli(start))); err != nil {
			t.Fatalf("insert %d: %v", start, err)
		}
	}
	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].StartTime.UnixMilli() != 300 || all[2].StartTime.UnixMilli() != 100 {
		t.Fatalf("expected descending start times, got %+v", all)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if all, _ = store.List(ctx); len(all) != 0 {
		t.Fatalf("expected empty after clear, got %d", len(all))
	}
	if id, err := store.Insert(ctx, domain.NewSession(time.UnixMilli(400))); err != nil || id <= 3 {
		t.Fatalf("ids must not be reused after clear, got %d err=%v", id, err)
	}
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	t.Parallel()
	store := openStore(t)
	err := store.Update(context.Background(), domain.Session{ID: 42, Quality: 3})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClosedDatabaseReportsStorageErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := sleepoutadapter.NewSQLiteSessionStore(":memory:")
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := store.Insert(ctx, domain.NewSession(time.UnixMilli(1))); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("insert: expected ErrStorage, got %v", err)
	}
	if _, err := store.List(ctx); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("list: expected ErrStorage, got %v", err)
	}
	if _, err := store.MostRecentOpen(ctx); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("open: expected ErrStorage, got %v", err)
	}
	if err := store.Clear(ctx); !errors.Is(err, apperrors.ErrStorage) {
		t.Fatalf("clear: expected ErrStorage, got %v", err)
	}
}
