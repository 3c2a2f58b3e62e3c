package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sleeptrack/internal/modules/sleep/domain"
	sleepout "sleeptrack/internal/modules/sleep/port/out"
	apperrors "sleeptrack/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const sessionColumns = `id, start_time_ms, end_time_ms, quality`

type SQLiteSessionStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ sleepout.SessionStore = (*SQLiteSessionStore)(nil)

// NewSQLiteSessionStore opens (creating if needed) the session table at dbPath.
// ":memory:" keeps everything in process.
func NewSQLiteSessionStore(dbPath string) (*SQLiteSessionStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)
	store := &SQLiteSessionStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteSessionStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sleep_sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  start_time_ms INTEGER NOT NULL,
  end_time_ms INTEGER NOT NULL,
  quality INTEGER NOT NULL DEFAULT -1
);
CREATE INDEX IF NOT EXISTS idx_sleep_sessions_start ON sleep_sessions(start_time_ms);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sleep_sessions table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", domain.SchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}

// MostRecentOpen only ever looks at the newest row: an older open row behind a
// completed one does not count as the current session.
func (s *SQLiteSessionStore) MostRecentOpen(ctx context.Context) (domain.Session, error) {
	const query = `
SELECT ` + sessionColumns + ` FROM sleep_sessions
WHERE id = (SELECT MAX(id) FROM sleep_sessions)
  AND end_time_ms = start_time_ms`
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanOne(s.db.QueryRowContext(ctx, query), "fetch open session")
}

func (s *SQLiteSessionStore) FindByID(ctx context.Context, id int64) (domain.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sleep_sessions WHERE id = ?`
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanOne(s.db.QueryRowContext(ctx, query, id), "fetch session")
}

func (s *SQLiteSessionStore) List(ctx context.Context) ([]domain.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM sleep_sessions ORDER BY start_time_ms DESC, id DESC`
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewStorageError("list sessions", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("list sessions", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list sessions", err)
	}
	return sessions, nil
}

func (s *SQLiteSessionStore) Insert(ctx context.Context, session domain.Session) (int64, error) {
	const stmt = `INSERT INTO sleep_sessions (start_time_ms, end_time_ms, quality) VALUES (?, ?, ?)`
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, stmt, session.StartTime.UnixMilli(), session.EndTime.UnixMilli(), session.Quality)
	if err != nil {
		return 0, apperrors.NewStorageError("insert session", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStorageError("insert session", err)
	}
	return id, nil
}

func (s *SQLiteSessionStore) Update(ctx context.Context, session domain.Session) error {
	const stmt = `UPDATE sleep_sessions SET start_time_ms = ?, end_time_ms = ?, quality = ? WHERE id = ?`
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, stmt, session.StartTime.UnixMilli(), session.EndTime.UnixMilli(), session.Quality, session.ID)
	if err != nil {
		return apperrors.NewStorageError("update session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("update session", err)
	}
	if n == 0 {
		return fmt.Errorf("update session %d: %w", session.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (s *SQLiteSessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sleep_sessions`); err != nil {
		return apperrors.NewStorageError("clear sessions", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteSessionStore) scanOne(row rowScanner, op string) (domain.Session, error) {
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, apperrors.ErrNotFound
		}
		return domain.Session{}, apperrors.NewStorageError(op, err)
	}
	return session, nil
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		session        domain.Session
		startMS, endMS int64
	)
	if err := row.Scan(&session.ID, &startMS, &endMS, &session.Quality); err != nil {
		return domain.Session{}, err
	}
	session.StartTime = time.UnixMilli(startMS).UTC()
	session.EndTime = time.UnixMilli(endMS).UTC()
	return session, nil
}
