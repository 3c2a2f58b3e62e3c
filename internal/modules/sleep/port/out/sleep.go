package out

import (
	"context"

	"sleeptrack/internal/modules/sleep/domain"
)

// SessionStore persists sessions. Lookups that find nothing return
// apperrors.ErrNotFound; other failures are *apperrors.StorageError.
type SessionStore interface {
	// MostRecentOpen returns the latest session if it is still open.
	MostRecentOpen(ctx context.Context) (domain.Session, error)
	FindByID(ctx context.Context, id int64) (domain.Session, error)
	// List returns every session, most recent first.
	List(ctx context.Context) ([]domain.Session, error)
	Insert(ctx context.Context, session domain.Session) (int64, error)
	Update(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}

type HistoryFormatter interface {
	Format(sessions []domain.Session) string
}
