package service

import (
	"context"
	"errors"

	"sleeptrack/internal/modules/sleep/domain"
	sleepout "sleeptrack/internal/modules/sleep/port/out"
	"sleeptrack/internal/platform/clock"
	apperrors "sleeptrack/internal/platform/errors"
)

// SessionService applies the session lifecycle rules on top of the store.
// It keeps no state of its own.
type SessionService struct {
	clock clock.Clock
	store sleepout.SessionStore
}

func NewSessionService(clock clock.Clock, store sleepout.SessionStore) *SessionService {
	return &SessionService{clock: clock, store: store}
}

// CurrentOpen reports the open session, if storage has one.
func (s *SessionService) CurrentOpen(ctx context.Context) (domain.Session, bool, error) {
	session, err := s.store.MostRecentOpen(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, err
	}
	if !session.IsOpen() {
		return domain.Session{}, false, nil
	}
	return session, true, nil
}

func (s *SessionService) History(ctx context.Context) ([]domain.Session, error) {
	return s.store.List(ctx)
}

// Start persists a new open session. It refuses while another one is open.
func (s *SessionService) Start(ctx context.Context) (domain.Session, error) {
	if _, open, err := s.CurrentOpen(ctx); err != nil {
		return domain.Session{}, err
	} else if open {
		return domain.Session{}, apperrors.ErrSessionOpen
	}
	session := domain.NewSession(clock.Millis(s.clock.Now()))
	id, err := s.store.Insert(ctx, session)
	if err != nil {
		return domain.Session{}, err
	}
	session.ID = id
	return session, nil
}

// Stop ends session at the current clock time and persists it. stopped is
// false when the session was already ended or its row is gone, in which case
// nothing is written.
func (s *SessionService) Stop(ctx context.Context, session domain.Session) (ended domain.Session, stopped bool, err error) {
	if !session.IsOpen() {
		return domain.Session{}, false, nil
	}
	ended = session.End(clock.Millis(s.clock.Now()))
	if err := s.store.Update(ctx, ended); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, err
	}
	return ended, true, nil
}

// Rate sets the quality of session id. found is false when no such session
// exists, in which case nothing is written. The value is stored as given;
// range checks belong to whoever collects it.
func (s *SessionService) Rate(ctx context.Context, id int64, quality int) (session domain.Session, found bool, err error) {
	session, err = s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, false, err
	}
	session.Quality = quality
	if err := s.store.Update(ctx, session); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Session{}, false, nil
		}
		return domain.Session{}, true, err
	}
	return session, true, nil
}

func (s *SessionService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
