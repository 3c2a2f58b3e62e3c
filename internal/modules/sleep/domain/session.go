package domain

import "time"

const SchemaVersion = 1

// Quality scale. A session is rated at most once under normal flow, but a
// rating may be overwritten.
const (
	QualityUnset = -1
	QualityMin   = 0
	QualityMax   = 5
)

// Session is one tracked sleep period. EndTime equals StartTime while the
// session is open.
type Session struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	Quality   int
}

// NewSession returns an unsaved, open, unrated session starting at now.
func NewSession(now time.Time) Session {
	return Session{StartTime: now, EndTime: now, Quality: QualityUnset}
}

func (s Session) IsOpen() bool {
	return s.EndTime.Equal(s.StartTime)
}

func (s Session) IsComplete() bool {
	return !s.IsOpen()
}

func (s Session) IsRated() bool {
	return s.Quality != QualityUnset
}

// Duration is zero for an open session.
func (s Session) Duration() time.Duration {
	if s.IsOpen() || s.EndTime.Before(s.StartTime) {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// End closes the session at now. A stop in the same millisecond as the start
// still produces a complete session.
func (s Session) End(now time.Time) Session {
	if !now.After(s.StartTime) {
		now = s.StartTime.Add(time.Millisecond)
	}
	s.EndTime = now
	return s
}

func ValidQuality(q int) bool {
	return q >= QualityMin && q <= QualityMax
}
