package dto

import "time"

type SessionOutput struct {
	ID        int64
	StartTime time.Time
	EndTime   time.Time
	Quality   int
	Open      bool
	Duration  time.Duration
}

// TrackerState is a point-in-time copy of everything the tracker screen binds to.
type TrackerState struct {
	Current          *SessionOutput
	History          []SessionOutput
	StartVisible     bool
	StopVisible      bool
	ClearVisible     bool
	FormattedHistory string

	// PendingQuality is the session id awaiting a rating, 0 when none.
	PendingQuality int64
	ShowCleared    bool
}

type QualityState struct {
	SessionID    int64
	NavigateBack bool
}
