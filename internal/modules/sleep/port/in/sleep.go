package in

import (
	"context"

	"sleeptrack/internal/modules/sleep/dto"
)

type Tracker interface {
	Wait(ctx context.Context) error
	StartTracking(ctx context.Context) error
	StopTracking(ctx context.Context) error
	ClearAll(ctx context.Context) error
	Refresh(ctx context.Context) error
	ConsumeNavigation()
	ConsumeClearedEvent()
	Snapshot() dto.TrackerState
	Subscribe(fn func(dto.TrackerState)) (unsubscribe func())
	Close()
}

type Quality interface {
	SetQuality(ctx context.Context, value int) error
	ConsumeNavigation()
	Snapshot() dto.QualityState
	Subscribe(fn func(dto.QualityState)) (unsubscribe func())
	Close()
}

// QualityFactory binds a Quality state manager to one session.
type QualityFactory interface {
	ForSession(sessionID int64) Quality
}
