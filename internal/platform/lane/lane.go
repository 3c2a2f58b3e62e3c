// Package lane serializes the commands of one state manager.
package lane

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Lane admits one task at a time. Waiting tasks are admitted in arrival order.
type Lane struct {
	sem *semaphore.Weighted
}

func New() *Lane {
	return &Lane{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the lane is free or ctx is done.
func (l *Lane) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *Lane) Release() {
	l.sem.Release(1)
}

// Do runs fn exclusively. fn is not started if ctx ends while waiting.
func (l *Lane) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn(ctx)
}
