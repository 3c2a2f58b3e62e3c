// Package observable provides push-based state holders for screen state:
// values that notify subscribers on change, values derived from other values,
// and one-shot events that stay pending until consumed.
package observable

import "sync"

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Value holds a T and notifies subscribers on every Set. The zero value is not
// usable; construct with NewValue.
type Value[T any] struct {
	mu     sync.RWMutex
	v      T
	nextID int
	subs   []subscriber[T]
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

func (o *Value[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

// Set stores v and calls subscribers in registration order, outside the lock.
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	o.v = v
	subs := make([]subscriber[T], len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Subscribe registers fn and immediately delivers the current value to it.
// The returned func removes the subscription and may be called more than once.
func (o *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})
	current := o.v
	o.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, s := range o.subs {
				if s.id == id {
					o.subs = append(o.subs[:i], o.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Map derives a value from src. fn must be pure; it runs on every change of src.
func Map[S, T any](src *Value[S], fn func(S) T) *Value[T] {
	dst := NewValue(fn(src.Get()))
	src.Subscribe(func(s S) { dst.Set(fn(s)) })
	return dst
}

// Observable is the read side of a Value.
type Observable[T any] interface {
	Get() T
	Subscribe(fn func(T)) (unsubscribe func())
}
