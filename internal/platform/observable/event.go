package observable

type pending[T any] struct {
	value T
	ok    bool
}

// Event is a one-shot signal: Fire makes a value pending until Consume resets
// it to neutral.
type Event[T any] struct {
	state *Value[pending[T]]
}

func NewEvent[T any]() *Event[T] {
	return &Event[T]{state: NewValue(pending[T]{})}
}

func (e *Event[T]) Fire(v T) {
	e.state.Set(pending[T]{value: v, ok: true})
}

// Pending reports the fired value, if any has not been consumed yet.
func (e *Event[T]) Pending() (T, bool) {
	p := e.state.Get()
	return p.value, p.ok
}

// Consume resets the event to neutral. Consuming a neutral event does nothing.
func (e *Event[T]) Consume() {
	if _, ok := e.Pending(); !ok {
		return
	}
	e.state.Set(pending[T]{})
}

// Subscribe delivers the pending state now and on every Fire or Consume.
func (e *Event[T]) Subscribe(fn func(v T, ok bool)) (unsubscribe func()) {
	return e.state.Subscribe(func(p pending[T]) { fn(p.value, p.ok) })
}

// Signal is the read side of an Event.
type Signal[T any] interface {
	Pending() (T, bool)
	Subscribe(fn func(v T, ok bool)) (unsubscribe func())
}
