package observable_test

import (
	"sync"
	"testing"

	"sleeptrack/internal/platform/observable"
)

func TestSubscribeDeliversCurrentThenUpdates(t *testing.T) {
	t.Parallel()
	v := observable.NewValue(1)
	var got []int
	unsubscribe := v.Subscribe(func(n int) { got = append(got, n) })
	v.Set(2)
	unsubscribe()
	unsubscribe()
	v.Set(3)

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("expected [1 2], got %v", got)
	}
	if v.Get() != 3 {
		t.Fatalf("expected 3, got %d", v.Get())
	}
}

func TestMapRecomputesOnEveryChange(t *testing.T) {
	t.Parallel()
	src := observable.NewValue[*int](nil)
	visible := observable.Map(src, func(p *int) bool { return p == nil })
	if !visible.Get() {
		t.Fatalf("expected derived true for nil source")
	}
	n := 4
	src.Set(&n)
	if visible.Get() {
		t.Fatalf("expected derived false after set")
	}
	src.Set(nil)
	if !visible.Get() {
		t.Fatalf("expected derived true after reset")
	}
}

func TestSubscribersCalledInRegistrationOrder(t *testing.T) {
	t.Parallel()
	v := observable.NewValue("")
	var order []string
	v.Subscribe(func(string) { order = append(order, "a") })
	v.Subscribe(func(string) { order = append(order, "b") })
	order = order[:0]
	v.Set("x")
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestConcurrentSetAndGet(t *testing.T) {
	t.Parallel()
	v := observable.NewValue(0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v.Set(n)
			_ = v.Get()
		}(i)
	}
	wg.Wait()
}

func TestEventConsumeIsIdempotent(t *testing.T) {
	t.Parallel()
	e := observable.NewEvent[int64]()
	if _, ok := e.Pending(); ok {
		t.Fatalf("new event must be neutral")
	}
	notifications := 0
	e.Subscribe(func(int64, bool) { notifications++ })
	notifications = 0

	e.Fire(42)
	if v, ok := e.Pending(); !ok || v != 42 {
		t.Fatalf("expected pending 42, got %d %v", v, ok)
	}
	e.Consume()
	e.Consume()
	if _, ok := e.Pending(); ok {
		t.Fatalf("expected neutral after consume")
	}
	if notifications != 2 {
		t.Fatalf("expected fire and one consume notification, got %d", notifications)
	}
}
