package quality_test

import (
	"context"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sleeptrack/internal/modules/sleep/dto"
	"sleeptrack/internal/ui/views/quality"
)

type stubPort struct {
	set  []int
	back bool
}

func (s *stubPort) SetQuality(_ context.Context, value int) error {
	s.set = append(s.set, value)
	s.back = true
	return nil
}
func (s *stubPort) ConsumeNavigation()         { s.back = false }
func (s *stubPort) Snapshot() dto.QualityState { return dto.QualityState{NavigateBack: s.back} }

func TestCursorStaysOnScale(t *testing.T) {
	t.Parallel()
	m := quality.New(context.Background(), &stubPort{}, 1, message.NewPrinter(language.AmericanEnglish))
	if m.Cursor() != 5 {
		t.Fatalf("expected cursor to start at 5, got %d", m.Cursor())
	}
	m = m.Up()
	if m.Cursor() != 5 {
		t.Fatalf("cursor moved above 5: %d", m.Cursor())
	}
	for i := 0; i < 10; i++ {
		m = m.Down()
	}
	if m.Cursor() != 0 {
		t.Fatalf("cursor moved below 0: %d", m.Cursor())
	}
}

func TestSelectRatesAndConsumes(t *testing.T) {
	t.Parallel()
	port := &stubPort{}
	m := quality.New(context.Background(), port, 9, message.NewPrinter(language.AmericanEnglish))

	if _, cmd := m.Select(7); cmd != nil {
		t.Fatalf("expected no command for out of range selection")
	}
	m, cmd := m.Select(2)
	if cmd == nil {
		t.Fatalf("expected rating command")
	}
	msg, ok := cmd().(quality.RatedMsg)
	if !ok {
		t.Fatalf("unexpected message type")
	}
	if msg.SessionID != 9 || msg.Quality != 2 || !msg.Back || msg.Err != nil {
		t.Fatalf("unexpected rated message %+v", msg)
	}
	if port.back {
		t.Fatalf("navigate back was not consumed")
	}
	if _, again := m.Submit(); again != nil {
		t.Fatalf("expected submit to be ignored while busy")
	}
	if len(port.set) != 1 || port.set[0] != 2 {
		t.Fatalf("unexpected ratings %v", port.set)
	}
}
