package connectivity

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWatcher_EdgeTriggered(t *testing.T) {
	var down bool
	w := NewWatcher(ProberFunc(func(context.Context) error {
		if down {
			return errors.New("connection refused")
		}
		return nil
	}), time.Second, time.Second, zap.NewNop())

	var events []Status
	w.Subscribe(func(ev Event) { events = append(events, ev.Status) })

	ctx := context.Background()
	w.Check(ctx)
	w.Check(ctx)
	down = true
	w.Check(ctx)
	w.Check(ctx)
	down = false
	w.Check(ctx)

	want := []Status{Online, Offline, Online}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
	if w.Status() != Online {
		t.Fatalf("status = %s", w.Status())
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	w := NewWatcher(ProberFunc(func(context.Context) error { return nil }), 5*time.Millisecond, time.Second, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if w.Status() != Online {
		t.Fatalf("status = %s", w.Status())
	}
}
