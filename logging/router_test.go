package logging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type captureSink struct {
	events chan Event
}

func (s *captureSink) Write(event Event) error {
	s.events <- event
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

func newTestRouter(t *testing.T, cfg Config) (*Router, *captureSink) {
	t.Helper()
	sink := &captureSink{events: make(chan Event, 64)}
	router, err := NewRouter(ClockFunc(func() time.Time {
		return time.Unix(0, 0)
	}), cfg, []NamedSink{{Name: "capture", Sink: sink}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = router.Close(ctx)
	})
	return router, sink
}

func waitForEvent(t *testing.T, sink *captureSink) Event {
	t.Helper()
	select {
	case event := <-sink.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func TestRouterForwardsToSink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinimumSeverity = SeverityDebug
	router, sink := newTestRouter(t, cfg)

	router.Publish(context.Background(), Event{Type: "combat.hit", Tick: 7, Severity: SeverityInfo})
	event := waitForEvent(t, sink)
	if event.Type != "combat.hit" || event.Tick != 7 {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.Time.IsZero() {
		t.Fatalf("expected router to stamp time")
	}
}

func TestRouterFiltersBySeverity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinimumSeverity = SeverityWarn
	router, sink := newTestRouter(t, cfg)

	router.Publish(context.Background(), Event{Type: "ability.reject", Severity: SeverityDebug})
	router.Publish(context.Background(), Event{Type: "combat.hit", Severity: SeverityWarn})
	event := waitForEvent(t, sink)
	if event.Type != "combat.hit" {
		t.Fatalf("expected debug event to be filtered, got %s", event.Type)
	}
}

func TestRouterReclassifiesEventTypes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinimumSeverity = SeverityInfo
	cfg.TypeSeverity = map[EventType]Severity{
		"combat.hit":     SeverityDebug,
		"ability.reject": SeverityWarn,
	}
	router, sink := newTestRouter(t, cfg)

	router.Publish(context.Background(), Event{Type: "combat.hit", Severity: SeverityInfo})
	router.Publish(context.Background(), Event{Type: "ability.reject", Severity: SeverityDebug})
	event := waitForEvent(t, sink)
	if event.Type != "ability.reject" {
		t.Fatalf("expected demoted hit to be filtered, got %s", event.Type)
	}
	if event.Severity != SeverityWarn {
		t.Fatalf("severity = %d, want promoted warn", event.Severity)
	}
}

type flakySink struct {
	fail     atomic.Bool
	attempts chan Event
}

func (s *flakySink) Write(event Event) error {
	s.attempts <- event
	if s.fail.Load() {
		return errors.New("write refused")
	}
	return nil
}

func (s *flakySink) Close(context.Context) error { return nil }

func TestRouterBacksOffFailingSinkWithoutStallingOthers(t *testing.T) {
	var seconds atomic.Int64
	clock := ClockFunc(func() time.Time {
		return time.Unix(seconds.Load(), 0)
	})
	flaky := &flakySink{attempts: make(chan Event, 16)}
	flaky.fail.Store(true)
	healthy := &captureSink{events: make(chan Event, 16)}

	cfg := DefaultConfig()
	cfg.MinimumSeverity = SeverityDebug
	router, err := NewRouter(clock, cfg, []NamedSink{
		{Name: "flaky", Sink: flaky},
		{Name: "healthy", Sink: healthy},
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = router.Close(ctx)
	})

	ctx := context.Background()
	router.Publish(ctx, Event{Type: "combat.hit", Tick: 1, Severity: SeverityInfo})
	waitForEvent(t, healthy)
	select {
	case <-flaky.attempts:
	case <-time.After(2 * time.Second):
		t.Fatalf("first write never reached the failing sink")
	}

	// The clock has not moved, so the second event must skip the failing
	// sink entirely while the healthy one still receives it. Sinks are
	// written in order, so once the healthy sink has the event the skip
	// already happened.
	router.Publish(ctx, Event{Type: "combat.hit", Tick: 2, Severity: SeverityInfo})
	waitForEvent(t, healthy)
	if got := len(flaky.attempts); got != 0 {
		t.Fatalf("failing sink was written %d times inside its backoff window", got)
	}

	flaky.fail.Store(false)
	seconds.Store(10) // well past the 2s first backoff
	router.Publish(ctx, Event{Type: "combat.hit", Tick: 3, Severity: SeverityInfo})
	select {
	case event := <-flaky.attempts:
		if event.Tick != 3 {
			t.Fatalf("recovered sink got tick %d, want 3", event.Tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("sink never retried after its backoff passed")
	}
}

func TestRouterAppliesStaticFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fields = map[string]any{"session": "abc"}
	router, sink := newTestRouter(t, cfg)

	router.Publish(context.Background(), Event{Type: "combat.hit", Severity: SeverityInfo})
	event := waitForEvent(t, sink)
	if event.Extra["session"] != "abc" {
		t.Fatalf("expected static field, got %+v", event.Extra)
	}
}

func TestRouterIgnoresUntypedEvents(t *testing.T) {
	router, sink := newTestRouter(t, DefaultConfig())
	router.Publish(context.Background(), Event{Severity: SeverityError})
	select {
	case event := <-sink.events:
		t.Fatalf("expected no event, got %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWithFieldsDoesNotOverrideExisting(t *testing.T) {
	var got Event
	pub := WithFields(PublisherFunc(func(_ context.Context, event Event) {
		got = event
	}), map[string]any{"kit": "frost", "run": "r1"})
	pub.Publish(context.Background(), Event{Type: "x"}.WithExtra("kit", "venom"))
	if got.Extra["kit"] != "venom" {
		t.Fatalf("existing extra must win, got %v", got.Extra["kit"])
	}
	if got.Extra["run"] != "r1" {
		t.Fatalf("missing injected field, got %+v", got.Extra)
	}
}
