package logging

import (
	"context"
	"log"
	"os"
	"sync/atomic"
	"time"
)

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

const maxBackoffShift = 5

// Router fans events out to sinks from a single dispatch goroutine fed by a
// bounded queue. Publish never blocks the frame loop: when a backlog forms
// the event is dropped and counted. A sink that returns an error is skipped
// until its backoff window passes, so one broken sink cannot stall delivery
// to the healthy ones.
type Router struct {
	cfg      Config
	clock    Clock
	queue    chan Event
	outputs  []*output
	fields   map[string]any
	fallback *log.Logger

	quit    chan struct{}
	drained chan struct{}
	closed  atomic.Bool

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
	nextDropWarn atomic.Int64
}

// output is one sink's delivery state. Only the dispatch goroutine touches
// the failure bookkeeping.
type output struct {
	name     string
	sink     Sink
	failures int
	retryAt  time.Time
	skipped  uint64
}

type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}
	r := &Router{
		cfg:      cfg,
		clock:    clock,
		queue:    make(chan Event, bufferSize),
		fields:   cfg.CloneFields(),
		fallback: log.New(os.Stderr, "[logging] ", log.LstdFlags),
		quit:     make(chan struct{}),
		drained:  make(chan struct{}),
	}
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.outputs = append(r.outputs, &output{name: named.Name, sink: named.Sink})
	}
	go r.dispatch()
	return r, nil
}

func (r *Router) dispatch() {
	defer close(r.drained)
	for {
		select {
		case event := <-r.queue:
			r.deliver(event)
		case <-r.quit:
			// Flush whatever Publish managed to queue before Close.
			for {
				select {
				case event := <-r.queue:
					r.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (r *Router) deliver(event Event) {
	if override, ok := r.cfg.TypeSeverity[event.Type]; ok {
		event.Severity = override
	}
	if event.Severity < r.cfg.MinimumSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		event = cloneForFields(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.fields))
		}
		for k, v := range r.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}
	r.eventsTotal.Add(1)

	now := r.clock.Now()
	for _, out := range r.outputs {
		if out.failures > 0 && now.Before(out.retryAt) {
			out.skipped++
			continue
		}
		if err := out.sink.Write(event); err != nil {
			r.penalize(out, now, err)
			continue
		}
		if out.failures > 0 {
			r.fallback.Printf("sink %s recovered, %d events skipped", out.name, out.skipped)
			out.failures = 0
			out.skipped = 0
			out.retryAt = time.Time{}
		}
	}
}

// penalize opens the sink's backoff window; repeated failures double it up
// to 32 seconds.
func (r *Router) penalize(out *output, now time.Time, err error) {
	out.failures++
	shift := out.failures
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	delay := time.Duration(1<<shift) * time.Second
	out.retryAt = now.Add(delay)
	r.fallback.Printf("sink %s failed: %v (backing off %s)", out.name, err, delay)
}

func (r *Router) Publish(ctx context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.noteDrop(event)
	}
}

func (r *Router) noteDrop(event Event) {
	r.droppedTotal.Add(1)
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now().UnixNano()
	next := r.nextDropWarn.Load()
	if next == 0 || now >= next {
		if r.nextDropWarn.CompareAndSwap(next, now+interval.Nanoseconds()) {
			r.fallback.Printf("dropping event type=%s tick=%d", event.Type, event.Tick)
		}
	}
}

// Close drains the queue, stops dispatch, and closes every sink. Events
// published after Close are discarded.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(r.quit)
	select {
	case <-r.drained:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, out := range r.outputs {
		if err := out.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}
