package telemetry

import "testing"

func TestCountersSnapshot(t *testing.T) {
	var c Counters
	c.Hits.Add(3)
	c.PoolReuses.Add(2)
	snap := c.Snapshot()
	if snap.Hits != 3 {
		t.Fatalf("Hits = %d, want 3", snap.Hits)
	}
	if snap.PoolReuses != 2 {
		t.Fatalf("PoolReuses = %d, want 2", snap.PoolReuses)
	}
}

func TestCountersMetricsKeys(t *testing.T) {
	var c Counters
	c.Add(KeyRejectedIntents, 5)
	c.Store(KeyUltimateCasts, 7)
	c.Add("unknown_key", 9)
	snap := c.Snapshot()
	if snap.RejectedIntents != 5 {
		t.Fatalf("RejectedIntents = %d, want 5", snap.RejectedIntents)
	}
	if snap.UltimateCasts != 7 {
		t.Fatalf("UltimateCasts = %d, want 7", snap.UltimateCasts)
	}
}

func TestNilCountersAreSafe(t *testing.T) {
	var c *Counters
	c.Add(KeyHits, 1)
	c.Store(KeyHits, 1)
	if snap := c.Snapshot(); snap.Hits != 0 {
		t.Fatalf("nil counters must snapshot zero")
	}
}

func TestLoggerFunc(t *testing.T) {
	var got string
	logger := LoggerFunc(func(format string, args ...any) {
		got = format
	})
	logger.Printf("hello %s", "world")
	if got != "hello %s" {
		t.Fatalf("LoggerFunc did not forward format")
	}
	var nilFn LoggerFunc
	nilFn.Printf("must not panic")
}
