package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"

	"emberveil/combat/logging"
	"emberveil/combat/logging/abilitylog"
	"emberveil/combat/logging/combatlog"
	"emberveil/combat/logging/statuslog"
)

type abilityStats struct {
	casts     int
	hits      int
	crits     int
	backstabs int
	damage    float64
	minHit    int
	maxHit    int
}

// statsSink aggregates combat events into per-ability balance numbers. It
// plugs into the log router beside the feed so the harness sees exactly what
// observers see.
type statsSink struct {
	mu        sync.Mutex
	abilities map[string]*abilityStats
	rejects   map[string]int
	statuses  map[string]int
	defeats   int
	total     float64
}

func newStatsSink() *statsSink {
	return &statsSink{
		abilities: make(map[string]*abilityStats),
		rejects:   make(map[string]int),
		statuses:  make(map[string]int),
	}
}

func (s *statsSink) entry(name string) *abilityStats {
	stats, ok := s.abilities[name]
	if !ok {
		stats = &abilityStats{}
		s.abilities[name] = stats
	}
	return stats
}

func (s *statsSink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch payload := event.Payload.(type) {
	case combatlog.HitPayload:
		stats := s.entry(payload.Source)
		stats.hits++
		stats.damage += float64(payload.Amount)
		s.total += float64(payload.Amount)
		if payload.Critical {
			stats.crits++
		}
		if payload.Backstab {
			stats.backstabs++
		}
		if stats.minHit == 0 || payload.Amount < stats.minHit {
			stats.minHit = payload.Amount
		}
		if payload.Amount > stats.maxHit {
			stats.maxHit = payload.Amount
		}
	case combatlog.DefeatPayload:
		s.defeats++
	case abilitylog.CastPayload:
		s.entry(payload.Ability).casts++
	case abilitylog.RejectPayload:
		s.rejects[payload.Reason]++
	case statuslog.AppliedPayload:
		s.statuses[payload.Effect]++
	case statuslog.PulsedPayload:
		stats := s.entry(payload.Effect)
		stats.hits++
		stats.damage += payload.Amount
		s.total += payload.Amount
	}
	return nil
}

func (s *statsSink) Close(context.Context) error { return nil }

func (s *statsSink) report(w io.Writer, seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.abilities))
	for name := range s.abilities {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ability\tcasts\thits\tcrits\tbackstabs\tdamage\tmin\tavg\tmax")
	for _, name := range names {
		stats := s.abilities[name]
		avg := 0.0
		if stats.hits > 0 {
			avg = stats.damage / float64(stats.hits)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.0f\t%d\t%.1f\t%d\n",
			name, stats.casts, stats.hits, stats.crits, stats.backstabs,
			stats.damage, stats.minHit, avg, stats.maxHit)
	}
	tw.Flush()

	if seconds > 0 {
		fmt.Fprintf(w, "\ntotal damage %.0f over %.0fs (%.1f dps), %d defeats\n",
			s.total, seconds, s.total/seconds, s.defeats)
	}
	if len(s.statuses) > 0 {
		effects := make([]string, 0, len(s.statuses))
		for effect := range s.statuses {
			effects = append(effects, effect)
		}
		sort.Strings(effects)
		fmt.Fprint(w, "status applications:")
		for _, effect := range effects {
			fmt.Fprintf(w, " %s=%d", effect, s.statuses[effect])
		}
		fmt.Fprintln(w)
	}
	if len(s.rejects) > 0 {
		reasons := make([]string, 0, len(s.rejects))
		for reason := range s.rejects {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		fmt.Fprint(w, "rejected intents:")
		for _, reason := range reasons {
			fmt.Fprintf(w, " %s=%d", reason, s.rejects[reason])
		}
		fmt.Fprintln(w)
	}
}

var _ logging.Sink = (*statsSink)(nil)
