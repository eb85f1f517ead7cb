// Package status tracks enemy-side status effects keyed by target identity:
// stagger, freeze, poison damage-over-time, and vulnerability. Records decay
// monotonically each tick and vanish once every field reaches zero.
package status

import (
	"context"

	"emberveil/combat/arena"
	"emberveil/combat/internal/telemetry"
	"emberveil/combat/logging"
	"emberveil/combat/logging/statuslog"
)

// PoisonTickInterval is the fixed pulse cadence for poison records.
const PoisonTickInterval = 0.5

// Snapshot is the pure read view of one target's record. A missing record
// reads as all-zero with a neutral vulnerability multiplier.
type Snapshot struct {
	StaggerRemaining        float64
	FreezeRemaining         float64
	PoisonRemaining         float64
	PoisonDamagePerTick     float64
	VulnerabilityMultiplier float64
	VulnerabilityRemaining  float64
}

// Active reports whether any effect is still running.
func (s Snapshot) Active() bool {
	return s.StaggerRemaining > 0 || s.FreezeRemaining > 0 || s.PoisonRemaining > 0 || s.VulnerabilityRemaining > 0
}

type record struct {
	stagger float64
	freeze  float64

	poisonRemaining float64
	poisonPerTick   float64
	poisonNext      float64
	poisonSource    string

	vulnMultiplier float64
	vulnRemaining  float64
}

func (r *record) expired() bool {
	return r.stagger <= 0 && r.freeze <= 0 && r.poisonRemaining <= 0 && r.vulnRemaining <= 0
}

// Tracker owns all status records for one session. Not safe for concurrent
// use; Tick runs inside the session step.
type Tracker struct {
	records map[arena.TargetID]*record

	// resolve maps identities back to live targets so poison pulses can
	// apply damage. A nil resolver or missing target skips the pulse while
	// the record keeps decaying.
	resolve func(arena.TargetID) arena.Target

	publisher logging.Publisher
	actorRef  logging.EntityRef
	tick      func() uint64
	counters  *telemetry.Counters
}

func NewTracker(resolve func(arena.TargetID) arena.Target) *Tracker {
	return &Tracker{
		records:   make(map[arena.TargetID]*record),
		resolve:   resolve,
		publisher: logging.NopPublisher(),
	}
}

// Attach wires the ambient observability collaborators.
func (t *Tracker) Attach(pub logging.Publisher, actorRef logging.EntityRef, tick func() uint64, counters *telemetry.Counters) {
	if t == nil {
		return
	}
	if pub != nil {
		t.publisher = pub
	}
	if actorRef.ID != "" {
		t.actorRef = actorRef
	}
	if tick != nil {
		t.tick = tick
	}
	if counters != nil {
		t.counters = counters
	}
}

func (t *Tracker) ensure(id arena.TargetID) *record {
	rec, ok := t.records[id]
	if !ok {
		rec = &record{}
		t.records[id] = rec
	}
	return rec
}

// ApplyStagger refreshes the stagger timer to the larger of the current and
// new duration. It never shortens an existing stagger.
func (t *Tracker) ApplyStagger(id arena.TargetID, duration float64) {
	if t == nil || duration <= 0 {
		return
	}
	rec := t.ensure(id)
	if duration > rec.stagger {
		rec.stagger = duration
	}
	t.applied(id, "stagger", duration, 0)
}

// ApplyFreeze refreshes the freeze timer with the same max rule as stagger.
func (t *Tracker) ApplyFreeze(id arena.TargetID, duration float64) {
	if t == nil || duration <= 0 {
		return
	}
	rec := t.ensure(id)
	if duration > rec.freeze {
		rec.freeze = duration
	}
	t.applied(id, "freeze", duration, 0)
}

// ApplyPoison (re)starts a damage-over-time record. The first pulse fires
// one interval after application.
func (t *Tracker) ApplyPoison(id arena.TargetID, duration, damagePerTick float64, source string) {
	if t == nil || duration <= 0 || damagePerTick <= 0 {
		return
	}
	rec := t.ensure(id)
	rec.poisonRemaining = duration
	rec.poisonPerTick = damagePerTick
	rec.poisonNext = PoisonTickInterval
	rec.poisonSource = source
	t.applied(id, "poison", duration, 0)
}

// ApplyVulnerability sets the damage-taken multiplier for the duration,
// refreshing the timer to the larger value.
func (t *Tracker) ApplyVulnerability(id arena.TargetID, duration, multiplier float64) {
	if t == nil || duration <= 0 || multiplier <= 0 {
		return
	}
	rec := t.ensure(id)
	rec.vulnMultiplier = multiplier
	if duration > rec.vulnRemaining {
		rec.vulnRemaining = duration
	}
	t.applied(id, "vulnerability", duration, multiplier)
}

// Query is a pure read of one target's record.
func (t *Tracker) Query(id arena.TargetID) Snapshot {
	snap := Snapshot{VulnerabilityMultiplier: 1}
	if t == nil {
		return snap
	}
	rec, ok := t.records[id]
	if !ok {
		return snap
	}
	snap.StaggerRemaining = rec.stagger
	snap.FreezeRemaining = rec.freeze
	snap.PoisonRemaining = rec.poisonRemaining
	snap.PoisonDamagePerTick = rec.poisonPerTick
	snap.VulnerabilityRemaining = rec.vulnRemaining
	if rec.vulnRemaining > 0 {
		snap.VulnerabilityMultiplier = rec.vulnMultiplier
	}
	return snap
}

// Drop discards a target's record, called when the host removes the target.
func (t *Tracker) Drop(id arena.TargetID) {
	if t == nil {
		return
	}
	delete(t.records, id)
}

// Len reports the number of live records.
func (t *Tracker) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Tick decays every record by dt, firing poison pulses whose countdown
// elapsed. A large dt catches up with multiple pulses in one call. Records
// with every field at zero are removed.
func (t *Tracker) Tick(dt float64) {
	if t == nil || dt <= 0 {
		return
	}
	for id, rec := range t.records {
		if rec.poisonRemaining > 0 {
			budget := dt
			if budget > rec.poisonRemaining {
				budget = rec.poisonRemaining
			}
			rec.poisonNext -= budget
			for rec.poisonNext <= 0 && rec.poisonRemaining > 0 {
				t.pulsePoison(id, rec)
				rec.poisonNext += PoisonTickInterval
			}
			rec.poisonRemaining -= dt
			if rec.poisonRemaining < 0 {
				rec.poisonRemaining = 0
			}
		}
		rec.stagger -= dt
		if rec.stagger < 0 {
			rec.stagger = 0
		}
		rec.freeze -= dt
		if rec.freeze < 0 {
			rec.freeze = 0
		}
		if rec.vulnRemaining > 0 {
			rec.vulnRemaining -= dt
			if rec.vulnRemaining <= 0 {
				rec.vulnRemaining = 0
				rec.vulnMultiplier = 0
			}
		}
		if rec.expired() {
			statuslog.Expired(context.Background(), t.publisher, t.now(), logging.TargetRef(string(id)), statuslog.ExpiredPayload{Effect: "all"})
			delete(t.records, id)
		}
	}
}

func (t *Tracker) pulsePoison(id arena.TargetID, rec *record) {
	if t.counters != nil {
		t.counters.StatusPulses.Add(1)
	}
	statuslog.Pulsed(context.Background(), t.publisher, t.now(), logging.TargetRef(string(id)), statuslog.PulsedPayload{Effect: "poison", Amount: rec.poisonPerTick})
	if t.resolve == nil {
		return
	}
	target := t.resolve(id)
	if target == nil || !target.Alive() {
		return
	}
	target.TakeDamage(rec.poisonPerTick)
}

func (t *Tracker) applied(id arena.TargetID, effect string, duration, multiplier float64) {
	if t.counters != nil {
		t.counters.StatusApplied.Add(1)
	}
	payload := statuslog.AppliedPayload{Effect: effect, DurationMs: int64(duration * 1000)}
	if multiplier > 0 {
		payload.Multiplier = multiplier
	}
	statuslog.Applied(context.Background(), t.publisher, t.now(), t.actorRef, logging.TargetRef(string(id)), payload)
}

func (t *Tracker) now() uint64 {
	if t == nil || t.tick == nil {
		return 0
	}
	return t.tick()
}
