// Package arena holds the collaborator contracts the combat core is driven
// through: the enemy registry, the controlled actor's state, and the
// fire-and-forget presentation hooks. The core never owns any of these; the
// host wires them in at session construction.
package arena

import "emberveil/combat/geom"

// TargetID identifies a target for the lifetime of its registration. The host
// must not reuse an ID after RemoveTarget until the old target is gone.
type TargetID string

// Target is the opaque handle for an enemy or boss. All methods are
// synchronous queries answered by the host's world state.
type Target interface {
	ID() TargetID
	Position() geom.Vec
	Facing() geom.Vec
	Alive() bool
	Health() float64
	TakeDamage(amount float64)
	HitRadius() float64
	Boss() bool
}

// ActorState exposes the controlled actor to the core. Position and facing
// are owned by the movement layer; the core only reads them.
type ActorState interface {
	Position() geom.Vec
	Facing() geom.Vec
	WeaponAnchor() geom.Vec
	TryConsumeStamina(amount float64) bool
	Heal(amount float64)
}

// VFXPayload carries enough context for particle bursts and camera shake.
type VFXPayload struct {
	Position geom.Vec
	Charges  int
	Damage   int
	Critical bool
	Backstab bool
	Boss     bool
}

// VFXSink receives fire-and-forget presentation notifications. The core
// never waits on these calls.
type VFXSink interface {
	AbilityFired(tag string, payload VFXPayload)
	Hit(tag string, payload VFXPayload)
	Expired(tag string, payload VFXPayload)
}

type nopVFX struct{}

func (nopVFX) AbilityFired(string, VFXPayload) {}
func (nopVFX) Hit(string, VFXPayload)          {}
func (nopVFX) Expired(string, VFXPayload)      {}

func NopVFX() VFXSink {
	return nopVFX{}
}

// Emitter publishes UI-facing events such as damage numbers.
type Emitter interface {
	Emit(event string, payload any)
}

type EmitterFunc func(event string, payload any)

func (f EmitterFunc) Emit(event string, payload any) {
	if f == nil {
		return
	}
	f(event, payload)
}

func NopEmitter() Emitter {
	return EmitterFunc(nil)
}

// EventDamageNumber is emitted once per resolved hit.
const EventDamageNumber = "damageNumber"

// DamageNumberPayload feeds the floating combat text layer.
type DamageNumberPayload struct {
	Target   TargetID `json:"target"`
	Position geom.Vec `json:"position"`
	Damage   int      `json:"damage"`
	Critical bool     `json:"critical"`
	Backstab bool     `json:"backstab"`
}

// Registry is the non-owning flat list of live targets. The host adds and
// removes entries between ticks; the core only scans it. Not safe for
// concurrent use, matching the single-threaded tick model.
type Registry struct {
	targets []Target
}

func NewRegistry() *Registry {
	return &Registry{targets: make([]Target, 0, 16)}
}

func (r *Registry) AddTarget(t Target) {
	if r == nil || t == nil {
		return
	}
	r.targets = append(r.targets, t)
}

func (r *Registry) RemoveTarget(id TargetID) bool {
	if r == nil {
		return false
	}
	for i, t := range r.targets {
		if t.ID() != id {
			continue
		}
		r.targets = append(r.targets[:i], r.targets[i+1:]...)
		return true
	}
	return false
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.targets)
}

func (r *Registry) Lookup(id TargetID) Target {
	if r == nil {
		return nil
	}
	for _, t := range r.targets {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

// Snapshot appends the current targets to dst and returns it. Hit scans
// iterate the snapshot so a removal mid-scan cannot skip or double-visit
// entries; dst lets callers reuse a scratch slice across ticks.
func (r *Registry) Snapshot(dst []Target) []Target {
	if r == nil {
		return dst
	}
	return append(dst, r.targets...)
}

// Nearest returns the closest alive target to pos within reach, or nil.
func (r *Registry) Nearest(pos geom.Vec, reach float64) Target {
	if r == nil {
		return nil
	}
	var best Target
	bestDist := reach
	for _, t := range r.targets {
		if t == nil || !t.Alive() {
			continue
		}
		d := geom.Dist(pos, t.Position())
		if d <= bestDist || (best == nil && d <= reach) {
			best = t
			bestDist = d
		}
	}
	return best
}

// NearestInCone returns the closest alive target inside the forward cone.
// Each target's own hit radius widens its effective reach.
func (r *Registry) NearestInCone(origin, forward geom.Vec, reach, minDot float64) Target {
	if r == nil {
		return nil
	}
	var best Target
	bestDist := 0.0
	for _, t := range r.targets {
		if t == nil || !t.Alive() {
			continue
		}
		if !geom.InCone(origin, forward, t.Position(), reach+t.HitRadius(), minDot) {
			continue
		}
		d := geom.Dist(origin, t.Position())
		if best == nil || d < bestDist {
			best = t
			bestDist = d
		}
	}
	return best
}
