// Package projectile runs the pooled lifecycle for spawned combat effects:
// bolts, blades, beams, and orbs. Instances integrate each tick, age out,
// detect hits against the target registry, and are recycled through small
// per-kind free lists to keep steady-state allocation flat.
package projectile

import (
	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/geom"
	"emberveil/combat/internal/guard"
	"emberveil/combat/internal/telemetry"
)

// Kind tags the effect archetype; each kind pools separately.
type Kind uint8

const (
	KindBolt Kind = iota
	KindBlade
	KindBeam
	KindOrb
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindBolt:
		return "bolt"
	case KindBlade:
		return "blade"
	case KindBeam:
		return "beam"
	case KindOrb:
		return "orb"
	default:
		return "unknown"
	}
}

// defaultPadding widens the hit test beyond the target's own radius; wider
// effect shapes get more slack.
var defaultPadding = [kindCount]float64{
	KindBolt:  0.2,
	KindBlade: 0.4,
	KindBeam:  0.6,
	KindOrb:   0.8,
}

// Handle identifies a live instance. The zero handle is never issued.
type Handle uint64

const NoHandle Handle = 0

// SpawnConfig describes one effect to launch.
type SpawnConfig struct {
	Kind        Kind
	Origin      geom.Vec
	Direction   geom.Vec
	Speed       float64
	Damage      float64
	MaxLifetime float64
	// Pierce lets the instance survive its first hit and strike further
	// distinct targets.
	Pierce bool
	// Source scales resource gains on hit.
	Source economy.HitKind
	// Tag names the effect for VFX hooks and the combat log.
	Tag string
	// SplashRadius > 0 turns the first hit into a one-shot AoE burst:
	// every other target within the radius takes Damage*SplashScale.
	SplashRadius float64
	SplashScale  float64
	// HitPadding overrides the kind's default padding when > 0.
	HitPadding float64
	// OnHit fires for every landed hit of this instance only, after the
	// manager-wide hook. Splash secondaries count.
	OnHit func(target arena.Target, result damage.Result)
}

// HitHook lets the session forward landed hits to the active kit.
type HitHook func(source economy.HitKind, target arena.Target, result damage.Result)

// Config tunes the manager.
type Config struct {
	// PoolCapacity bounds each kind's free list. Default 8.
	PoolCapacity int
}

func (c Config) normalized() Config {
	if c.PoolCapacity <= 0 {
		c.PoolCapacity = 8
	}
	return c
}

type instance struct {
	handle Handle
	kind   Kind

	pos geom.Vec
	vel geom.Vec

	lifetime    float64
	maxLifetime float64

	damageAmount float64
	pierce       bool
	source       economy.HitKind
	tag          string
	splashRadius float64
	splashScale  float64
	padding      float64
	onHit        func(target arena.Target, result damage.Result)

	hit map[arena.TargetID]struct{}

	// pooled records whether this run of the instance came from a free
	// list; fresh fallback allocations report through telemetry instead.
	pooled   bool
	live     bool
	disposed bool
}

func (inst *instance) reset(cfg SpawnConfig, dir geom.Vec, handle Handle) {
	inst.handle = handle
	inst.kind = cfg.Kind
	inst.pos = cfg.Origin
	inst.vel = dir.Scale(cfg.Speed)
	inst.lifetime = 0
	inst.maxLifetime = cfg.MaxLifetime
	inst.damageAmount = cfg.Damage
	inst.pierce = cfg.Pierce
	inst.source = cfg.Source
	inst.tag = cfg.Tag
	inst.splashRadius = cfg.SplashRadius
	inst.splashScale = cfg.SplashScale
	inst.padding = cfg.HitPadding
	if inst.padding <= 0 && cfg.Kind < kindCount {
		inst.padding = defaultPadding[cfg.Kind]
	}
	inst.onHit = cfg.OnHit
	inst.live = true
	inst.disposed = false
}

// Manager owns every live instance and the per-kind pools. Not safe for
// concurrent use; Tick runs inside the session step.
type Manager struct {
	cfg      Config
	pipeline *damage.Pipeline
	registry *arena.Registry
	econ     *economy.Economy
	vfx      arena.VFXSink
	hitHook  HitHook
	counters *telemetry.Counters

	live     []*instance
	incoming []*instance
	free     [kindCount][]*instance

	nextHandle uint64
	scratch    []arena.Target
}

func NewManager(cfg Config, pipeline *damage.Pipeline, registry *arena.Registry, econ *economy.Economy, vfx arena.VFXSink) *Manager {
	if vfx == nil {
		vfx = arena.NopVFX()
	}
	return &Manager{
		cfg:      cfg.normalized(),
		pipeline: pipeline,
		registry: registry,
		econ:     econ,
		vfx:      vfx,
	}
}

// SetHitHook installs the kit forwarding hook.
func (m *Manager) SetHitHook(hook HitHook) {
	if m == nil {
		return
	}
	m.hitHook = hook
}

// SetCounters wires telemetry.
func (m *Manager) SetCounters(counters *telemetry.Counters) {
	if m == nil {
		return
	}
	m.counters = counters
}

// Spawn launches an effect and returns its handle. A zero-length direction
// is an invariant violation and spawns nothing.
func (m *Manager) Spawn(cfg SpawnConfig) Handle {
	if m == nil {
		return NoHandle
	}
	dir, ok := cfg.Direction.Normalized()
	if !ok {
		guard.Failf("projectile: zero-length direction for %s %q", cfg.Kind, cfg.Tag)
		if m.counters != nil {
			m.counters.InvariantNoops.Add(1)
		}
		return NoHandle
	}
	if cfg.MaxLifetime <= 0 || cfg.Kind >= kindCount {
		guard.Failf("projectile: invalid spawn config kind=%d lifetime=%f", cfg.Kind, cfg.MaxLifetime)
		if m.counters != nil {
			m.counters.InvariantNoops.Add(1)
		}
		return NoHandle
	}

	inst := m.acquire(cfg.Kind)
	m.nextHandle++
	inst.reset(cfg, dir, Handle(m.nextHandle))
	m.incoming = append(m.incoming, inst)
	return inst.handle
}

func (m *Manager) acquire(kind Kind) *instance {
	pool := m.free[kind]
	if n := len(pool); n > 0 {
		inst := pool[n-1]
		m.free[kind] = pool[:n-1]
		inst.pooled = true
		if m.counters != nil {
			m.counters.PoolReuses.Add(1)
		}
		return inst
	}
	if m.counters != nil {
		m.counters.PoolAllocs.Add(1)
	}
	return &instance{hit: make(map[arena.TargetID]struct{}, 4), pooled: false}
}

// release clears the instance and returns it to its pool when capacity
// allows; otherwise the instance is torn down for good.
func (m *Manager) release(inst *instance) {
	inst.live = false
	inst.onHit = nil
	for id := range inst.hit {
		delete(inst.hit, id)
	}
	if len(m.free[inst.kind]) < m.cfg.PoolCapacity {
		m.free[inst.kind] = append(m.free[inst.kind], inst)
		return
	}
	if m.counters != nil {
		m.counters.PoolOverflows.Add(1)
	}
	inst.hit = nil
}

// Dispose forces early removal of a live instance. Returns false when the
// handle no longer refers to anything.
func (m *Manager) Dispose(handle Handle) bool {
	if m == nil || handle == NoHandle {
		return false
	}
	if inst := m.find(handle); inst != nil {
		inst.disposed = true
		return true
	}
	return false
}

func (m *Manager) find(handle Handle) *instance {
	for _, inst := range m.live {
		if inst.handle == handle && inst.live && !inst.disposed {
			return inst
		}
	}
	for _, inst := range m.incoming {
		if inst.handle == handle && inst.live && !inst.disposed {
			return inst
		}
	}
	return nil
}

// LiveCount reports instances that will participate in future ticks.
func (m *Manager) LiveCount() int {
	if m == nil {
		return 0
	}
	count := 0
	for _, inst := range m.live {
		if inst.live && !inst.disposed {
			count++
		}
	}
	for _, inst := range m.incoming {
		if inst.live && !inst.disposed {
			count++
		}
	}
	return count
}

// PoolSize reports the free-list length for a kind.
func (m *Manager) PoolSize(kind Kind) int {
	if m == nil || kind >= kindCount {
		return 0
	}
	return len(m.free[kind])
}

// Tick integrates and collides every live instance, then admits this tick's
// spawns so they first advance next frame. The live slice is compacted in
// place; an externally removed target mid-scan cannot skip entries because
// hit detection runs against a snapshot.
func (m *Manager) Tick(dt float64) {
	if m == nil || dt <= 0 {
		return
	}
	m.scratch = m.scratch[:0]
	if m.registry != nil {
		m.scratch = m.registry.Snapshot(m.scratch)
	}

	kept := m.live[:0]
	for _, inst := range m.live {
		if inst.disposed {
			m.release(inst)
			continue
		}
		inst.pos = inst.pos.Add(inst.vel.Scale(dt))
		inst.lifetime += dt
		if inst.lifetime >= inst.maxLifetime {
			m.vfx.Expired(inst.tag, arena.VFXPayload{Position: inst.pos})
			if m.counters != nil {
				m.counters.ProjectilesExpired.Add(1)
			}
			m.release(inst)
			continue
		}
		if m.collide(inst) {
			m.release(inst)
			continue
		}
		kept = append(kept, inst)
	}
	m.live = kept

	for _, inst := range m.incoming {
		if inst.disposed {
			m.release(inst)
			continue
		}
		m.live = append(m.live, inst)
	}
	m.incoming = m.incoming[:0]
}

// collide scans the target snapshot and reports whether the instance was
// consumed by a hit.
func (m *Manager) collide(inst *instance) bool {
	for _, target := range m.scratch {
		if target == nil || !target.Alive() {
			continue
		}
		id := target.ID()
		if _, seen := inst.hit[id]; seen {
			continue
		}
		radius := target.HitRadius() + inst.padding
		if !geom.WithinRadius(inst.pos, target.Position(), radius) {
			continue
		}

		inst.hit[id] = struct{}{}
		result := m.pipeline.Strike(inst.damageAmount, target, inst.tag)
		if result.Amount > 0 {
			if m.econ != nil {
				m.econ.AddUltimate(inst.source)
			}
			if m.hitHook != nil {
				m.hitHook(inst.source, target, result)
			}
			if inst.onHit != nil {
				inst.onHit(target, result)
			}
		}
		m.vfx.Hit(inst.tag, arena.VFXPayload{
			Position: target.Position(),
			Damage:   result.Amount,
			Critical: result.Critical,
			Backstab: result.Backstab,
			Boss:     target.Boss(),
		})

		if inst.splashRadius > 0 {
			m.burst(inst, target)
			return true
		}
		if !inst.pierce {
			return true
		}
	}
	return false
}

// burst applies the reduced-damage secondary hit around the primary impact.
// The hit set is not consulted; the burst resolves once and consumes the
// instance.
func (m *Manager) burst(inst *instance, primary arena.Target) {
	center := primary.Position()
	scale := inst.splashScale
	if scale <= 0 {
		scale = 0.5
	}
	for _, target := range m.scratch {
		if target == nil || target == primary || !target.Alive() {
			continue
		}
		if !geom.WithinRadius(center, target.Position(), inst.splashRadius+target.HitRadius()) {
			continue
		}
		result := m.pipeline.Strike(inst.damageAmount*scale, target, inst.tag+"_splash")
		if result.Amount > 0 {
			if m.econ != nil {
				m.econ.AddUltimate(inst.source)
			}
			if m.hitHook != nil {
				m.hitHook(inst.source, target, result)
			}
			if inst.onHit != nil {
				inst.onHit(target, result)
			}
		}
		m.vfx.Hit(inst.tag+"_splash", arena.VFXPayload{
			Position: target.Position(),
			Damage:   result.Amount,
			Critical: result.Critical,
			Backstab: result.Backstab,
			Boss:     target.Boss(),
		})
	}
}
