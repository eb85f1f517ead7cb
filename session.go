// Package combat assembles the combat core for one controlled actor: ability
// state machines, the damage pipeline, pooled projectiles, the resource
// economy, and enemy status tracking, all stepped synchronously by the host's
// frame loop.
package combat

import (
	"errors"

	"emberveil/combat/ability"
	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/internal/seed"
	"emberveil/combat/internal/telemetry"
	"emberveil/combat/kit"
	"emberveil/combat/logging"
	"emberveil/combat/projectile"
	"emberveil/combat/status"
)

// Config wires a session. Kit and Actor are required; everything else
// defaults sensibly.
type Config struct {
	// Kit is the active loadout strategy.
	Kit kit.Strategy
	// Actor is the host-owned pose and stamina state of the controlled
	// actor.
	Actor arena.ActorState
	// ActorID tags the actor in emitted events. Default "actor".
	ActorID string
	// Seed roots the deterministic RNG streams. Default seed.DefaultRoot.
	Seed string

	Economy     economy.Config
	Projectiles projectile.Config

	// VFX, Emitter, and Publisher are optional presentation and
	// observability collaborators; nil means no-op.
	VFX       arena.VFXSink
	Emitter   arena.Emitter
	Publisher logging.Publisher
}

// Session is the combat core for one actor. Not safe for concurrent use:
// the host calls Step once per simulation tick and must never re-enter it.
type Session struct {
	registry    *arena.Registry
	econ        *economy.Economy
	statuses    *status.Tracker
	pipeline    *damage.Pipeline
	projectiles *projectile.Manager
	controller  *ability.Controller

	counters telemetry.Counters
	tick     uint64
	elapsed  float64
}

// NewSession builds and binds the component set.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Kit == nil {
		return nil, errors.New("combat: config requires a kit")
	}
	if cfg.Actor == nil {
		return nil, errors.New("combat: config requires actor state")
	}
	if cfg.ActorID == "" {
		cfg.ActorID = "actor"
	}
	if cfg.Seed == "" {
		cfg.Seed = seed.DefaultRoot
	}
	if cfg.VFX == nil {
		cfg.VFX = arena.NopVFX()
	}
	if cfg.Emitter == nil {
		cfg.Emitter = arena.NopEmitter()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}

	s := &Session{registry: arena.NewRegistry()}
	s.econ = economy.New(cfg.Economy)
	s.statuses = status.NewTracker(s.registry.Lookup)
	s.pipeline = damage.NewPipeline(seed.Rand(cfg.Seed, "crit"), s.econ, s.statuses, cfg.Actor)
	s.projectiles = projectile.NewManager(cfg.Projectiles, s.pipeline, s.registry, s.econ, cfg.VFX)
	s.projectiles.SetCounters(&s.counters)

	actorRef := logging.ActorRef(cfg.ActorID)
	tick := func() uint64 { return s.tick }
	s.econ.Attach(cfg.Publisher, actorRef, tick, &s.counters)
	s.statuses.Attach(cfg.Publisher, actorRef, tick, &s.counters)
	s.pipeline.Attach(cfg.Emitter, cfg.Publisher, actorRef, tick, &s.counters)

	rt := &kit.Runtime{
		Registry:    s.registry,
		Actor:       cfg.Actor,
		Economy:     s.econ,
		Statuses:    s.statuses,
		Pipeline:    s.pipeline,
		Projectiles: s.projectiles,
		VFX:         cfg.VFX,
		Emitter:     cfg.Emitter,
		Publisher:   cfg.Publisher,
		ActorRef:    actorRef,
		Tick:        tick,
		Counters:    &s.counters,
		RNG:         seed.Rand(cfg.Seed, "kit"),
	}
	s.controller = ability.NewController(rt, cfg.Kit)
	return s, nil
}

// Step advances the core by dt against one frame of intent. Order within a
// tick is fixed: ability state machines first, then projectile integration,
// then status decay, so an effect spawned this tick first advances next tick
// and a status applied this tick is visible to next tick's queries.
func (s *Session) Step(dt float64, intent ability.Intent) {
	if s == nil || dt <= 0 {
		return
	}
	s.tick++
	s.elapsed += dt

	s.controller.Update(dt, intent)
	s.projectiles.Tick(dt)
	s.statuses.Tick(dt)

	s.econ.Advance(dt)
	s.pipeline.Advance(dt)
}

// AddTarget registers an enemy with the hit-detection scans.
func (s *Session) AddTarget(t arena.Target) {
	if s == nil {
		return
	}
	s.registry.AddTarget(t)
}

// RemoveTarget unregisters an enemy and drops its status record.
func (s *Session) RemoveTarget(id arena.TargetID) bool {
	if s == nil {
		return false
	}
	removed := s.registry.RemoveTarget(id)
	if removed {
		s.statuses.Drop(id)
	}
	return removed
}

// Tick reports the number of completed steps.
func (s *Session) Tick() uint64 {
	if s == nil {
		return 0
	}
	return s.tick
}

// Elapsed reports total simulated time.
func (s *Session) Elapsed() float64 {
	if s == nil {
		return 0
	}
	return s.elapsed
}

// Economy exposes the resource counters for host UI reads.
func (s *Session) Economy() *economy.Economy { return s.econ }

// Statuses exposes the enemy status tracker for host UI reads.
func (s *Session) Statuses() *status.Tracker { return s.statuses }

// Controller exposes cooldown and channel queries.
func (s *Session) Controller() *ability.Controller { return s.controller }

// Projectiles exposes live-instance queries.
func (s *Session) Projectiles() *projectile.Manager { return s.projectiles }

// Telemetry snapshots the session counters.
func (s *Session) Telemetry() telemetry.Snapshot {
	if s == nil {
		return telemetry.Snapshot{}
	}
	return s.counters.Snapshot()
}
