package projectile

import (
	"math/rand"
	"testing"

	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/geom"
	"emberveil/combat/internal/telemetry"
	"emberveil/combat/status"
)

type countersProbe struct {
	c telemetry.Counters
}

func (p *countersProbe) counters() *telemetry.Counters { return &p.c }

type testTarget struct {
	id     arena.TargetID
	pos    geom.Vec
	health float64
	radius float64
}

func (t *testTarget) ID() arena.TargetID   { return t.id }
func (t *testTarget) Position() geom.Vec   { return t.pos }
func (t *testTarget) Facing() geom.Vec     { return geom.Vec{X: 1} }
func (t *testTarget) Alive() bool          { return t.health > 0 }
func (t *testTarget) Health() float64      { return t.health }
func (t *testTarget) TakeDamage(a float64) { t.health -= a }
func (t *testTarget) HitRadius() float64   { return t.radius }
func (t *testTarget) Boss() bool           { return false }

type testActor struct{}

func (testActor) Position() geom.Vec             { return geom.Vec{X: -100} }
func (testActor) Facing() geom.Vec               { return geom.Vec{X: 1} }
func (testActor) WeaponAnchor() geom.Vec         { return geom.Vec{X: -100} }
func (testActor) TryConsumeStamina(float64) bool { return true }
func (testActor) Heal(float64)                   {}

type vfxRecorder struct {
	fired   []string
	hits    []string
	expired []string
}

func (r *vfxRecorder) AbilityFired(tag string, _ arena.VFXPayload) { r.fired = append(r.fired, tag) }
func (r *vfxRecorder) Hit(tag string, _ arena.VFXPayload)          { r.hits = append(r.hits, tag) }
func (r *vfxRecorder) Expired(tag string, _ arena.VFXPayload)      { r.expired = append(r.expired, tag) }

type fixture struct {
	manager  *Manager
	registry *arena.Registry
	econ     *economy.Economy
	vfx      *vfxRecorder
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	registry := arena.NewRegistry()
	econ := economy.New(economy.Config{})
	tracker := status.NewTracker(func(id arena.TargetID) arena.Target {
		return registry.Lookup(id)
	})
	pipeline := damage.NewPipeline(rand.New(rand.NewSource(7)), econ, tracker, testActor{})
	pipeline.SetProfile(damage.Profile{CritChance: 1e-12})
	vfx := &vfxRecorder{}
	manager := NewManager(cfg, pipeline, registry, econ, vfx)
	return &fixture{manager: manager, registry: registry, econ: econ, vfx: vfx}
}

func boltToward(target geom.Vec) SpawnConfig {
	return SpawnConfig{
		Kind:        KindBolt,
		Origin:      geom.Vec{},
		Direction:   target,
		Speed:       10,
		Damage:      10,
		MaxLifetime: 5,
		Source:      economy.HitBasic,
		Tag:         "test_bolt",
	}
}

func TestSpawnedInstanceSkipsItsFirstTick(t *testing.T) {
	f := newFixture(t, Config{})
	cfg := boltToward(geom.Vec{X: 1})
	cfg.MaxLifetime = 0.05
	handle := f.manager.Spawn(cfg)
	if handle == NoHandle {
		t.Fatalf("spawn failed")
	}

	f.manager.Tick(0.1)
	if f.manager.LiveCount() != 1 {
		t.Fatalf("instance spawned this tick must not expire in the same tick")
	}
	f.manager.Tick(0.1)
	if f.manager.LiveCount() != 0 {
		t.Fatalf("instance should expire on its first advanced tick")
	}
}

func TestNonPiercingStopsAtFirstTarget(t *testing.T) {
	f := newFixture(t, Config{})
	near := &testTarget{id: "near", pos: geom.Vec{X: 1}, health: 100, radius: 0.5}
	far := &testTarget{id: "far", pos: geom.Vec{X: 1.5}, health: 100, radius: 0.5}
	f.registry.AddTarget(near)
	f.registry.AddTarget(far)

	f.manager.Spawn(boltToward(geom.Vec{X: 1}))
	f.manager.Tick(0.1) // admit
	f.manager.Tick(0.1) // advance to x=1 and collide

	if near.health == 100 && far.health == 100 {
		t.Fatalf("expected a hit")
	}
	if near.health < 100 && far.health < 100 {
		t.Fatalf("non-piercing bolt hit two targets in one tick")
	}
	if f.manager.LiveCount() != 0 {
		t.Fatalf("non-piercing bolt must be disposed after its hit")
	}
	if f.manager.PoolSize(KindBolt) != 1 {
		t.Fatalf("expected instance back in the pool")
	}
}

func TestPiercingHitsEachTargetOnce(t *testing.T) {
	f := newFixture(t, Config{})
	a := &testTarget{id: "a", pos: geom.Vec{X: 2}, health: 100, radius: 0.5}
	b := &testTarget{id: "b", pos: geom.Vec{X: 6}, health: 100, radius: 0.5}
	f.registry.AddTarget(a)
	f.registry.AddTarget(b)

	cfg := boltToward(geom.Vec{X: 1})
	cfg.Pierce = true
	cfg.Speed = 2
	cfg.MaxLifetime = 10
	f.manager.Spawn(cfg)

	for i := 0; i < 40; i++ {
		f.manager.Tick(0.1)
	}
	if a.health != 90 {
		t.Fatalf("target a took %f damage, want exactly one 10-point hit", 100-a.health)
	}
	if b.health != 90 {
		t.Fatalf("target b took %f damage, want exactly one 10-point hit", 100-b.health)
	}
}

func TestPoolReuseBoundsAllocations(t *testing.T) {
	f := newFixture(t, Config{PoolCapacity: 2})
	var counters countersProbe
	f.manager.SetCounters(counters.counters())

	spawnAndExpire := func() {
		cfg := boltToward(geom.Vec{X: 1})
		cfg.MaxLifetime = 0.05
		if f.manager.Spawn(cfg) == NoHandle {
			t.Fatalf("spawn failed")
		}
		f.manager.Tick(0.1)
		f.manager.Tick(0.1)
	}

	for i := 0; i < 3; i++ {
		spawnAndExpire()
	}
	snap := counters.counters().Snapshot()
	if snap.PoolAllocs != 1 {
		t.Fatalf("allocs = %d, want exactly 1 across spawn/expire/respawn", snap.PoolAllocs)
	}
	if snap.PoolReuses != 2 {
		t.Fatalf("reuses = %d, want 2", snap.PoolReuses)
	}
}

func TestHitSetClearedBeforeReuse(t *testing.T) {
	f := newFixture(t, Config{})
	target := &testTarget{id: "a", pos: geom.Vec{X: 1}, health: 1000, radius: 0.5}
	f.registry.AddTarget(target)

	f.manager.Spawn(boltToward(geom.Vec{X: 1}))
	f.manager.Tick(0.1)
	f.manager.Tick(0.1)
	if target.health != 990 {
		t.Fatalf("first hit dealt %f, want 10", 1000-target.health)
	}

	// The pooled instance must hit the same target again on its next run.
	f.manager.Spawn(boltToward(geom.Vec{X: 1}))
	f.manager.Tick(0.1)
	f.manager.Tick(0.1)
	if target.health != 980 {
		t.Fatalf("reused instance failed to hit: health %f", target.health)
	}
}

func TestExpiryFiresVFXHook(t *testing.T) {
	f := newFixture(t, Config{})
	cfg := boltToward(geom.Vec{X: 1})
	cfg.MaxLifetime = 0.05
	f.manager.Spawn(cfg)
	f.manager.Tick(0.1)
	f.manager.Tick(0.1)
	if len(f.vfx.expired) != 1 || f.vfx.expired[0] != "test_bolt" {
		t.Fatalf("expected one expire notification, got %v", f.vfx.expired)
	}
}

func TestZeroDirectionIsRejected(t *testing.T) {
	f := newFixture(t, Config{})
	cfg := boltToward(geom.Vec{})
	if handle := f.manager.Spawn(cfg); handle != NoHandle {
		t.Fatalf("zero-length direction must not spawn")
	}
	if f.manager.LiveCount() != 0 {
		t.Fatalf("nothing should be live")
	}
}

func TestDisposeRemovesInstance(t *testing.T) {
	f := newFixture(t, Config{})
	handle := f.manager.Spawn(boltToward(geom.Vec{X: 1}))
	if !f.manager.Dispose(handle) {
		t.Fatalf("dispose of live handle failed")
	}
	if f.manager.Dispose(handle) {
		t.Fatalf("second dispose must report false")
	}
	f.manager.Tick(0.1)
	if f.manager.LiveCount() != 0 {
		t.Fatalf("disposed instance still live")
	}
}

func TestSplashBurstHitsSecondaryTargets(t *testing.T) {
	f := newFixture(t, Config{})
	primary := &testTarget{id: "primary", pos: geom.Vec{X: 2}, health: 100, radius: 0.5}
	nearby := &testTarget{id: "nearby", pos: geom.Vec{X: 2.5, Y: 1}, health: 100, radius: 0.5}
	distant := &testTarget{id: "distant", pos: geom.Vec{X: 30}, health: 100, radius: 0.5}
	f.registry.AddTarget(primary)
	f.registry.AddTarget(nearby)
	f.registry.AddTarget(distant)

	cfg := boltToward(geom.Vec{X: 1})
	cfg.Speed = 2
	cfg.SplashRadius = 2
	cfg.SplashScale = 0.5
	f.manager.Spawn(cfg)

	for i := 0; i < 12; i++ {
		f.manager.Tick(0.1)
	}
	if primary.health != 90 {
		t.Fatalf("primary took %f, want full 10", 100-primary.health)
	}
	if nearby.health != 95 {
		t.Fatalf("secondary took %f, want halved 5", 100-nearby.health)
	}
	if distant.health != 100 {
		t.Fatalf("distant target outside the burst took damage")
	}
	if f.manager.LiveCount() != 0 {
		t.Fatalf("splash burst is one-shot; instance must be consumed")
	}
}

func TestHitGrantsUltimateCharge(t *testing.T) {
	f := newFixture(t, Config{})
	target := &testTarget{id: "a", pos: geom.Vec{X: 1}, health: 100, radius: 0.5}
	f.registry.AddTarget(target)

	cfg := boltToward(geom.Vec{X: 1})
	cfg.Source = economy.HitCharged
	f.manager.Spawn(cfg)
	f.manager.Tick(0.1)
	f.manager.Tick(0.1)
	if got := f.econ.Ultimate(); got != 6 {
		t.Fatalf("ultimate = %f, want charged gain 6", got)
	}
}

func TestPerSpawnHitCallbackScopedToItsInstance(t *testing.T) {
	f := newFixture(t, Config{})
	target := &testTarget{id: "a", pos: geom.Vec{X: 1}, health: 1000, radius: 0.5}
	f.registry.AddTarget(target)

	var scoped int
	cfg := boltToward(geom.Vec{X: 1})
	cfg.OnHit = func(hit arena.Target, res damage.Result) {
		scoped++
		if hit.ID() != "a" || res.Amount != 10 {
			t.Fatalf("unexpected callback args %v %+v", hit.ID(), res)
		}
	}
	f.manager.Spawn(cfg)
	f.manager.Spawn(boltToward(geom.Vec{X: 1})) // plain sibling, same path
	f.manager.Tick(0.1)
	f.manager.Tick(0.1)
	if scoped != 1 {
		t.Fatalf("scoped callback fired %d times, want 1", scoped)
	}

	// The pooled instance must not carry the callback into its next run.
	f.manager.Spawn(boltToward(geom.Vec{X: 1}))
	f.manager.Tick(0.1)
	f.manager.Tick(0.1)
	if scoped != 1 {
		t.Fatalf("callback leaked into a reused instance")
	}
}

func TestHitHookForwardsToKit(t *testing.T) {
	f := newFixture(t, Config{})
	target := &testTarget{id: "a", pos: geom.Vec{X: 1}, health: 100, radius: 0.5}
	f.registry.AddTarget(target)

	var hooked int
	f.manager.SetHitHook(func(source economy.HitKind, hit arena.Target, res damage.Result) {
		hooked++
		if hit.ID() != "a" || res.Amount != 10 {
			t.Fatalf("unexpected hook args %v %+v", hit.ID(), res)
		}
	})
	f.manager.Spawn(boltToward(geom.Vec{X: 1}))
	f.manager.Tick(0.1)
	f.manager.Tick(0.1)
	if hooked != 1 {
		t.Fatalf("hook fired %d times, want 1", hooked)
	}
}
