package combat

import (
	"testing"

	"emberveil/combat/ability"
	"emberveil/combat/arena"
	"emberveil/combat/geom"
	"emberveil/combat/kit"
)

type stubActor struct {
	stamina float64
	healed  float64
}

func (a *stubActor) Position() geom.Vec     { return geom.Vec{} }
func (a *stubActor) Facing() geom.Vec       { return geom.Vec{X: 1} }
func (a *stubActor) WeaponAnchor() geom.Vec { return geom.Vec{X: 0.3} }
func (a *stubActor) Heal(amount float64)    { a.healed += amount }

func (a *stubActor) TryConsumeStamina(amount float64) bool {
	if a.stamina < amount {
		return false
	}
	a.stamina -= amount
	return true
}

type stubTarget struct {
	id     arena.TargetID
	pos    geom.Vec
	health float64
}

func (t *stubTarget) ID() arena.TargetID   { return t.id }
func (t *stubTarget) Position() geom.Vec   { return t.pos }
func (t *stubTarget) Facing() geom.Vec     { return geom.Vec{X: -1} }
func (t *stubTarget) Alive() bool          { return t.health > 0 }
func (t *stubTarget) Health() float64      { return t.health }
func (t *stubTarget) TakeDamage(a float64) { t.health -= a }
func (t *stubTarget) HitRadius() float64   { return 0.5 }
func (t *stubTarget) Boss() bool           { return false }

func newSession(t *testing.T, strategy kit.Strategy) (*Session, *stubActor) {
	t.Helper()
	actor := &stubActor{stamina: 10000}
	session, err := NewSession(Config{Kit: strategy, Actor: actor, Seed: "test"})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return session, actor
}

func TestNewSessionRequiresKitAndActor(t *testing.T) {
	if _, err := NewSession(Config{Actor: &stubActor{}}); err == nil {
		t.Fatalf("expected error without a kit")
	}
	if _, err := NewSession(Config{Kit: kit.NewBlade(kit.BladeConfig{})}); err == nil {
		t.Fatalf("expected error without actor state")
	}
}

func TestBladeSwingLandsThroughFullStack(t *testing.T) {
	session, _ := newSession(t, kit.NewBlade(kit.BladeConfig{CritChance: 1e-12}))
	target := &stubTarget{id: "rat", pos: geom.Vec{X: 1.5}, health: 100}
	session.AddTarget(target)

	session.Step(0.016, ability.Intent{Attack: true})
	for i := 0; i < 4; i++ {
		session.Step(0.1, ability.Intent{})
	}

	if target.health != 100-14 {
		t.Fatalf("target health = %f, want one 14-point swing", target.health)
	}
	if got := session.Economy().Count("blood"); got != 1 {
		t.Fatalf("blood = %d, want 1", got)
	}
	if got := session.Economy().Ultimate(); got != 2 {
		t.Fatalf("ultimate = %f, want 2", got)
	}
	snap := session.Telemetry()
	if snap.Casts != 1 || snap.Hits != 1 {
		t.Fatalf("telemetry = %+v, want one cast and one hit", snap)
	}
}

func TestProjectileSpawnedThisStepAdvancesNextStep(t *testing.T) {
	frost := kit.NewFrost(kit.FrostConfig{BoltLifetime: 0.05})
	session, _ := newSession(t, frost)

	// Walk the swing into its strike window so the bolt spawns mid-step.
	session.Step(0.016, ability.Intent{Attack: true})
	session.Step(0.25, ability.Intent{})
	if got := session.Projectiles().LiveCount(); got != 1 {
		t.Fatalf("live = %d after the spawning step, want 1", got)
	}
	session.Step(0.25, ability.Intent{})
	if got := session.Projectiles().LiveCount(); got != 0 {
		t.Fatalf("live = %d, want expiry on the first advanced step", got)
	}
}

func TestChannelDrainScenario(t *testing.T) {
	session, actor := newSession(t, kit.NewBlade(kit.BladeConfig{CritChance: 1e-12}))
	target := &stubTarget{id: "rat", pos: geom.Vec{X: 2}, health: 1000}
	session.AddTarget(target)

	var start ability.Intent
	start.Slots[kit.SlotC] = true
	session.Step(0.016, start)
	if !session.Controller().Channeling() {
		t.Fatalf("transfusion did not start")
	}
	for i := 0; i < 4; i++ {
		session.Step(0.25, ability.Intent{})
	}
	if got := 1000 - target.health; got != 32 {
		t.Fatalf("drain damage = %f over 1s, want 32", got)
	}
	if actor.healed != 32 {
		t.Fatalf("drain heal = %f, want 32", actor.healed)
	}
	if got := session.Economy().Count("blood"); got != 1 {
		t.Fatalf("bonus blood = %d after one full second, want 1", got)
	}
}

func TestRemoveTargetDropsStatusRecord(t *testing.T) {
	session, _ := newSession(t, kit.NewVenom(kit.VenomConfig{CritChance: 1e-12}))
	target := &stubTarget{id: "rat", pos: geom.Vec{X: 1.5}, health: 1000}
	session.AddTarget(target)

	var fang ability.Intent
	fang.Slots[kit.SlotQ] = true
	session.Step(0.016, fang)
	if session.Statuses().Query(target.ID()).PoisonRemaining == 0 {
		t.Fatalf("fang did not poison")
	}

	if !session.RemoveTarget(target.ID()) {
		t.Fatalf("remove failed")
	}
	if session.Statuses().Query(target.ID()).Active() {
		t.Fatalf("status record survived target removal")
	}
	if session.RemoveTarget(target.ID()) {
		t.Fatalf("second removal must report false")
	}
}

func TestSameSeedSessionsAgreeOnCrits(t *testing.T) {
	run := func() []float64 {
		session, _ := newSession(t, kit.NewBlade(kit.BladeConfig{CritChance: 0.5}))
		target := &stubTarget{id: "rat", pos: geom.Vec{X: 1.5}, health: 1e9}
		session.AddTarget(target)
		healths := make([]float64, 0, 12)
		for i := 0; i < 12; i++ {
			session.Step(0.016, ability.Intent{Attack: true})
			for j := 0; j < 9; j++ {
				session.Step(0.1, ability.Intent{})
			}
			healths = append(healths, target.health)
		}
		return healths
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seeded runs diverged at swing %d: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestStepIgnoresNonPositiveDt(t *testing.T) {
	session, _ := newSession(t, kit.NewBlade(kit.BladeConfig{}))
	session.Step(0, ability.Intent{Attack: true})
	session.Step(-1, ability.Intent{Attack: true})
	if session.Tick() != 0 {
		t.Fatalf("tick advanced on non-positive dt")
	}
}
