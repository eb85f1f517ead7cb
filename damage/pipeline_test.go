package damage

import (
	"math"
	"math/rand"
	"testing"

	"emberveil/combat/arena"
	"emberveil/combat/geom"
	"emberveil/combat/status"
)

type fakeCombo int

func (f fakeCombo) Combo() int { return int(f) }

type fakeActor struct {
	pos    geom.Vec
	facing geom.Vec
	healed float64
}

func (a *fakeActor) Position() geom.Vec                 { return a.pos }
func (a *fakeActor) Facing() geom.Vec                   { return a.facing }
func (a *fakeActor) WeaponAnchor() geom.Vec             { return a.pos }
func (a *fakeActor) TryConsumeStamina(float64) bool     { return true }
func (a *fakeActor) Heal(amount float64)                { a.healed += amount }

type fakeTarget struct {
	id     arena.TargetID
	pos    geom.Vec
	facing geom.Vec
	health float64
}

func (t *fakeTarget) ID() arena.TargetID   { return t.id }
func (t *fakeTarget) Position() geom.Vec   { return t.pos }
func (t *fakeTarget) Facing() geom.Vec     { return t.facing }
func (t *fakeTarget) Alive() bool          { return t.health > 0 }
func (t *fakeTarget) Health() float64      { return t.health }
func (t *fakeTarget) TakeDamage(a float64) { t.health -= a }
func (t *fakeTarget) HitRadius() float64   { return 0.5 }
func (t *fakeTarget) Boss() bool           { return false }

// neverCrit leaves the crit probability effectively zero while staying a
// valid configured value.
const neverCrit = 1e-12

func frontalTarget() *fakeTarget {
	// Target looks straight at the attacker standing at +X.
	return &fakeTarget{id: "t1", pos: geom.Vec{X: 0}, facing: geom.Vec{X: 1}, health: 1000}
}

func newPipeline(combo int) (*Pipeline, *fakeActor, *status.Tracker) {
	actor := &fakeActor{pos: geom.Vec{X: 3}, facing: geom.Vec{X: -1}}
	tracker := status.NewTracker(nil)
	p := NewPipeline(rand.New(rand.NewSource(1)), fakeCombo(combo), tracker, actor)
	p.SetProfile(Profile{CritChance: neverCrit})
	return p, actor, tracker
}

func TestComboMultiplierExact(t *testing.T) {
	for combo := 1; combo <= 3; combo++ {
		p, _, _ := newPipeline(combo)
		res := p.Resolve(100, frontalTarget())
		want := int(math.Floor(100 * (1 + float64(combo-1)*0.2)))
		if res.Amount != want {
			t.Fatalf("combo %d: amount = %d, want %d", combo, res.Amount, want)
		}
	}
}

func TestComboZeroTreatedAsOne(t *testing.T) {
	p, _, _ := newPipeline(0)
	if res := p.Resolve(100, frontalTarget()); res.Amount != 100 {
		t.Fatalf("combo 0 amount = %d, want 100", res.Amount)
	}
}

func TestScenarioBaseTwentyComboTwo(t *testing.T) {
	p, _, _ := newPipeline(2)
	res := p.Resolve(20, frontalTarget())
	if res.Amount != 24 {
		t.Fatalf("amount = %d, want floor(20*1.2) = 24", res.Amount)
	}
	if res.Critical || res.Backstab {
		t.Fatalf("unexpected flags %+v", res)
	}
}

func TestNextAttackMultiplierConsumedOnce(t *testing.T) {
	p, _, _ := newPipeline(1)
	p.SetNextAttackMultiplier(2)
	if res := p.Resolve(50, frontalTarget()); res.Amount != 100 {
		t.Fatalf("buffed amount = %d, want 100", res.Amount)
	}
	if res := p.Resolve(50, frontalTarget()); res.Amount != 50 {
		t.Fatalf("one-shot buff must not persist, got %d", res.Amount)
	}
}

func TestTimedBuffsStackMultiplicatively(t *testing.T) {
	p, _, _ := newPipeline(1)
	p.AddTimedBuff("teleport", 2, 5)
	p.AddTimedBuff("kit", 1.5, 5)
	if res := p.Resolve(10, frontalTarget()); res.Amount != 30 {
		t.Fatalf("amount = %d, want 10*2*1.5 = 30", res.Amount)
	}
}

func TestTimedBuffExpiresViaAdvance(t *testing.T) {
	p, _, _ := newPipeline(1)
	p.AddTimedBuff("teleport", 2, 1.0)
	p.Advance(1.5)
	if res := p.Resolve(10, frontalTarget()); res.Amount != 10 {
		t.Fatalf("expired buff still applied, got %d", res.Amount)
	}
	if p.BuffRemaining("teleport") != 0 {
		t.Fatalf("expected buff record to be gone")
	}
}

func TestGuaranteedCrit(t *testing.T) {
	p, _, _ := newPipeline(1)
	p.SetProfile(Profile{CritChance: 1, CritMultiplier: 2})
	res := p.Resolve(10, frontalTarget())
	if !res.Critical || res.Amount != 20 {
		t.Fatalf("expected guaranteed crit for 20, got %+v", res)
	}
}

func TestCritBonusesAreAdditive(t *testing.T) {
	p, _, _ := newPipeline(1)
	p.SetProfile(Profile{CritChance: neverCrit, CritMultiplier: 1.5})
	p.SetCritBonus(1, 0.5) // pushes chance to certainty, multiplier to 2.0
	res := p.Resolve(10, frontalTarget())
	if !res.Critical || res.Amount != 20 {
		t.Fatalf("expected crit at 10*(1.5+0.5), got %+v", res)
	}
}

func TestBackstabDetection(t *testing.T) {
	p, _, _ := newPipeline(1)
	p.SetProfile(Profile{CritChance: neverCrit, BackstabMultiplier: 1.5})
	// Target faces away from the attacker at +X.
	behind := &fakeTarget{id: "t1", facing: geom.Vec{X: -1}, health: 1000}
	res := p.Resolve(10, behind)
	if !res.Backstab || res.Amount != 15 {
		t.Fatalf("expected backstab for 15, got %+v", res)
	}

	if res := p.Resolve(10, frontalTarget()); res.Backstab {
		t.Fatalf("frontal hit flagged as backstab")
	}
}

func TestVulnerabilityMultiplierApplied(t *testing.T) {
	p, _, tracker := newPipeline(1)
	target := frontalTarget()
	tracker.ApplyVulnerability(target.ID(), 5, 2)
	if res := p.Resolve(10, target); res.Amount != 20 {
		t.Fatalf("vulnerable amount = %d, want 20", res.Amount)
	}
}

func TestFloorAppliedOnceAtEnd(t *testing.T) {
	p, _, _ := newPipeline(2)
	// 7 * 1.2 = 8.4 -> 8. Flooring per-step would give different margins
	// once more multipliers stack.
	p.AddTimedBuff("kit", 1.1, 5)
	res := p.Resolve(7, frontalTarget())
	want := int(math.Floor(7 * 1.2 * 1.1))
	if res.Amount != want {
		t.Fatalf("amount = %d, want %d", res.Amount, want)
	}
}

func TestLifestealHealsAttacker(t *testing.T) {
	p, actor, _ := newPipeline(1)
	p.SetProfile(Profile{CritChance: neverCrit, LifestealRatio: 0.5})
	res := p.Resolve(10, frontalTarget())
	if res.Amount != 10 {
		t.Fatalf("amount = %d, want 10", res.Amount)
	}
	if actor.healed != 5 {
		t.Fatalf("healed = %f, want 5", actor.healed)
	}
}

func TestLifestealHealsAtLeastOne(t *testing.T) {
	p, actor, _ := newPipeline(1)
	p.SetProfile(Profile{CritChance: neverCrit, LifestealRatio: 0.01})
	p.Resolve(10, frontalTarget())
	if actor.healed != 1 {
		t.Fatalf("healed = %f, want minimum 1", actor.healed)
	}
}

func TestStrikeAppliesDamageAndStops(t *testing.T) {
	p, _, _ := newPipeline(1)
	target := frontalTarget()
	target.health = 5
	res := p.Strike(10, target, "basic")
	if res.Amount != 10 {
		t.Fatalf("strike amount = %d, want 10", res.Amount)
	}
	if target.Alive() {
		t.Fatalf("expected target defeat")
	}
	if again := p.Strike(10, target, "basic"); again.Amount != 0 {
		t.Fatalf("strike on dead target must be a no-op, got %+v", again)
	}
}
