// Package damage computes final hit damage from base damage and the
// attacker's modifier state. The multiplier order is fixed: combo, one-shot
// next-attack buff, timed buffs, crit, backstab, target vulnerability, then
// a single floor to an integer at the very end.
package damage

import (
	"context"
	"math"
	"math/rand"

	"emberveil/combat/arena"
	"emberveil/combat/internal/telemetry"
	"emberveil/combat/logging"
	"emberveil/combat/logging/combatlog"
	"emberveil/combat/status"
)

// BackstabDotThreshold: the attacker is behind the target when the dot of
// the target's facing and the normalized target-to-attacker vector is below
// this value.
const BackstabDotThreshold = -0.25

// Profile carries the kit's base offensive numbers plus the lifesteal ratio.
type Profile struct {
	// CritChance is the kit's base critical probability. Default 0.05.
	CritChance float64
	// CritMultiplier scales damage on a critical. Default 1.5.
	CritMultiplier float64
	// BackstabMultiplier scales damage from behind. Default 1.25.
	BackstabMultiplier float64
	// LifestealRatio heals the attacker per point of damage dealt. Default 0.
	LifestealRatio float64
}

func (p Profile) normalized() Profile {
	if p.CritChance <= 0 {
		p.CritChance = 0.05
	}
	if p.CritMultiplier <= 0 {
		p.CritMultiplier = 1.5
	}
	if p.BackstabMultiplier <= 0 {
		p.BackstabMultiplier = 1.25
	}
	if p.LifestealRatio < 0 {
		p.LifestealRatio = 0
	}
	return p
}

// Result is the resolved outcome of one hit.
type Result struct {
	Amount   int
	Critical bool
	Backstab bool
}

// ComboSource supplies the current combo count; the economy implements it.
type ComboSource interface {
	Combo() int
}

type timedBuff struct {
	name       string
	multiplier float64
	remaining  float64
}

// Pipeline resolves hits for one attacker. Randomness is injected so tests
// and the balance harness stay deterministic.
type Pipeline struct {
	rng      *rand.Rand
	combo    ComboSource
	statuses *status.Tracker
	actor    arena.ActorState
	profile  Profile

	nextAttackMultiplier float64
	buffs                []timedBuff

	critBonusChance     float64
	critBonusMultiplier float64

	emitter   arena.Emitter
	publisher logging.Publisher
	actorRef  logging.EntityRef
	tick      func() uint64
	counters  *telemetry.Counters
}

func NewPipeline(rng *rand.Rand, combo ComboSource, statuses *status.Tracker, actor arena.ActorState) *Pipeline {
	return &Pipeline{
		rng:                  rng,
		combo:                combo,
		statuses:             statuses,
		actor:                actor,
		profile:              Profile{}.normalized(),
		nextAttackMultiplier: 1,
		emitter:              arena.NopEmitter(),
		publisher:            logging.NopPublisher(),
	}
}

// Attach wires the presentation and observability collaborators.
func (p *Pipeline) Attach(em arena.Emitter, pub logging.Publisher, actorRef logging.EntityRef, tick func() uint64, counters *telemetry.Counters) {
	if p == nil {
		return
	}
	if em != nil {
		p.emitter = em
	}
	if pub != nil {
		p.publisher = pub
	}
	if actorRef.ID != "" {
		p.actorRef = actorRef
	}
	if tick != nil {
		p.tick = tick
	}
	if counters != nil {
		p.counters = counters
	}
}

// SetProfile installs the active kit's numbers.
func (p *Pipeline) SetProfile(profile Profile) {
	if p == nil {
		return
	}
	p.profile = profile.normalized()
}

// SetNextAttackMultiplier arms the one-shot buff consumed by the next
// resolution. External triggers such as a dash-attack bonus call this.
func (p *Pipeline) SetNextAttackMultiplier(m float64) {
	if p == nil || m <= 0 {
		return
	}
	p.nextAttackMultiplier = m
}

// SetCritBonus sets the additive external crit chance and multiplier bonus.
func (p *Pipeline) SetCritBonus(chance, multiplier float64) {
	if p == nil {
		return
	}
	p.critBonusChance = chance
	p.critBonusMultiplier = multiplier
}

// AddTimedBuff installs or refreshes a named multiplicative damage buff.
func (p *Pipeline) AddTimedBuff(name string, multiplier, duration float64) {
	if p == nil || multiplier <= 0 || duration <= 0 {
		return
	}
	for i := range p.buffs {
		if p.buffs[i].name != name {
			continue
		}
		p.buffs[i].multiplier = multiplier
		if duration > p.buffs[i].remaining {
			p.buffs[i].remaining = duration
		}
		return
	}
	p.buffs = append(p.buffs, timedBuff{name: name, multiplier: multiplier, remaining: duration})
}

// BuffRemaining reports the remaining duration of a named buff.
func (p *Pipeline) BuffRemaining(name string) float64 {
	if p == nil {
		return 0
	}
	for i := range p.buffs {
		if p.buffs[i].name == name {
			return p.buffs[i].remaining
		}
	}
	return 0
}

// Advance decays timed buffs. Resolve never expires them itself.
func (p *Pipeline) Advance(dt float64) {
	if p == nil || dt <= 0 {
		return
	}
	kept := p.buffs[:0]
	for _, buff := range p.buffs {
		buff.remaining -= dt
		if buff.remaining > 0 {
			kept = append(kept, buff)
		}
	}
	p.buffs = kept
}

// Resolve computes the final damage for one hit against target. The one-shot
// next-attack multiplier is consumed; lifesteal heals the attacker as a side
// effect and is not part of the returned value.
func (p *Pipeline) Resolve(baseDamage float64, target arena.Target) Result {
	if p == nil || baseDamage <= 0 {
		return Result{}
	}

	total := baseDamage

	comboCount := 1
	if p.combo != nil {
		if c := p.combo.Combo(); c > 1 {
			comboCount = c
		}
	}
	total *= 1 + float64(comboCount-1)*0.2

	total *= p.nextAttackMultiplier
	p.nextAttackMultiplier = 1

	for i := range p.buffs {
		if p.buffs[i].remaining > 0 {
			total *= p.buffs[i].multiplier
		}
	}

	result := Result{}

	critChance := p.profile.CritChance + p.critBonusChance
	if p.roll() < critChance {
		result.Critical = true
		total *= p.profile.CritMultiplier + p.critBonusMultiplier
	}

	if target != nil && p.actor != nil {
		toAttacker, ok := p.actor.Position().Sub(target.Position()).Normalized()
		if ok && target.Facing().Dot(toAttacker) < BackstabDotThreshold {
			result.Backstab = true
			total *= p.profile.BackstabMultiplier
		}
	}

	if target != nil && p.statuses != nil {
		total *= p.statuses.Query(target.ID()).VulnerabilityMultiplier
	}

	result.Amount = int(math.Floor(total))

	if p.profile.LifestealRatio > 0 && result.Amount > 0 && p.actor != nil {
		heal := math.Floor(float64(result.Amount) * p.profile.LifestealRatio)
		if heal < 1 {
			heal = 1
		}
		p.actor.Heal(heal)
	}

	return result
}

// Strike resolves a hit, applies it to the target, and fires the damage
// number, combat log, and telemetry. Both melee checks and projectiles land
// their hits through here so no caller re-implements the bookkeeping.
func (p *Pipeline) Strike(baseDamage float64, target arena.Target, sourceTag string) Result {
	if p == nil || target == nil || !target.Alive() {
		return Result{}
	}
	result := p.Resolve(baseDamage, target)
	if result.Amount <= 0 {
		return result
	}
	target.TakeDamage(float64(result.Amount))

	if p.counters != nil {
		p.counters.Hits.Add(1)
		if result.Critical {
			p.counters.Crits.Add(1)
		}
		if result.Backstab {
			p.counters.Backstabs.Add(1)
		}
	}

	p.emitter.Emit(arena.EventDamageNumber, arena.DamageNumberPayload{
		Target:   target.ID(),
		Position: target.Position(),
		Damage:   result.Amount,
		Critical: result.Critical,
		Backstab: result.Backstab,
	})

	targetRef := logging.TargetRef(string(target.ID()))
	combatlog.Hit(context.Background(), p.publisher, p.now(), p.actorRef, targetRef, combatlog.HitPayload{
		Source:       sourceTag,
		Amount:       result.Amount,
		Critical:     result.Critical,
		Backstab:     result.Backstab,
		TargetHealth: target.Health(),
		Boss:         target.Boss(),
	})
	if !target.Alive() {
		combatlog.Defeat(context.Background(), p.publisher, p.now(), p.actorRef, targetRef, combatlog.DefeatPayload{Source: sourceTag})
	}
	return result
}

func (p *Pipeline) roll() float64 {
	if p == nil || p.rng == nil {
		return 1
	}
	return p.rng.Float64()
}

func (p *Pipeline) now() uint64 {
	if p == nil || p.tick == nil {
		return 0
	}
	return p.tick()
}
