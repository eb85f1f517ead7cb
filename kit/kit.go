// Package kit defines the polymorphic combat loadouts. A kit supplies the
// six ability-slot implementations, the basic/charged attack feel, the
// resource it tracks, and its damage profile. All kits resolve hits through
// the shared pipeline, projectile manager, and status tracker; none
// re-implements hit detection or damage math.
package kit

import (
	"math/rand"

	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/geom"
	"emberveil/combat/internal/telemetry"
	"emberveil/combat/logging"
	"emberveil/combat/projectile"
	"emberveil/combat/status"
)

// Slot names the six ability keys.
type Slot uint8

const (
	SlotQ Slot = iota
	SlotE
	SlotX
	SlotC
	SlotV
	SlotF
	SlotCount
)

func (s Slot) String() string {
	switch s {
	case SlotQ:
		return "Q"
	case SlotE:
		return "E"
	case SlotX:
		return "X"
	case SlotC:
		return "C"
	case SlotV:
		return "V"
	case SlotF:
		return "F"
	default:
		return "?"
	}
}

// SlotKind selects the activation shape the controller drives for a slot.
type SlotKind uint8

const (
	// SlotUnbound slots reject every press.
	SlotUnbound SlotKind = iota
	// SlotInstant commits on press.
	SlotInstant
	// SlotTargeted enters a ground-target preview on press and commits on
	// confirm. The preview costs nothing and re-pressing cancels it.
	SlotTargeted
	// SlotWindup commits on press but resolves after a fixed delay.
	SlotWindup
	// SlotChannel starts a sustained channel driven by the controller.
	SlotChannel
	// SlotUltimate commits on press and additionally requires full
	// ultimate charge.
	SlotUltimate
)

// ChannelSpec parameterizes a sustained channel such as the life drain.
type ChannelSpec struct {
	// TickInterval spaces the damage-and-heal pulses. Default 0.25s.
	TickInterval float64
	// Range validates the locked target every tick; the channel cancels
	// when the target leaves it.
	Range float64
	// DamagePerTick is dealt on every pulse.
	DamagePerTick float64
	// HealRatio heals the actor per point of pulse damage dealt.
	HealRatio float64
	// BonusChargeEvery grants one kit charge per this many seconds of
	// uninterrupted channeling. Default 1s.
	BonusChargeEvery float64
	// EarlyCooldown replaces the slot cooldown when the channel is
	// cancelled by re-pressing the key.
	EarlyCooldown float64
}

func (c ChannelSpec) normalized() ChannelSpec {
	if c.TickInterval <= 0 {
		c.TickInterval = 0.25
	}
	if c.BonusChargeEvery <= 0 {
		c.BonusChargeEvery = 1
	}
	return c
}

// SlotSpec describes one ability slot to the controller.
type SlotSpec struct {
	// Name tags the ability in VFX hooks and the combat log.
	Name string
	Kind SlotKind
	// Cooldown starts when the ability commits (windups: when it
	// resolves; channels: when they end).
	Cooldown float64
	// StaminaCost gates affordability through the actor collaborator.
	StaminaCost float64
	// ChargeCost requires and spends exactly this many kit charges.
	ChargeCost int
	// ConsumeAllCharges spends the full counter and forwards the count to
	// Cast; the ability is rejected at zero charges.
	ConsumeAllCharges bool
	// Windup delays resolution for SlotWindup abilities.
	Windup float64
	// Channel parameterizes SlotChannel abilities.
	Channel ChannelSpec
}

// Bound reports whether the slot does anything.
func (s SlotSpec) Bound() bool {
	return s.Kind != SlotUnbound
}

// BasicSpec describes the kit's basic attack feel to the controller.
type BasicSpec struct {
	// Duration is the full swing window; the strike lands once inside its
	// middle third.
	Duration float64
	// ComboWindow extends past the swing for combo chaining.
	ComboWindow float64
	// StaminaCost gates the swing.
	StaminaCost float64
}

// ChargedSpec describes the hold-then-release gesture.
type ChargedSpec struct {
	// ChargeDuration caps the accumulated charge.
	ChargeDuration float64
	// MinCharge is the release threshold; below it the gesture cancels
	// silently.
	MinCharge float64
	// StaminaCost gates the release.
	StaminaCost float64
}

// Runtime bundles the shared component references a kit operates through.
// The session builds one and binds it into the active strategy.
type Runtime struct {
	Registry    *arena.Registry
	Actor       arena.ActorState
	Economy     *economy.Economy
	Statuses    *status.Tracker
	Pipeline    *damage.Pipeline
	Projectiles *projectile.Manager
	VFX         arena.VFXSink
	Emitter     arena.Emitter
	Publisher   logging.Publisher
	ActorRef    logging.EntityRef
	Tick        func() uint64
	Counters    *telemetry.Counters
	RNG         *rand.Rand

	scratchTargets []arena.Target
}

// Now reads the current tick for log events.
func (rt *Runtime) Now() uint64 {
	if rt == nil || rt.Tick == nil {
		return 0
	}
	return rt.Tick()
}

// LandHit resolves a direct (non-projectile) hit through the shared
// pipeline and applies the standard on-hit ultimate gain. Kits layer their
// own charge gains in their hit hooks.
func (rt *Runtime) LandHit(source economy.HitKind, target arena.Target, base float64, tag string) damage.Result {
	if rt == nil || rt.Pipeline == nil {
		return damage.Result{}
	}
	result := rt.Pipeline.Strike(base, target, tag)
	if result.Amount > 0 && rt.Economy != nil {
		rt.Economy.AddUltimate(source)
	}
	if rt.VFX != nil && target != nil && result.Amount > 0 {
		rt.VFX.Hit(tag, arena.VFXPayload{
			Position: target.Position(),
			Damage:   result.Amount,
			Critical: result.Critical,
			Backstab: result.Backstab,
			Boss:     target.Boss(),
		})
	}
	return result
}

// Strategy is the capability interface every kit implements. The ability
// controller holds exactly one and delegates slot intents to it.
type Strategy interface {
	// Name identifies the kit in logs and reports.
	Name() string
	// ChargeName is the kit's charge-stack resource.
	ChargeName() string
	// Bind wires the runtime in once at session start. Kits register
	// their charge spec with the economy here.
	Bind(rt *Runtime)
	// Profile supplies the kit's offensive numbers to the pipeline.
	Profile() damage.Profile
	// Basic and Charged describe the attack gestures.
	Basic() BasicSpec
	Charged() ChargedSpec
	// Slot describes one ability slot; unbound slots return the zero spec.
	Slot(slot Slot) SlotSpec
	// BasicStrike lands the basic attack at the swing's strike point.
	BasicStrike()
	// ChargedStrike fires the charged attack; ratio is the accumulated
	// charge fraction in [MinCharge/ChargeDuration, 1].
	ChargedStrike(ratio float64)
	// Cast commits a slot ability. charges carries the spent stack count
	// for ConsumeAllCharges slots, otherwise the fixed cost.
	Cast(slot Slot, aim geom.Vec, charges int)
	// OnBasicHit and OnChargedHit run for every landed hit of the
	// respective source, melee and projectile alike.
	OnBasicHit(target arena.Target, result damage.Result)
	OnChargedHit(target arena.Target, result damage.Result)
	// Update advances kit-internal timers.
	Update(dt float64)
}
