// Package ability runs the per-frame state machines for the controlled
// actor: basic swings with combo windows, hold-and-release charged attacks,
// the six slot abilities with cooldowns and targeting or windup phases, and
// sustained channels. It delegates the actual effects to the bound kit
// strategy and never resolves damage itself.
package ability

import (
	"context"

	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/geom"
	"emberveil/combat/kit"
	"emberveil/combat/logging/abilitylog"
)

// strikeWindowStart is the swing fraction at which the basic hit check runs.
// The check executes exactly once per swing, inside the middle of the
// animation rather than at its first or last frame.
const strikeWindowStart = 0.35

// Intent is one frame's worth of input flags. The host samples its input
// layer and hands the result to Update; the controller never reads devices.
type Intent struct {
	Attack               bool
	ChargedAttack        bool
	ChargedAttackRelease bool
	Slots                [kit.SlotCount]bool
	// Confirm commits an active ground-target preview at AimPoint.
	Confirm  bool
	AimPoint geom.Vec
}

func (in Intent) slotPressed() (kit.Slot, bool) {
	for s := kit.SlotQ; s < kit.SlotCount; s++ {
		if in.Slots[s] {
			return s, true
		}
	}
	return 0, false
}

type swingState struct {
	active   bool
	fresh    bool
	elapsed  float64
	duration float64
	struck   bool
}

type chargeState struct {
	active bool
	fresh  bool
	time   float64
}

type targetingState struct {
	active bool
	slot   kit.Slot
}

type windupState struct {
	active    bool
	fresh     bool
	slot      kit.Slot
	remaining float64
	aim       geom.Vec
	charges   int
}

type channelState struct {
	active    bool
	fresh     bool
	slot      kit.Slot
	spec      kit.ChannelSpec
	target    arena.TargetID
	tickClock float64
	bonusClock float64
	elapsed   float64
}

// Controller interprets intents against the bound kit strategy. Not safe for
// concurrent use; Update runs inside the session step.
type Controller struct {
	strategy kit.Strategy
	rt       *kit.Runtime

	cooldowns [kit.SlotCount]float64

	swing     swingState
	charge    chargeState
	targeting targetingState
	windup    windupState
	channel   channelState

	// sinceSwingStart measures the combo window from the previous swing's
	// start; prevDuration is that swing's full length.
	sinceSwingStart float64
	prevDuration    float64
	comboPrimed     bool
}

// NewController binds the strategy into the runtime and installs the kit's
// damage profile.
func NewController(rt *kit.Runtime, strategy kit.Strategy) *Controller {
	strategy.Bind(rt)
	if rt.Pipeline != nil {
		rt.Pipeline.SetProfile(strategy.Profile())
	}
	if rt.Projectiles != nil {
		rt.Projectiles.SetHitHook(func(source economy.HitKind, target arena.Target, result damage.Result) {
			if source == economy.HitBasic {
				strategy.OnBasicHit(target, result)
			} else {
				strategy.OnChargedHit(target, result)
			}
		})
	}
	return &Controller{strategy: strategy, rt: rt}
}

// Strategy returns the bound kit.
func (c *Controller) Strategy() kit.Strategy {
	return c.strategy
}

// Cooldown reports the remaining cooldown of a slot.
func (c *Controller) Cooldown(slot kit.Slot) float64 {
	if c == nil || slot >= kit.SlotCount || c.cooldowns[slot] < 0 {
		return 0
	}
	return c.cooldowns[slot]
}

// Channeling reports whether a channel is running.
func (c *Controller) Channeling() bool {
	return c != nil && c.channel.active
}

// Targeting reports the slot currently in ground-target preview, if any.
func (c *Controller) Targeting() (kit.Slot, bool) {
	if c == nil || !c.targeting.active {
		return 0, false
	}
	return c.targeting.slot, true
}

// ChargeTime reports the accumulated hold time of the charged attack.
func (c *Controller) ChargeTime() float64 {
	if c == nil || !c.charge.active {
		return 0
	}
	return c.charge.time
}

// Update advances every timer by dt and interprets the frame's intent.
// Activations that happen this frame begin advancing next frame.
func (c *Controller) Update(dt float64, intent Intent) {
	if c == nil || dt < 0 {
		return
	}

	for i := range c.cooldowns {
		if c.cooldowns[i] > 0 {
			c.cooldowns[i] -= dt
			if c.cooldowns[i] < 0 {
				c.cooldowns[i] = 0
			}
		}
	}
	if c.comboPrimed {
		c.sinceSwingStart += dt
		if c.sinceSwingStart >= c.prevDuration+c.strategy.Basic().ComboWindow {
			// The window closed without a follow-up swing; anything that
			// lands from here on is unmultiplied.
			c.comboPrimed = false
			c.rt.Economy.SetCombo(0)
		}
	}
	c.strategy.Update(dt)

	c.handleIntent(intent)
	c.advanceSwing(dt)
	c.advanceCharge(dt)
	c.advanceWindup(dt)
	c.advanceChannel(dt)
}

func (c *Controller) handleIntent(intent Intent) {
	pressed, anyPressed := intent.slotPressed()

	// A running channel swallows everything except its own cancel key.
	if c.channel.active {
		if anyPressed && pressed == c.channel.slot {
			c.endChannel(true)
			return
		}
		if anyPressed || intent.Attack || intent.ChargedAttackRelease {
			c.reject(c.strategy.Slot(c.channel.slot).Name, abilitylog.ReasonChannelActive)
		}
		return
	}

	// Ground-target preview: re-press cancels, any other action cancels,
	// confirm commits.
	if c.targeting.active {
		if anyPressed && pressed == c.targeting.slot {
			c.targeting.active = false
			return
		}
		if intent.Confirm {
			slot := c.targeting.slot
			c.targeting.active = false
			c.commit(slot, intent.AimPoint)
			return
		}
		if anyPressed || intent.Attack || intent.ChargedAttack {
			c.targeting.active = false
		}
	}

	if anyPressed {
		c.pressSlot(pressed, intent.AimPoint)
	}

	if intent.Attack {
		c.startSwing()
	}

	if intent.ChargedAttack && !c.charge.active && !c.swing.active && !c.windup.active {
		c.charge = chargeState{active: true, fresh: true}
	}
	if intent.ChargedAttackRelease && c.charge.active {
		c.releaseCharge()
	}
}

func (c *Controller) startSwing() {
	if c.swing.active || c.charge.active || c.windup.active {
		return
	}
	basic := c.strategy.Basic()
	if !c.rt.Actor.TryConsumeStamina(basic.StaminaCost) {
		c.reject("basic", abilitylog.ReasonResource)
		return
	}

	combo := 1
	if c.comboPrimed && c.sinceSwingStart < c.prevDuration+basic.ComboWindow {
		combo = c.rt.Economy.Combo() + 1
		if combo > c.rt.Economy.MaxCombo() {
			combo = c.rt.Economy.MaxCombo()
		}
	}
	c.rt.Economy.SetCombo(combo)

	c.swing = swingState{active: true, fresh: true, duration: basic.Duration}
	c.sinceSwingStart = 0
	c.prevDuration = basic.Duration
	c.comboPrimed = true

	c.cast("basic", 0)
}

func (c *Controller) advanceSwing(dt float64) {
	if !c.swing.active {
		return
	}
	if c.swing.fresh {
		c.swing.fresh = false
		return
	}
	c.swing.elapsed += dt
	frac := c.swing.elapsed / c.swing.duration
	if !c.swing.struck && frac >= strikeWindowStart {
		c.swing.struck = true
		c.strategy.BasicStrike()
	}
	if frac >= 1 {
		c.swing.active = false
	}
}

func (c *Controller) advanceCharge(dt float64) {
	if !c.charge.active {
		return
	}
	if c.charge.fresh {
		c.charge.fresh = false
		return
	}
	spec := c.strategy.Charged()
	c.charge.time += dt
	if c.charge.time > spec.ChargeDuration {
		c.charge.time = spec.ChargeDuration
	}
}

// releaseCharge fires the charged attack or cancels silently: below the
// minimum hold or without stamina the charge just resets, with no cooldown
// penalty.
func (c *Controller) releaseCharge() {
	spec := c.strategy.Charged()
	held := c.charge.time
	c.charge = chargeState{}

	if held < spec.MinCharge {
		c.reject("charged", abilitylog.ReasonBelowThreshold)
		return
	}
	if !c.rt.Actor.TryConsumeStamina(spec.StaminaCost) {
		c.reject("charged", abilitylog.ReasonResource)
		return
	}
	ratio := held / spec.ChargeDuration
	if ratio > 1 {
		ratio = 1
	}
	c.cast("charged", 0)
	c.strategy.ChargedStrike(ratio)
}

// pressSlot routes a slot key press. Targeted slots only enter the preview
// here; everything else commits immediately.
func (c *Controller) pressSlot(slot kit.Slot, aim geom.Vec) {
	spec := c.strategy.Slot(slot)
	if !spec.Bound() {
		return
	}
	if c.windup.active {
		c.reject(spec.Name, abilitylog.ReasonChannelActive)
		return
	}
	if c.cooldowns[slot] > 0 {
		c.reject(spec.Name, abilitylog.ReasonCooldown)
		return
	}
	if spec.Kind == kit.SlotTargeted {
		c.targeting = targetingState{active: true, slot: slot}
		return
	}
	c.commit(slot, aim)
}

// commit runs the resource gates and fires the slot. Gates are checked in
// full before anything is spent, so a rejection leaves cooldowns and
// counters untouched.
func (c *Controller) commit(slot kit.Slot, aim geom.Vec) {
	spec := c.strategy.Slot(slot)
	if c.cooldowns[slot] > 0 {
		c.reject(spec.Name, abilitylog.ReasonCooldown)
		return
	}

	name := c.strategy.ChargeName()
	available := c.rt.Economy.Count(name)
	if spec.ConsumeAllCharges && available == 0 {
		c.reject(spec.Name, abilitylog.ReasonResource)
		return
	}
	if spec.ChargeCost > 0 && available < spec.ChargeCost {
		c.reject(spec.Name, abilitylog.ReasonResource)
		return
	}
	if spec.Kind == kit.SlotUltimate && !c.rt.Economy.CanUltimate() {
		c.reject(spec.Name, abilitylog.ReasonBelowThreshold)
		return
	}

	var lock arena.Target
	if spec.Kind == kit.SlotChannel {
		lock = c.rt.Registry.Nearest(c.rt.Actor.Position(), spec.Channel.Range)
		if lock == nil {
			c.reject(spec.Name, abilitylog.ReasonNoTarget)
			return
		}
	}

	if spec.StaminaCost > 0 && !c.rt.Actor.TryConsumeStamina(spec.StaminaCost) {
		c.reject(spec.Name, abilitylog.ReasonResource)
		return
	}

	spent := 0
	switch {
	case spec.ConsumeAllCharges:
		spent = c.rt.Economy.ConsumeAll(name)
	case spec.ChargeCost > 0:
		c.rt.Economy.Consume(name, spec.ChargeCost)
		spent = spec.ChargeCost
	}
	if spec.Kind == kit.SlotUltimate {
		c.rt.Economy.UseUltimate()
	}

	c.cast(spec.Name, spent)

	switch spec.Kind {
	case kit.SlotWindup:
		c.windup = windupState{
			active:    true,
			fresh:     true,
			slot:      slot,
			remaining: spec.Windup,
			aim:       aim,
			charges:   spent,
		}
	case kit.SlotChannel:
		// The channel takes over the whole actor: a swing still playing or a
		// charge still held is discarded, not resumed afterwards.
		c.swing = swingState{}
		c.charge = chargeState{}
		c.channel = channelState{
			active: true,
			fresh:  true,
			slot:   slot,
			spec:   spec.Channel,
			target: lock.ID(),
		}
		abilitylog.ChannelStart(context.Background(), c.rt.Publisher, c.rt.Now(), c.rt.ActorRef, abilitylog.ChannelPayload{Channel: spec.Name})
	default:
		c.strategy.Cast(slot, aim, spent)
		c.cooldowns[slot] = spec.Cooldown
	}
}

// advanceWindup resolves the pending windup once its delay elapses; the
// cooldown starts at resolution.
func (c *Controller) advanceWindup(dt float64) {
	if !c.windup.active {
		return
	}
	if c.windup.fresh {
		c.windup.fresh = false
		return
	}
	c.windup.remaining -= dt
	if c.windup.remaining > 0 {
		return
	}
	slot := c.windup.slot
	spec := c.strategy.Slot(slot)
	aim, charges := c.windup.aim, c.windup.charges
	c.windup = windupState{}
	c.strategy.Cast(slot, aim, charges)
	c.cooldowns[slot] = spec.Cooldown
}

// advanceChannel re-validates the locked target, fires pulses on the fixed
// tick interval, and grants the bonus charge once per full second.
func (c *Controller) advanceChannel(dt float64) {
	if !c.channel.active {
		return
	}
	if c.channel.fresh {
		c.channel.fresh = false
		return
	}

	target := c.rt.Registry.Lookup(c.channel.target)
	if target == nil || !target.Alive() ||
		geom.Dist(c.rt.Actor.Position(), target.Position()) > c.channel.spec.Range {
		c.endChannel(false)
		return
	}

	c.channel.elapsed += dt
	c.channel.tickClock += dt
	c.channel.bonusClock += dt

	spec := c.channel.spec
	name := c.strategy.Slot(c.channel.slot).Name
	for spec.TickInterval > 0 && c.channel.tickClock >= spec.TickInterval {
		c.channel.tickClock -= spec.TickInterval
		result := c.rt.Pipeline.Strike(spec.DamagePerTick, target, name)
		if result.Amount > 0 && spec.HealRatio > 0 {
			c.rt.Actor.Heal(float64(result.Amount) * spec.HealRatio)
		}
		if c.rt.Counters != nil {
			c.rt.Counters.ChannelTicks.Add(1)
		}
		if !target.Alive() {
			c.endChannel(false)
			return
		}
	}
	for spec.BonusChargeEvery > 0 && c.channel.bonusClock >= spec.BonusChargeEvery {
		c.channel.bonusClock -= spec.BonusChargeEvery
		c.rt.Economy.AddCharge(c.strategy.ChargeName(), 1)
	}
}

// endChannel stops the channel; an early cancel takes the shorter cooldown.
func (c *Controller) endChannel(cancelled bool) {
	slot := c.channel.slot
	spec := c.strategy.Slot(slot)
	elapsed := c.channel.elapsed
	c.channel = channelState{}

	cooldown := spec.Cooldown
	if cancelled && spec.Channel.EarlyCooldown > 0 {
		cooldown = spec.Channel.EarlyCooldown
	}
	c.cooldowns[slot] = cooldown
	abilitylog.ChannelEnd(context.Background(), c.rt.Publisher, c.rt.Now(), c.rt.ActorRef, abilitylog.ChannelPayload{
		Channel:   spec.Name,
		Elapsed:   elapsed,
		Cancelled: cancelled,
	})
}

func (c *Controller) cast(ability string, charges int) {
	if c.rt.Counters != nil {
		c.rt.Counters.Casts.Add(1)
	}
	if c.rt.VFX != nil {
		c.rt.VFX.AbilityFired(ability, arena.VFXPayload{Position: c.rt.Actor.Position(), Charges: charges})
	}
	abilitylog.Cast(context.Background(), c.rt.Publisher, c.rt.Now(), c.rt.ActorRef, abilitylog.CastPayload{
		Ability:     ability,
		Kit:         c.strategy.Name(),
		ChargesUsed: charges,
	})
}

func (c *Controller) reject(ability, reason string) {
	if c.rt.Counters != nil {
		c.rt.Counters.RejectedIntents.Add(1)
	}
	abilitylog.Reject(context.Background(), c.rt.Publisher, c.rt.Now(), c.rt.ActorRef, abilitylog.RejectPayload{
		Ability: ability,
		Reason:  reason,
	})
}
