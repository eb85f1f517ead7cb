package kit

import (
	"context"

	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/geom"
	"emberveil/combat/logging"
	"emberveil/combat/logging/statuslog"
	"emberveil/combat/projectile"
)

// FrostConfig tunes the ranged caster kit. Zero fields take the documented
// defaults.
type FrostConfig struct {
	// BoltDamage per basic bolt. Default 12.
	BoltDamage float64
	// BoltSpeed default 14, BoltLifetime default 1.6.
	BoltSpeed    float64
	BoltLifetime float64
	// BasicDuration default 0.5, BasicComboWindow default 0.4,
	// BasicStamina default 4.
	BasicDuration    float64
	BasicComboWindow float64
	BasicStamina     float64

	// LanceDamage at full charge; release scales it by the ratio. The lance
	// pierces. Default 34.
	LanceDamage float64
	// LanceSpeed default 20, LanceLifetime default 2.2.
	LanceSpeed    float64
	LanceLifetime float64
	// ChargedDuration default 1.4, ChargedMin default 0.4, ChargedStamina
	// default 10.
	ChargedDuration float64
	ChargedMin      float64
	ChargedStamina  float64

	// CritChance default 0.06, CritMultiplier default 1.5,
	// BackstabMultiplier default 1.25.
	CritChance         float64
	CritMultiplier     float64
	BackstabMultiplier float64

	// StackCap bounds the frost counter. Default 8. Reaching the cap
	// freezes the last target hit for CapFreezeDuration default 2.5 and
	// resets the counter.
	StackCap          int
	CapFreezeDuration float64
	// StackDecayAfter resets idle stacks. Default 5.
	StackDecayAfter float64

	// ShardCount default 3 bolts fanned by ShardSpread default 0.25 rad.
	ShardCount  int
	ShardSpread float64
	// ShardDamage default 8, ShardSpeed default 16, ShardLifetime default
	// 1.2, ShardCooldown default 5, ShardStamina default 8.
	ShardDamage   float64
	ShardSpeed    float64
	ShardLifetime float64
	ShardCooldown float64
	ShardStamina  float64

	// NovaDamage default 20 in NovaRadius default 3 around the actor after
	// NovaWindup default 0.4; hits freeze for NovaFreeze default 1.2.
	// NovaCooldown default 9, NovaStamina default 10.
	NovaDamage   float64
	NovaRadius   float64
	NovaWindup   float64
	NovaFreeze   float64
	NovaCooldown float64
	NovaStamina  float64

	// FieldDamage default 16 in FieldRadius default 3.5 at the confirmed
	// ground point; hits freeze for FieldFreeze default 1. FieldCooldown
	// default 12.
	FieldDamage   float64
	FieldRadius   float64
	FieldFreeze   float64
	FieldCooldown float64

	// ArmorMultiplier default 1.25 timed damage buff for ArmorDuration
	// default 6. ArmorCooldown default 14.
	ArmorMultiplier float64
	ArmorDuration   float64
	ArmorCooldown   float64

	// ShatterDamagePerStack scales the V signature with stacks spent.
	// Default 11, radius ShatterRadius default 4; hits are marked
	// vulnerable at ShatterVulnerability default 1.4 for ShatterVulnDuration
	// default 3. ShatterCooldown default 10.
	ShatterDamagePerStack float64
	ShatterRadius         float64
	ShatterVulnerability  float64
	ShatterVulnDuration   float64
	ShatterCooldown       float64

	// ZeroDamage default 60 in ZeroRadius default 5 with a ZeroFreeze
	// default 3 freeze; the F ultimate. ZeroCooldown default 2.
	ZeroDamage   float64
	ZeroRadius   float64
	ZeroFreeze   float64
	ZeroCooldown float64
}

func (c FrostConfig) normalized() FrostConfig {
	def := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&c.BoltDamage, 12)
	def(&c.BoltSpeed, 14)
	def(&c.BoltLifetime, 1.6)
	def(&c.BasicDuration, 0.5)
	def(&c.BasicComboWindow, 0.4)
	def(&c.BasicStamina, 4)
	def(&c.LanceDamage, 34)
	def(&c.LanceSpeed, 20)
	def(&c.LanceLifetime, 2.2)
	def(&c.ChargedDuration, 1.4)
	def(&c.ChargedMin, 0.4)
	def(&c.ChargedStamina, 10)
	def(&c.CritChance, 0.06)
	def(&c.CritMultiplier, 1.5)
	def(&c.BackstabMultiplier, 1.25)
	if c.StackCap <= 0 {
		c.StackCap = 8
	}
	def(&c.CapFreezeDuration, 2.5)
	def(&c.StackDecayAfter, 5)
	if c.ShardCount <= 0 {
		c.ShardCount = 3
	}
	def(&c.ShardSpread, 0.25)
	def(&c.ShardDamage, 8)
	def(&c.ShardSpeed, 16)
	def(&c.ShardLifetime, 1.2)
	def(&c.ShardCooldown, 5)
	def(&c.ShardStamina, 8)
	def(&c.NovaDamage, 20)
	def(&c.NovaRadius, 3)
	def(&c.NovaWindup, 0.4)
	def(&c.NovaFreeze, 1.2)
	def(&c.NovaCooldown, 9)
	def(&c.NovaStamina, 10)
	def(&c.FieldDamage, 16)
	def(&c.FieldRadius, 3.5)
	def(&c.FieldFreeze, 1)
	def(&c.FieldCooldown, 12)
	def(&c.ArmorMultiplier, 1.25)
	def(&c.ArmorDuration, 6)
	def(&c.ArmorCooldown, 14)
	def(&c.ShatterDamagePerStack, 11)
	def(&c.ShatterRadius, 4)
	def(&c.ShatterVulnerability, 1.4)
	def(&c.ShatterVulnDuration, 3)
	def(&c.ShatterCooldown, 10)
	def(&c.ZeroDamage, 60)
	def(&c.ZeroRadius, 5)
	def(&c.ZeroFreeze, 3)
	def(&c.ZeroCooldown, 2)
	return c
}

const frostCharge = "frost"

// Frost is the ranged caster kit. Hits build frost stacks; a full bar
// freezes the last target struck and resets, and idle stacks melt away.
type Frost struct {
	cfg     FrostConfig
	rt      *Runtime
	lastHit arena.TargetID
}

func NewFrost(cfg FrostConfig) *Frost {
	return &Frost{cfg: cfg.normalized()}
}

func (f *Frost) Name() string       { return "frost" }
func (f *Frost) ChargeName() string { return frostCharge }

func (f *Frost) Bind(rt *Runtime) {
	f.rt = rt
	if rt != nil && rt.Economy != nil {
		rt.Economy.RegisterCharge(economy.ChargeSpec{
			Name:       frostCharge,
			Cap:        f.cfg.StackCap,
			DecayAfter: f.cfg.StackDecayAfter,
			OnCap:      func(string, int) { f.freezeLastHit() },
		})
	}
}

// freezeLastHit is the cap trigger: the target that pushed the bar to full
// gets frozen solid.
func (f *Frost) freezeLastHit() {
	if f.rt == nil || f.lastHit == "" {
		return
	}
	target := f.rt.Registry.Lookup(f.lastHit)
	if target == nil || !target.Alive() {
		return
	}
	f.rt.Statuses.ApplyFreeze(target.ID(), f.cfg.CapFreezeDuration)
	statuslog.Frozen(context.Background(), f.rt.Publisher, f.rt.Now(), f.rt.ActorRef,
		logging.TargetRef(string(target.ID())),
		statuslog.AppliedPayload{Effect: "freeze", DurationMs: int64(f.cfg.CapFreezeDuration * 1000)})
}

func (f *Frost) Profile() damage.Profile {
	return damage.Profile{
		CritChance:         f.cfg.CritChance,
		CritMultiplier:     f.cfg.CritMultiplier,
		BackstabMultiplier: f.cfg.BackstabMultiplier,
	}
}

func (f *Frost) Basic() BasicSpec {
	return BasicSpec{
		Duration:    f.cfg.BasicDuration,
		ComboWindow: f.cfg.BasicComboWindow,
		StaminaCost: f.cfg.BasicStamina,
	}
}

func (f *Frost) Charged() ChargedSpec {
	return ChargedSpec{
		ChargeDuration: f.cfg.ChargedDuration,
		MinCharge:      f.cfg.ChargedMin,
		StaminaCost:    f.cfg.ChargedStamina,
	}
}

func (f *Frost) Slot(slot Slot) SlotSpec {
	switch slot {
	case SlotQ:
		return SlotSpec{
			Name:        "ice_shards",
			Kind:        SlotInstant,
			Cooldown:    f.cfg.ShardCooldown,
			StaminaCost: f.cfg.ShardStamina,
		}
	case SlotE:
		return SlotSpec{
			Name:        "frost_nova",
			Kind:        SlotWindup,
			Cooldown:    f.cfg.NovaCooldown,
			StaminaCost: f.cfg.NovaStamina,
			Windup:      f.cfg.NovaWindup,
		}
	case SlotX:
		return SlotSpec{
			Name:     "glacial_field",
			Kind:     SlotTargeted,
			Cooldown: f.cfg.FieldCooldown,
		}
	case SlotC:
		return SlotSpec{
			Name:     "cryo_focus",
			Kind:     SlotInstant,
			Cooldown: f.cfg.ArmorCooldown,
		}
	case SlotV:
		return SlotSpec{
			Name:              "shatter",
			Kind:              SlotInstant,
			Cooldown:          f.cfg.ShatterCooldown,
			ConsumeAllCharges: true,
		}
	case SlotF:
		return SlotSpec{
			Name:     "absolute_zero",
			Kind:     SlotUltimate,
			Cooldown: f.cfg.ZeroCooldown,
		}
	default:
		return SlotSpec{}
	}
}

func (f *Frost) BasicStrike() {
	f.rt.Projectiles.Spawn(projectile.SpawnConfig{
		Kind:        projectile.KindBolt,
		Origin:      f.rt.Actor.WeaponAnchor(),
		Direction:   f.rt.Actor.Facing(),
		Speed:       f.cfg.BoltSpeed,
		Damage:      f.cfg.BoltDamage,
		MaxLifetime: f.cfg.BoltLifetime,
		Source:      economy.HitBasic,
		Tag:         "frost_bolt",
	})
}

func (f *Frost) ChargedStrike(ratio float64) {
	f.rt.Projectiles.Spawn(projectile.SpawnConfig{
		Kind:        projectile.KindBeam,
		Origin:      f.rt.Actor.WeaponAnchor(),
		Direction:   f.rt.Actor.Facing(),
		Speed:       f.cfg.LanceSpeed,
		Damage:      f.cfg.LanceDamage * ratio,
		MaxLifetime: f.cfg.LanceLifetime,
		Pierce:      true,
		Source:      economy.HitCharged,
		Tag:         "ice_lance",
	})
}

func (f *Frost) Cast(slot Slot, aim geom.Vec, charges int) {
	switch slot {
	case SlotQ:
		forward := f.rt.AimDirection(aim)
		// Center the fan on the aim axis for both odd and even counts.
		center := float64(f.cfg.ShardCount-1) / 2
		for i := 0; i < f.cfg.ShardCount; i++ {
			f.rt.Projectiles.Spawn(projectile.SpawnConfig{
				Kind:        projectile.KindBolt,
				Origin:      f.rt.Actor.WeaponAnchor(),
				Direction:   rotate(forward, (float64(i)-center)*f.cfg.ShardSpread),
				Speed:       f.cfg.ShardSpeed,
				Damage:      f.cfg.ShardDamage,
				MaxLifetime: f.cfg.ShardLifetime,
				Source:      economy.HitBasic,
				Tag:         "ice_shard",
			})
		}
	case SlotE:
		f.rt.StrikeArea(f.rt.Actor.Position(), f.cfg.NovaRadius, f.cfg.NovaDamage, "frost_nova", economy.HitCharged, func(target arena.Target, result damage.Result) {
			f.rt.Statuses.ApplyFreeze(target.ID(), f.cfg.NovaFreeze)
			f.OnChargedHit(target, result)
		})
	case SlotX:
		f.rt.StrikeArea(aim, f.cfg.FieldRadius, f.cfg.FieldDamage, "glacial_field", economy.HitCharged, func(target arena.Target, result damage.Result) {
			f.rt.Statuses.ApplyFreeze(target.ID(), f.cfg.FieldFreeze)
			f.OnChargedHit(target, result)
		})
	case SlotC:
		f.rt.Pipeline.AddTimedBuff("cryo_focus", f.cfg.ArmorMultiplier, f.cfg.ArmorDuration)
	case SlotV:
		dmg := f.cfg.ShatterDamagePerStack * float64(charges)
		f.rt.StrikeArea(f.rt.Actor.Position(), f.cfg.ShatterRadius, dmg, "shatter", economy.HitCharged, func(target arena.Target, _ damage.Result) {
			f.rt.Statuses.ApplyVulnerability(target.ID(), f.cfg.ShatterVulnDuration, f.cfg.ShatterVulnerability)
		})
	case SlotF:
		f.rt.StrikeArea(f.rt.Actor.Position(), f.cfg.ZeroRadius, f.cfg.ZeroDamage, "absolute_zero", economy.HitCharged, func(target arena.Target, _ damage.Result) {
			f.rt.Statuses.ApplyFreeze(target.ID(), f.cfg.ZeroFreeze)
		})
	}
}

func (f *Frost) OnBasicHit(target arena.Target, _ damage.Result) {
	f.lastHit = target.ID()
	f.rt.Economy.AddCharge(frostCharge, 1)
}

func (f *Frost) OnChargedHit(target arena.Target, _ damage.Result) {
	f.lastHit = target.ID()
	f.rt.Economy.AddCharge(frostCharge, 2)
}

func (f *Frost) Update(float64) {}
