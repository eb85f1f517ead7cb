package kit

import (
	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/geom"
)

// BladeConfig tunes the default melee kit. Zero fields take the documented
// defaults.
type BladeConfig struct {
	// BasicDamage per swing. Default 14.
	BasicDamage float64
	// BasicReach of the forward cone. Default 2.2.
	BasicReach float64
	// BasicConeDot is the cone half-angle as a minimum dot. Default 0.5.
	BasicConeDot float64
	// BasicDuration of the swing window. Default 0.45.
	BasicDuration float64
	// BasicComboWindow extends past the swing for chaining. Default 0.35.
	BasicComboWindow float64
	// BasicStamina per swing. Default 5.
	BasicStamina float64

	// ChargedDamage at a full charge; release scales it by the charge
	// ratio. Default 32.
	ChargedDamage float64
	// ChargedReach of the heavy swing. Default 2.6.
	ChargedReach float64
	// ChargedStagger applied on hit. Default 0.8.
	ChargedStagger float64
	// ChargedDuration caps the hold. Default 1.2.
	ChargedDuration float64
	// ChargedMin is the minimum hold before release fires. Default 0.35.
	ChargedMin float64
	// ChargedStamina on release. Default 12.
	ChargedStamina float64

	// CritChance default 0.05, CritMultiplier default 1.5,
	// BackstabMultiplier default 1.25.
	CritChance         float64
	CritMultiplier     float64
	BackstabMultiplier float64

	// ChargeCap bounds the blood counter. Default 6.
	ChargeCap int

	// SlashDamage for the Q arc sweep. Default 18.
	SlashDamage float64
	// SlashReach default 2.8, SlashCooldown default 4, SlashStamina
	// default 8.
	SlashReach   float64
	SlashCooldown float64
	SlashStamina float64

	// SurgeMultiplier arms the one-shot next-attack buff. Default 2.
	SurgeMultiplier float64
	// SurgeCooldown default 6.
	SurgeCooldown float64

	// RendDamage for the X windup burst around the actor. Default 22.
	RendDamage float64
	// RendRadius default 2.5, RendWindup default 0.5, RendCooldown
	// default 10, RendChargeCost default 3 blood.
	RendRadius     float64
	RendWindup     float64
	RendCooldown   float64
	RendChargeCost int
	// RendVulnerability multiplier default 1.3 for RendVulnDuration
	// default 4.
	RendVulnerability float64
	RendVulnDuration  float64

	// DrainRange validates the channel target. Default 3.5.
	DrainRange float64
	// DrainDamagePerTick default 8, DrainHealRatio default 1.
	DrainDamagePerTick float64
	DrainHealRatio     float64
	// DrainCooldown default 12 after a natural end; DrainEarlyCooldown
	// default 5 after an early cancel.
	DrainCooldown      float64
	DrainEarlyCooldown float64

	// HemorrhageDamagePerCharge scales the V signature with blood spent.
	// Default 9.
	HemorrhageDamagePerCharge float64
	// HemorrhageReach default 3, HemorrhageStagger default 1,
	// HemorrhageCooldown default 8.
	HemorrhageReach    float64
	HemorrhageStagger  float64
	HemorrhageCooldown float64

	// TempestDamage for the F ultimate burst. Default 55.
	TempestDamage float64
	// TempestRadius default 4. TempestBuffMultiplier default 1.5 applies
	// a timed damage buff for TempestBuffDuration default 6.
	TempestRadius         float64
	TempestBuffMultiplier float64
	TempestBuffDuration   float64
	// TempestCooldown default 2; the ultimate gate is the real limiter.
	TempestCooldown float64
}

func (c BladeConfig) normalized() BladeConfig {
	def := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&c.BasicDamage, 14)
	def(&c.BasicReach, 2.2)
	def(&c.BasicConeDot, 0.5)
	def(&c.BasicDuration, 0.45)
	def(&c.BasicComboWindow, 0.35)
	def(&c.BasicStamina, 5)
	def(&c.ChargedDamage, 32)
	def(&c.ChargedReach, 2.6)
	def(&c.ChargedStagger, 0.8)
	def(&c.ChargedDuration, 1.2)
	def(&c.ChargedMin, 0.35)
	def(&c.ChargedStamina, 12)
	def(&c.CritChance, 0.05)
	def(&c.CritMultiplier, 1.5)
	def(&c.BackstabMultiplier, 1.25)
	if c.ChargeCap <= 0 {
		c.ChargeCap = 6
	}
	def(&c.SlashDamage, 18)
	def(&c.SlashReach, 2.8)
	def(&c.SlashCooldown, 4)
	def(&c.SlashStamina, 8)
	def(&c.SurgeMultiplier, 2)
	def(&c.SurgeCooldown, 6)
	def(&c.RendDamage, 22)
	def(&c.RendRadius, 2.5)
	def(&c.RendWindup, 0.5)
	def(&c.RendCooldown, 10)
	if c.RendChargeCost <= 0 {
		c.RendChargeCost = 3
	}
	def(&c.RendVulnerability, 1.3)
	def(&c.RendVulnDuration, 4)
	def(&c.DrainRange, 3.5)
	def(&c.DrainDamagePerTick, 8)
	def(&c.DrainHealRatio, 1)
	def(&c.DrainCooldown, 12)
	def(&c.DrainEarlyCooldown, 5)
	def(&c.HemorrhageDamagePerCharge, 9)
	def(&c.HemorrhageReach, 3)
	def(&c.HemorrhageStagger, 1)
	def(&c.HemorrhageCooldown, 8)
	def(&c.TempestDamage, 55)
	def(&c.TempestRadius, 4)
	def(&c.TempestBuffMultiplier, 1.5)
	def(&c.TempestBuffDuration, 6)
	def(&c.TempestCooldown, 2)
	return c
}

const bladeCharge = "blood"

// Blade is the default kit: close melee with blood charges fueling the rend
// burst and the hemorrhage finisher, and a life-drain channel on C.
type Blade struct {
	cfg BladeConfig
	rt  *Runtime
}

func NewBlade(cfg BladeConfig) *Blade {
	return &Blade{cfg: cfg.normalized()}
}

func (b *Blade) Name() string       { return "blade" }
func (b *Blade) ChargeName() string { return bladeCharge }

func (b *Blade) Bind(rt *Runtime) {
	b.rt = rt
	if rt != nil && rt.Economy != nil {
		rt.Economy.RegisterCharge(economy.ChargeSpec{
			Name: bladeCharge,
			Cap:  b.cfg.ChargeCap,
		})
	}
}

func (b *Blade) Profile() damage.Profile {
	return damage.Profile{
		CritChance:         b.cfg.CritChance,
		CritMultiplier:     b.cfg.CritMultiplier,
		BackstabMultiplier: b.cfg.BackstabMultiplier,
	}
}

func (b *Blade) Basic() BasicSpec {
	return BasicSpec{
		Duration:    b.cfg.BasicDuration,
		ComboWindow: b.cfg.BasicComboWindow,
		StaminaCost: b.cfg.BasicStamina,
	}
}

func (b *Blade) Charged() ChargedSpec {
	return ChargedSpec{
		ChargeDuration: b.cfg.ChargedDuration,
		MinCharge:      b.cfg.ChargedMin,
		StaminaCost:    b.cfg.ChargedStamina,
	}
}

func (b *Blade) Slot(slot Slot) SlotSpec {
	switch slot {
	case SlotQ:
		return SlotSpec{
			Name:        "crescent_slash",
			Kind:        SlotInstant,
			Cooldown:    b.cfg.SlashCooldown,
			StaminaCost: b.cfg.SlashStamina,
		}
	case SlotE:
		return SlotSpec{
			Name:     "surge",
			Kind:     SlotInstant,
			Cooldown: b.cfg.SurgeCooldown,
		}
	case SlotX:
		return SlotSpec{
			Name:       "rend",
			Kind:       SlotWindup,
			Cooldown:   b.cfg.RendCooldown,
			ChargeCost: b.cfg.RendChargeCost,
			Windup:     b.cfg.RendWindup,
		}
	case SlotC:
		return SlotSpec{
			Name:     "transfusion",
			Kind:     SlotChannel,
			Cooldown: b.cfg.DrainCooldown,
			Channel: ChannelSpec{
				Range:         b.cfg.DrainRange,
				DamagePerTick: b.cfg.DrainDamagePerTick,
				HealRatio:     b.cfg.DrainHealRatio,
				EarlyCooldown: b.cfg.DrainEarlyCooldown,
			}.normalized(),
		}
	case SlotV:
		return SlotSpec{
			Name:              "hemorrhage",
			Kind:              SlotInstant,
			Cooldown:          b.cfg.HemorrhageCooldown,
			ConsumeAllCharges: true,
		}
	case SlotF:
		return SlotSpec{
			Name:     "crimson_tempest",
			Kind:     SlotUltimate,
			Cooldown: b.cfg.TempestCooldown,
		}
	default:
		return SlotSpec{}
	}
}

func (b *Blade) BasicStrike() {
	target := b.rt.MeleeTarget(b.cfg.BasicReach, b.cfg.BasicConeDot)
	if target == nil {
		return
	}
	result := b.rt.LandHit(economy.HitBasic, target, b.cfg.BasicDamage, "blade_basic")
	if result.Amount > 0 {
		b.OnBasicHit(target, result)
	}
}

func (b *Blade) ChargedStrike(ratio float64) {
	target := b.rt.MeleeTarget(b.cfg.ChargedReach, b.cfg.BasicConeDot)
	if target == nil {
		return
	}
	result := b.rt.LandHit(economy.HitCharged, target, b.cfg.ChargedDamage*ratio, "blade_heavy")
	if result.Amount > 0 {
		b.rt.Statuses.ApplyStagger(target.ID(), b.cfg.ChargedStagger)
		b.OnChargedHit(target, result)
	}
}

func (b *Blade) Cast(slot Slot, aim geom.Vec, charges int) {
	switch slot {
	case SlotQ:
		b.rt.SweepCone(b.cfg.SlashReach, b.cfg.BasicConeDot, b.cfg.SlashDamage, "crescent_slash", economy.HitBasic, func(target arena.Target, result damage.Result) {
			b.OnBasicHit(target, result)
		})
	case SlotE:
		b.rt.Pipeline.SetNextAttackMultiplier(b.cfg.SurgeMultiplier)
	case SlotX:
		b.rt.StrikeArea(b.rt.Actor.Position(), b.cfg.RendRadius, b.cfg.RendDamage, "rend", economy.HitCharged, func(target arena.Target, _ damage.Result) {
			b.rt.Statuses.ApplyVulnerability(target.ID(), b.cfg.RendVulnDuration, b.cfg.RendVulnerability)
		})
	case SlotV:
		target := b.rt.MeleeTarget(b.cfg.HemorrhageReach, b.cfg.BasicConeDot)
		if target == nil {
			return
		}
		dmg := b.cfg.HemorrhageDamagePerCharge * float64(charges)
		result := b.rt.LandHit(economy.HitCharged, target, dmg, "hemorrhage")
		if result.Amount > 0 {
			b.rt.Statuses.ApplyStagger(target.ID(), b.cfg.HemorrhageStagger)
		}
	case SlotF:
		b.rt.StrikeArea(b.rt.Actor.Position(), b.cfg.TempestRadius, b.cfg.TempestDamage, "crimson_tempest", economy.HitCharged, nil)
		b.rt.Pipeline.AddTimedBuff("crimson_tempest", b.cfg.TempestBuffMultiplier, b.cfg.TempestBuffDuration)
	}
}

func (b *Blade) OnBasicHit(arena.Target, damage.Result) {
	b.rt.Economy.AddCharge(bladeCharge, 1)
}

func (b *Blade) OnChargedHit(arena.Target, damage.Result) {
	b.rt.Economy.AddCharge(bladeCharge, 2)
}

func (b *Blade) Update(float64) {}
