package kit

import (
	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/geom"
	"emberveil/combat/projectile"
)

// VenomConfig tunes the poison-melee kit. Zero fields take the documented
// defaults.
type VenomConfig struct {
	// BasicDamage per swing. Default 11.
	BasicDamage float64
	// BasicReach default 2, BasicConeDot default 0.5.
	BasicReach   float64
	BasicConeDot float64
	// BasicDuration default 0.4, BasicComboWindow default 0.3,
	// BasicStamina default 4.
	BasicDuration    float64
	BasicComboWindow float64
	BasicStamina     float64

	// BladeCount thrown blades on a charged release. Default 3, fanned by
	// BladeSpread default 0.3 rad.
	BladeCount  int
	BladeSpread float64
	// BladeDamage at full charge per blade; release scales by the ratio.
	// Default 13.
	BladeDamage float64
	// BladeSpeed default 15, BladeLifetime default 1.4.
	BladeSpeed    float64
	BladeLifetime float64
	// ChargedDuration default 1.1, ChargedMin default 0.3, ChargedStamina
	// default 9.
	ChargedDuration float64
	ChargedMin      float64
	ChargedStamina  float64

	// CritChance default 0.08, CritMultiplier default 1.6,
	// BackstabMultiplier default 1.4. The assassin kit leans on position.
	CritChance         float64
	CritMultiplier     float64
	BackstabMultiplier float64

	// ChargeCap bounds the venom counter. Default 6.
	ChargeCap int

	// FangDamage for the Q strike. Default 15. The fang also poisons:
	// FangPoisonDuration default 3 at FangPoisonPerTick default 3.
	// FangCooldown default 4, FangStamina default 7.
	FangDamage         float64
	FangPoisonDuration float64
	FangPoisonPerTick  float64
	FangCooldown       float64
	FangStamina        float64

	// CloudRadius default 3 at the confirmed ground point, poisoning for
	// CloudPoisonDuration default 4 at CloudPoisonPerTick default 2 with
	// CloudDamage default 6 impact. CloudCooldown default 11.
	CloudRadius         float64
	CloudDamage         float64
	CloudPoisonDuration float64
	CloudPoisonPerTick  float64
	CloudCooldown       float64

	// CrippleDamage default 19 after CrippleWindup default 0.45 against
	// the nearest cone target, marking it vulnerable at
	// CrippleVulnerability default 1.35 for CrippleVulnDuration default 4.
	// CrippleCooldown default 9, CrippleChargeCost default 2.
	CrippleDamage        float64
	CrippleWindup        float64
	CrippleVulnerability float64
	CrippleVulnDuration  float64
	CrippleCooldown      float64
	CrippleChargeCost    int

	// ShedHeal restores this much health on C. Default 20. ShedCooldown
	// default 16.
	ShedHeal     float64
	ShedCooldown float64

	// EnvenomDamagePerCharge default 7 plus a poison scaling with charges:
	// EnvenomPoisonPerTickPerCharge default 1.5 for EnvenomPoisonDuration
	// default 5. EnvenomReach default 2.5, EnvenomCooldown default 8.
	EnvenomDamagePerCharge        float64
	EnvenomPoisonPerTickPerCharge float64
	EnvenomPoisonDuration         float64
	EnvenomReach                  float64
	EnvenomCooldown               float64

	// PlagueDamage default 40 in PlagueRadius default 4.5, poisoning every
	// hit for PlaguePoisonDuration default 6 at PlaguePoisonPerTick
	// default 4; the F ultimate. PlagueCooldown default 2.
	PlagueDamage         float64
	PlagueRadius         float64
	PlaguePoisonDuration float64
	PlaguePoisonPerTick  float64
	PlagueCooldown       float64
}

func (c VenomConfig) normalized() VenomConfig {
	def := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&c.BasicDamage, 11)
	def(&c.BasicReach, 2)
	def(&c.BasicConeDot, 0.5)
	def(&c.BasicDuration, 0.4)
	def(&c.BasicComboWindow, 0.3)
	def(&c.BasicStamina, 4)
	if c.BladeCount <= 0 {
		c.BladeCount = 3
	}
	def(&c.BladeSpread, 0.3)
	def(&c.BladeDamage, 13)
	def(&c.BladeSpeed, 15)
	def(&c.BladeLifetime, 1.4)
	def(&c.ChargedDuration, 1.1)
	def(&c.ChargedMin, 0.3)
	def(&c.ChargedStamina, 9)
	def(&c.CritChance, 0.08)
	def(&c.CritMultiplier, 1.6)
	def(&c.BackstabMultiplier, 1.4)
	if c.ChargeCap <= 0 {
		c.ChargeCap = 6
	}
	def(&c.FangDamage, 15)
	def(&c.FangPoisonDuration, 3)
	def(&c.FangPoisonPerTick, 3)
	def(&c.FangCooldown, 4)
	def(&c.FangStamina, 7)
	def(&c.CloudRadius, 3)
	def(&c.CloudDamage, 6)
	def(&c.CloudPoisonDuration, 4)
	def(&c.CloudPoisonPerTick, 2)
	def(&c.CloudCooldown, 11)
	def(&c.CrippleDamage, 19)
	def(&c.CrippleWindup, 0.45)
	def(&c.CrippleVulnerability, 1.35)
	def(&c.CrippleVulnDuration, 4)
	def(&c.CrippleCooldown, 9)
	if c.CrippleChargeCost <= 0 {
		c.CrippleChargeCost = 2
	}
	def(&c.ShedHeal, 20)
	def(&c.ShedCooldown, 16)
	def(&c.EnvenomDamagePerCharge, 7)
	def(&c.EnvenomPoisonPerTickPerCharge, 1.5)
	def(&c.EnvenomPoisonDuration, 5)
	def(&c.EnvenomReach, 2.5)
	def(&c.EnvenomCooldown, 8)
	def(&c.PlagueDamage, 40)
	def(&c.PlagueRadius, 4.5)
	def(&c.PlaguePoisonDuration, 6)
	def(&c.PlaguePoisonPerTick, 4)
	def(&c.PlagueCooldown, 2)
	return c
}

const venomCharge = "venom"

// Venom is the poison-melee kit: fast swings, thrown blade fans, and
// damage-over-time on nearly every slot.
type Venom struct {
	cfg VenomConfig
	rt  *Runtime
}

func NewVenom(cfg VenomConfig) *Venom {
	return &Venom{cfg: cfg.normalized()}
}

func (v *Venom) Name() string       { return "venom" }
func (v *Venom) ChargeName() string { return venomCharge }

func (v *Venom) Bind(rt *Runtime) {
	v.rt = rt
	if rt != nil && rt.Economy != nil {
		rt.Economy.RegisterCharge(economy.ChargeSpec{
			Name: venomCharge,
			Cap:  v.cfg.ChargeCap,
		})
	}
}

func (v *Venom) Profile() damage.Profile {
	return damage.Profile{
		CritChance:         v.cfg.CritChance,
		CritMultiplier:     v.cfg.CritMultiplier,
		BackstabMultiplier: v.cfg.BackstabMultiplier,
	}
}

func (v *Venom) Basic() BasicSpec {
	return BasicSpec{
		Duration:    v.cfg.BasicDuration,
		ComboWindow: v.cfg.BasicComboWindow,
		StaminaCost: v.cfg.BasicStamina,
	}
}

func (v *Venom) Charged() ChargedSpec {
	return ChargedSpec{
		ChargeDuration: v.cfg.ChargedDuration,
		MinCharge:      v.cfg.ChargedMin,
		StaminaCost:    v.cfg.ChargedStamina,
	}
}

func (v *Venom) Slot(slot Slot) SlotSpec {
	switch slot {
	case SlotQ:
		return SlotSpec{
			Name:        "venom_fang",
			Kind:        SlotInstant,
			Cooldown:    v.cfg.FangCooldown,
			StaminaCost: v.cfg.FangStamina,
		}
	case SlotE:
		return SlotSpec{
			Name:     "toxin_cloud",
			Kind:     SlotTargeted,
			Cooldown: v.cfg.CloudCooldown,
		}
	case SlotX:
		return SlotSpec{
			Name:       "crippling_strike",
			Kind:       SlotWindup,
			Cooldown:   v.cfg.CrippleCooldown,
			ChargeCost: v.cfg.CrippleChargeCost,
			Windup:     v.cfg.CrippleWindup,
		}
	case SlotC:
		return SlotSpec{
			Name:     "shed_skin",
			Kind:     SlotInstant,
			Cooldown: v.cfg.ShedCooldown,
		}
	case SlotV:
		return SlotSpec{
			Name:              "envenom",
			Kind:              SlotInstant,
			Cooldown:          v.cfg.EnvenomCooldown,
			ConsumeAllCharges: true,
		}
	case SlotF:
		return SlotSpec{
			Name:     "plague_burst",
			Kind:     SlotUltimate,
			Cooldown: v.cfg.PlagueCooldown,
		}
	default:
		return SlotSpec{}
	}
}

func (v *Venom) BasicStrike() {
	target := v.rt.MeleeTarget(v.cfg.BasicReach, v.cfg.BasicConeDot)
	if target == nil {
		return
	}
	result := v.rt.LandHit(economy.HitBasic, target, v.cfg.BasicDamage, "venom_basic")
	if result.Amount > 0 {
		v.OnBasicHit(target, result)
	}
}

func (v *Venom) ChargedStrike(ratio float64) {
	forward := v.rt.Actor.Facing()
	// Center the fan on the facing axis for both odd and even counts.
	center := float64(v.cfg.BladeCount-1) / 2
	for i := 0; i < v.cfg.BladeCount; i++ {
		v.rt.Projectiles.Spawn(projectile.SpawnConfig{
			Kind:        projectile.KindBlade,
			Origin:      v.rt.Actor.WeaponAnchor(),
			Direction:   rotate(forward, (float64(i)-center)*v.cfg.BladeSpread),
			Speed:       v.cfg.BladeSpeed,
			Damage:      v.cfg.BladeDamage * ratio,
			MaxLifetime: v.cfg.BladeLifetime,
			Source:      economy.HitCharged,
			Tag:         "venom_blade",
		})
	}
}

func (v *Venom) Cast(slot Slot, aim geom.Vec, charges int) {
	switch slot {
	case SlotQ:
		target := v.rt.MeleeTarget(v.cfg.BasicReach, v.cfg.BasicConeDot)
		if target == nil {
			return
		}
		result := v.rt.LandHit(economy.HitBasic, target, v.cfg.FangDamage, "venom_fang")
		if result.Amount > 0 {
			v.rt.Statuses.ApplyPoison(target.ID(), v.cfg.FangPoisonDuration, v.cfg.FangPoisonPerTick, "venom_fang")
			v.OnBasicHit(target, result)
		}
	case SlotE:
		v.rt.StrikeArea(aim, v.cfg.CloudRadius, v.cfg.CloudDamage, "toxin_cloud", economy.HitBasic, func(target arena.Target, _ damage.Result) {
			v.rt.Statuses.ApplyPoison(target.ID(), v.cfg.CloudPoisonDuration, v.cfg.CloudPoisonPerTick, "toxin_cloud")
		})
	case SlotX:
		target := v.rt.MeleeTarget(v.cfg.EnvenomReach, v.cfg.BasicConeDot)
		if target == nil {
			return
		}
		result := v.rt.LandHit(economy.HitCharged, target, v.cfg.CrippleDamage, "crippling_strike")
		if result.Amount > 0 {
			v.rt.Statuses.ApplyVulnerability(target.ID(), v.cfg.CrippleVulnDuration, v.cfg.CrippleVulnerability)
		}
	case SlotC:
		v.rt.Actor.Heal(v.cfg.ShedHeal)
	case SlotV:
		target := v.rt.MeleeTarget(v.cfg.EnvenomReach, v.cfg.BasicConeDot)
		if target == nil {
			return
		}
		dmg := v.cfg.EnvenomDamagePerCharge * float64(charges)
		result := v.rt.LandHit(economy.HitCharged, target, dmg, "envenom")
		if result.Amount > 0 {
			perTick := v.cfg.EnvenomPoisonPerTickPerCharge * float64(charges)
			v.rt.Statuses.ApplyPoison(target.ID(), v.cfg.EnvenomPoisonDuration, perTick, "envenom")
		}
	case SlotF:
		v.rt.StrikeArea(v.rt.Actor.Position(), v.cfg.PlagueRadius, v.cfg.PlagueDamage, "plague_burst", economy.HitCharged, func(target arena.Target, _ damage.Result) {
			v.rt.Statuses.ApplyPoison(target.ID(), v.cfg.PlaguePoisonDuration, v.cfg.PlaguePoisonPerTick, "plague_burst")
		})
	}
}

func (v *Venom) OnBasicHit(arena.Target, damage.Result) {
	v.rt.Economy.AddCharge(venomCharge, 1)
}

func (v *Venom) OnChargedHit(arena.Target, damage.Result) {
	v.rt.Economy.AddCharge(venomCharge, 2)
}

func (v *Venom) Update(float64) {}
