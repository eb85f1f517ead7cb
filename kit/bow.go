package kit

import (
	"emberveil/combat/arena"
	"emberveil/combat/damage"
	"emberveil/combat/economy"
	"emberveil/combat/geom"
	"emberveil/combat/projectile"
)

// BowConfig tunes the ranged archer kit. Zero fields take the documented
// defaults.
type BowConfig struct {
	// ArrowDamage per basic shot. Default 10.
	ArrowDamage float64
	// ArrowSpeed default 18, ArrowLifetime default 2.
	ArrowSpeed    float64
	ArrowLifetime float64
	// BasicDuration default 0.55, BasicComboWindow default 0.45,
	// BasicStamina default 3.
	BasicDuration    float64
	BasicComboWindow float64
	BasicStamina     float64

	// PowerDamage at full charge; release scales it by the ratio. The
	// power shot pierces. Default 28.
	PowerDamage float64
	// PowerSpeed default 24, PowerLifetime default 2.5.
	PowerSpeed    float64
	PowerLifetime float64
	// ChargedDuration default 1.6, ChargedMin default 0.5, ChargedStamina
	// default 8.
	ChargedDuration float64
	ChargedMin      float64
	ChargedStamina  float64

	// CritChance default 0.1, CritMultiplier default 1.75,
	// BackstabMultiplier default 1.25.
	CritChance         float64
	CritMultiplier     float64
	BackstabMultiplier float64

	// ChargeCap bounds the trust counter. Default 8. Trust never decays;
	// it is spent in full by the signature shot.
	ChargeCap int

	// QuickDamage default 8, QuickCooldown default 2, QuickStamina
	// default 4 for the Q snap shot.
	QuickDamage   float64
	QuickCooldown float64
	QuickStamina  float64

	// VolleyDamage default 12 against everything in VolleyRadius default 3
	// at the confirmed ground point. VolleyCooldown default 10.
	VolleyDamage   float64
	VolleyRadius   float64
	VolleyCooldown float64

	// BoltDamage default 26 for the X piercing beam fired after
	// BoltWindup default 0.6. BoltSpeed default 28, BoltLifetime default
	// 2, BoltCooldown default 12, BoltStamina default 10.
	BoltDamage   float64
	BoltWindup   float64
	BoltSpeed    float64
	BoltLifetime float64
	BoltCooldown float64
	BoltStamina  float64

	// FocusCritChance default 0.25 and FocusCritMultiplier default 0.5 are
	// added to the kit's crit numbers for FocusDuration default 5.
	// FocusCooldown default 14.
	FocusCritChance     float64
	FocusCritMultiplier float64
	FocusDuration       float64
	FocusCooldown       float64

	// Signature shot (V): SignatureDamage default 14 plus
	// SignaturePerCharge default 5 per trust stack spent. Stack thresholds
	// unlock bonus behavior: PierceThreshold default 4 makes it pierce,
	// SplashThreshold default 6 adds a SplashRadius default 2.5 burst at
	// SplashScale default 0.5, MarkThreshold default 8 marks every hit
	// vulnerable at MarkVulnerability default 1.5 for MarkDuration
	// default 4. SignatureCooldown default 9.
	SignatureDamage    float64
	SignaturePerCharge float64
	PierceThreshold    int
	SplashThreshold    int
	MarkThreshold      int
	SplashRadius       float64
	SplashScale        float64
	MarkVulnerability  float64
	MarkDuration       float64
	SignatureSpeed     float64
	SignatureLifetime  float64
	SignatureCooldown  float64

	// StormDamage default 45 with a StormSplashRadius default 4 burst;
	// the F ultimate. StormCooldown default 2.
	StormDamage       float64
	StormSplashRadius float64
	StormCooldown     float64
}

func (c BowConfig) normalized() BowConfig {
	def := func(v *float64, d float64) {
		if *v <= 0 {
			*v = d
		}
	}
	def(&c.ArrowDamage, 10)
	def(&c.ArrowSpeed, 18)
	def(&c.ArrowLifetime, 2)
	def(&c.BasicDuration, 0.55)
	def(&c.BasicComboWindow, 0.45)
	def(&c.BasicStamina, 3)
	def(&c.PowerDamage, 28)
	def(&c.PowerSpeed, 24)
	def(&c.PowerLifetime, 2.5)
	def(&c.ChargedDuration, 1.6)
	def(&c.ChargedMin, 0.5)
	def(&c.ChargedStamina, 8)
	def(&c.CritChance, 0.1)
	def(&c.CritMultiplier, 1.75)
	def(&c.BackstabMultiplier, 1.25)
	if c.ChargeCap <= 0 {
		c.ChargeCap = 8
	}
	def(&c.QuickDamage, 8)
	def(&c.QuickCooldown, 2)
	def(&c.QuickStamina, 4)
	def(&c.VolleyDamage, 12)
	def(&c.VolleyRadius, 3)
	def(&c.VolleyCooldown, 10)
	def(&c.BoltDamage, 26)
	def(&c.BoltWindup, 0.6)
	def(&c.BoltSpeed, 28)
	def(&c.BoltLifetime, 2)
	def(&c.BoltCooldown, 12)
	def(&c.BoltStamina, 10)
	def(&c.FocusCritChance, 0.25)
	def(&c.FocusCritMultiplier, 0.5)
	def(&c.FocusDuration, 5)
	def(&c.FocusCooldown, 14)
	def(&c.SignatureDamage, 14)
	def(&c.SignaturePerCharge, 5)
	if c.PierceThreshold <= 0 {
		c.PierceThreshold = 4
	}
	if c.SplashThreshold <= 0 {
		c.SplashThreshold = 6
	}
	if c.MarkThreshold <= 0 {
		c.MarkThreshold = 8
	}
	def(&c.SplashRadius, 2.5)
	def(&c.SplashScale, 0.5)
	def(&c.MarkVulnerability, 1.5)
	def(&c.MarkDuration, 4)
	def(&c.SignatureSpeed, 22)
	def(&c.SignatureLifetime, 2.5)
	def(&c.SignatureCooldown, 9)
	def(&c.StormDamage, 45)
	def(&c.StormSplashRadius, 4)
	def(&c.StormCooldown, 2)
	return c
}

const bowCharge = "trust"

// Bow is the ranged archer kit. Landed shots build trust; the signature
// shot spends the full bar and unlocks pierce, splash, and a vulnerability
// mark at rising stack thresholds.
type Bow struct {
	cfg BowConfig
	rt  *Runtime

	focusRemaining float64
}

func NewBow(cfg BowConfig) *Bow {
	return &Bow{cfg: cfg.normalized()}
}

func (b *Bow) Name() string       { return "bow" }
func (b *Bow) ChargeName() string { return bowCharge }

func (b *Bow) Bind(rt *Runtime) {
	b.rt = rt
	if rt != nil && rt.Economy != nil {
		rt.Economy.RegisterCharge(economy.ChargeSpec{
			Name: bowCharge,
			Cap:  b.cfg.ChargeCap,
		})
	}
}

func (b *Bow) Profile() damage.Profile {
	return damage.Profile{
		CritChance:         b.cfg.CritChance,
		CritMultiplier:     b.cfg.CritMultiplier,
		BackstabMultiplier: b.cfg.BackstabMultiplier,
	}
}

func (b *Bow) Basic() BasicSpec {
	return BasicSpec{
		Duration:    b.cfg.BasicDuration,
		ComboWindow: b.cfg.BasicComboWindow,
		StaminaCost: b.cfg.BasicStamina,
	}
}

func (b *Bow) Charged() ChargedSpec {
	return ChargedSpec{
		ChargeDuration: b.cfg.ChargedDuration,
		MinCharge:      b.cfg.ChargedMin,
		StaminaCost:    b.cfg.ChargedStamina,
	}
}

func (b *Bow) Slot(slot Slot) SlotSpec {
	switch slot {
	case SlotQ:
		return SlotSpec{
			Name:        "snap_shot",
			Kind:        SlotInstant,
			Cooldown:    b.cfg.QuickCooldown,
			StaminaCost: b.cfg.QuickStamina,
		}
	case SlotE:
		return SlotSpec{
			Name:     "volley",
			Kind:     SlotTargeted,
			Cooldown: b.cfg.VolleyCooldown,
		}
	case SlotX:
		return SlotSpec{
			Name:        "piercing_bolt",
			Kind:        SlotWindup,
			Cooldown:    b.cfg.BoltCooldown,
			StaminaCost: b.cfg.BoltStamina,
			Windup:      b.cfg.BoltWindup,
		}
	case SlotC:
		return SlotSpec{
			Name:     "deadeye_focus",
			Kind:     SlotInstant,
			Cooldown: b.cfg.FocusCooldown,
		}
	case SlotV:
		return SlotSpec{
			Name:              "signature_shot",
			Kind:              SlotInstant,
			Cooldown:          b.cfg.SignatureCooldown,
			ConsumeAllCharges: true,
		}
	case SlotF:
		return SlotSpec{
			Name:     "arrow_storm",
			Kind:     SlotUltimate,
			Cooldown: b.cfg.StormCooldown,
		}
	default:
		return SlotSpec{}
	}
}

func (b *Bow) loose(cfg projectile.SpawnConfig) {
	cfg.Origin = b.rt.Actor.WeaponAnchor()
	if cfg.Direction == (geom.Vec{}) {
		cfg.Direction = b.rt.Actor.Facing()
	}
	b.rt.Projectiles.Spawn(cfg)
}

func (b *Bow) BasicStrike() {
	b.loose(projectile.SpawnConfig{
		Kind:        projectile.KindBolt,
		Speed:       b.cfg.ArrowSpeed,
		Damage:      b.cfg.ArrowDamage,
		MaxLifetime: b.cfg.ArrowLifetime,
		Source:      economy.HitBasic,
		Tag:         "arrow",
	})
}

func (b *Bow) ChargedStrike(ratio float64) {
	b.loose(projectile.SpawnConfig{
		Kind:        projectile.KindBolt,
		Speed:       b.cfg.PowerSpeed,
		Damage:      b.cfg.PowerDamage * ratio,
		MaxLifetime: b.cfg.PowerLifetime,
		Pierce:      true,
		Source:      economy.HitCharged,
		Tag:         "power_shot",
	})
}

func (b *Bow) Cast(slot Slot, aim geom.Vec, charges int) {
	switch slot {
	case SlotQ:
		b.loose(projectile.SpawnConfig{
			Kind:        projectile.KindBolt,
			Speed:       b.cfg.ArrowSpeed,
			Damage:      b.cfg.QuickDamage,
			MaxLifetime: b.cfg.ArrowLifetime,
			Source:      economy.HitBasic,
			Tag:         "snap_shot",
		})
	case SlotE:
		b.rt.StrikeArea(aim, b.cfg.VolleyRadius, b.cfg.VolleyDamage, "volley", economy.HitBasic, func(target arena.Target, result damage.Result) {
			b.OnBasicHit(target, result)
		})
	case SlotX:
		b.loose(projectile.SpawnConfig{
			Kind:        projectile.KindBeam,
			Speed:       b.cfg.BoltSpeed,
			Damage:      b.cfg.BoltDamage,
			MaxLifetime: b.cfg.BoltLifetime,
			Pierce:      true,
			Source:      economy.HitCharged,
			Tag:         "piercing_bolt",
		})
	case SlotC:
		b.rt.Pipeline.SetCritBonus(b.cfg.FocusCritChance, b.cfg.FocusCritMultiplier)
		b.focusRemaining = b.cfg.FocusDuration
	case SlotV:
		cfg := projectile.SpawnConfig{
			Kind:        projectile.KindBolt,
			Direction:   b.rt.AimDirection(aim),
			Speed:       b.cfg.SignatureSpeed,
			Damage:      b.cfg.SignatureDamage + b.cfg.SignaturePerCharge*float64(charges),
			MaxLifetime: b.cfg.SignatureLifetime,
			Source:      economy.HitCharged,
			Tag:         "signature_shot",
		}
		if charges >= b.cfg.PierceThreshold {
			cfg.Pierce = true
		}
		if charges >= b.cfg.SplashThreshold {
			cfg.SplashRadius = b.cfg.SplashRadius
			cfg.SplashScale = b.cfg.SplashScale
		}
		if charges >= b.cfg.MarkThreshold {
			// The mark rides on this arrow alone; other shots in flight and
			// later charged hits stay unmarked.
			cfg.OnHit = func(target arena.Target, _ damage.Result) {
				b.rt.Statuses.ApplyVulnerability(target.ID(), b.cfg.MarkDuration, b.cfg.MarkVulnerability)
			}
		}
		b.loose(cfg)
	case SlotF:
		b.loose(projectile.SpawnConfig{
			Kind:         projectile.KindOrb,
			Direction:    b.rt.AimDirection(aim),
			Speed:        b.cfg.PowerSpeed,
			Damage:       b.cfg.StormDamage,
			MaxLifetime:  b.cfg.PowerLifetime,
			SplashRadius: b.cfg.StormSplashRadius,
			SplashScale:  0.6,
			Source:       economy.HitCharged,
			Tag:          "arrow_storm",
		})
	}
}

func (b *Bow) OnBasicHit(arena.Target, damage.Result) {
	b.rt.Economy.AddCharge(bowCharge, 1)
}

func (b *Bow) OnChargedHit(arena.Target, damage.Result) {
	b.rt.Economy.AddCharge(bowCharge, 2)
}

func (b *Bow) Update(dt float64) {
	if b.focusRemaining > 0 {
		b.focusRemaining -= dt
		if b.focusRemaining <= 0 {
			b.focusRemaining = 0
			b.rt.Pipeline.SetCritBonus(0, 0)
		}
	}
}
