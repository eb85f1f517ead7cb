// Package economy owns the bounded combat resources: combo count, ultimate
// charge, and named per-kit charge stacks. Counters saturate instead of
// overflowing and decay on idle where configured.
package economy

import (
	"context"

	"emberveil/combat/internal/guard"
	"emberveil/combat/internal/telemetry"
	"emberveil/combat/logging"
	"emberveil/combat/logging/economylog"
)

// HitKind scales resource gains by the kind of attack that landed.
type HitKind uint8

const (
	HitBasic HitKind = iota
	HitCharged
)

// CapCallback fires when a charge counter reaches its cap. Registering one
// makes the counter reset to zero after the trigger; without one the counter
// saturates at the cap.
type CapCallback func(name string, cap int)

// ChargeSpec declares a named charge counter.
type ChargeSpec struct {
	Name string
	// Cap bounds the counter; values at or above it saturate or trigger.
	Cap int
	// DecayAfter resets the counter to zero after this many seconds without
	// a gain. Zero disables idle decay.
	DecayAfter float64
	OnCap      CapCallback
}

// Config tunes the shared counters. Zero values take the documented defaults.
type Config struct {
	// UltimateCap is the charge required to cast the ultimate. Default 100.
	UltimateCap float64
	// UltimateGainBasic is added per basic hit. Default 2.
	UltimateGainBasic float64
	// UltimateGainCharged is added per charged hit. Default 6.
	UltimateGainCharged float64
	// MaxCombo caps the combo counter. Default 3.
	MaxCombo int
	// DecayCheckInterval throttles idle-decay checks. Default 1.0s.
	DecayCheckInterval float64
}

func (c Config) normalized() Config {
	if c.UltimateCap <= 0 {
		c.UltimateCap = 100
	}
	if c.UltimateGainBasic <= 0 {
		c.UltimateGainBasic = 2
	}
	if c.UltimateGainCharged <= 0 {
		c.UltimateGainCharged = 6
	}
	if c.MaxCombo <= 0 {
		c.MaxCombo = 3
	}
	if c.DecayCheckInterval <= 0 {
		c.DecayCheckInterval = 1
	}
	return c
}

type charge struct {
	spec      ChargeSpec
	value     int
	sinceGain float64
}

// Economy tracks one actor's resources. Not safe for concurrent use; all
// mutation happens inside the session tick.
type Economy struct {
	cfg     Config
	charges map[string]*charge
	names   []string

	ultimate         float64
	ultimateOverride bool
	combo            int

	decayClock float64

	publisher logging.Publisher
	actorRef  logging.EntityRef
	tick      func() uint64
	counters  *telemetry.Counters
}

func New(cfg Config) *Economy {
	return &Economy{
		cfg:       cfg.normalized(),
		charges:   make(map[string]*charge),
		publisher: logging.NopPublisher(),
	}
}

// Attach wires the ambient observability collaborators. Any nil argument
// keeps the current value.
func (e *Economy) Attach(pub logging.Publisher, actorRef logging.EntityRef, tick func() uint64, counters *telemetry.Counters) {
	if e == nil {
		return
	}
	if pub != nil {
		e.publisher = pub
	}
	if actorRef.ID != "" {
		e.actorRef = actorRef
	}
	if tick != nil {
		e.tick = tick
	}
	if counters != nil {
		e.counters = counters
	}
}

// RegisterCharge declares a charge counter. Re-registering a name replaces
// its spec and resets the counter; kits register theirs at bind time.
func (e *Economy) RegisterCharge(spec ChargeSpec) {
	if e == nil || spec.Name == "" || spec.Cap <= 0 {
		guard.Failf("economy: invalid charge spec %+v", spec)
		return
	}
	if _, exists := e.charges[spec.Name]; !exists {
		e.names = append(e.names, spec.Name)
	}
	e.charges[spec.Name] = &charge{spec: spec}
}

// AddCharge adds amount to the named counter, clamping to [0, cap], and
// returns the new value. Reaching the cap fires the registered callback and
// resets to zero.
func (e *Economy) AddCharge(name string, amount int) int {
	if e == nil {
		return 0
	}
	c, ok := e.charges[name]
	if !ok {
		guard.Failf("economy: unregistered charge %q", name)
		e.count(telemetry.KeyInvariantNoops)
		return 0
	}
	if amount == 0 {
		return c.value
	}
	next := c.value + amount
	if next < 0 {
		next = 0
	}
	if amount > 0 {
		c.sinceGain = 0
	}
	if next >= c.spec.Cap {
		if c.spec.OnCap != nil {
			c.value = 0
			c.spec.OnCap(name, c.spec.Cap)
			e.count(telemetry.KeyChargeCapTriggers)
			economylog.CapTriggered(context.Background(), e.publisher, e.now(), e.actorRef, economylog.ChargePayload{Name: name, Amount: c.spec.Cap, Cap: c.spec.Cap})
			return 0
		}
		next = c.spec.Cap
	}
	c.value = next
	return c.value
}

// Count reads the named counter without mutating it.
func (e *Economy) Count(name string) int {
	if e == nil {
		return 0
	}
	c, ok := e.charges[name]
	if !ok {
		return 0
	}
	return c.value
}

// ConsumeAll returns the current value of the named counter and resets it to
// zero. Signature abilities scale with the returned count.
func (e *Economy) ConsumeAll(name string) int {
	if e == nil {
		return 0
	}
	c, ok := e.charges[name]
	if !ok {
		guard.Failf("economy: unregistered charge %q", name)
		e.count(telemetry.KeyInvariantNoops)
		return 0
	}
	spent := c.value
	c.value = 0
	if spent > 0 {
		economylog.ChargeConsumed(context.Background(), e.publisher, e.now(), e.actorRef, economylog.ChargePayload{Name: name, Amount: spent, Cap: c.spec.Cap})
	}
	return spent
}

// Consume spends exactly amount from the named counter, or reports false
// without touching it when the balance is short.
func (e *Economy) Consume(name string, amount int) bool {
	if e == nil || amount < 0 {
		return false
	}
	if amount == 0 {
		return true
	}
	c, ok := e.charges[name]
	if !ok || c.value < amount {
		return false
	}
	c.value -= amount
	economylog.ChargeConsumed(context.Background(), e.publisher, e.now(), e.actorRef, economylog.ChargePayload{Name: name, Amount: amount, Cap: c.spec.Cap})
	return true
}

// AddUltimate credits ultimate charge for a landed hit.
func (e *Economy) AddUltimate(kind HitKind) {
	if e == nil {
		return
	}
	gain := e.cfg.UltimateGainBasic
	if kind == HitCharged {
		gain = e.cfg.UltimateGainCharged
	}
	e.ultimate += gain
	if e.ultimate > e.cfg.UltimateCap {
		e.ultimate = e.cfg.UltimateCap
	}
}

func (e *Economy) Ultimate() float64 {
	if e == nil {
		return 0
	}
	return e.ultimate
}

// SetUltimateOverride bypasses the charge requirement; a debug hook for
// balance work, never set in normal play.
func (e *Economy) SetUltimateOverride(enabled bool) {
	if e == nil {
		return
	}
	e.ultimateOverride = enabled
}

func (e *Economy) CanUltimate() bool {
	if e == nil {
		return false
	}
	return e.ultimateOverride || e.ultimate >= e.cfg.UltimateCap
}

// UseUltimate spends the full charge. Returns false when not ready.
func (e *Economy) UseUltimate() bool {
	if e == nil || !e.CanUltimate() {
		return false
	}
	e.ultimate = 0
	e.count(telemetry.KeyUltimateCasts)
	economylog.UltimateCast(context.Background(), e.publisher, e.now(), e.actorRef)
	return true
}

// SetCombo stores the combo count, clamped to [0, MaxCombo]. The ability
// controller owns the windowing rules.
func (e *Economy) SetCombo(count int) {
	if e == nil {
		return
	}
	if count < 0 {
		count = 0
	}
	if count > e.cfg.MaxCombo {
		count = e.cfg.MaxCombo
	}
	e.combo = count
}

func (e *Economy) Combo() int {
	if e == nil {
		return 0
	}
	return e.combo
}

func (e *Economy) MaxCombo() int {
	if e == nil {
		return 0
	}
	return e.cfg.MaxCombo
}

// Advance accumulates simulated time and runs idle decay on the throttled
// interval rather than every tick.
func (e *Economy) Advance(dt float64) {
	if e == nil || dt <= 0 {
		return
	}
	e.decayClock += dt
	if e.decayClock < e.cfg.DecayCheckInterval {
		return
	}
	elapsed := e.decayClock
	e.decayClock = 0
	for _, name := range e.names {
		c := e.charges[name]
		if c == nil || c.spec.DecayAfter <= 0 {
			continue
		}
		c.sinceGain += elapsed
		if c.value > 0 && c.sinceGain >= c.spec.DecayAfter {
			dropped := c.value
			c.value = 0
			economylog.ChargesDecayed(context.Background(), e.publisher, e.now(), e.actorRef, economylog.ChargePayload{Name: name, Amount: dropped, Cap: c.spec.Cap})
		}
	}
}

func (e *Economy) now() uint64 {
	if e == nil || e.tick == nil {
		return 0
	}
	return e.tick()
}

func (e *Economy) count(key string) {
	if e == nil || e.counters == nil {
		return
	}
	e.counters.Add(key, 1)
}
