package telemetry

import "sync/atomic"

// Counters aggregates the combat core's health signals. All fields are
// atomic so the websocket feed and harness can read them while a session
// steps on another goroutine.
type Counters struct {
	RejectedIntents     atomic.Uint64
	InvariantNoops      atomic.Uint64
	Casts               atomic.Uint64
	Hits                atomic.Uint64
	Crits               atomic.Uint64
	Backstabs           atomic.Uint64
	PoolAllocs          atomic.Uint64
	PoolReuses          atomic.Uint64
	PoolOverflows       atomic.Uint64
	ProjectilesExpired  atomic.Uint64
	StatusApplied       atomic.Uint64
	StatusPulses        atomic.Uint64
	ChargeCapTriggers   atomic.Uint64
	UltimateCasts       atomic.Uint64
	ChannelTicks        atomic.Uint64
}

// Snapshot is a plain-value copy of Counters suitable for JSON encoding.
type Snapshot struct {
	RejectedIntents    uint64 `json:"rejectedIntents"`
	InvariantNoops     uint64 `json:"invariantNoops"`
	Casts              uint64 `json:"casts"`
	Hits               uint64 `json:"hits"`
	Crits              uint64 `json:"crits"`
	Backstabs          uint64 `json:"backstabs"`
	PoolAllocs         uint64 `json:"poolAllocs"`
	PoolReuses         uint64 `json:"poolReuses"`
	PoolOverflows      uint64 `json:"poolOverflows"`
	ProjectilesExpired uint64 `json:"projectilesExpired"`
	StatusApplied      uint64 `json:"statusApplied"`
	StatusPulses       uint64 `json:"statusPulses"`
	ChargeCapTriggers  uint64 `json:"chargeCapTriggers"`
	UltimateCasts      uint64 `json:"ultimateCasts"`
	ChannelTicks       uint64 `json:"channelTicks"`
}

func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		RejectedIntents:    c.RejectedIntents.Load(),
		InvariantNoops:     c.InvariantNoops.Load(),
		Casts:              c.Casts.Load(),
		Hits:               c.Hits.Load(),
		Crits:              c.Crits.Load(),
		Backstabs:          c.Backstabs.Load(),
		PoolAllocs:         c.PoolAllocs.Load(),
		PoolReuses:         c.PoolReuses.Load(),
		PoolOverflows:      c.PoolOverflows.Load(),
		ProjectilesExpired: c.ProjectilesExpired.Load(),
		StatusApplied:      c.StatusApplied.Load(),
		StatusPulses:       c.StatusPulses.Load(),
		ChargeCapTriggers:  c.ChargeCapTriggers.Load(),
		UltimateCasts:      c.UltimateCasts.Load(),
		ChannelTicks:       c.ChannelTicks.Load(),
	}
}

// Known metric keys for the generic Metrics interface.
const (
	KeyRejectedIntents    = "rejected_intents"
	KeyInvariantNoops     = "invariant_noops"
	KeyCasts              = "casts"
	KeyHits               = "hits"
	KeyCrits              = "crits"
	KeyBackstabs          = "backstabs"
	KeyPoolAllocs         = "pool_allocs"
	KeyPoolReuses         = "pool_reuses"
	KeyPoolOverflows      = "pool_overflows"
	KeyProjectilesExpired = "projectiles_expired"
	KeyStatusApplied      = "status_applied"
	KeyStatusPulses       = "status_pulses"
	KeyChargeCapTriggers  = "charge_cap_triggers"
	KeyUltimateCasts      = "ultimate_casts"
	KeyChannelTicks       = "channel_ticks"
)

// Add implements Metrics over the typed counters. Unknown keys are dropped.
func (c *Counters) Add(key string, delta uint64) {
	if c == nil {
		return
	}
	if counter := c.lookup(key); counter != nil {
		counter.Add(delta)
	}
}

// Store implements Metrics over the typed counters.
func (c *Counters) Store(key string, value uint64) {
	if c == nil {
		return
	}
	if counter := c.lookup(key); counter != nil {
		counter.Store(value)
	}
}

func (c *Counters) lookup(key string) *atomic.Uint64 {
	switch key {
	case KeyRejectedIntents:
		return &c.RejectedIntents
	case KeyInvariantNoops:
		return &c.InvariantNoops
	case KeyCasts:
		return &c.Casts
	case KeyHits:
		return &c.Hits
	case KeyCrits:
		return &c.Crits
	case KeyBackstabs:
		return &c.Backstabs
	case KeyPoolAllocs:
		return &c.PoolAllocs
	case KeyPoolReuses:
		return &c.PoolReuses
	case KeyPoolOverflows:
		return &c.PoolOverflows
	case KeyProjectilesExpired:
		return &c.ProjectilesExpired
	case KeyStatusApplied:
		return &c.StatusApplied
	case KeyStatusPulses:
		return &c.StatusPulses
	case KeyChargeCapTriggers:
		return &c.ChargeCapTriggers
	case KeyUltimateCasts:
		return &c.UltimateCasts
	case KeyChannelTicks:
		return &c.ChannelTicks
	default:
		return nil
	}
}

var _ Metrics = (*Counters)(nil)
