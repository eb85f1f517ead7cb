package combatlog

import (
	"context"

	"emberveil/combat/logging"
)

const (
	// EventHit is emitted when an attack or projectile connects with a target.
	EventHit logging.EventType = "combat.hit"
	// EventDefeat is emitted when a hit reduces a target to zero health.
	EventDefeat logging.EventType = "combat.defeat"
)

// HitPayload captures the resolved damage breakdown for a single hit.
type HitPayload struct {
	Source       string  `json:"source"`
	Amount       int     `json:"amount"`
	Critical     bool    `json:"critical,omitempty"`
	Backstab     bool    `json:"backstab,omitempty"`
	TargetHealth float64 `json:"targetHealth"`
	Boss         bool    `json:"boss,omitempty"`
}

// DefeatPayload describes the context for a fatal blow.
type DefeatPayload struct {
	Source string `json:"source,omitempty"`
}

// Hit publishes a combat hit event for a single target.
func Hit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload HitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Defeat publishes a combat defeat event for the eliminated target.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefeatPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
