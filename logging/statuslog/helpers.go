package statuslog

import (
	"context"

	"emberveil/combat/logging"
)

const (
	// EventApplied is emitted when a status effect lands on a target.
	EventApplied logging.EventType = "status.applied"
	// EventPulsed is emitted for damage-over-time pulses.
	EventPulsed logging.EventType = "status.pulsed"
	// EventExpired is emitted when a status record decays away.
	EventExpired logging.EventType = "status.expired"
	// EventFrozen is emitted when a charge-cap trigger freezes a target.
	EventFrozen logging.EventType = "status.frozen"
)

// AppliedPayload describes a freshly applied or refreshed status effect.
type AppliedPayload struct {
	Effect     string  `json:"effect"`
	DurationMs int64   `json:"durationMs,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

// PulsedPayload describes one DoT pulse.
type PulsedPayload struct {
	Effect string  `json:"effect"`
	Amount float64 `json:"amount"`
}

// ExpiredPayload names the effect that decayed.
type ExpiredPayload struct {
	Effect string `json:"effect"`
}

func Applied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload AppliedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventApplied,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryStatus,
		Payload:  payload,
	})
}

func Pulsed(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload PulsedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPulsed,
		Tick:     tick,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryStatus,
		Payload:  payload,
	})
}

func Expired(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload ExpiredPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventExpired,
		Tick:     tick,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryStatus,
		Payload:  payload,
	})
}

func Frozen(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload AppliedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventFrozen,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryStatus,
		Payload:  payload,
	})
}
