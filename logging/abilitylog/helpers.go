package abilitylog

import (
	"context"

	"emberveil/combat/logging"
)

const (
	// EventCast is emitted when an ability commits.
	EventCast logging.EventType = "ability.cast"
	// EventReject is emitted at debug level when an intent is silently refused.
	EventReject logging.EventType = "ability.reject"
	// EventChannelStart marks the beginning of a channel (charge, drain).
	EventChannelStart logging.EventType = "ability.channel_start"
	// EventChannelEnd marks a channel ending, naturally or by cancel.
	EventChannelEnd logging.EventType = "ability.channel_end"
)

// CastPayload records a committed ability.
type CastPayload struct {
	Ability     string `json:"ability"`
	Kit         string `json:"kit,omitempty"`
	ChargesUsed int    `json:"chargesUsed,omitempty"`
}

// RejectPayload records a refused intent and why.
type RejectPayload struct {
	Ability string `json:"ability"`
	Reason  string `json:"reason"`
}

// ChannelPayload records channel transitions.
type ChannelPayload struct {
	Channel   string  `json:"channel"`
	Elapsed   float64 `json:"elapsed,omitempty"`
	Cancelled bool    `json:"cancelled,omitempty"`
}

// Reject reasons shared across abilities.
const (
	ReasonCooldown       = "cooldown"
	ReasonResource       = "resource"
	ReasonChannelActive  = "channel_active"
	ReasonNoTarget       = "no_target"
	ReasonBelowThreshold = "below_threshold"
)

func Cast(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CastPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCast,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryAbility,
		Payload:  payload,
	})
}

func Reject(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RejectPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventReject,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryAbility,
		Payload:  payload,
	})
}

func ChannelStart(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ChannelPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventChannelStart,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryAbility,
		Payload:  payload,
	})
}

func ChannelEnd(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ChannelPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventChannelEnd,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryAbility,
		Payload:  payload,
	})
}
