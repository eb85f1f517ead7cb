package economylog

import (
	"context"

	"emberveil/combat/logging"
)

const (
	// EventChargeConsumed is emitted when a signature ability spends stacks.
	EventChargeConsumed logging.EventType = "economy.charge_consumed"
	// EventCapTriggered is emitted when a charge hits its cap callback.
	EventCapTriggered logging.EventType = "economy.cap_triggered"
	// EventUltimateCast is emitted when the ultimate fires and resets to zero.
	EventUltimateCast logging.EventType = "economy.ultimate_cast"
	// EventChargesDecayed is emitted when idle decay clears a counter.
	EventChargesDecayed logging.EventType = "economy.charges_decayed"
)

// ChargePayload describes a charge-counter transition.
type ChargePayload struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
	Cap    int    `json:"cap,omitempty"`
}

func ChargeConsumed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ChargePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventChargeConsumed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

func CapTriggered(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ChargePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCapTriggered,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}

func UltimateCast(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventUltimateCast,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
	})
}

func ChargesDecayed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ChargePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventChargesDecayed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}
