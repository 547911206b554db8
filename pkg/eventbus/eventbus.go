// Package eventbus publishes and subscribes to the single named channel
// the core and its collaborators share. Every message carries
// {type, timestamp, data}; the bus is best-effort — publish failures are
// logged and never retried or allowed to block a tick.
package eventbus

import (
	"context"
	"time"
)

// Message is the wire envelope every published event carries.
type Message struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"` // ISO8601 with trailing Z
	Data      any    `json:"data"`
}

// NewMessage stamps data with the current UTC time in the wire format.
func NewMessage(msgType string, data any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Data:      data,
	}
}

// Dotted type names the core produces and consumes on the bus.
const (
	TypePositionUpdated = "aircraft.position_updated"
	TypeThresholdEvent  = "aircraft.threshold_event"
	TypeStateSnapshot   = "engine.state_snapshot"
	TypeSystemStatus    = "system.status"
	TypeEngineStarted   = "atc_brain:started"
	TypeEngineStopped   = "atc_brain:stopped"
	TypeAircraftCreated = "aircraft.created"
)

// Bus is the publish/subscribe transport contract. Publish never blocks
// the caller on transport failure; it returns an error for logging only
// when it needs to be disambiguated from a successful send in tests.
type Bus interface {
	// Publish sends msg on the shared channel. Implementations must not
	// retry and must not block the caller beyond a short internal
	// timeout.
	Publish(ctx context.Context, msg Message) error

	// Subscribe registers handler to be invoked for every message whose
	// Type matches msgType received on the shared channel. Subscribe is
	// used by the core only for aircraft.created.
	Subscribe(ctx context.Context, msgType string, handler func(Message)) error

	// Close releases any transport resources.
	Close() error
}
