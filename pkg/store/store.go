// Package store defines the typed view the kinematics core has over the
// aircraft_instances and events tables, and a Postgres-backed
// implementation using pgx.
package store

import (
	"context"
	"errors"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
)

// MaxActiveAircraft bounds how many rows GetActiveArrivals returns in one
// call, matching the core's per-tick roster limit.
const MaxActiveAircraft = 100

// ErrAircraftNotFound is returned by UpdateAircraftState and
// MarkTouchdown when the target row no longer exists.
var ErrAircraftNotFound = errors.New("store: aircraft not found")

// AircraftUpdate is a partial update of an aircraft_instances row. Every
// field is a pointer so "not provided" and "set to the zero value" are
// distinguishable; a nil field is left untouched by UpdateAircraftState.
// This is the whitelisted field set from the component design: any field
// not listed here is never written by the core.
type AircraftUpdate struct {
	Position         *domain.Position
	TargetSpeedKts   **float64
	TargetHeadingDeg **float64
	TargetAltitudeFt **float64
	VerticalSpeedFpm *float64
	Phase            *string
	LastEventFired   *domain.EventSet
	Controller       *string
	Status           *string
}

// IsEmpty reports whether the update carries no fields, which
// UpdateAircraftState must treat as a no-op success.
func (u AircraftUpdate) IsEmpty() bool {
	return u.Position == nil && u.TargetSpeedKts == nil && u.TargetHeadingDeg == nil &&
		u.TargetAltitudeFt == nil && u.VerticalSpeedFpm == nil && u.Phase == nil &&
		u.LastEventFired == nil && u.Controller == nil && u.Status == nil
}

// Store is the typed contract the Engine and SpawnIngestor use to read
// and write aircraft state and to append event rows. Implementations
// must surface errors to the caller rather than swallow them: the
// Engine's error-handling policy (log and skip) depends on seeing them.
type Store interface {
	// GetActiveArrivals returns up to MaxActiveAircraft rows where
	// status=active, controller=controller, and flight_type=ARRIVAL,
	// most-recently-created first, enriched with aircraft_type and
	// airline reference data.
	GetActiveArrivals(ctx context.Context, controller string) ([]*domain.Aircraft, error)

	// UpdateAircraftState applies a partial update to the row
	// identified by id and stamps updated_at. An empty update is a
	// no-op success; unknown fields are never part of AircraftUpdate's
	// shape, so there is nothing to silently ignore.
	UpdateAircraftState(ctx context.Context, id string, update AircraftUpdate) error

	// MarkTouchdown applies the compound terminal update: status=landed,
	// controller=GROUND, phase=TOUCHDOWN.
	MarkTouchdown(ctx context.Context, id string) error

	// CreateEvent inserts one event row. Level and Direction default to
	// INFO/SYS when left as the zero value.
	CreateEvent(ctx context.Context, event domain.Event) error

	// Close releases any pooled resources. Safe to call once during
	// shutdown.
	Close()
}
