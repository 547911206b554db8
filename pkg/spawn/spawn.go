// Package spawn implements the long-running consumer that takes
// ownership of newly created arrival aircraft on behalf of the
// kinematics core.
package spawn

import (
	"context"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/eventbus"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/log"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/store"
)

// Ingestor subscribes to aircraft.created and flips ownership of
// ARRIVAL-type rows to the core. It runs concurrently with the tick
// loop; the next tick after assignment picks the aircraft up through
// GetActiveArrivals. Non-arrivals and decode errors are dropped silently,
// matching the upstream source's filtering behavior.
type Ingestor struct {
	store store.Store
	bus   eventbus.Bus
	log   *log.Logger
}

// New builds an Ingestor over the given store and bus.
func New(s store.Store, b eventbus.Bus, logger *log.Logger) *Ingestor {
	return &Ingestor{store: s, bus: b, log: logger}
}

// Start subscribes to aircraft.created on the bus. The subscription's
// handler runs for the lifetime of ctx; callers cancel ctx to stop
// receiving new spawns.
func (i *Ingestor) Start(ctx context.Context) error {
	return i.bus.Subscribe(ctx, eventbus.TypeAircraftCreated, func(msg eventbus.Message) {
		i.handle(ctx, msg)
	})
}

// createdPayload is the shape of the data field on an aircraft.created
// message: the minimal set of fields the ingestor needs to decide
// ownership.
type createdPayload struct {
	ID         string `json:"id"`
	Callsign   string `json:"callsign"`
	FlightType string `json:"flight_type"`
}

func (i *Ingestor) handle(ctx context.Context, msg eventbus.Message) {
	payload, ok := decodePayload(msg.Data)
	if !ok || payload.FlightType != domain.FlightTypeArrival {
		return
	}

	engine := domain.ControllerEngine
	cruise := domain.PhaseCruise
	err := i.store.UpdateAircraftState(ctx, payload.ID, store.AircraftUpdate{
		Controller: &engine,
		Phase:      &cruise,
	})
	if err != nil {
		i.log.Errorf("spawn: assign ENGINE control to %s: %v", payload.ID, err)
		return
	}

	aid := payload.ID
	if err := i.store.CreateEvent(ctx, domain.Event{
		Type:       domain.EventTypeEngineAssigned,
		Message:    payload.Callsign + " assigned to ENGINE control",
		AircraftID: &aid,
	}); err != nil {
		i.log.Errorf("spawn: create ENGINE_ASSIGNED event for %s: %v", payload.ID, err)
	}
}

// decodePayload accepts either a map[string]any (the shape Message.Data
// has after an eventbus round trip through JSON) or a createdPayload
// value directly (the shape a same-process test publisher can use).
func decodePayload(data any) (createdPayload, bool) {
	switch v := data.(type) {
	case createdPayload:
		return v, true
	case map[string]any:
		p := createdPayload{}
		if id, ok := v["id"].(string); ok {
			p.ID = id
		}
		if cs, ok := v["callsign"].(string); ok {
			p.Callsign = cs
		}
		if ft, ok := v["flight_type"].(string); ok {
			p.FlightType = ft
		}
		if p.ID == "" {
			return createdPayload{}, false
		}
		return p, true
	default:
		return createdPayload{}, false
	}
}
