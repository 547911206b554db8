package spawn

import (
	"context"
	"testing"
	"time"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/eventbus"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/log"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/store"
)

func TestIngestorAssignsArrivalOwnership(t *testing.T) {
	s := store.NewMemory()
	s.Seed(&domain.Aircraft{
		ID: "ac-1", Callsign: "ACA123", Controller: "DISPATCHER",
		Status: domain.StatusActive, FlightType: domain.FlightTypeArrival,
		LastEventFired: domain.NewEventSet(""), CreatedAt: time.Now(),
	})
	bus := eventbus.NewMemory()
	logger := log.New("error", t.TempDir())

	ing := New(s, bus, logger)
	if err := ing.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	bus.Publish(context.Background(), eventbus.NewMessage(eventbus.TypeAircraftCreated, map[string]any{
		"id": "ac-1", "callsign": "ACA123", "flight_type": "ARRIVAL",
	}))

	active, err := s.GetActiveArrivals(context.Background(), domain.ControllerEngine)
	if err != nil {
		t.Fatalf("GetActiveArrivals: %v", err)
	}
	if len(active) != 1 || active[0].ID != "ac-1" {
		t.Fatalf("expected ac-1 to be owned by ENGINE, got %+v", active)
	}
	if active[0].Phase != domain.PhaseCruise {
		t.Errorf("expected phase CRUISE after spawn ingestion, got %q", active[0].Phase)
	}

	events := s.Events()
	if len(events) != 1 || events[0].Type != domain.EventTypeEngineAssigned {
		t.Fatalf("expected one ENGINE_ASSIGNED event, got %+v", events)
	}
}

func TestIngestorIgnoresDepartures(t *testing.T) {
	s := store.NewMemory()
	s.Seed(&domain.Aircraft{
		ID: "dep-1", Controller: "DISPATCHER", Status: domain.StatusActive,
		FlightType: domain.FlightTypeDeparture, LastEventFired: domain.NewEventSet(""),
		CreatedAt: time.Now(),
	})
	bus := eventbus.NewMemory()
	logger := log.New("error", t.TempDir())

	ing := New(s, bus, logger)
	ing.Start(context.Background())

	bus.Publish(context.Background(), eventbus.NewMessage(eventbus.TypeAircraftCreated, map[string]any{
		"id": "dep-1", "callsign": "ACA999", "flight_type": "DEPARTURE",
	}))

	if len(s.Events()) != 0 {
		t.Errorf("departures must not produce an ENGINE_ASSIGNED event")
	}
}

func TestIngestorDropsMalformedPayload(t *testing.T) {
	s := store.NewMemory()
	bus := eventbus.NewMemory()
	logger := log.New("error", t.TempDir())

	ing := New(s, bus, logger)
	ing.Start(context.Background())

	bus.Publish(context.Background(), eventbus.NewMessage(eventbus.TypeAircraftCreated, "not-a-map"))

	if len(s.Events()) != 0 {
		t.Errorf("malformed payload must be dropped silently")
	}
}
