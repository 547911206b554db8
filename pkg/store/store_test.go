package store

import (
	"context"
	"testing"
	"time"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
)

func seedAircraft(id, controller string, createdAt time.Time) *domain.Aircraft {
	return &domain.Aircraft{
		ID:             id,
		Controller:     controller,
		Status:         domain.StatusActive,
		FlightType:     domain.FlightTypeArrival,
		LastEventFired: domain.NewEventSet(""),
		CreatedAt:      createdAt,
	}
}

func TestGetActiveArrivalsFiltersAndOrders(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.Seed(seedAircraft("old", domain.ControllerEngine, now.Add(-time.Hour)))
	m.Seed(seedAircraft("new", domain.ControllerEngine, now))
	m.Seed(seedAircraft("other-controller", "DISPATCHER", now))
	landed := seedAircraft("landed", domain.ControllerEngine, now)
	landed.Status = domain.StatusLanded
	m.Seed(landed)

	got, err := m.GetActiveArrivals(context.Background(), domain.ControllerEngine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(got), got)
	}
	if got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("expected most-recent-created first, got order %v, %v", got[0].ID, got[1].ID)
	}
}

func TestGetActiveArrivalsNeverReturnsLanded(t *testing.T) {
	m := NewMemory()
	a := seedAircraft("x", domain.ControllerEngine, time.Now())
	m.Seed(a)

	if err := m.MarkTouchdown(context.Background(), "x"); err != nil {
		t.Fatalf("MarkTouchdown: %v", err)
	}

	got, err := m.GetActiveArrivals(context.Background(), domain.ControllerEngine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range got {
		if a.Status == domain.StatusLanded {
			t.Errorf("get_active_arrivals returned a landed row: %+v", a)
		}
	}
}

func TestMarkTouchdownSetsCompoundState(t *testing.T) {
	m := NewMemory()
	m.Seed(seedAircraft("td", domain.ControllerEngine, time.Now()))

	if err := m.MarkTouchdown(context.Background(), "td"); err != nil {
		t.Fatalf("MarkTouchdown: %v", err)
	}

	a := m.rows["td"]
	if a.Status != domain.StatusLanded || a.Controller != domain.ControllerGround || a.Phase != domain.PhaseTouchdown {
		t.Errorf("MarkTouchdown did not set the compound state, got %+v", a)
	}
}

func TestUpdateAircraftStateEmptyIsNoop(t *testing.T) {
	m := NewMemory()
	m.Seed(seedAircraft("a", domain.ControllerEngine, time.Now()))

	if err := m.UpdateAircraftState(context.Background(), "a", AircraftUpdate{}); err != nil {
		t.Errorf("empty update should be a no-op success, got %v", err)
	}
}

func TestUpdateAircraftStateUnknownIDErrors(t *testing.T) {
	m := NewMemory()
	phase := domain.PhaseCruise
	err := m.UpdateAircraftState(context.Background(), "missing", AircraftUpdate{Phase: &phase})
	if err != ErrAircraftNotFound {
		t.Errorf("expected ErrAircraftNotFound, got %v", err)
	}
}

func TestCreateEventDefaultsLevelAndDirection(t *testing.T) {
	m := NewMemory()
	if err := m.CreateEvent(context.Background(), domain.Event{Type: domain.EventTypeEngineAssigned}); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	events := m.Events()
	if len(events) != 1 || events[0].Level != domain.LevelInfo || events[0].Direction != domain.DirectionSYS {
		t.Errorf("expected default level/direction, got %+v", events)
	}
}
