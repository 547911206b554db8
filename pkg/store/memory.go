package store

import (
	"context"
	"sort"
	"sync"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
)

// Memory is an in-process Store used by tests and by the engine's own
// test suite; it implements the same partial-update and whitelisting
// semantics as Postgres without a database.
type Memory struct {
	mu     sync.Mutex
	rows   map[string]*domain.Aircraft
	events []domain.Event
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]*domain.Aircraft)}
}

// Seed inserts or replaces a row, bypassing the whitelist — for test
// setup only.
func (m *Memory) Seed(a *domain.Aircraft) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *a
	m.rows[a.ID] = &row
}

func (m *Memory) GetActiveArrivals(ctx context.Context, controller string) ([]*domain.Aircraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Aircraft
	for _, a := range m.rows {
		if a.Status == domain.StatusActive && a.Controller == controller && a.FlightType == domain.FlightTypeArrival {
			row := *a
			out = append(out, &row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > MaxActiveAircraft {
		out = out[:MaxActiveAircraft]
	}
	return out, nil
}

func (m *Memory) UpdateAircraftState(ctx context.Context, id string, update AircraftUpdate) error {
	if update.IsEmpty() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.rows[id]
	if !ok {
		return ErrAircraftNotFound
	}
	if update.Position != nil {
		a.Position = *update.Position
	}
	if update.TargetSpeedKts != nil {
		a.TargetSpeedKts = *update.TargetSpeedKts
	}
	if update.TargetHeadingDeg != nil {
		a.TargetHeadingDeg = *update.TargetHeadingDeg
	}
	if update.TargetAltitudeFt != nil {
		a.TargetAltitudeFt = *update.TargetAltitudeFt
	}
	if update.VerticalSpeedFpm != nil {
		a.VerticalSpeedFpm = *update.VerticalSpeedFpm
	}
	if update.Phase != nil {
		a.Phase = *update.Phase
	}
	if update.LastEventFired != nil {
		a.LastEventFired = *update.LastEventFired
	}
	if update.Controller != nil {
		a.Controller = *update.Controller
	}
	if update.Status != nil {
		a.Status = *update.Status
	}
	return nil
}

func (m *Memory) MarkTouchdown(ctx context.Context, id string) error {
	landed := domain.StatusLanded
	ground := domain.ControllerGround
	touchdown := domain.PhaseTouchdown
	return m.UpdateAircraftState(ctx, id, AircraftUpdate{
		Status:     &landed,
		Controller: &ground,
		Phase:      &touchdown,
	})
}

func (m *Memory) CreateEvent(ctx context.Context, event domain.Event) error {
	if event.Level == "" {
		event.Level = domain.LevelInfo
	}
	if event.Direction == "" {
		event.Direction = domain.DirectionSYS
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a snapshot of every event row created so far, in
// insertion order.
func (m *Memory) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Memory) Close() {}
