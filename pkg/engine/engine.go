// Package engine implements the orchestrator that ties together the
// store, kinematics, airspace reference, event bus, and telemetry buffer
// into one Tick call per scheduler iteration.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/airspace"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/eventbus"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/kinematics"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/log"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/rand"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/store"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/telemetry"
)

// SnapshotEveryNTicks is how often engine.state_snapshot and
// engine.status are published.
const SnapshotEveryNTicks = 10

// TouchdownAltitudeAGLFt is the altitude above ground below which the
// TOUCHDOWN threshold fires (strict "<").
const TouchdownAltitudeAGLFt = 50.0

// HandoffReadyDistanceNm is the non-strict ("<=") distance at which
// HANDOFF_READY fires.
const HandoffReadyDistanceNm = 20.0

// EnteredEntryZoneDistanceNm is the non-strict ("<=") distance at which
// ENTERED_ENTRY_ZONE fires.
const EnteredEntryZoneDistanceNm = 30.0

// Stats accumulates the run-wide counters the original prints at
// shutdown.
type Stats struct {
	AircraftProcessed int64
	EventsFired       int64
	TotalTicks        int64
	TickDurationSum   time.Duration
}

// AvgTickDuration returns the mean tick duration so far, or 0 before the
// first tick.
func (s Stats) AvgTickDuration() time.Duration {
	if s.TotalTicks == 0 {
		return 0
	}
	return s.TickDurationSum / time.Duration(s.TotalTicks)
}

// Engine is the per-tick orchestrator. One Engine instance owns its
// store, bus, airspace reference, telemetry buffer, and per-aircraft
// PRNGs; it is not safe for concurrent Tick calls (the tick loop never
// makes one).
type Engine struct {
	store     store.Store
	bus       eventbus.Bus
	airspace  *airspace.Ref
	log       *log.Logger
	telemetry *telemetry.Buffer

	randSeed *int64
	mu       sync.Mutex
	rngs     map[string]*rand.Rand

	stats Stats
}

// New builds an Engine. If randSeed is non-nil, every aircraft's drift
// PRNG is seeded from (randSeed, aircraft id hash); if it is nil, from
// the aircraft id hash alone. Either way the streams are deterministic.
func New(s store.Store, bus eventbus.Bus, ref *airspace.Ref, logger *log.Logger, tlm *telemetry.Buffer, randSeed *int64) *Engine {
	return &Engine{
		store:     s,
		bus:       bus,
		airspace:  ref,
		log:       logger,
		telemetry: tlm,
		randSeed:  randSeed,
		rngs:      make(map[string]*rand.Rand),
	}
}

// Stats returns a copy of the engine's run-wide counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// rngFor returns the per-aircraft PRNG used for bounded drift, creating
// and seeding it on first use. Seeding per-aircraft keeps one aircraft's
// drift draws from perturbing another's, and keeps a run reproducible
// when RandomSeed is set.
func (e *Engine) rngFor(id string) *rand.Rand {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.rngs[id]
	if ok {
		return r
	}
	newRand := rand.New()
	var seed uint64
	if e.randSeed != nil {
		seed = uint64(*e.randSeed) ^ fnv1a(id)
	} else {
		seed = fnv1a(id)
	}
	newRand.Seed(seed)
	e.rngs[id] = &newRand
	return &newRand
}

// fnv1a is a tiny deterministic string hash used only to fan a single
// process-level seed out into distinct per-aircraft PRNG streams.
func fnv1a(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// Tick executes one 1 Hz iteration: fetch the roster, process each
// aircraft in order, and every SnapshotEveryNTicks ticks publish a
// roster-wide snapshot. A nil return means the tick completed (even if
// individual aircraft were skipped on error); a non-nil return is
// reserved for conditions the tick loop should treat as fatal, which
// Tick itself never produces — per-aircraft and per-I/O errors are
// logged and absorbed here.
func (e *Engine) Tick(ctx context.Context, tickNumber int64) error {
	t0 := time.Now()

	roster, err := e.store.GetActiveArrivals(ctx, domain.ControllerEngine)
	if err != nil {
		e.log.Errorf("tick %d: get_active_arrivals: %v", tickNumber, err)
		return nil
	}
	if len(roster) == 0 {
		return nil
	}

	for _, a := range roster {
		e.processAircraft(ctx, tickNumber, a)
	}

	e.stats.AircraftProcessed += int64(len(roster))
	e.stats.TotalTicks++
	e.stats.TickDurationSum += time.Since(t0)

	if tickNumber%SnapshotEveryNTicks == 0 {
		e.publishSnapshot(ctx, tickNumber, roster)
	}

	if tickNumber%100 == 0 {
		if err := e.telemetry.Flush(); err != nil {
			e.log.Errorf("tick %d: flush telemetry: %v", tickNumber, err)
		}
	}

	return nil
}

func (e *Engine) processAircraft(ctx context.Context, tickNumber int64, a *domain.Aircraft) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("tick %d: panic processing %s: %v", tickNumber, a.Callsign, r)
		}
	}()

	runwayElevation := e.airspace.ElevationFt
	center := e.airspace.Center

	res := kinematics.Step(kinematics.Input{
		Position:          a.Position,
		Targets:           a.Targets(),
		AirportCenter:     center,
		RunwayElevationFt: runwayElevation,
		DT:                1.0,
		Rand:              e.rngFor(a.ID),
		C:                 kinematics.DefaultConstants(),
	})

	distanceNm := res.DistanceToAirportNm
	altitudeAGL := res.Position.AltitudeFt - runwayElevation
	phase := determinePhase(distanceNm, altitudeAGL)

	tag, fired := fireThreshold(a.LastEventFired, distanceNm, altitudeAGL)

	if tag == domain.ThresholdTouchdown && fired {
		if err := e.store.MarkTouchdown(ctx, a.ID); err != nil {
			e.log.Errorf("tick %d: mark_touchdown(%s): %v", tickNumber, a.ID, err)
			return
		}
		newSet := a.LastEventFired.With(tag)
		e.persistEventSetOnly(ctx, a.ID, newSet)
		e.recordThresholdEvent(ctx, a, tag, res, distanceNm, altitudeAGL)
		e.publishPositionAndThreshold(ctx, a, res, phase, tag)
		e.telemetry.Append(snapshotFor(tickNumber, a, res, domain.ControllerGround, domain.PhaseTouchdown))
		return
	}

	newSet := a.LastEventFired
	if fired {
		newSet = a.LastEventFired.With(tag)
		e.recordThresholdEvent(ctx, a, tag, res, distanceNm, altitudeAGL)
	}

	pos := res.Position
	vsp := res.VerticalSpeedFpm
	err := e.store.UpdateAircraftState(ctx, a.ID, store.AircraftUpdate{
		Position:         &pos,
		VerticalSpeedFpm: &vsp,
		Phase:            &phase,
		LastEventFired:   &newSet,
	})
	if err != nil {
		e.log.Errorf("tick %d: update_aircraft_state(%s): %v", tickNumber, a.ID, err)
		return
	}

	e.publishPositionAndThreshold(ctx, a, res, phase, tag)
	e.telemetry.Append(snapshotFor(tickNumber, a, res, a.Controller, phase))
}

// persistEventSetOnly writes last_event_fired alone, used for the
// touchdown path where MarkTouchdown already wrote the compound status
// fields and only the event tag remains to be persisted.
func (e *Engine) persistEventSetOnly(ctx context.Context, id string, set domain.EventSet) {
	if err := e.store.UpdateAircraftState(ctx, id, store.AircraftUpdate{LastEventFired: &set}); err != nil {
		e.log.Errorf("persist last_event_fired(%s): %v", id, err)
	}
}

func (e *Engine) recordThresholdEvent(ctx context.Context, a *domain.Aircraft, tag string, res kinematics.Result, distanceNm, altitudeAGL float64) {
	e.stats.EventsFired++
	details := map[string]any{
		"callsign":     a.Callsign,
		"distance_nm":  distanceNm,
		"altitude_agl": altitudeAGL,
		"position":     res.Position,
	}
	if err := e.store.CreateEvent(ctx, domain.NewThresholdEvent(tag, a.ID, a.Callsign, details)); err != nil {
		e.log.Errorf("create_event(%s, %s): %v", a.ID, tag, err)
	}
}

func (e *Engine) publishPositionAndThreshold(ctx context.Context, a *domain.Aircraft, res kinematics.Result, phase, firedTag string) {
	e.bus.Publish(ctx, eventbus.NewMessage(eventbus.TypePositionUpdated, map[string]any{
		"id": a.ID, "callsign": a.Callsign, "position": res.Position,
		"vertical_speed_fpm": res.VerticalSpeedFpm, "distance_to_airport_nm": res.DistanceToAirportNm,
		"phase": phase,
	}))
	if firedTag != "" {
		e.bus.Publish(ctx, eventbus.NewMessage(eventbus.TypeThresholdEvent, map[string]any{
			"id": a.ID, "callsign": a.Callsign, "threshold": firedTag,
		}))
	}
}

func (e *Engine) publishSnapshot(ctx context.Context, tickNumber int64, roster []*domain.Aircraft) {
	e.bus.Publish(ctx, eventbus.NewMessage(eventbus.TypeStateSnapshot, map[string]any{
		"tick": tickNumber, "aircraft_count": len(roster),
	}))
	e.bus.Publish(ctx, eventbus.NewMessage(eventbus.TypeSystemStatus, map[string]any{
		"tick": tickNumber, "aircraft_count": len(roster),
	}))
	if err := e.store.CreateEvent(ctx, domain.Event{
		Type:    "engine.status",
		Message: fmt.Sprintf("engine tick %d: processing %d aircraft", tickNumber, len(roster)),
		Details: map[string]any{"tick_count": tickNumber, "aircraft_count": len(roster)},
	}); err != nil {
		e.log.Errorf("tick %d: create_event(engine.status): %v", tickNumber, err)
	}
}

// determinePhase evaluates the phase decision table against the
// post-update distance and altitude AGL.
func determinePhase(distanceNm, altitudeAGL float64) string {
	switch {
	case altitudeAGL < 500:
		return domain.PhaseFinal
	case distanceNm < 10:
		return domain.PhaseApproach
	case distanceNm < 30:
		return domain.PhaseDescent
	default:
		return domain.PhaseCruise
	}
}

// fireThreshold runs the threshold machine: at most one threshold fires
// per tick, in priority order TOUCHDOWN > HANDOFF_READY >
// ENTERED_ENTRY_ZONE, and only if its tag is not already in fired.
// ENTERED_ENTRY_ZONE never fires once HANDOFF_READY is in fired.
func fireThreshold(fired domain.EventSet, distanceNm, altitudeAGL float64) (tag string, didFire bool) {
	if altitudeAGL < TouchdownAltitudeAGLFt && !fired.Has(domain.ThresholdTouchdown) {
		return domain.ThresholdTouchdown, true
	}
	if distanceNm <= HandoffReadyDistanceNm && !fired.Has(domain.ThresholdHandoffReady) {
		return domain.ThresholdHandoffReady, true
	}
	if distanceNm <= EnteredEntryZoneDistanceNm && !fired.Has(domain.ThresholdEnteredEntryZone) &&
		!fired.Has(domain.ThresholdHandoffReady) {
		return domain.ThresholdEnteredEntryZone, true
	}
	return "", false
}

func snapshotFor(tickNumber int64, a *domain.Aircraft, res kinematics.Result, controller, phase string) domain.TelemetrySnapshot {
	return domain.TelemetrySnapshot{
		Tick:                tickNumber,
		Timestamp:           time.Now().UTC(),
		ID:                  a.ID,
		Callsign:            a.Callsign,
		Lat:                 res.Position.Lat,
		Lon:                 res.Position.Lon,
		AltitudeFt:          res.Position.AltitudeFt,
		SpeedKts:            res.Position.SpeedKts,
		Heading:             res.Position.Heading,
		VerticalSpeedFpm:    res.VerticalSpeedFpm,
		DistanceToAirportNm: res.DistanceToAirportNm,
		Controller:          controller,
		Phase:               phase,
	}
}
