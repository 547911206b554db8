// Package tick implements the phase-locked 1 Hz scheduler that drives
// one Engine.Tick per iteration.
package tick

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/log"
)

// Interval is the target tick period. The loop is phase-locked to this
// grid: it sleeps max(0, Interval - elapsed) after each tick rather than
// firing on a fixed wall-clock ticker, so a slow tick never causes a
// catch-up burst.
const Interval = 1 * time.Second

// WarnThreshold is the per-tick duration above which the loop logs a
// warning instead of staying silent.
const WarnThreshold = 100 * time.Millisecond

// Engine is the subset of the orchestrator the loop needs: one call per
// tick, given the tick's ordinal.
type Engine interface {
	Tick(ctx context.Context, tickNumber int64) error
}

// Loop is the single-threaded cooperative scheduler. It never spawns
// concurrent per-tick work; Engine.Tick is expected to serialize its own
// per-aircraft updates.
type Loop struct {
	engine Engine
	log    *log.Logger

	running atomic.Bool
	tickNum int64
}

// New builds a Loop over the given Engine.
func New(engine Engine, logger *log.Logger) *Loop {
	return &Loop{engine: engine, log: logger}
}

// Run drives the loop until ctx is canceled or durationSeconds have
// elapsed (0 means run until canceled). It returns nil on a clean
// shutdown and the error from Engine.Tick only if the engine reports a
// fatal condition; per-tick errors are logged internally by the engine
// and never stop the loop.
func (l *Loop) Run(ctx context.Context, durationSeconds float64) error {
	l.running.Store(true)
	defer l.running.Store(false)

	start := time.Now()
	var deadline time.Time
	if durationSeconds > 0 {
		deadline = start.Add(time.Duration(durationSeconds * float64(time.Second)))
	}

	for l.running.Load() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil
		}

		t0 := time.Now()
		l.tickNum++
		if err := l.engine.Tick(ctx, l.tickNum); err != nil {
			l.log.Errorf("tick %d: fatal engine error: %v", l.tickNum, err)
			return err
		}
		elapsed := time.Since(t0)

		if elapsed > WarnThreshold {
			l.log.Warnf("tick %d took %v, over the %v warning threshold", l.tickNum, elapsed, WarnThreshold)
		}
		if elapsed >= Interval {
			// Overran the full interval: run the next tick immediately,
			// no catch-up burst and no skipped ticks.
			continue
		}
		if !l.running.Load() {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(Interval - elapsed):
		}
	}
	return nil
}

// Stop signals the loop to exit before its next sleep. It does not
// interrupt a tick already in progress; the caller should also cancel
// the context passed to Run if an immediate return is required.
func (l *Loop) Stop() {
	l.running.Store(false)
}

// TickNumber returns the most recently started tick's ordinal.
func (l *Loop) TickNumber() int64 {
	return l.tickNum
}
