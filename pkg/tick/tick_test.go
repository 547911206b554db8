package tick

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/log"
)

type countingEngine struct {
	calls atomic.Int64
}

func (e *countingEngine) Tick(ctx context.Context, tickNumber int64) error {
	e.calls.Add(1)
	return nil
}

func TestLoopDurationBound(t *testing.T) {
	eng := &countingEngine{}
	loop := New(eng, log.New("error", t.TempDir()))

	start := time.Now()
	if err := loop.Run(context.Background(), 2.0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 1800*time.Millisecond || elapsed > 2300*time.Millisecond {
		t.Errorf("expected ~2s run, took %v", elapsed)
	}
	if eng.calls.Load() < 2 {
		t.Errorf("expected at least 2 ticks in 2s, got %d", eng.calls.Load())
	}
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	eng := &countingEngine{}
	loop := New(eng, log.New("error", t.TempDir()))
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if err := loop.Run(ctx, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("context cancellation should stop the loop promptly")
	}
}

type fatalEngine struct{}

func (fatalEngine) Tick(ctx context.Context, tickNumber int64) error {
	return context.DeadlineExceeded
}

func TestLoopPropagatesFatalEngineError(t *testing.T) {
	loop := New(fatalEngine{}, log.New("error", t.TempDir()))
	if err := loop.Run(context.Background(), 0); err == nil {
		t.Errorf("expected fatal engine error to stop the loop")
	}
}
