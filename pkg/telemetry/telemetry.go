// Package telemetry buffers per-tick aircraft snapshots in memory and
// flushes them to newline-delimited JSON files, mirroring the
// add_telemetry_snapshot/flush_telemetry behavior of the system this
// core replaces.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blacks1k-sc/atc-kinematics-core/pkg/domain"
	"github.com/blacks1k-sc/atc-kinematics-core/pkg/log"
)

// FlushAtSize is the buffered-snapshot count that triggers an automatic
// flush from Append.
const FlushAtSize = 100

// Buffer accumulates TelemetrySnapshot values and flushes them to
// timestamped .jsonl files under dir. It is safe for concurrent use,
// though the engine only ever calls it from its own tick goroutine.
type Buffer struct {
	mu    sync.Mutex
	dir   string
	log   *log.Logger
	rows  []domain.TelemetrySnapshot
	nowFn func() time.Time
}

// New builds a Buffer writing into dir, creating it if necessary.
func New(dir string, logger *log.Logger) (*Buffer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: create dir %s: %w", dir, err)
	}
	return &Buffer{dir: dir, log: logger, nowFn: time.Now}, nil
}

// Append adds one snapshot to the buffer, flushing automatically once
// FlushAtSize rows have accumulated.
func (b *Buffer) Append(s domain.TelemetrySnapshot) {
	b.mu.Lock()
	b.rows = append(b.rows, s)
	shouldFlush := len(b.rows) >= FlushAtSize
	b.mu.Unlock()

	if shouldFlush {
		if err := b.Flush(); err != nil {
			b.log.Errorf("telemetry: auto-flush: %v", err)
		}
	}
}

// Flush writes every buffered snapshot to a new
// engine_<YYYYMMDD_HHMMSS>.jsonl file and clears the buffer. Flushing an
// empty buffer is a no-op. A write failure, including a file of that name
// already existing, leaves the buffer intact so the rows are retried on
// the next flush rather than lost.
func (b *Buffer) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.rows) == 0 {
		return nil
	}

	name := fmt.Sprintf("engine_%s.jsonl", b.nowFn().UTC().Format("20060102_150405"))
	path := filepath.Join(b.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return fmt.Errorf("telemetry: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, row := range b.rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("telemetry: encode row: %w", err)
		}
	}

	b.rows = b.rows[:0]
	return nil
}

// Len reports the number of currently buffered, unflushed snapshots.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}
