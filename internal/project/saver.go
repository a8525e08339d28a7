package project

import (
	"context"
	"sync"
	"time"

	"github.com/arjunmalik/editcore/internal/logging"
	"github.com/arjunmalik/editcore/internal/metrics"
)

// SaveFunc persists one snapshot
type SaveFunc func(ctx context.Context, snap Snapshot) error

// DebouncedSaver coalesces bursts of save requests into one write. Editing
// produces a change event per operation, and a drag produces dozens per
// second; the saver absorbs them and writes once per quiet window instead.
//
// Request is safe to call from the session's change callback. Flush and
// Close force a pending save through synchronously.
type DebouncedSaver struct {
	mu       sync.Mutex
	timer    *time.Timer
	pending  bool
	closed   bool
	debounce time.Duration
	snapshot func() Snapshot
	save     SaveFunc
	logger   *logging.Logger
}

// NewDebouncedSaver creates a saver that snapshots via snapshot and writes
// via save at most once per debounce window.
func NewDebouncedSaver(snapshot func() Snapshot, save SaveFunc, debounce time.Duration, logger *logging.Logger) *DebouncedSaver {
	return &DebouncedSaver{
		debounce: debounce,
		snapshot: snapshot,
		save:     save,
		logger:   logger,
	}
}

// Request schedules a save. Requests landing inside an open window are
// absorbed; the write happens once the window elapses.
func (d *DebouncedSaver) Request() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.pending {
		metrics.ProjectSaveCoalesced.Inc()
		d.timer.Reset(d.debounce)
		return
	}
	d.pending = true
	d.timer = time.AfterFunc(d.debounce, d.fire)
}

// fire never holds d.mu while snapshotting: the snapshot function takes
// the session lock, and the session calls Request with that lock held.
// Snapshotting under d.mu would order the two locks both ways.
func (d *DebouncedSaver) fire() {
	d.mu.Lock()
	if !d.pending || d.closed {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.write(d.snapshot())
}

// Flush writes immediately if a save is pending
func (d *DebouncedSaver) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.pending = false
	d.mu.Unlock()

	d.write(d.snapshot())
}

// Close flushes any pending save and stops the saver
func (d *DebouncedSaver) Close() {
	d.Flush()
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
}

func (d *DebouncedSaver) write(snap Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.save(ctx, snap); err != nil {
		d.logger.WithProjectID(snap.ID).WithError(err).Error("project save failed")
		metrics.RecordError("project", "save_failed")
		return
	}
	d.logger.WithProjectID(snap.ID).Debug("project saved")
}
