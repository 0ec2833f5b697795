// Package state holds shared UI-facing state caches.
package state

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"termpanel/internal/monitor"
)

// Entry pairs a snapshot with its local arrival time.
type Entry struct {
	Snapshot  monitor.PositionSnapshot
	UpdatedAt time.Time
}

// SnapshotCache is a thread-safe store of the latest snapshot per run.
// First-arrival order is preserved so table rows stay put when they
// update.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
	logger  *zap.Logger

	reads  atomic.Uint64
	writes atomic.Uint64
}

// NewSnapshotCache creates an empty snapshot cache
func NewSnapshotCache(logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]*Entry),
		logger:  logger,
	}
}

// Upsert replaces the stored snapshot for the run wholesale and
// reports whether a row already existed for it.
func (c *SnapshotCache) Upsert(s monitor.PositionSnapshot) (replaced bool) {
	c.writes.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &Entry{Snapshot: s, UpdatedAt: time.Now()}
	if _, ok := c.entries[s.RunID]; ok {
		c.entries[s.RunID] = entry
		return true
	}
	c.entries[s.RunID] = entry
	c.order = append(c.order, s.RunID)
	return false
}

// Get returns the latest snapshot for a run
func (c *SnapshotCache) Get(runID string) (monitor.PositionSnapshot, bool) {
	c.reads.Add(1)

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[runID]
	if !ok {
		return monitor.PositionSnapshot{}, false
	}
	return entry.Snapshot, true
}

// Snapshots returns copies of all snapshots in first-arrival order
func (c *SnapshotCache) Snapshots() []monitor.PositionSnapshot {
	c.reads.Add(1)

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]monitor.PositionSnapshot, 0, len(c.order))
	for _, runID := range c.order {
		if entry, ok := c.entries[runID]; ok {
			out = append(out, entry.Snapshot)
		}
	}
	return out
}

// Len returns the number of tracked runs
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// TotalPnL sums combined P&L across all tracked runs
func (c *SnapshotCache) TotalPnL() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var total float64
	for _, entry := range c.entries {
		total += entry.Snapshot.TotalPnL()
	}
	return total
}

// Stats returns read/write counters for diagnostics
func (c *SnapshotCache) Stats() (reads, writes uint64) {
	return c.reads.Load(), c.writes.Load()
}
