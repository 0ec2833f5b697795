package state

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"termpanel/internal/monitor"
)

func snap(runID string, realized float64) monitor.PositionSnapshot {
	return monitor.PositionSnapshot{
		RunID:       runID,
		Market:      "eth",
		Status:      monitor.StatusRunning,
		RealizedPnL: monitor.NumberOf(realized),
	}
}

func TestUpsert_NewAndReplace(t *testing.T) {
	c := NewSnapshotCache(zap.NewNop())

	if replaced := c.Upsert(snap("run-1", 10)); replaced {
		t.Error("first upsert reported a replacement")
	}
	if replaced := c.Upsert(snap("run-1", 25)); !replaced {
		t.Error("second upsert for the same run did not report a replacement")
	}

	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}

	got, ok := c.Get("run-1")
	if !ok {
		t.Fatal("run-1 not found")
	}
	if got.RealizedPnL.Or(0) != 25 {
		t.Errorf("row was not replaced wholesale, realized = %v", got.RealizedPnL.Or(0))
	}
}

func TestSnapshots_PreserveArrivalOrder(t *testing.T) {
	c := NewSnapshotCache(zap.NewNop())

	c.Upsert(snap("run-b", 1))
	c.Upsert(snap("run-a", 2))
	c.Upsert(snap("run-c", 3))
	// Updating an existing run must not move it
	c.Upsert(snap("run-b", 4))

	got := c.Snapshots()
	if len(got) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(got))
	}

	wantOrder := []string{"run-b", "run-a", "run-c"}
	for i, want := range wantOrder {
		if got[i].RunID != want {
			t.Errorf("position %d: got %s, want %s", i, got[i].RunID, want)
		}
	}
	if got[0].RealizedPnL.Or(0) != 4 {
		t.Error("updated run did not carry the new snapshot")
	}
}

func TestTotalPnL(t *testing.T) {
	c := NewSnapshotCache(zap.NewNop())

	if c.TotalPnL() != 0 {
		t.Errorf("empty cache total = %v", c.TotalPnL())
	}

	c.Upsert(snap("run-1", 10))
	c.Upsert(monitor.PositionSnapshot{
		RunID:         "run-2",
		RealizedPnL:   monitor.NumberOf(-4),
		UnrealizedPnL: monitor.NumberOf(1.5),
	})

	if got := c.TotalPnL(); got != 7.5 {
		t.Errorf("total = %v, want 7.5", got)
	}
}

func TestGet_Missing(t *testing.T) {
	c := NewSnapshotCache(zap.NewNop())
	if _, ok := c.Get("nope"); ok {
		t.Error("found a snapshot that was never stored")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewSnapshotCache(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Upsert(snap(fmt.Sprintf("run-%d", n), float64(j)))
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get(fmt.Sprintf("run-%d", n))
				c.Snapshots()
				c.TotalPnL()
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("expected 10 runs, got %d", c.Len())
	}

	reads, writes := c.Stats()
	if reads == 0 || writes == 0 {
		t.Errorf("counters not tracking: reads=%d writes=%d", reads, writes)
	}
}
