package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sseFrame(t *testing.T, s PositionSnapshot) string {
	t.Helper()
	data, err := json.Marshal(Envelope{OK: true, Data: &s})
	require.NoError(t, err)
	return fmt.Sprintf("data: %s\n\n", data)
}

func TestStream_DeliversSnapshots(t *testing.T) {
	snap := PositionSnapshot{RunID: "run-1", Market: "eth", Status: StatusRunning, RealizedPnL: NumberOf(5)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/monitoring/stream", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseFrame(t, snap))
		// Handler returns, the stream closes, the client reconnects
	}))
	defer srv.Close()

	c := NewStreamClient(srv.URL, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan PositionSnapshot, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx, func(s PositionSnapshot) { got <- s })
	}()

	select {
	case s := <-got:
		assert.Equal(t, "run-1", s.RunID)
		assert.Equal(t, 5.0, s.TotalPnL())
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	<-done
}

func TestStream_ReconnectsAfterDrop(t *testing.T) {
	var connections atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connections.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		snap := PositionSnapshot{RunID: fmt.Sprintf("run-%d", n), Status: StatusRunning}
		fmt.Fprint(w, sseFrame(t, snap))
	}))
	defer srv.Close()

	c := NewStreamClient(srv.URL, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan PositionSnapshot, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx, func(s PositionSnapshot) { got <- s })
	}()

	// Snapshots from at least two distinct connections prove the
	// client reopened the stream after the first close
	seen := map[string]bool{}
	deadline := time.After(3 * time.Second)
	for len(seen) < 2 {
		select {
		case s := <-got:
			seen[s.RunID] = true
		case <-deadline:
			t.Fatalf("only %d connection(s) observed", len(seen))
		}
	}

	cancel()
	<-done
	assert.GreaterOrEqual(t, connections.Load(), int32(2))
}

func TestStream_SkipsMalformedFrames(t *testing.T) {
	good := PositionSnapshot{RunID: "run-ok", Status: StatusRunning}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {broken json\n\n")
		fmt.Fprint(w, "data: {\"ok\": false}\n\n")
		fmt.Fprint(w, ": comment line\n\n")
		fmt.Fprint(w, sseFrame(t, good))
	}))
	defer srv.Close()

	c := NewStreamClient(srv.URL, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan PositionSnapshot, 16)
	go func() {
		_ = c.Run(ctx, func(s PositionSnapshot) { got <- s })
	}()

	select {
	case s := <-got:
		// The only delivered snapshot is the good one after the noise
		assert.Equal(t, "run-ok", s.RunID)
	case <-time.After(2 * time.Second):
		t.Fatal("good frame was not delivered")
	}
}

func TestStream_StateNotifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
	}))
	defer srv.Close()

	c := NewStreamClient(srv.URL, 10*time.Millisecond, zap.NewNop())

	type stateChange struct {
		connected bool
	}
	states := make(chan stateChange, 16)
	c.OnState = func(connected bool, err error) {
		states <- stateChange{connected: connected}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx, func(PositionSnapshot) {}) }()

	// Connect then drop, in that order
	deadline := time.After(2 * time.Second)
	var seq []bool
	for len(seq) < 2 {
		select {
		case s := <-states:
			seq = append(seq, s.connected)
		case <-deadline:
			t.Fatalf("state sequence incomplete: %v", seq)
		}
	}
	assert.Equal(t, []bool{true, false}, seq[:2])
}

func TestStream_RunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		flusher.Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewStreamClient(srv.URL, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, func(PositionSnapshot) {}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestSnapshot_SingleRun(t *testing.T) {
	snap := PositionSnapshot{RunID: "run-9", Market: "btc", Status: StatusCompleted}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/monitoring/runs/run-9/snapshot", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Envelope{OK: true, Data: &snap})
	}))
	defer srv.Close()

	c := NewStreamClient(srv.URL, 0, zap.NewNop())
	got, err := c.Snapshot(context.Background(), "run-9")
	require.NoError(t, err)
	assert.Equal(t, "run-9", got.RunID)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestSnapshot_NotAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Envelope{OK: false})
	}))
	defer srv.Close()

	c := NewStreamClient(srv.URL, 0, zap.NewNop())
	_, err := c.Snapshot(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSnapshot_RequiresRunID(t *testing.T) {
	c := NewStreamClient("http://localhost:0", 0, zap.NewNop())
	_, err := c.Snapshot(context.Background(), "")
	assert.Error(t, err)
}
