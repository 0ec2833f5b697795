package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAddress = "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23"

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"lowercase passes through", testAddress, testAddress, false},
		{"mixed case is lowered", "0x2C7536E3605D9C16a7a3D7b1898e529396a65c23", testAddress, false},
		{"missing prefix", "2c7536e3605d9c16a7a3d7b1898e529396a65c23", "", true},
		{"too short", "0x2c7536", "", true},
		{"not hex", "0xZZ7536e3605d9c16a7a3d7b1898e529396a65c23", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrent_StoredAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/authz/session", r.URL.Path)
		addr := testAddress
		_ = json.NewEncoder(w).Encode(Envelope{OK: true, Data: &Data{Address: &addr}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	got, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress, got)
}

func TestCurrent_NoSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Envelope{OK: true, Data: &Data{Address: nil}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	got, err := c.Current(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCurrent_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	_, err := c.Current(context.Background())
	assert.Error(t, err)
}

func TestPersist_SendsNormalizedAddress(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/authz/session", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(Envelope{OK: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	err := c.Persist(context.Background(), "0x2C7536E3605D9C16a7a3D7b1898e529396a65c23")
	require.NoError(t, err)
	assert.Equal(t, testAddress, gotBody["address"])
}

func TestPersist_RejectsMalformedAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called for a malformed address")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	assert.Error(t, c.Persist(context.Background(), "not-an-address"))
}

func TestPersist_SingleFlight(t *testing.T) {
	gate := make(chan struct{})
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-gate
		_ = json.NewEncoder(w).Encode(Envelope{OK: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- c.Persist(context.Background(), testAddress)
	}()

	// Wait until the first persist is parked inside the handler
	require.Eventually(t, func() bool {
		return hits.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// The overlapping persist is skipped, not queued
	require.NoError(t, c.Persist(context.Background(), testAddress))
	assert.Equal(t, int32(1), hits.Load())

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), hits.Load())
}

func TestPersist_ServerFailureIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	assert.Error(t, c.Persist(context.Background(), testAddress))
}

func TestClear(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewEncoder(w).Encode(Envelope{OK: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	require.NoError(t, c.Clear(context.Background()))
	assert.Equal(t, http.MethodDelete, method)
}

func TestClear_FailureReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	assert.Error(t, c.Clear(context.Background()))
}
