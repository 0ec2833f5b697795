// Package connect owns the wallet connection state machine.
package connect

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"termpanel/internal/session"
	"termpanel/internal/wallet"
)

// State of the wallet connection.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Status is an immutable view of the connection for rendering.
type Status struct {
	State   State
	Address string
}

// Manager holds all wallet and session state in one place. Every
// transition runs under a generation number; a completion whose
// generation has been superseded is discarded instead of clobbering
// newer state.
type Manager struct {
	provider wallet.Provider // nil when the capability is absent
	sessions *session.Client
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	address string

	gen atomic.Uint64
}

func NewManager(provider wallet.Provider, sessions *session.Client, logger *zap.Logger) *Manager {
	return &Manager{
		provider: provider,
		sessions: sessions,
		logger:   logger,
	}
}

// HasProvider reports whether a wallet capability is available.
func (m *Manager) HasProvider() bool {
	return m.provider != nil
}

// Status returns the current connection state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{State: m.state, Address: m.address}
}

// begin opens a new operation generation, superseding any in flight.
func (m *Manager) begin() uint64 {
	return m.gen.Add(1)
}

// commit applies an outcome unless a newer operation started since gen
// was issued. It always returns the state that is actually current.
func (m *Manager) commit(gen uint64, state State, address string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.gen.Load() {
		m.state = state
		m.address = address
	}
	return Status{State: m.state, Address: m.address}
}

// Hydrate loads the persisted session at startup. An absent address
// and a transport failure both resolve to disconnected.
func (m *Manager) Hydrate(ctx context.Context) Status {
	gen := m.begin()
	addr, err := m.sessions.Current(ctx)
	if err != nil {
		m.logger.Warn("session hydration failed", zap.Error(err))
		return m.commit(gen, StateDisconnected, "")
	}
	if addr == "" {
		return m.commit(gen, StateDisconnected, "")
	}

	normalized, err := session.NormalizeAddress(addr)
	if err != nil {
		m.logger.Warn("server session holds unusable address", zap.Error(err))
		return m.commit(gen, StateDisconnected, "")
	}
	m.logger.Info("restored wallet session", zap.String("address", normalized))
	return m.commit(gen, StateConnected, normalized)
}

// Connect runs the full connect flow against the provider. Any
// failure along the way reverts to disconnected.
func (m *Manager) Connect(ctx context.Context) Status {
	if m.provider == nil {
		m.logger.Info("wallet capability absent, connect is a no-op")
		return m.Status()
	}

	gen := m.begin()
	m.commit(gen, StateConnecting, "")

	accts, err := m.provider.RequestAccounts(ctx)
	if err != nil || len(accts) == 0 {
		m.logger.Warn("wallet account request failed",
			zap.String("provider", m.provider.Name()),
			zap.Error(err))
		return m.commit(gen, StateDisconnected, "")
	}
	return m.adopt(ctx, gen, accts[0])
}

// ConnectAccount completes a connect flow for an address the user
// picked from the provider's account list.
func (m *Manager) ConnectAccount(ctx context.Context, addr string) Status {
	gen := m.begin()
	m.commit(gen, StateConnecting, "")
	return m.adopt(ctx, gen, addr)
}

// adopt normalizes addr, persists it best effort and commits the
// connected state.
func (m *Manager) adopt(ctx context.Context, gen uint64, addr string) Status {
	normalized, err := session.NormalizeAddress(addr)
	if err != nil {
		m.logger.Warn("wallet reported unusable address", zap.Error(err))
		return m.commit(gen, StateDisconnected, "")
	}

	// Persist failures are logged by the session client, not retried
	_ = m.sessions.Persist(ctx, normalized)

	m.logger.Info("wallet connected", zap.String("address", normalized))
	return m.commit(gen, StateConnected, normalized)
}

// Disconnect clears local state and the server session. The local
// side always ends disconnected, whatever the server says.
func (m *Manager) Disconnect(ctx context.Context) Status {
	gen := m.begin()
	_ = m.sessions.Clear(ctx)
	m.logger.Info("wallet disconnected")
	return m.commit(gen, StateDisconnected, "")
}

// AccountsChanged reacts to a provider notification: an empty list is
// a disconnect, otherwise the first account becomes the new address
// and is persisted.
func (m *Manager) AccountsChanged(ctx context.Context, accts []string) Status {
	if len(accts) == 0 {
		return m.Disconnect(ctx)
	}
	gen := m.begin()
	return m.adopt(ctx, gen, accts[0])
}

// ListAccounts exposes the provider's accounts for the selection view.
func (m *Manager) ListAccounts(ctx context.Context) ([]string, error) {
	if m.provider == nil {
		return nil, fmt.Errorf("wallet capability absent")
	}
	return m.provider.Accounts(ctx)
}
