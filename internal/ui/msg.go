package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zapcore"

	"termpanel/internal/connect"
	"termpanel/internal/monitor"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// SnapshotMsg carries one decoded monitoring stream snapshot
type SnapshotMsg struct {
	Snapshot monitor.PositionSnapshot
}

// WalletStatusMsg reports the wallet connection state after a
// transition completed
type WalletStatusMsg struct {
	Status connect.Status
}

// AccountsChangedMsg relays a provider account change notification
type AccountsChangedMsg struct {
	Accounts []string
}

// AccountPickMsg asks the dashboard to offer an account selection
type AccountPickMsg struct {
	Accounts []string
}

// StreamStateMsg reports monitoring stream connectivity
type StreamStateMsg struct {
	Connected bool
	Err       error
}

// LogMsg represents log messages mirrored into the UI
type LogMsg struct {
	Level   zapcore.Level
	Message string
}

// Event Bus for UI communication
var (
	// Bus is the global event bus between background services and the TUI
	Bus = make(chan tea.Msg, 1024)
)

func publish(msg tea.Msg) {
	select {
	case Bus <- msg:
	default:
		// Bus is full, drop the message
	}
}

// PublishSnapshot publishes a stream snapshot to the UI bus
func PublishSnapshot(s monitor.PositionSnapshot) {
	publish(SnapshotMsg{Snapshot: s})
}

// PublishAccountsChanged publishes a wallet account change to the UI bus
func PublishAccountsChanged(accts []string) {
	publish(AccountsChangedMsg{Accounts: accts})
}

// PublishStreamState publishes stream connectivity to the UI bus
func PublishStreamState(connected bool, err error) {
	publish(StreamStateMsg{Connected: connected, Err: err})
}

// PublishLog publishes a log message to the UI bus
func PublishLog(level zapcore.Level, message string) {
	publish(LogMsg{Level: level, Message: message})
}

// ListenBus returns a tea.Cmd that listens to the event bus
func ListenBus() tea.Cmd {
	return func() tea.Msg {
		return <-Bus
	}
}

// Route represents different screens in the application
type Route int

const (
	RouteDashboard Route = iota
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteDashboard:
		return "dashboard"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}
