// Package screen holds the application's screens.
package screen

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"termpanel/internal/config"
	"termpanel/internal/connect"
	"termpanel/internal/monitor"
	"termpanel/internal/ui"
	"termpanel/internal/ui/component"
	"termpanel/internal/ui/router"
	"termpanel/internal/ui/state"
)

// Focus owner ids, used when the drawer captures and restores focus
const (
	focusWallet = "wallet"
	focusTable  = "table"
)

// DashboardScreen composes the drawer, the wallet widget and the live
// positions table into the main panel view.
type DashboardScreen struct {
	width  int
	height int

	keyMap ui.KeyMap
	cfg    *config.Config
	logger *zap.Logger

	drawer    *component.Drawer
	wallet    *component.WalletWidget
	positions *component.PositionsTable
	header    *component.StatusHeader
	helpBar   *component.HelpBar

	cache     *state.SnapshotCache
	snapshots *monitor.StreamClient

	focus  string
	stream component.StreamState
}

// NewDashboardScreen creates the dashboard over its collaborators.
func NewDashboardScreen(
	cfg *config.Config,
	mgr *connect.Manager,
	cache *state.SnapshotCache,
	snapshots *monitor.StreamClient,
	logger *zap.Logger,
) *DashboardScreen {
	items := []component.NavItem{
		{Label: "Dashboard", Route: ui.RouteDashboard},
		{Label: "Logs", Route: ui.RouteLogs},
		{Label: "Settings", Route: ui.RouteDashboard, Disabled: true},
	}

	keyMap := ui.DefaultKeyMap()
	helpBar := component.NewHelpBar().SetKeyBindings(keyMap.ShortHelp())
	selection := cfg.WalletProjectID != ""

	return &DashboardScreen{
		keyMap:    keyMap,
		cfg:       cfg,
		logger:    logger,
		drawer:    component.NewDrawer(items, cfg.NarrowWidth),
		wallet:    component.NewWalletWidget(mgr, cfg.ConnectLabel, selection, logger),
		positions: component.NewPositionsTable(),
		header:    component.NewStatusHeader(),
		helpBar:   helpBar,
		cache:     cache,
		snapshots: snapshots,
		focus:     focusTable,
	}
}

// Init rebuilds the table from the cache and hydrates the wallet
// widget on first entry.
func (s *DashboardScreen) Init() tea.Cmd {
	for _, snap := range s.cache.Snapshots() {
		s.positions.Upsert(snap)
	}
	s.header.SetTotalPnL(s.cache.TotalPnL())
	return s.wallet.Init()
}

// Update handles messages for the dashboard
func (s *DashboardScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)

	case tea.MouseMsg:
		res := s.drawer.HandleMouse(msg)
		return s, s.applyDrawerResult(res)

	case ui.SnapshotMsg:
		s.cache.Upsert(msg.Snapshot)
		s.positions.Upsert(msg.Snapshot)
		s.header.SetTotalPnL(s.cache.TotalPnL())
		s.stream.LastEvent = time.Now()
		s.header.SetStreamState(s.stream)
		return s, nil

	case ui.StreamStateMsg:
		s.stream.Connected = msg.Connected
		s.header.SetStreamState(s.stream)
		return s, nil

	case ui.WalletStatusMsg:
		cmd := s.wallet.Update(msg)
		s.header.SetWallet(msg.Status.Address)
		return s, cmd

	case ui.AccountPickMsg, ui.AccountsChangedMsg:
		return s, s.wallet.Update(msg)
	}

	return s, nil
}

func (s *DashboardScreen) handleKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	// The account picker swallows its keys first
	if handled, cmd := s.wallet.HandleKey(msg); handled {
		return s, cmd
	}

	// An open drawer owns the keyboard
	if s.drawer.IsOpen() {
		res := s.drawer.HandleKey(msg)
		return s, s.applyDrawerResult(res)
	}

	switch {
	case key.Matches(msg, s.keyMap.Quit):
		return s, tea.Quit

	case key.Matches(msg, s.keyMap.Drawer):
		s.drawer.Open(s.focus)

	case key.Matches(msg, s.keyMap.Wallet):
		return s, s.wallet.Activate()

	case key.Matches(msg, s.keyMap.Enter):
		if s.focus == focusWallet {
			return s, s.wallet.Activate()
		}

	case key.Matches(msg, s.keyMap.Tab), key.Matches(msg, s.keyMap.ShiftTab):
		s.cycleFocus()

	case key.Matches(msg, s.keyMap.Up):
		if s.focus == focusTable {
			s.positions.MoveUp()
		}

	case key.Matches(msg, s.keyMap.Down):
		if s.focus == focusTable {
			s.positions.MoveDown()
		}

	case key.Matches(msg, s.keyMap.Refresh):
		return s, s.refreshSelectedCmd()

	case key.Matches(msg, s.keyMap.Logs):
		return s, router.Navigate(ui.RouteLogs)
	}

	return s, nil
}

// applyDrawerResult restores focus and turns an item selection into a
// navigation command.
func (s *DashboardScreen) applyDrawerResult(res component.KeyResult) tea.Cmd {
	if res.Closed && res.Restore != "" {
		s.focus = res.Restore
	}
	if res.Selected != nil && !res.Selected.Disabled {
		return router.Navigate(res.Selected.Route)
	}
	return nil
}

// cycleFocus toggles focus between the two dashboard controls
func (s *DashboardScreen) cycleFocus() {
	if s.focus == focusTable {
		s.focus = focusWallet
	} else {
		s.focus = focusTable
	}
}

// refreshSelectedCmd refetches the snapshot for the selected run.
func (s *DashboardScreen) refreshSelectedCmd() tea.Cmd {
	runID := s.positions.SelectedRun()
	if runID == "" {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		snap, err := s.snapshots.Snapshot(ctx, runID)
		if err != nil {
			s.logger.Warn("manual snapshot refresh failed",
				zap.String("run_id", runID),
				zap.Error(err))
			return nil
		}
		return ui.SnapshotMsg{Snapshot: *snap}
	}
}

// View renders the dashboard
func (s *DashboardScreen) View() string {
	main := lipgloss.JoinVertical(lipgloss.Left,
		s.header.View(),
		"",
		s.wallet.View(),
		"",
		s.positions.View(),
		s.helpBar.View(),
	)

	if s.drawer.IsOpen() {
		return lipgloss.JoinHorizontal(lipgloss.Top, s.drawer.View(), main)
	}
	return main
}

// SetSize propagates the terminal size to the components
func (s *DashboardScreen) SetSize(width, height int) {
	s.width = width
	s.height = height

	if restore, closed := s.drawer.SetViewport(width, height); closed && restore != "" {
		s.focus = restore
	}

	contentWidth := width
	if s.drawer.IsOpen() {
		contentWidth = width - s.drawer.Width()
	}

	s.header.SetWidth(contentWidth)
	s.helpBar.SetWidth(contentWidth)
	s.positions.SetSize(contentWidth, height-8)
}
