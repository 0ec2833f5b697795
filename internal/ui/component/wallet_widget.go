package component

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"termpanel/internal/connect"
	"termpanel/internal/ui"
	"termpanel/internal/ui/style"
)

// WalletWidget binds the connect/disconnect affordance and the address
// label. Exactly one action is live at a time; which one depends only
// on the current connection state. When account selection is enabled
// and the provider holds more than one account, activating the widget
// opens an inline picker instead of adopting the first account.
type WalletWidget struct {
	mgr          *connect.Manager
	connectLabel string
	selection    bool

	status   connect.Status
	hydrated bool
	picking  bool
	accounts []string
	pick     int

	logger *zap.Logger

	buttonStyle    lipgloss.Style
	addressStyle   lipgloss.Style
	connectedStyle lipgloss.Style
	pickerStyle    lipgloss.Style
	pickerItem     lipgloss.Style
	pickerFocused  lipgloss.Style
}

// NewWalletWidget creates the widget. selection enables the account
// picker flow (driven by the wallet project id in config).
func NewWalletWidget(mgr *connect.Manager, connectLabel string, selection bool, logger *zap.Logger) *WalletWidget {
	palette := style.DefaultPalette()

	return &WalletWidget{
		mgr:          mgr,
		connectLabel: connectLabel,
		selection:    selection,
		logger:       logger,

		buttonStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		addressStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		connectedStyle: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		pickerStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 1),

		pickerItem: lipgloss.NewStyle().
			Foreground(palette.Text),

		pickerFocused: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Bold(true),
	}
}

// Init hydrates the widget from the server session, once.
func (w *WalletWidget) Init() tea.Cmd {
	if w.hydrated {
		return nil
	}
	w.hydrated = true
	return func() tea.Msg {
		return ui.WalletStatusMsg{Status: w.mgr.Hydrate(context.Background())}
	}
}

// Activate runs the single bound action for the current state:
// connect when disconnected, disconnect when connected. An absent
// wallet capability makes this a logged no-op.
func (w *WalletWidget) Activate() tea.Cmd {
	if w.status.State == connect.StateConnected {
		return w.disconnectCmd()
	}
	if w.status.State == connect.StateConnecting || w.picking {
		return nil
	}
	if !w.mgr.HasProvider() {
		w.logger.Info("connect pressed but no wallet capability is available")
		return nil
	}
	if w.selection {
		return w.openPickerCmd()
	}
	return w.connectCmd()
}

func (w *WalletWidget) connectCmd() tea.Cmd {
	return func() tea.Msg {
		return ui.WalletStatusMsg{Status: w.mgr.Connect(context.Background())}
	}
}

func (w *WalletWidget) disconnectCmd() tea.Cmd {
	return func() tea.Msg {
		return ui.WalletStatusMsg{Status: w.mgr.Disconnect(context.Background())}
	}
}

// openPickerCmd builds the account selection. When the list cannot be
// fetched the widget falls back to the plain connect flow, so a broken
// picker never blocks connecting.
func (w *WalletWidget) openPickerCmd() tea.Cmd {
	return func() tea.Msg {
		accts, err := w.mgr.ListAccounts(context.Background())
		if err != nil || len(accts) == 0 {
			w.logger.Warn("account selection unavailable, falling back to direct connect", zap.Error(err))
			return ui.WalletStatusMsg{Status: w.mgr.Connect(context.Background())}
		}
		if len(accts) == 1 {
			return ui.WalletStatusMsg{Status: w.mgr.ConnectAccount(context.Background(), accts[0])}
		}
		return ui.AccountPickMsg{Accounts: accts}
	}
}

// Update consumes wallet-related messages forwarded by the screen.
func (w *WalletWidget) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ui.WalletStatusMsg:
		w.status = msg.Status
		w.picking = false

	case ui.AccountPickMsg:
		w.picking = true
		w.accounts = msg.Accounts
		w.pick = 0

	case ui.AccountsChangedMsg:
		accts := msg.Accounts
		return func() tea.Msg {
			return ui.WalletStatusMsg{Status: w.mgr.AccountsChanged(context.Background(), accts)}
		}
	}
	return nil
}

// HandleKey drives the account picker while it is showing. It reports
// whether the keystroke was consumed.
func (w *WalletWidget) HandleKey(msg tea.KeyMsg) (handled bool, cmd tea.Cmd) {
	if !w.picking {
		return false, nil
	}

	switch msg.String() {
	case "esc":
		w.picking = false
	case "up", "shift+tab":
		if w.pick > 0 {
			w.pick--
		}
	case "down", "tab":
		if w.pick < len(w.accounts)-1 {
			w.pick++
		}
	case "enter":
		addr := w.accounts[w.pick]
		w.picking = false
		return true, func() tea.Msg {
			return ui.WalletStatusMsg{Status: w.mgr.ConnectAccount(context.Background(), addr)}
		}
	default:
		return false, nil
	}
	return true, nil
}

// Status returns the connection status the widget is rendering.
func (w *WalletWidget) Status() connect.Status {
	return w.status
}

// Picking reports whether the account picker is showing.
func (w *WalletWidget) Picking() bool {
	return w.picking
}

// View renders button and label purely from the connection state.
func (w *WalletWidget) View() string {
	vm := connect.Render(w.status, w.connectLabel)

	button := w.buttonStyle.Render("[ " + vm.ButtonLabel + " ]")
	addr := w.addressStyle.Render(vm.AddressLabel)
	if vm.Connected {
		addr = w.connectedStyle.Render(vm.AddressLabel)
	}

	view := lipgloss.JoinHorizontal(lipgloss.Top, button, "  ", addr)
	if w.picking {
		view = lipgloss.JoinVertical(lipgloss.Left, view, w.renderPicker())
	}
	return view
}

func (w *WalletWidget) renderPicker() string {
	lines := make([]string, 0, len(w.accounts)+1)
	lines = append(lines, w.pickerItem.Render("Select account:"))
	for i, acct := range w.accounts {
		label := connect.ShortenAddress(acct)
		if i == w.pick {
			lines = append(lines, w.pickerFocused.Render("› "+label))
		} else {
			lines = append(lines, w.pickerItem.Render("  "+label))
		}
	}
	return w.pickerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
