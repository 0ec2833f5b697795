package component

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"termpanel/internal/connect"
	"termpanel/internal/ui/style"
)

// StreamState is the monitoring stream connectivity shown in the header.
type StreamState struct {
	Connected bool
	LastEvent time.Time
}

// StatusHeader is the top bar: app title, wallet address, stream
// connectivity and the combined P&L across runs.
type StatusHeader struct {
	wallet   string
	stream   StreamState
	totalPnL float64
	width    int

	titleStyle  lipgloss.Style
	walletStyle lipgloss.Style
	liveStyle   lipgloss.Style
	downStyle   lipgloss.Style
	profitStyle lipgloss.Style
	lossStyle   lipgloss.Style
	barStyle    lipgloss.Style
}

// NewStatusHeader creates the header bar
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		width: 80,

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		walletStyle: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),

		liveStyle: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		downStyle: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		profitStyle: lipgloss.NewStyle().
			Foreground(palette.Profit).
			Bold(true),

		lossStyle: lipgloss.NewStyle().
			Foreground(palette.Loss).
			Bold(true),

		barStyle: lipgloss.NewStyle().
			Background(palette.BackgroundAlt).
			Padding(0, 1),
	}
}

// SetWallet sets the connected wallet address ("" when disconnected)
func (h *StatusHeader) SetWallet(address string) *StatusHeader {
	h.wallet = address
	return h
}

// SetStreamState sets the monitoring stream connectivity
func (h *StatusHeader) SetStreamState(state StreamState) *StatusHeader {
	h.stream = state
	return h
}

// SetTotalPnL sets the combined P&L across all runs
func (h *StatusHeader) SetTotalPnL(total float64) *StatusHeader {
	h.totalPnL = total
	return h
}

// SetWidth sets the header width
func (h *StatusHeader) SetWidth(width int) *StatusHeader {
	h.width = width
	return h
}

// GetHeight returns the rendered height in lines
func (h *StatusHeader) GetHeight() int {
	return 1
}

// View renders the header bar
func (h *StatusHeader) View() string {
	title := h.titleStyle.Render("termpanel")

	wallet := h.walletStyle.Render("no wallet")
	if h.wallet != "" {
		wallet = h.walletStyle.Render(connect.ShortenAddress(h.wallet))
	}

	stream := h.downStyle.Render("● reconnecting")
	if h.stream.Connected {
		stream = h.liveStyle.Render("● live")
	}

	pnlStyle := h.profitStyle
	if h.totalPnL < 0 {
		pnlStyle = h.lossStyle
	}
	pnl := pnlStyle.Render("Σ " + FormatFloat(h.totalPnL))

	sep := h.walletStyle.Render("  │  ")
	line := lipgloss.JoinHorizontal(lipgloss.Top, title, sep, wallet, sep, stream, sep, pnl)
	return h.barStyle.Width(h.width).Render(line)
}
