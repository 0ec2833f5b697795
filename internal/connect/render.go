package connect

// ViewModel is everything the wallet widget shows. It is a pure
// function of Status so every state transition re-renders the same
// way, with exactly one action live at a time.
type ViewModel struct {
	ButtonLabel  string
	AddressLabel string
	Connected    bool
}

const (
	notConnectedLabel = "Not connected"
	disconnectLabel   = "Disconnect"
	connectingLabel   = "Connecting..."
	fallbackLabel     = "Connect wallet"
)

// Render maps a connection status to its view model. connectLabel is
// the configurable idle label; empty falls back to the default.
func Render(st Status, connectLabel string) ViewModel {
	if connectLabel == "" {
		connectLabel = fallbackLabel
	}
	switch st.State {
	case StateConnected:
		return ViewModel{
			ButtonLabel:  disconnectLabel,
			AddressLabel: ShortenAddress(st.Address),
			Connected:    true,
		}
	case StateConnecting:
		return ViewModel{
			ButtonLabel:  connectingLabel,
			AddressLabel: notConnectedLabel,
		}
	default:
		return ViewModel{
			ButtonLabel:  connectLabel,
			AddressLabel: notConnectedLabel,
		}
	}
}

// ShortenAddress renders an address as its first six characters, an
// ellipsis, and its last four. Anything under ten characters is shown
// verbatim.
func ShortenAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
