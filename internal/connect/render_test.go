package connect

import "testing"

func TestShortenAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0xABCDEF1234567890", "0xABCD…7890"},
		{"0x2c7536e3605d9c16a7a3d7b1898e529396a65c23", "0x2c75…5c23"},
		{"0x1234567", "0x1234567"}, // under ten chars stays verbatim
		{"", ""},
		{"0x12345678", "0x12345678"},
		{"0x123456789", "0x123456789"},
		{"0x12345678ab", "0x1234…78ab"},
	}

	for _, tt := range tests {
		if got := ShortenAddress(tt.in); got != tt.want {
			t.Errorf("ShortenAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRender_Disconnected(t *testing.T) {
	vm := Render(Status{State: StateDisconnected}, "Connect wallet")
	if vm.ButtonLabel != "Connect wallet" {
		t.Errorf("button = %q", vm.ButtonLabel)
	}
	if vm.AddressLabel != "Not connected" {
		t.Errorf("address = %q", vm.AddressLabel)
	}
	if vm.Connected {
		t.Error("disconnected state rendered as connected")
	}
}

func TestRender_CustomLabel(t *testing.T) {
	vm := Render(Status{State: StateDisconnected}, "Link wallet")
	if vm.ButtonLabel != "Link wallet" {
		t.Errorf("button = %q", vm.ButtonLabel)
	}
}

func TestRender_EmptyLabelFallsBack(t *testing.T) {
	vm := Render(Status{State: StateDisconnected}, "")
	if vm.ButtonLabel != "Connect wallet" {
		t.Errorf("button = %q", vm.ButtonLabel)
	}
}

func TestRender_Connecting(t *testing.T) {
	vm := Render(Status{State: StateConnecting}, "Connect wallet")
	if vm.ButtonLabel != "Connecting..." {
		t.Errorf("button = %q", vm.ButtonLabel)
	}
	if vm.AddressLabel != "Not connected" {
		t.Errorf("address = %q", vm.AddressLabel)
	}
}

func TestRender_Connected(t *testing.T) {
	vm := Render(Status{
		State:   StateConnected,
		Address: "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23",
	}, "Connect wallet")

	if vm.ButtonLabel != "Disconnect" {
		t.Errorf("button = %q", vm.ButtonLabel)
	}
	if vm.AddressLabel != "0x2c75…5c23" {
		t.Errorf("address = %q", vm.AddressLabel)
	}
	if !vm.Connected {
		t.Error("connected state not flagged")
	}
}
