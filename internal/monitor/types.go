// Package monitor consumes the server's live bot monitoring feed.
package monitor

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Run status values reported by the server.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
)

// Number is a numeric field that may arrive as a JSON number or as a
// decimal string. The raw text is kept so values that fail to parse
// can still be displayed verbatim.
type Number struct {
	Raw    string
	value  float64
	parsed bool
}

// NumberOf returns a Number carrying v.
func NumberOf(v float64) Number {
	raw := strconv.FormatFloat(v, 'f', -1, 64)
	return Number{Raw: raw, value: v, parsed: true}
}

// NumberFromString returns a Number holding s, parsed when possible.
func NumberFromString(s string) Number {
	n := Number{Raw: s}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		n.value = v
		n.parsed = true
	}
	return n
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberFromString(s)
		return nil
	}
	*n = NumberFromString(string(data))
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n.Raw == "" {
		return []byte("null"), nil
	}
	if n.parsed {
		return []byte(n.Raw), nil
	}
	return json.Marshal(n.Raw)
}

// Float returns the parsed value and whether parsing succeeded.
func (n Number) Float() (float64, bool) {
	return n.value, n.parsed
}

// Or returns the parsed value, or fallback when the field did not
// carry a usable number.
func (n Number) Or(fallback float64) float64 {
	if n.parsed {
		return n.value
	}
	return fallback
}

// IsZero reports whether the field was absent from the payload.
func (n Number) IsZero() bool {
	return n.Raw == ""
}

// PositionSnapshot is one live P&L snapshot for a bot run.
type PositionSnapshot struct {
	RunID            string `json:"run_id"`
	Market           string `json:"market"`
	Status           string `json:"status"`
	PositionNotional Number `json:"position_notional"`
	EntryPrice       Number `json:"entry_price"`
	MarkPrice        Number `json:"mark_price"`
	UnrealizedPnL    Number `json:"unrealized_pnl"`
	RealizedPnL      Number `json:"realized_pnl"`
	Timestamp        string `json:"timestamp"`
}

// TotalPnL is computed client side as realized plus unrealized, with
// missing components counting as zero.
func (s PositionSnapshot) TotalPnL() float64 {
	return s.RealizedPnL.Or(0) + s.UnrealizedPnL.Or(0)
}

// Envelope is the server's canonical response wrapper.
type Envelope struct {
	OK   bool              `json:"ok"`
	Data *PositionSnapshot `json:"data,omitempty"`
}
