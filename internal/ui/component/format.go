package component

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"termpanel/internal/monitor"
)

var numberPrinter = message.NewPrinter(language.English)

// FormatNumber renders a numeric cell with locale-aware grouping and
// at most six fractional digits. A value that never parsed as a
// number is shown in its raw string form.
func FormatNumber(n monitor.Number) string {
	v, ok := n.Float()
	if !ok {
		if n.Raw == "" {
			return "0"
		}
		return n.Raw
	}
	return FormatFloat(v)
}

// FormatFloat renders a client-computed value with the same rules.
func FormatFloat(v float64) string {
	return numberPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(6)))
}
