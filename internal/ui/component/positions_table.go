package component

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"termpanel/internal/monitor"
	"termpanel/internal/ui/style"
)

// PositionsTable shows one row per bot run, keyed by run id. A row is
// replaced wholesale on every update; ordering follows first arrival.
// Before the first snapshot arrives a single placeholder row is shown
// and dropped as soon as real data lands.
type PositionsTable struct {
	table       *Table
	order       []string
	placeholder bool

	profitStyle lipgloss.Style
	lossStyle   lipgloss.Style
	flatStyle   lipgloss.Style
}

// NewPositionsTable creates the table with its placeholder row.
func NewPositionsTable() *PositionsTable {
	palette := style.DefaultPalette()

	t := NewTable().
		AddColumn("Run", 12, lipgloss.Left).
		AddColumn("Market", 8, lipgloss.Left).
		AddColumn("Status", 11, lipgloss.Center).
		AddColumn("Notional", 14, lipgloss.Right).
		AddColumn("Entry", 14, lipgloss.Right).
		AddColumn("Mark", 14, lipgloss.Right).
		AddColumn("uPnL", 12, lipgloss.Right).
		AddColumn("rPnL", 12, lipgloss.Right).
		AddColumn("Total", 12, lipgloss.Right).
		AddColumn("Updated", 10, lipgloss.Left)

	pt := &PositionsTable{
		table: t,

		profitStyle: lipgloss.NewStyle().
			Foreground(palette.Profit).
			Bold(true).
			Padding(0, 1),

		lossStyle: lipgloss.NewStyle().
			Foreground(palette.Loss).
			Bold(true).
			Padding(0, 1),

		flatStyle: lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Padding(0, 1),
	}
	pt.showPlaceholder()
	return pt
}

func (pt *PositionsTable) showPlaceholder() {
	row := make([]string, 10)
	for i := range row {
		row[i] = "—"
	}
	row[0] = "no runs yet"
	pt.table.SetRows([][]string{row})
	pt.table.SetSelectable(false)
	pt.placeholder = true
}

// Upsert renders s into its row, replacing an existing row for the
// same run or appending a new one after dropping the placeholder.
func (pt *PositionsTable) Upsert(s monitor.PositionSnapshot) (replaced bool) {
	row := renderSnapshotRow(s)

	for i, id := range pt.order {
		if id == s.RunID {
			pt.table.UpdateRow(i, row)
			pt.styleRow(i, s)
			return true
		}
	}

	if pt.placeholder {
		pt.table.Clear()
		pt.table.SetSelectable(true)
		pt.placeholder = false
	}

	pt.order = append(pt.order, s.RunID)
	pt.table.AddRow(row)
	pt.styleRow(len(pt.order)-1, s)
	return false
}

func (pt *PositionsTable) styleRow(index int, s monitor.PositionSnapshot) {
	total := s.TotalPnL()
	switch {
	case total > 0:
		pt.table.SetRowStyle(index, pt.profitStyle)
	case total < 0:
		pt.table.SetRowStyle(index, pt.lossStyle)
	default:
		pt.table.SetRowStyle(index, pt.flatStyle)
	}
}

// renderSnapshotRow maps a snapshot to its table cells.
func renderSnapshotRow(s monitor.PositionSnapshot) []string {
	updated := s.Timestamp
	if ts, err := time.Parse(time.RFC3339, s.Timestamp); err == nil {
		updated = ts.Local().Format("15:04:05")
	}

	return []string{
		s.RunID,
		strings.ToUpper(s.Market),
		s.Status,
		FormatNumber(s.PositionNotional),
		FormatNumber(s.EntryPrice),
		FormatNumber(s.MarkPrice),
		FormatNumber(s.UnrealizedPnL),
		FormatNumber(s.RealizedPnL),
		FormatFloat(s.TotalPnL()),
		updated,
	}
}

// HasPlaceholder reports whether the empty-state row is still showing.
func (pt *PositionsTable) HasPlaceholder() bool {
	return pt.placeholder
}

// RowCount returns the number of real data rows.
func (pt *PositionsTable) RowCount() int {
	if pt.placeholder {
		return 0
	}
	return pt.table.GetRowCount()
}

// Runs returns the tracked run ids in display order.
func (pt *PositionsTable) Runs() []string {
	out := make([]string, len(pt.order))
	copy(out, pt.order)
	return out
}

// SelectedRun returns the run id of the selected row, or "" while the
// placeholder is showing.
func (pt *PositionsTable) SelectedRun() string {
	if pt.placeholder {
		return ""
	}
	idx := pt.table.GetSelectedRow()
	if idx < 0 || idx >= len(pt.order) {
		return ""
	}
	return pt.order[idx]
}

// MoveUp moves the row selection up
func (pt *PositionsTable) MoveUp() {
	pt.table.MoveUp()
}

// MoveDown moves the row selection down
func (pt *PositionsTable) MoveDown() {
	pt.table.MoveDown()
}

// SetSize sets the table dimensions
func (pt *PositionsTable) SetSize(width, height int) {
	pt.table.SetSize(width, height)
}

// View renders the table
func (pt *PositionsTable) View() string {
	return pt.table.View()
}
