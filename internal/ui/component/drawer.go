package component

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"termpanel/internal/ui"
	"termpanel/internal/ui/style"
)

// NavItem is a drawer navigation target.
type NavItem struct {
	Label    string
	Route    ui.Route
	Disabled bool
}

// Drawer is the slide-out navigation pane. While open it owns a focus
// trap: Tab and Shift+Tab cycle through its focusable items, wrapping
// at either end, and Escape closes it and hands focus back to whoever
// held it before. The parent screen feeds it key, mouse and resize
// events.
type Drawer struct {
	items   []NavItem
	open    bool
	focused int    // item index holding focus
	restore string // focus owner captured at open time

	width       int // rendered drawer width in cells
	viewport    int // current terminal width
	narrowWidth int // below this the viewport counts as narrow

	titleStyle     lipgloss.Style
	itemStyle      lipgloss.Style
	focusedStyle   lipgloss.Style
	disabledStyle  lipgloss.Style
	containerStyle lipgloss.Style
}

// NewDrawer creates a closed drawer over the given navigation items.
func NewDrawer(items []NavItem, narrowWidth int) *Drawer {
	palette := style.DefaultPalette()

	return &Drawer{
		items:       items,
		width:       26,
		narrowWidth: narrowWidth,

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		itemStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2),

		focusedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Bold(true).
			Padding(0, 2),

		disabledStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Padding(0, 2),

		containerStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary),
	}
}

// IsOpen reports the drawer state; toggle controls derive their
// expanded marker from it.
func (d *Drawer) IsOpen() bool {
	return d.open
}

// Open reveals the drawer and moves focus to its first focusable
// item. currentFocus names the control holding focus right now so
// Close can hand it back. Opening an open drawer is a no-op.
func (d *Drawer) Open(currentFocus string) {
	if d.open {
		return
	}
	d.open = true
	d.restore = currentFocus
	d.focused = 0
	if f := d.focusables(); len(f) > 0 {
		d.focused = f[0]
	}
}

// Close hides the drawer and returns the focus owner captured at open
// time, or "" when there is nothing to restore. Closing a closed
// drawer is a no-op.
func (d *Drawer) Close() (restore string) {
	if !d.open {
		return ""
	}
	d.open = false
	restore = d.restore
	d.restore = ""
	return restore
}

// focusables returns the indexes of items that can take focus. It is
// recomputed on every keystroke because items may be enabled or
// disabled between keys.
func (d *Drawer) focusables() []int {
	out := make([]int, 0, len(d.items))
	for i, item := range d.items {
		if !item.Disabled {
			out = append(out, i)
		}
	}
	return out
}

// SetItemDisabled flips an item's focusability. The trap picks the
// change up on the next keystroke.
func (d *Drawer) SetItemDisabled(index int, disabled bool) {
	if index >= 0 && index < len(d.items) {
		d.items[index].Disabled = disabled
	}
}

// KeyResult tells the parent screen what a drawer event did.
type KeyResult struct {
	Closed   bool
	Restore  string
	Selected *NavItem
}

// HandleKey drives the focus trap while the drawer is open. Selecting
// an item closes the drawer only when the viewport is narrow; on wide
// viewports the drawer stays open next to the content.
func (d *Drawer) HandleKey(msg tea.KeyMsg) KeyResult {
	if !d.open {
		return KeyResult{}
	}

	focusables := d.focusables()
	switch msg.String() {
	case "esc":
		return KeyResult{Closed: true, Restore: d.Close()}
	case "tab", "down":
		d.advance(focusables, 1)
	case "shift+tab", "up":
		d.advance(focusables, -1)
	case "enter":
		for _, i := range focusables {
			if i != d.focused {
				continue
			}
			item := d.items[i]
			res := KeyResult{Selected: &item}
			if d.viewport < d.narrowWidth {
				res.Restore = d.Close()
				res.Closed = true
			}
			return res
		}
	}
	return KeyResult{}
}

// advance moves focus within the trap, wrapping at either end.
func (d *Drawer) advance(focusables []int, delta int) {
	if len(focusables) == 0 {
		return
	}
	pos := 0
	for i, idx := range focusables {
		if idx == d.focused {
			pos = i
			break
		}
	}
	pos = (pos + delta + len(focusables)) % len(focusables)
	d.focused = focusables[pos]
}

// Focused returns the index of the item currently holding focus.
func (d *Drawer) Focused() int {
	return d.focused
}

// HandleMouse closes the drawer when a press lands outside its
// rendered bounds.
func (d *Drawer) HandleMouse(msg tea.MouseMsg) KeyResult {
	if !d.open || msg.Action != tea.MouseActionPress {
		return KeyResult{}
	}
	if msg.X >= d.width {
		return KeyResult{Closed: true, Restore: d.Close()}
	}
	return KeyResult{}
}

// SetViewport records the terminal size. A widening resize that takes
// the viewport out of the narrow range force-closes an open drawer.
func (d *Drawer) SetViewport(width, height int) (restore string, closed bool) {
	widening := width > d.viewport
	d.viewport = width
	if d.open && widening && width >= d.narrowWidth {
		return d.Close(), true
	}
	return "", false
}

// Width returns the drawer's rendered width in cells.
func (d *Drawer) Width() int {
	return d.width
}

// View renders the open drawer pane; a closed drawer renders nothing.
func (d *Drawer) View() string {
	if !d.open {
		return ""
	}

	lines := make([]string, 0, len(d.items)+2)
	lines = append(lines, d.titleStyle.Render("Navigation"), "")

	for i, item := range d.items {
		switch {
		case item.Disabled:
			lines = append(lines, d.disabledStyle.Render(item.Label))
		case i == d.focused:
			lines = append(lines, d.focusedStyle.Render("› "+item.Label))
		default:
			lines = append(lines, d.itemStyle.Render(item.Label))
		}
	}

	content := strings.Join(lines, "\n")
	return d.containerStyle.Width(d.width - 2).Render(content)
}
