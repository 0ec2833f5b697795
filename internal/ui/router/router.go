// Package router provides stack-based navigation between screens.
package router

import (
	tea "github.com/charmbracelet/bubbletea"

	"termpanel/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Router manages navigation between screens using a stack
type Router struct {
	stack  []Screen
	width  int
	height int
}

// New creates a router rooted at the initial screen
func New(initialScreen Screen) *Router {
	return &Router{
		stack: []Screen{initialScreen},
	}
}

// Init initializes the active screen
func (r *Router) Init() tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].Init()
}

// Update processes messages and updates the active screen
func (r *Router) Update(msg tea.Msg) (*Router, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		// Escape pops a pushed screen; the root screen handles its own
		if msg.String() == "esc" && len(r.stack) > 1 {
			return r, r.Pop()
		}
	}

	var cmds []tea.Cmd
	if len(r.stack) > 0 {
		current := r.stack[len(r.stack)-1]
		updated, cmd := current.Update(msg)
		r.stack[len(r.stack)-1] = updated
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return r, tea.Batch(cmds...)
}

// View renders the active screen
func (r *Router) View() string {
	if len(r.stack) == 0 {
		return "No screen available"
	}
	return r.stack[len(r.stack)-1].View()
}

// SetSize propagates the terminal size to the active screen
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height
	if len(r.stack) > 0 {
		r.stack[len(r.stack)-1].SetSize(width, height)
	}
}

// Push adds a new screen to the navigation stack
func (r *Router) Push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// Pop removes the current screen; the root screen cannot be popped
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack = r.stack[:len(r.stack)-1]

	current := r.stack[len(r.stack)-1]
	current.SetSize(r.width, r.height)
	return current.Init()
}

// Replace swaps the current screen for a new one
func (r *Router) Replace(screen Screen) tea.Cmd {
	if len(r.stack) == 0 {
		return r.Push(screen)
	}
	screen.SetSize(r.width, r.height)
	r.stack[len(r.stack)-1] = screen
	return screen.Init()
}

// Navigate returns a command that emits a navigation message
func Navigate(route ui.Route) tea.Cmd {
	return func() tea.Msg {
		return ui.RouterMsg{To: route}
	}
}

// Current returns the active screen
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}
