package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"termpanel/internal/logger"
	"termpanel/internal/ui"
	"termpanel/internal/ui/component"
	"termpanel/internal/ui/router"
	"termpanel/internal/ui/style"
)

const logsShown = 200

// logsRefreshMsg triggers a reload from the log buffer
type logsRefreshMsg struct{}

// LogsScreen renders the recent application logs from the ring buffer
// with a simple level filter.
type LogsScreen struct {
	width  int
	height int

	keyMap  ui.KeyMap
	buffer  *logger.LogBuffer
	entries []logger.LogEntry
	filter  string // "" shows everything

	helpBar *component.HelpBar

	titleStyle lipgloss.Style
	timeStyle  lipgloss.Style
	debugStyle lipgloss.Style
	infoStyle  lipgloss.Style
	warnStyle  lipgloss.Style
	errorStyle lipgloss.Style
	mutedStyle lipgloss.Style
}

// NewLogsScreen creates the logs screen over the shared log buffer.
func NewLogsScreen(buffer *logger.LogBuffer) *LogsScreen {
	palette := style.DefaultPalette()
	keyMap := ui.DefaultKeyMap()

	helpBar := component.NewHelpBar().SetKeyBindings([]key.Binding{
		key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "info")),
		key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "warn")),
		key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "error")),
		keyMap.Back,
		keyMap.Quit,
	})

	return &LogsScreen{
		keyMap:  keyMap,
		buffer:  buffer,
		helpBar: helpBar,

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Padding(0, 1),

		timeStyle:  lipgloss.NewStyle().Foreground(palette.TextMuted),
		debugStyle: lipgloss.NewStyle().Foreground(palette.TextMuted),
		infoStyle:  lipgloss.NewStyle().Foreground(palette.Success),
		warnStyle:  lipgloss.NewStyle().Foreground(palette.Warning),
		errorStyle: lipgloss.NewStyle().Foreground(palette.Error),
		mutedStyle: lipgloss.NewStyle().Foreground(palette.TextSecondary),
	}
}

// Init loads the buffer and starts the periodic refresh
func (s *LogsScreen) Init() tea.Cmd {
	s.reload()
	return s.refreshTick()
}

func (s *LogsScreen) refreshTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return logsRefreshMsg{}
	})
}

func (s *LogsScreen) reload() {
	s.entries = s.buffer.GetRecentLogs(logsShown)
}

// Update handles messages for the logs screen
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case logsRefreshMsg:
		s.reload()
		return s, s.refreshTick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		}
		switch msg.String() {
		case "1":
			s.filter = ""
		case "2":
			s.filter = "info"
		case "3":
			s.filter = "warn"
		case "4":
			s.filter = "error"
		}
	}
	return s, nil
}

// View renders the filtered log lines, newest at the bottom
func (s *LogsScreen) View() string {
	title := s.titleStyle.Render(fmt.Sprintf("Logs (%s)", s.filterLabel()))

	visible := s.height - 6
	if visible < 1 {
		visible = 20
	}

	lines := make([]string, 0, visible)
	for _, entry := range s.entries {
		if s.filter != "" && entry.Level != s.filter {
			continue
		}
		lines = append(lines, s.renderEntry(entry))
	}
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	if len(lines) == 0 {
		lines = append(lines, s.mutedStyle.Render("  nothing logged yet"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		strings.Join(lines, "\n"),
		s.helpBar.View(),
	)
}

func (s *LogsScreen) filterLabel() string {
	if s.filter == "" {
		return "all"
	}
	return s.filter
}

func (s *LogsScreen) renderEntry(entry logger.LogEntry) string {
	levelStyle := s.infoStyle
	switch entry.Level {
	case "debug":
		levelStyle = s.debugStyle
	case "warn":
		levelStyle = s.warnStyle
	case "error", "fatal":
		levelStyle = s.errorStyle
	}

	ts := s.timeStyle.Render(entry.Timestamp.Format("15:04:05"))
	level := levelStyle.Render(fmt.Sprintf("%-5s", strings.ToUpper(entry.Level)))
	return fmt.Sprintf(" %s %s %s", ts, level, s.mutedStyle.Render(entry.Message))
}

// SetSize records the terminal size
func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.helpBar.SetWidth(width)
}
