// Package tui provides a Bubble Tea terminal user interface for bandcamper.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/handiism/bandcamper/internal/config"
	"github.com/handiism/bandcamper/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

const maxLogs = 12

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	platform  *config.Platform
	logger    zerolog.Logger
	logs      []LogEntry
	report    *download.Report
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent
	stats   download.Progress

	playlist bool
	fallback bool
	verbose  bool

	width int
}

// NewModel creates a new TUI model over the given settings.
func NewModel(settings *config.Settings, platform *config.Platform, logger zerolog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "examplelabel https://artist.bandcamp.com/album/name"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		platform:  platform,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.CreatePlaylist,
		fallback:  settings.Fallback,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one manager event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// StartedMsg is sent once the manager is built.
	StartedMsg struct {
		Manager *download.Manager
		Err     error
	}

	// DoneMsg is sent when the batch ends.
	DoneMsg struct {
		Report *download.Report
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInput:
				return m, tea.Quit
			case StateRunning:
				m.cancel()
				m.logs = appendLog(m.logs, LogEntry{Message: "Cancelling...", Level: download.LevelWarning})
			}

		case "enter":
			if m.state == StateInput && len(identifiers(m.textInput.Value())) > 0 {
				m.state = StateRunning
				m.events = make(chan download.ProgressEvent, 64)
				return m, tea.Batch(m.start(), m.spinner.Tick)
			}

		case "alt+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
				return m, nil
			}

		case "alt+f":
			if m.state == StateInput {
				m.fallback = !m.fallback
				return m, nil
			}

		case "alt+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.logs = nil
				m.report = nil
				m.err = nil
				m.manager = nil
				m.stats = download.Progress{}
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StartedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.manager = msg.Manager
		cmds = append(cmds, m.run(), m.waitEvent(), m.tickProgress())

	case ProgressMsg:
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.logs = appendLog(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		}
		cmds = append(cmds, m.waitEvent())

	case DoneMsg:
		m.report = msg.Report
		if m.manager != nil {
			m.stats = m.manager.Progress()
		}
		m.state = StateComplete
		if msg.Report.Interrupted {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		}

	case TickMsg:
		if m.manager != nil && m.state == StateRunning {
			m.stats = m.manager.Progress()
			cmds = append(cmds, m.progress.SetPercent(releasePercent(m.stats)), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func appendLog(logs []LogEntry, e LogEntry) []LogEntry {
	logs = append(logs, e)
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	return logs
}

func releasePercent(p download.Progress) float64 {
	if p.Releases == 0 {
		return 0
	}
	return float64(p.ReleasesDone) / float64(p.Releases)
}

// identifiers splits the input on whitespace and commas.
func identifiers(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// start builds a manager for the current options.
func (m Model) start() tea.Cmd {
	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	settings.Fallback = m.fallback
	events := m.events
	return func() tea.Msg {
		manager, err := download.NewManager(&settings, m.platform, func(e download.ProgressEvent) {
			events <- e
		}, download.WithLogger(m.logger))
		return StartedMsg{Manager: manager, Err: err}
	}
}

// run processes the batch in the background. The event channel is closed
// when it ends, after which waitEvent delivers the report.
func (m Model) run() tea.Cmd {
	manager, events, ctx := m.manager, m.events, m.ctx
	ids := identifiers(m.textInput.Value())
	return func() tea.Msg {
		report := manager.Run(ctx, ids)
		close(events)
		return DoneMsg{Report: report}
	}
}

// waitEvent blocks for the next manager event.
func (m Model) waitEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: e}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Bandcamper"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download freely available releases from Bandcamp"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Artists, labels or release URLs:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Create playlist (alt+p)\n", check(m.playlist))
	fmt.Fprintf(&b, "  %s Fall back to preview streams (alt+f)\n", check(m.fallback))
	fmt.Fprintf(&b, "  %s Verbose output (alt+v)\n", check(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Formats: %s", strings.Join(m.settings.Formats, ", "))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Destination: %s", m.settings.Destination)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.stats.Releases == 0 {
		b.WriteString(subtitleStyle.Render("Resolving..."))
	} else {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Release %d of %d", m.stats.ReleasesDone+1, m.stats.Releases)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.progress.View())
	b.WriteString("\n")

	current := fmt.Sprintf("%.2f MB", float64(m.stats.Written)/1024/1024)
	if m.stats.Total > 0 {
		current += fmt.Sprintf(" of %.2f MB", float64(m.stats.Total)/1024/1024)
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("Files placed: %d | Current file: %s", m.stats.FilesPlaced, current)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	if m.report != nil {
		b.WriteString(boxStyle.Render(fmt.Sprintf(
			"Batch complete\n\n"+
				"Releases: %d succeeded, %d failed\n"+
				"Files: %d\n"+
				"Tags: %d written, %d failed",
			m.report.Succeeded,
			m.report.Failed,
			m.report.FilesPlaced,
			m.report.TagsWritten,
			m.report.TagsFailed,
		)))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s\n\n", m.err.Error())
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • alt+p: playlist • alt+f: fallback • alt+v: verbose • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new batch • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, platform *config.Platform, logger zerolog.Logger) error {
	p := tea.NewProgram(NewModel(settings, platform, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
