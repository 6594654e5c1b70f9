package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/handiism/bandcamper/internal/config"
	"github.com/handiism/bandcamper/internal/download"
)

func newTestModel() Model {
	settings := config.DefaultSettings()
	settings.Destination = "/music"
	return NewModel(settings, config.NewPlatform(), zerolog.Nop())
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t,
		[]string{"examplelabel", "https://a.bandcamp.com/album/x", "other"},
		identifiers(" examplelabel, https://a.bandcamp.com/album/x\tother "))
	assert.Empty(t, identifiers(" , "))
}

func TestModel_ToggleOptions(t *testing.T) {
	m := newTestModel()
	assert.True(t, m.fallback)

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f"), Alt: true})
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p"), Alt: true})

	assert.False(t, m.fallback)
	assert.True(t, m.playlist)
	assert.Empty(t, m.textInput.Value())
	assert.Contains(t, m.View(), "[x] Create playlist")
}

func TestModel_EnterWithoutIdentifiers(t *testing.T) {
	m := update(newTestModel(), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateInput, m.state)
}

func TestModel_ProgressFiltersVerbose(t *testing.T) {
	m := newTestModel()
	m.state = StateRunning
	m.events = make(chan download.ProgressEvent)

	m = update(m, ProgressMsg{Event: download.ProgressEvent{Level: download.LevelVerbose, Message: "detail"}})
	m = update(m, ProgressMsg{Event: download.ProgressEvent{Level: download.LevelWarning, Message: "skipped"}})

	assert.Equal(t, []LogEntry{{Message: "skipped", Level: download.LevelWarning}}, m.logs)
}

func TestModel_Done(t *testing.T) {
	m := newTestModel()
	m.state = StateRunning

	done := update(m, DoneMsg{Report: &download.Report{Succeeded: 2, FilesPlaced: 5}})
	assert.Equal(t, StateComplete, done.state)
	assert.Contains(t, done.View(), "Releases: 2 succeeded, 0 failed")

	interrupted := update(m, DoneMsg{Report: &download.Report{Interrupted: true}})
	assert.Equal(t, StateError, interrupted.state)

	failed := update(m, StartedMsg{Err: errors.New("unknown platform")})
	assert.Equal(t, StateError, failed.state)
	assert.Contains(t, failed.View(), "unknown platform")
}

func TestReleasePercent(t *testing.T) {
	assert.Zero(t, releasePercent(download.Progress{}))
	assert.InDelta(t, 0.5, releasePercent(download.Progress{Releases: 4, ReleasesDone: 2}), 1e-9)
}
