package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/text-adventure/internal/models"
)

type stubCompleter struct {
	reply string
	err   error
}

func (s stubCompleter) Complete(ctx context.Context, apiKey string, history []models.Message) (string, error) {
	return s.reply, s.err
}

func fill(t *testing.T, m model, name, key, str, intel, dex string) model {
	t.Helper()
	m.inputs[fieldName].SetValue(name)
	m.inputs[fieldAPIKey].SetValue(key)
	m.inputs[fieldStrength].SetValue(str)
	m.inputs[fieldIntelligence].SetValue(intel)
	m.inputs[fieldDexterity].SetValue(dex)
	return m
}

func enter(t *testing.T, m model) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model), cmd
}

func TestSubmitValidation(t *testing.T) {
	m, err := NewModel(Options{Completer: stubCompleter{}, StatBudget: 10, EnforceBudget: true})
	require.NoError(t, err)

	tests := []struct {
		name, key, str, intel, dex string
		want                       string
	}{
		{"", "k", "3", "3", "4", "Please enter a name."},
		{"Ada", "", "3", "3", "4", "Please enter an API key."},
		{"Ada", "k", "x", "3", "4", "Invalid stats: strength must be a whole number"},
		{"Ada", "k", "3", "-1", "8", "Invalid stats: intelligence must not be negative"},
		{"Ada", "k", "5", "5", "5", "Distribute exactly 10 points (you spent 15)."},
	}
	for _, tt := range tests {
		got, cmd := enter(t, fill(t, m, tt.name, tt.key, tt.str, tt.intel, tt.dex))
		assert.Nil(t, cmd)
		assert.Equal(t, stateSetup, got.state)
		assert.Equal(t, tt.want, got.formErr)
	}
}

func TestSubmitWithoutBudget(t *testing.T) {
	m, err := NewModel(Options{Completer: stubCompleter{reply: "hi"}, StatBudget: 10})
	require.NoError(t, err)

	got, cmd := enter(t, fill(t, m, "Ada", "k", "9", "9", "9"))
	require.NotNil(t, cmd)
	assert.Equal(t, statePlaying, got.state)
	assert.Equal(t, 27, got.engine.Session().Stats.Sum())
}

func TestOpeningAndTurn(t *testing.T) {
	m, err := NewModel(Options{Completer: stubCompleter{reply: "The tavern is loud."}, StatBudget: 10, EnforceBudget: true})
	require.NoError(t, err)

	m, cmd := enter(t, fill(t, m, "Ada", "k", "3", "3", "4"))
	require.Equal(t, statePlaying, m.state)
	require.True(t, m.awaiting)
	assert.Equal(t, "Fantasy", m.engine.Session().Genre)

	next, _ := m.Update(cmd())
	m = next.(model)
	assert.False(t, m.awaiting)
	assert.Contains(t, m.gameLog, "The tavern is loud.")
	assert.Equal(t, 2, m.engine.Session().Len())

	m.textInput.SetValue("order an ale")
	m, cmd = enter(t, m)
	require.NotNil(t, cmd)
	assert.True(t, m.awaiting)
	assert.Contains(t, m.gameLog, "order an ale")

	// Input is ignored while the reply is pending.
	m.textInput.SetValue("leave")
	m, blocked := enter(t, m)
	assert.Nil(t, blocked)

	next, _ = m.Update(cmd())
	m = next.(model)
	assert.False(t, m.awaiting)
	assert.Equal(t, 4, m.engine.Session().Len())
}

func TestErrorIsShownInLog(t *testing.T) {
	m, err := NewModel(Options{Completer: stubCompleter{err: errors.New("quota exceeded")}})
	require.NoError(t, err)

	m, cmd := enter(t, fill(t, m, "Ada", "k", "", "", ""))
	next, _ := m.Update(cmd())
	m = next.(model)

	assert.Contains(t, m.gameLog, "Error: quota exceeded")
	assert.Equal(t, statePlaying, m.state)
	assert.False(t, m.awaiting)
}

func TestRestartDropsLateReply(t *testing.T) {
	m, err := NewModel(Options{Completer: stubCompleter{reply: "late"}})
	require.NoError(t, err)

	m, cmd := enter(t, fill(t, m, "Ada", "k", "", "", ""))
	m.awaiting = false
	m.textInput.SetValue("/restart")
	m, _ = enter(t, m)
	require.Equal(t, stateSetup, m.state)

	next, _ := m.Update(cmd())
	m = next.(model)
	assert.NotContains(t, m.gameLog, "late")
}

func TestGenreSelection(t *testing.T) {
	m, err := NewModel(Options{Completer: stubCompleter{}})
	require.NoError(t, err)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	require.Equal(t, fieldGenre, m.focus)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(model)
	assert.Equal(t, 1, m.genreIdx)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	next, _ = next.(model).Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = next.(model)
	assert.Equal(t, len(m.genres)-1, m.genreIdx)
}

func TestParseStats(t *testing.T) {
	stats, err := parseStats("2", " 5 ", "")
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Strength: 2, Intelligence: 5}, stats)
}
