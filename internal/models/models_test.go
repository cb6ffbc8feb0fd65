package models

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAppendPreservesOrder(t *testing.T) {
	s := NewSession("Ada", "Fantasy", Stats{Strength: 3, Intelligence: 4, Dexterity: 3})

	s.Append(RoleSystem, "rules")
	s.Append(RoleAssistant, "You wake up in a cellar.")
	s.Append(RoleUser, "open the door")
	s.Append(RoleAssistant, "The door creaks open.")

	history := s.History()
	require.Len(t, history, 4)
	assert.Equal(t, s.Len(), 4)
	assert.Equal(t, []Message{
		{Role: RoleSystem, Content: "rules"},
		{Role: RoleAssistant, Content: "You wake up in a cellar."},
		{Role: RoleUser, Content: "open the door"},
		{Role: RoleAssistant, Content: "The door creaks open."},
	}, history)
}

func TestSessionInitClearsHistory(t *testing.T) {
	s := NewSession("Ada", "Fantasy", Stats{})
	firstID := s.ID
	s.Append(RoleUser, "hello")

	s.Init("Bo", "Horror", Stats{Strength: 1})

	assert.Empty(t, s.History())
	assert.Equal(t, "Bo", s.PlayerName)
	assert.Equal(t, "Horror", s.Genre)
	assert.Equal(t, 1, s.Stats.Strength)
	assert.NotEqual(t, firstID, s.ID)
}

func TestSessionHistoryIsACopy(t *testing.T) {
	s := NewSession("Ada", "Fantasy", Stats{})
	s.Append(RoleUser, "look")

	h := s.History()
	h[0].Content = "changed"

	assert.Equal(t, "look", s.History()[0].Content)
}

func TestSystemPrompt(t *testing.T) {
	s := NewSession("Ada Lovelace", "Cyberpunk", Stats{Strength: 2, Intelligence: 7, Dexterity: 1})

	prompt, err := s.SystemPrompt()
	require.NoError(t, err)

	for _, want := range []string{"Ada Lovelace", "Cyberpunk", "Strength 2", "Intelligence 7", "Dexterity 1"} {
		assert.Contains(t, prompt, want)
	}

	again, err := s.SystemPrompt()
	require.NoError(t, err)
	assert.Equal(t, prompt, again)
}

func TestSystemPromptHasNoSideEffects(t *testing.T) {
	s := NewSession("Ada", "Fantasy", Stats{})
	_, err := s.SystemPrompt()
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestStatsValidate(t *testing.T) {
	tests := []struct {
		stats Stats
		want  error
	}{
		{Stats{Strength: 3, Intelligence: 4, Dexterity: 3}, nil},
		{Stats{Strength: 10}, nil},
		{Stats{Strength: 5, Intelligence: 5, Dexterity: 5}, ErrStatBudget},
		{Stats{Strength: -1, Intelligence: 6, Dexterity: 5}, ErrNegativeStat},
	}
	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			err := tt.stats.Validate(10)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleSystem, RoleUser, RoleAssistant} {
		got, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRole("model")
	assert.Error(t, err)
}

func TestGenres(t *testing.T) {
	genres, err := Genres()
	require.NoError(t, err)
	require.NotEmpty(t, genres)
	assert.Equal(t, "fantasy", genres[0].Key)

	g, ok := LookupGenre("horror")
	require.True(t, ok)
	assert.Equal(t, "Horror", g.Name)

	_, ok = LookupGenre("opera")
	assert.False(t, ok)
}

func TestHasSystemMessage(t *testing.T) {
	s := NewSession("Ada", "Fantasy", Stats{})
	s.Append(RoleUser, "hello")
	assert.False(t, s.HasSystemMessage())

	s.Append(RoleSystem, "rules")
	assert.True(t, s.HasSystemMessage())
}
