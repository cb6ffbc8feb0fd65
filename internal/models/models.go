package models

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role int

const (
	RoleSystem Role = iota
	RoleUser
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole converts a role tag into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "system":
		return RoleSystem, nil
	case "user":
		return RoleUser, nil
	case "assistant":
		return RoleAssistant, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// Message is a single turn in the conversation.
type Message struct {
	Role    Role
	Content string
}

var (
	ErrNegativeStat = errors.New("stats must not be negative")
	ErrStatBudget   = errors.New("stats do not add up to the point budget")
)

// Stats are the player's attributes, fixed for the life of a session.
type Stats struct {
	Strength     int
	Intelligence int
	Dexterity    int
}

func (s Stats) Sum() int {
	return s.Strength + s.Intelligence + s.Dexterity
}

// Validate checks that every stat is non-negative and that the points spent
// match budget.
func (s Stats) Validate(budget int) error {
	if s.Strength < 0 || s.Intelligence < 0 || s.Dexterity < 0 {
		return ErrNegativeStat
	}
	if s.Sum() != budget {
		return fmt.Errorf("%w: spent %d of %d", ErrStatBudget, s.Sum(), budget)
	}
	return nil
}

// Session is one player's game: identity, stats and the message history.
type Session struct {
	ID         string
	PlayerName string
	Genre      string
	Stats      Stats

	history []Message
}

// NewSession creates a session ready for its first turn.
func NewSession(name, genre string, stats Stats) *Session {
	s := &Session{}
	s.Init(name, genre, stats)
	return s
}

// Init resets the session to a fresh game, dropping any previous history.
// Stats are taken as given.
func (s *Session) Init(name, genre string, stats Stats) {
	s.ID = uuid.NewString()
	s.PlayerName = name
	s.Genre = genre
	s.Stats = stats
	s.history = nil
}

// Append adds a message to the end of the history.
func (s *Session) Append(role Role, content string) {
	s.history = append(s.history, Message{Role: role, Content: content})
}

// History returns the messages in the order they were appended.
func (s *Session) History() []Message {
	return slices.Clone(s.history)
}

// HasSystemMessage reports whether instructions were already appended.
func (s *Session) HasSystemMessage() bool {
	return slices.ContainsFunc(s.history, func(m Message) bool {
		return m.Role == RoleSystem
	})
}

func (s *Session) Len() int {
	return len(s.history)
}
