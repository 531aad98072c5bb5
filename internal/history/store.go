// Package history provides the in-memory conversation log for a session.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dixit-research/dixit/internal/models"
)

// ErrEmptyMessage is returned when appending a message without text
var ErrEmptyMessage = errors.New("message text cannot be empty")

// ErrInvalidRole is returned when appending a message with an unknown role
var ErrInvalidRole = errors.New("message role must be user or bot")

// Store is an append-only, ordered log of messages seeded with a greeting.
// Only Reset shortens it, and only back to the greeting.
type Store struct {
	mu        sync.RWMutex
	id        string
	greeting  models.Message
	messages  []models.Message
	createdAt time.Time
}

// NewStore creates a store holding only the greeting
func NewStore(greeting string) *Store {
	if greeting == "" {
		greeting = models.DefaultGreeting
	}

	now := time.Now()
	g := models.Message{Role: models.RoleBot, Text: greeting, Timestamp: now}

	return &Store{
		id:        uuid.NewString(),
		greeting:  g,
		messages:  []models.Message{g},
		createdAt: now,
	}
}

// Append adds msg to the end of the log
func (s *Store) Append(msg models.Message) error {
	if msg.Text == "" {
		return ErrEmptyMessage
	}
	if msg.Role != models.RoleUser && msg.Role != models.RoleBot {
		return ErrInvalidRole
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

// Reset truncates the log to the greeting and starts a new session id
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 1 {
		return
	}
	s.messages = []models.Message{s.greeting}
	s.id = uuid.NewString()
	s.createdAt = time.Now()
}

// Snapshot returns a copy of the full ordered log
func (s *Store) Snapshot() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Payload returns the log without the greeting, as exchanged with the backend
func (s *Store) Payload() []models.Message {
	snap := s.Snapshot()
	return snap[1:]
}

// Len returns the number of messages, greeting included
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message
func (s *Store) Last() models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messages[len(s.messages)-1]
}

// Greeting returns the seed message
func (s *Store) Greeting() models.Message {
	return s.greeting
}

// ID returns the current session id
func (s *Store) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// CreatedAt returns when the current session started
func (s *Store) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}
