// Package session keeps per-context conversation history so that follow-up
// turns of one A2A context continue the same conversation.
package session

import (
	"fmt"
	"sync"
	"time"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/internal/cache"
)

// DefaultMaxMessages bounds the history kept per context.
const DefaultMaxMessages = 50

// Store holds conversation histories in a TTL cache. Each write refreshes
// the TTL of its context.
type Store struct {
	cache       *cache.Cache
	ttl         time.Duration
	maxMessages int

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithMaxMessages caps the number of messages kept per context.
func WithMaxMessages(n int) Option {
	return func(s *Store) {
		s.maxMessages = n
	}
}

// New creates a Store over c. A zero ttl keeps histories until evicted.
func New(c *cache.Cache, ttl time.Duration, opts ...Option) *Store {
	s := &Store{cache: c, ttl: ttl, maxMessages: DefaultMaxMessages}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(contextID string) string { return "session:" + contextID }

// History returns the conversation of contextID, oldest first.
func (s *Store) History(contextID string) ([]ai.Message, error) {
	var msgs []ai.Message
	if _, err := s.cache.GetJSON(key(contextID), &msgs); err != nil {
		return nil, fmt.Errorf("session: load %s: %w", contextID, err)
	}
	return msgs, nil
}

// Append adds msgs to the conversation of contextID.
func (s *Store) Append(contextID string, msgs ...ai.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.History(contextID)
	if err != nil {
		return err
	}
	history = trim(append(history, msgs...), s.maxMessages)
	if err := s.cache.SetJSON(key(contextID), history, s.ttl); err != nil {
		return fmt.Errorf("session: save %s: %w", contextID, err)
	}
	return nil
}

// Clear forgets the conversation of contextID.
func (s *Store) Clear(contextID string) {
	s.cache.Delete(key(contextID))
}

// trim keeps at most max messages. The kept tail always starts at a user
// message so tool results are never separated from their calls.
func trim(msgs []ai.Message, max int) []ai.Message {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}
	tail := msgs[len(msgs)-max:]
	for i, m := range tail {
		if m.Role == ai.RoleUser {
			return tail[i:]
		}
	}
	return nil
}
