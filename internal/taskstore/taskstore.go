// Package taskstore keeps A2A tasks between the requests that create,
// query and cancel them.
package taskstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/internal/cache"
)

// ErrNotFound is returned for unknown or expired tasks.
var ErrNotFound = errors.New("taskstore: task not found")

// Store persists tasks as JSON in a TTL cache.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration

	// mu serializes read-modify-write cycles through Update.
	mu sync.Mutex
}

// New creates a Store over c. A zero ttl keeps tasks until evicted.
func New(c *cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

func key(id string) string { return "task:" + id }

// Get returns the task with id.
func (s *Store) Get(id string) (*a2a.Task, error) {
	var task a2a.Task
	found, err := s.cache.GetJSON(key(id), &task)
	if err != nil {
		return nil, fmt.Errorf("taskstore: load %s: %w", id, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &task, nil
}

// Save stores task, replacing any previous version.
func (s *Store) Save(task *a2a.Task) error {
	if err := s.cache.SetJSON(key(task.ID), task, s.ttl); err != nil {
		return fmt.Errorf("taskstore: save %s: %w", task.ID, err)
	}
	return nil
}

// Update loads the task, applies fn and saves the result.
func (s *Store) Update(id string, fn func(*a2a.Task)) (*a2a.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	fn(task)
	if err := s.Save(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Apply folds an event into the stored task.
func (s *Store) Apply(id string, e a2a.Event) error {
	_, err := s.Update(id, func(t *a2a.Task) { t.Apply(e) })
	return err
}
