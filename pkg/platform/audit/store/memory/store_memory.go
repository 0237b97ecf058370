package memory

import (
	"context"
	"sync"

	audit "bloodbank/pkg/platform/audit"
)

// Store keeps audit events in memory. Suitable for development and tests;
// production deployments would swap in a durable store behind the same
// interface.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListByActor(_ context.Context, actorID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []audit.Event
	for _, event := range s.events {
		if event.ActorID == actorID {
			events = append(events, event)
		}
	}
	return events, nil
}
