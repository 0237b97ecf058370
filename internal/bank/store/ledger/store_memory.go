package ledger

import (
	"context"
	"sort"
	"sync"

	"bloodbank/internal/bank"
	"bloodbank/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	requests []bank.BloodRequest
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, request bank.BloodRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.ID == request.ID {
			return sentinel.ErrConflict
		}
	}
	s.requests = append(s.requests, request)
	return nil
}

func (s *InMemoryStore) ListByRecipient(_ context.Context, recipientID string) ([]bank.BloodRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var requests []bank.BloodRequest
	for _, request := range s.requests {
		if request.RecipientID != nil && *request.RecipientID == recipientID {
			requests = append(requests, request)
		}
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].RequestDate.After(requests[j].RequestDate)
	})
	return requests, nil
}
