package person

import (
	"context"
	"sync"
	"time"

	"bloodbank/internal/bank"
	"bloodbank/pkg/platform/sentinel"
)

type InMemoryDonorStore struct {
	mu     sync.RWMutex
	donors map[string]bank.Donor
}

func NewInMemoryDonorStore() *InMemoryDonorStore {
	return &InMemoryDonorStore{donors: make(map[string]bank.Donor)}
}

func (s *InMemoryDonorStore) FindByID(_ context.Context, id string) (bank.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if donor, ok := s.donors[id]; ok {
		return donor, nil
	}
	return bank.Donor{}, sentinel.ErrNotFound
}

func (s *InMemoryDonorStore) Save(_ context.Context, donor bank.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donors[donor.ID] = donor
	return nil
}

func (s *InMemoryDonorStore) SetLastDonationDate(_ context.Context, id string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	donor, ok := s.donors[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	day := bank.Date(date)
	donor.LastDonationDate = &day
	s.donors[id] = donor
	return nil
}

type InMemoryRecipientStore struct {
	mu         sync.RWMutex
	recipients map[string]bank.Recipient
}

func NewInMemoryRecipientStore() *InMemoryRecipientStore {
	return &InMemoryRecipientStore{recipients: make(map[string]bank.Recipient)}
}

func (s *InMemoryRecipientStore) FindByID(_ context.Context, id string) (bank.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if recipient, ok := s.recipients[id]; ok {
		return recipient, nil
	}
	return bank.Recipient{}, sentinel.ErrNotFound
}

func (s *InMemoryRecipientStore) Save(_ context.Context, recipient bank.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients[recipient.ID] = recipient
	return nil
}

func (s *InMemoryRecipientStore) SetLastRequestDate(_ context.Context, id string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recipient, ok := s.recipients[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	day := bank.Date(date)
	recipient.LastRequestDate = &day
	s.recipients[id] = recipient
	return nil
}
