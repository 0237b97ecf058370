package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bloodbank/internal/bank"
	"bloodbank/pkg/platform/sentinel"
)

// InMemoryStore keeps units in a map guarded by a RWMutex. It favors clarity
// over performance and backs unit tests and broker-less deployments.
type InMemoryStore struct {
	mu    sync.RWMutex
	units map[uuid.UUID]bank.BloodUnit
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{units: make(map[uuid.UUID]bank.BloodUnit)}
}

func (s *InMemoryStore) Add(_ context.Context, unit bank.BloodUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.units[unit.ID]; exists {
		return sentinel.ErrConflict
	}
	s.units[unit.ID] = unit
	return nil
}

func (s *InMemoryStore) AvailableQuantity(_ context.Context, bloodType bank.BloodType, today time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, unit := range s.units {
		if unit.BloodType == bloodType && unit.Usable(today) {
			total += unit.QuantityML
		}
	}
	return total, nil
}

func (s *InMemoryStore) ListFIFO(_ context.Context, bloodType bank.BloodType, today time.Time) ([]bank.BloodUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var units []bank.BloodUnit
	for _, unit := range s.units {
		if unit.BloodType == bloodType && unit.Usable(today) {
			units = append(units, unit)
		}
	}
	sort.Slice(units, func(i, j int) bool {
		if !units[i].CollectionDate.Equal(units[j].CollectionDate) {
			return units[i].CollectionDate.Before(units[j].CollectionDate)
		}
		return strings.Compare(units[i].ID.String(), units[j].ID.String()) < 0
	})
	return units, nil
}

func (s *InMemoryStore) SetQuantity(_ context.Context, id uuid.UUID, quantityML int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	if quantityML <= 0 {
		return sentinel.ErrInvalidState
	}
	unit.QuantityML = quantityML
	s.units[id] = unit
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.units, id)
	return nil
}

func (s *InMemoryStore) ListByDonor(_ context.Context, donorID string) ([]bank.BloodUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var units []bank.BloodUnit
	for _, unit := range s.units {
		if unit.DonorID != nil && *unit.DonorID == donorID {
			units = append(units, unit)
		}
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].CollectionDate.After(units[j].CollectionDate)
	})
	return units, nil
}
