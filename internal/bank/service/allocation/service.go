// Package allocation decides availability and consumes inventory in
// deterministic FIFO order. Callers must run IsAvailable and Fulfill inside
// the same transactional boundary; the two calls are a check-then-act pair.
package allocation

import (
	"context"
	"time"

	"bloodbank/internal/bank"
	"bloodbank/internal/bank/store/inventory"
	dErrors "bloodbank/pkg/domain-errors"
)

// ErrInsufficientInventory aborts a fulfillment that ran out of units before
// satisfying the requested quantity. With IsAvailable checked in the same
// transaction this cannot happen; the guard exists so a violated precondition
// rolls back instead of committing an under-fulfilled request.
var ErrInsufficientInventory = dErrors.New(dErrors.CodeInsufficientInventory, "insufficient inventory")

type Clock func() time.Time

type Service struct {
	store inventory.Store
	clock Clock
}

type Option func(*Service)

func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(store inventory.Store, opts ...Option) *Service {
	s := &Service{store: store, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// IsAvailable reports whether the non-expired stock of bloodType covers
// quantityML. A type with no units sums to zero.
func (s *Service) IsAvailable(ctx context.Context, bloodType bank.BloodType, quantityML int) (bool, error) {
	if quantityML <= 0 {
		return false, dErrors.New(dErrors.CodeBadRequest, "quantity must be a positive integer")
	}
	total, err := s.store.AvailableQuantity(ctx, bloodType, s.clock())
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "sum available inventory")
	}
	return total >= quantityML, nil
}

// Fulfill consumes quantityML of bloodType oldest-first. Units are reduced in
// place, and deleted once empty so no zero-quantity rows remain. Expired
// units are never touched.
func (s *Service) Fulfill(ctx context.Context, bloodType bank.BloodType, quantityML int) error {
	if quantityML <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "quantity must be a positive integer")
	}
	units, err := s.store.ListFIFO(ctx, bloodType, s.clock())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "list inventory for allocation")
	}

	remaining := quantityML
	for _, unit := range units {
		if remaining <= unit.QuantityML {
			leftover := unit.QuantityML - remaining
			if leftover == 0 {
				if err := s.store.Delete(ctx, unit.ID); err != nil {
					return dErrors.Wrap(err, dErrors.CodeInternal, "delete consumed unit")
				}
			} else {
				if err := s.store.SetQuantity(ctx, unit.ID, leftover); err != nil {
					return dErrors.Wrap(err, dErrors.CodeInternal, "reduce unit quantity")
				}
			}
			return nil
		}
		if err := s.store.Delete(ctx, unit.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "delete consumed unit")
		}
		remaining -= unit.QuantityML
	}
	return ErrInsufficientInventory
}
