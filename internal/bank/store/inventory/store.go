// Package inventory persists blood units. Reads that feed allocation only
// ever see non-expired units; expired rows stay in place and simply become
// invisible (there is no reaper).
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bloodbank/internal/bank"
)

type Store interface {
	// Add inserts a freshly collected unit.
	Add(ctx context.Context, unit bank.BloodUnit) error
	// AvailableQuantity sums quantity over non-expired units of bloodType.
	// A type with no units sums to zero, not an error.
	AvailableQuantity(ctx context.Context, bloodType bank.BloodType, today time.Time) (int, error)
	// ListFIFO returns non-expired units of bloodType ordered oldest
	// collection first, ID ascending on ties, for deterministic allocation.
	ListFIFO(ctx context.Context, bloodType bank.BloodType, today time.Time) ([]bank.BloodUnit, error)
	// SetQuantity persists a reduced (still positive) quantity.
	SetQuantity(ctx context.Context, id uuid.UUID, quantityML int) error
	// Delete removes a fully consumed unit.
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByDonor returns a donor's contribution history, newest first.
	ListByDonor(ctx context.Context, donorID string) ([]bank.BloodUnit, error)
}
