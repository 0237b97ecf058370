// Package ledger is the append-only record of blood requests. Rows are
// immutable: a request's status is fixed at creation and never re-evaluated
// when new inventory arrives.
package ledger

import (
	"context"

	"bloodbank/internal/bank"
)

type Store interface {
	Append(ctx context.Context, request bank.BloodRequest) error
	// ListByRecipient returns a recipient's requests, newest first.
	ListByRecipient(ctx context.Context, recipientID string) ([]bank.BloodRequest, error)
}
