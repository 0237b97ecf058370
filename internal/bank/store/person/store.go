// Package person reads and updates the donor/recipient fields this core is
// allowed to touch. Full identity records (names, credentials, contact data)
// are owned by the surrounding account layer.
package person

import (
	"context"
	"time"

	"bloodbank/internal/bank"
)

type DonorStore interface {
	FindByID(ctx context.Context, id string) (bank.Donor, error)
	Save(ctx context.Context, donor bank.Donor) error
	// SetLastDonationDate is called exactly once per successful donation.
	SetLastDonationDate(ctx context.Context, id string, date time.Time) error
}

type RecipientStore interface {
	FindByID(ctx context.Context, id string) (bank.Recipient, error)
	Save(ctx context.Context, recipient bank.Recipient) error
	// SetLastRequestDate is updated on every submitted request, fulfilled
	// or pending alike.
	SetLastRequestDate(ctx context.Context, id string, date time.Time) error
}
