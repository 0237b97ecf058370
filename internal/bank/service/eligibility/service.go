// Package eligibility answers whether a donor or recipient may act today.
// Pure reads: the checks never mutate stored state.
package eligibility

import (
	"context"
	"errors"
	"time"

	"bloodbank/internal/bank"
	"bloodbank/internal/bank/store/person"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
)

// Clock supplies "today". Injected for testability; defaults to time.Now.
type Clock func() time.Time

type Service struct {
	donors     person.DonorStore
	recipients person.RecipientStore
	clock      Clock
}

// Option configures a Service instance.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func New(donors person.DonorStore, recipients person.RecipientStore, opts ...Option) *Service {
	s := &Service{
		donors:     donors,
		recipients: recipients,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CanDonate reports whether donorID may donate today: never donated, or at
// least the cooldown's worth of whole days has elapsed (boundary inclusive).
// An unknown donor fails closed with a not-found error.
func (s *Service) CanDonate(ctx context.Context, donorID string) (bool, error) {
	donor, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "look up donor")
	}
	return eligible(donor.LastDonationDate, bank.DonationCooldownDays, s.clock()), nil
}

// CanRequest mirrors CanDonate with the recipient cooldown.
func (s *Service) CanRequest(ctx context.Context, recipientID string) (bool, error) {
	recipient, err := s.recipients.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "recipient not found")
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "look up recipient")
	}
	return eligible(recipient.LastRequestDate, bank.RequestCooldownDays, s.clock()), nil
}

// NextDonationDate returns the first day donorID becomes eligible again. The
// zero time means eligible now.
func (s *Service) NextDonationDate(ctx context.Context, donorID string) (time.Time, error) {
	donor, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return time.Time{}, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up donor")
	}
	return nextEligible(donor.LastDonationDate, bank.DonationCooldownDays, s.clock()), nil
}

// NextRequestDate mirrors NextDonationDate for recipients.
func (s *Service) NextRequestDate(ctx context.Context, recipientID string) (time.Time, error) {
	recipient, err := s.recipients.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return time.Time{}, dErrors.New(dErrors.CodeNotFound, "recipient not found")
		}
		return time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up recipient")
	}
	return nextEligible(recipient.LastRequestDate, bank.RequestCooldownDays, s.clock()), nil
}

func eligible(lastDate *time.Time, cooldownDays int, now time.Time) bool {
	if lastDate == nil {
		return true
	}
	return bank.DaysBetween(*lastDate, now) >= cooldownDays
}

func nextEligible(lastDate *time.Time, cooldownDays int, now time.Time) time.Time {
	if eligible(lastDate, cooldownDays, now) {
		return time.Time{}
	}
	return bank.Date(*lastDate).AddDate(0, 0, cooldownDays)
}
