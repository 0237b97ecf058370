// Package service composes eligibility, allocation, inventory, and the
// request ledger into the two units of work the transport exposes: donating
// and requesting blood. Each unit of work runs inside one Tx boundary so its
// reads and writes commit or roll back together.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bloodbank/internal/bank"
	"bloodbank/internal/bank/metrics"
	"bloodbank/internal/bank/service/allocation"
	"bloodbank/internal/bank/service/eligibility"
	"bloodbank/internal/bank/store/inventory"
	"bloodbank/internal/bank/store/ledger"
	"bloodbank/internal/bank/store/person"
	dErrors "bloodbank/pkg/domain-errors"
	audit "bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/sentinel"
)

type Clock func() time.Time

type Service struct {
	inventory   inventory.Store
	ledger      ledger.Store
	donors      person.DonorStore
	recipients  person.RecipientStore
	eligibility *eligibility.Service
	allocation  *allocation.Service
	tx          Tx
	clock       Clock
	logger      *slog.Logger
	metrics     *metrics.Metrics
	auditInbox  chan<- audit.Event
}

type Option func(*Service)

func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAudit attaches the audit inbox. Emission is best effort: a full inbox
// drops the event with a warning rather than stalling the unit of work.
func WithAudit(inbox chan<- audit.Event) Option {
	return func(s *Service) {
		s.auditInbox = inbox
	}
}

func New(
	inventoryStore inventory.Store,
	ledgerStore ledger.Store,
	donors person.DonorStore,
	recipients person.RecipientStore,
	eligibilitySvc *eligibility.Service,
	allocationSvc *allocation.Service,
	boundary Tx,
	opts ...Option,
) *Service {
	s := &Service{
		inventory:   inventoryStore,
		ledger:      ledgerStore,
		donors:      donors,
		recipients:  recipients,
		eligibility: eligibilitySvc,
		allocation:  allocationSvc,
		tx:          boundary,
		clock:       time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// DonationResult reports the outcome of a donation attempt. Ineligibility is
// an outcome, not an error: Eligible is false and NextEligibleDate says when
// the donor may try again.
type DonationResult struct {
	Eligible         bool
	NextEligibleDate time.Time
	Unit             bank.BloodUnit
}

// RequestResult mirrors DonationResult for the requesting side. When the
// recipient is eligible, Request holds the ledger row, whose status is
// fulfilled or pending depending on availability.
type RequestResult struct {
	Eligible         bool
	NextEligibleDate time.Time
	Request          bank.BloodRequest
}

// Donate runs the donation unit of work: eligibility gate, unit insertion
// with the fixed shelf life, and the donor's last-donation-date update, all
// inside one transaction keyed by the donor's blood type.
func (s *Service) Donate(ctx context.Context, donorID string, quantityML int) (DonationResult, error) {
	if quantityML <= 0 {
		return DonationResult{}, dErrors.New(dErrors.CodeBadRequest, "quantity must be a positive integer")
	}
	donor, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return DonationResult{}, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return DonationResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up donor")
	}

	var result DonationResult
	err = s.tx.RunInTx(ctx, string(donor.BloodType), func(ctx context.Context) error {
		ok, err := s.eligibility.CanDonate(ctx, donorID)
		if err != nil {
			return err
		}
		if !ok {
			next, err := s.eligibility.NextDonationDate(ctx, donorID)
			if err != nil {
				return err
			}
			result = DonationResult{Eligible: false, NextEligibleDate: next}
			return nil
		}

		unit := bank.NewBloodUnit(donor.BloodType, quantityML, donorID, s.clock())
		if err := s.inventory.Add(ctx, unit); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "add blood unit")
		}
		if err := s.donors.SetLastDonationDate(ctx, donorID, s.clock()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update last donation date")
		}
		result = DonationResult{Eligible: true, Unit: unit}
		return nil
	})
	if err != nil {
		return DonationResult{}, err
	}

	if result.Eligible {
		if s.metrics != nil {
			s.metrics.IncrementDonations()
			s.metrics.AddInventory(string(donor.BloodType), quantityML)
		}
		s.emit(ctx, audit.Event{
			Category:   audit.CategoryCompliance,
			ActorID:    donorID,
			Action:     audit.ActionDonationRecorded,
			BloodType:  string(donor.BloodType),
			QuantityML: quantityML,
		})
	} else {
		s.emit(ctx, audit.Event{
			Category:  audit.CategoryOperations,
			ActorID:   donorID,
			Action:    audit.ActionDonationDeferred,
			BloodType: string(donor.BloodType),
		})
	}
	return result, nil
}

// Request runs the request unit of work: eligibility gate, availability
// check, ledger append, last-request-date update, and — only when stock
// suffices — FIFO fulfillment. The availability check and the fulfillment
// share one transaction keyed by blood type, closing the check-then-act race.
// A pending outcome leaves inventory untouched but still stamps the
// recipient's last request date.
func (s *Service) Request(ctx context.Context, recipientID string, quantityML int) (RequestResult, error) {
	if quantityML <= 0 {
		return RequestResult{}, dErrors.New(dErrors.CodeBadRequest, "quantity must be a positive integer")
	}
	recipient, err := s.recipients.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return RequestResult{}, dErrors.New(dErrors.CodeNotFound, "recipient not found")
		}
		return RequestResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up recipient")
	}

	var result RequestResult
	err = s.tx.RunInTx(ctx, string(recipient.BloodType), func(ctx context.Context) error {
		ok, err := s.eligibility.CanRequest(ctx, recipientID)
		if err != nil {
			return err
		}
		if !ok {
			next, err := s.eligibility.NextRequestDate(ctx, recipientID)
			if err != nil {
				return err
			}
			result = RequestResult{Eligible: false, NextEligibleDate: next}
			return nil
		}

		available, err := s.allocation.IsAvailable(ctx, recipient.BloodType, quantityML)
		if err != nil {
			return err
		}

		status := bank.StatusPending
		if available {
			status = bank.StatusFulfilled
		}
		request := bank.BloodRequest{
			ID:          uuid.New(),
			BloodType:   recipient.BloodType,
			QuantityML:  quantityML,
			RecipientID: &recipientID,
			RequestDate: bank.Date(s.clock()),
			Status:      status,
		}
		if err := s.ledger.Append(ctx, request); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "append request to ledger")
		}
		if err := s.recipients.SetLastRequestDate(ctx, recipientID, s.clock()); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "update last request date")
		}
		if available {
			if err := s.allocation.Fulfill(ctx, recipient.BloodType, quantityML); err != nil {
				return err
			}
		}
		result = RequestResult{Eligible: true, Request: request}
		return nil
	})
	if err != nil {
		return RequestResult{}, err
	}

	if result.Eligible {
		if s.metrics != nil {
			s.metrics.IncrementRequests(string(result.Request.Status))
			if result.Request.Status == bank.StatusFulfilled {
				s.metrics.SubInventory(string(recipient.BloodType), quantityML)
			}
		}
		action := audit.ActionRequestPending
		if result.Request.Status == bank.StatusFulfilled {
			action = audit.ActionRequestFulfilled
		}
		s.emit(ctx, audit.Event{
			Category:   audit.CategoryCompliance,
			ActorID:    recipientID,
			Action:     action,
			BloodType:  string(recipient.BloodType),
			QuantityML: quantityML,
			Status:     string(result.Request.Status),
		})
	} else {
		s.emit(ctx, audit.Event{
			Category:  audit.CategoryOperations,
			ActorID:   recipientID,
			Action:    audit.ActionRequestDeferred,
			BloodType: string(recipient.BloodType),
		})
	}
	return result, nil
}

// Availability reports the non-expired stock of one blood type.
func (s *Service) Availability(ctx context.Context, bloodType bank.BloodType) (int, error) {
	total, err := s.inventory.AvailableQuantity(ctx, bloodType, s.clock())
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "sum available inventory")
	}
	return total, nil
}

// DonationHistory lists a donor's contributed units, newest first.
func (s *Service) DonationHistory(ctx context.Context, donorID string) ([]bank.BloodUnit, error) {
	if _, err := s.donors.FindByID(ctx, donorID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up donor")
	}
	units, err := s.inventory.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list donation history")
	}
	return units, nil
}

// RequestHistory lists a recipient's ledger rows, newest first.
func (s *Service) RequestHistory(ctx context.Context, recipientID string) ([]bank.BloodRequest, error) {
	if _, err := s.recipients.FindByID(ctx, recipientID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "recipient not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up recipient")
	}
	requests, err := s.ledger.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list request history")
	}
	return requests, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditInbox == nil {
		return
	}
	event.Timestamp = s.clock()
	select {
	case s.auditInbox <- event:
	default:
		s.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", string(event.Action),
			"actor_id", event.ActorID,
		)
	}
}
