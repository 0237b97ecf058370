package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bloodbank/internal/bank"
	"bloodbank/internal/bank/service/allocation"
	"bloodbank/internal/bank/service/eligibility"
	"bloodbank/internal/bank/store/inventory"
	"bloodbank/internal/bank/store/ledger"
	"bloodbank/internal/bank/store/person"
	dErrors "bloodbank/pkg/domain-errors"
	audit "bloodbank/pkg/platform/audit"
)

var today = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	svc        *Service
	inventory  *inventory.InMemoryStore
	ledger     *ledger.InMemoryStore
	donors     *person.InMemoryDonorStore
	recipients *person.InMemoryRecipientStore
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.inventory = inventory.NewInMemoryStore()
	s.ledger = ledger.NewInMemoryStore()
	s.donors = person.NewInMemoryDonorStore()
	s.recipients = person.NewInMemoryRecipientStore()

	clock := func() time.Time { return today }
	s.svc = New(
		s.inventory,
		s.ledger,
		s.donors,
		s.recipients,
		eligibility.New(s.donors, s.recipients, eligibility.WithClock(clock)),
		allocation.New(s.inventory, allocation.WithClock(clock)),
		NewShardedTx(),
		WithClock(clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *ServiceSuite) seedDonor(id string, bloodType bank.BloodType, lastDonation *time.Time) {
	s.Require().NoError(s.donors.Save(s.ctx, bank.Donor{
		ID:               id,
		BloodType:        bloodType,
		LastDonationDate: lastDonation,
	}))
}

func (s *ServiceSuite) seedRecipient(id string, bloodType bank.BloodType, lastRequest *time.Time) {
	s.Require().NoError(s.recipients.Save(s.ctx, bank.Recipient{
		ID:              id,
		BloodType:       bloodType,
		LastRequestDate: lastRequest,
	}))
}

func (s *ServiceSuite) availability(bloodType bank.BloodType) int {
	total, err := s.svc.Availability(s.ctx, bloodType)
	s.Require().NoError(err)
	return total
}

func (s *ServiceSuite) TestDonateAddsUnitAndStampsDonor() {
	s.seedDonor("donor-1", bank.BloodTypeOPos, nil)

	result, err := s.svc.Donate(s.ctx, "donor-1", 450)
	s.Require().NoError(err)
	s.True(result.Eligible)
	s.Equal(bank.BloodTypeOPos, result.Unit.BloodType)
	s.Equal(450, result.Unit.QuantityML)
	s.Equal(bank.Date(today), result.Unit.CollectionDate)
	s.Equal(bank.Date(today).AddDate(0, 0, bank.ShelfLifeDays), result.Unit.ExpiryDate)

	s.Equal(450, s.availability(bank.BloodTypeOPos))

	donor, err := s.donors.FindByID(s.ctx, "donor-1")
	s.Require().NoError(err)
	s.Require().NotNil(donor.LastDonationDate)
	s.Equal(bank.Date(today), bank.Date(*donor.LastDonationDate))
}

func (s *ServiceSuite) TestDonateWithinCooldownIsDeferred() {
	last := today.AddDate(0, 0, -(bank.DonationCooldownDays - 1))
	s.seedDonor("donor-1", bank.BloodTypeAPos, &last)

	result, err := s.svc.Donate(s.ctx, "donor-1", 450)
	s.Require().NoError(err)
	s.False(result.Eligible)
	s.Equal(bank.Date(last).AddDate(0, 0, bank.DonationCooldownDays), result.NextEligibleDate)

	s.Zero(s.availability(bank.BloodTypeAPos), "a deferred donation must not touch inventory")
	donor, err := s.donors.FindByID(s.ctx, "donor-1")
	s.Require().NoError(err)
	s.Equal(bank.Date(last), bank.Date(*donor.LastDonationDate), "deferral must not advance the donation date")
}

func (s *ServiceSuite) TestDonateUnknownDonor() {
	_, err := s.svc.Donate(s.ctx, "ghost", 450)
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestDonateRejectsNonPositiveQuantity() {
	s.seedDonor("donor-1", bank.BloodTypeOPos, nil)
	for _, qty := range []int{0, -100} {
		_, err := s.svc.Donate(s.ctx, "donor-1", qty)
		s.Require().Error(err)
		s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
	}
}

func (s *ServiceSuite) TestRequestFulfilledConsumesInventory() {
	s.seedDonor("donor-1", bank.BloodTypeBNeg, nil)
	s.seedRecipient("recipient-1", bank.BloodTypeBNeg, nil)
	_, err := s.svc.Donate(s.ctx, "donor-1", 500)
	s.Require().NoError(err)

	result, err := s.svc.Request(s.ctx, "recipient-1", 300)
	s.Require().NoError(err)
	s.True(result.Eligible)
	s.Equal(bank.StatusFulfilled, result.Request.Status)
	s.Equal(300, result.Request.QuantityML)
	s.Equal(200, s.availability(bank.BloodTypeBNeg))

	recipient, err := s.recipients.FindByID(s.ctx, "recipient-1")
	s.Require().NoError(err)
	s.Require().NotNil(recipient.LastRequestDate)
	s.Equal(bank.Date(today), bank.Date(*recipient.LastRequestDate))
}

func (s *ServiceSuite) TestRequestShortStockGoesPending() {
	s.seedDonor("donor-1", bank.BloodTypeBNeg, nil)
	s.seedRecipient("recipient-1", bank.BloodTypeBNeg, nil)
	_, err := s.svc.Donate(s.ctx, "donor-1", 300)
	s.Require().NoError(err)

	result, err := s.svc.Request(s.ctx, "recipient-1", 500)
	s.Require().NoError(err)
	s.True(result.Eligible)
	s.Equal(bank.StatusPending, result.Request.Status)
	s.Equal(300, s.availability(bank.BloodTypeBNeg), "a pending request leaves inventory untouched")

	recipient, err := s.recipients.FindByID(s.ctx, "recipient-1")
	s.Require().NoError(err)
	s.Require().NotNil(recipient.LastRequestDate, "the request date is stamped even when pending")
}

func (s *ServiceSuite) TestRequestWithinCooldownIsDeferred() {
	last := today.AddDate(0, 0, -(bank.RequestCooldownDays - 1))
	s.seedDonor("donor-1", bank.BloodTypeAPos, nil)
	s.seedRecipient("recipient-1", bank.BloodTypeAPos, &last)
	_, err := s.svc.Donate(s.ctx, "donor-1", 500)
	s.Require().NoError(err)

	result, err := s.svc.Request(s.ctx, "recipient-1", 100)
	s.Require().NoError(err)
	s.False(result.Eligible)
	s.Equal(bank.Date(last).AddDate(0, 0, bank.RequestCooldownDays), result.NextEligibleDate)
	s.Equal(500, s.availability(bank.BloodTypeAPos))

	history, err := s.svc.RequestHistory(s.ctx, "recipient-1")
	s.Require().NoError(err)
	s.Empty(history, "a deferred request writes no ledger row")
}

func (s *ServiceSuite) TestRequestUnknownRecipient() {
	_, err := s.svc.Request(s.ctx, "ghost", 100)
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestConcurrentRequestsForLastUnit() {
	s.seedDonor("donor-1", bank.BloodTypeONeg, nil)
	s.Require().NoError(s.recipients.Save(s.ctx, bank.Recipient{ID: "recipient-1", BloodType: bank.BloodTypeONeg}))
	s.Require().NoError(s.recipients.Save(s.ctx, bank.Recipient{ID: "recipient-2", BloodType: bank.BloodTypeONeg}))
	_, err := s.svc.Donate(s.ctx, "donor-1", 400)
	s.Require().NoError(err)

	results := make([]RequestResult, 2)
	var wg sync.WaitGroup
	for i, id := range []string{"recipient-1", "recipient-2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			result, err := s.svc.Request(s.ctx, id, 400)
			s.NoError(err)
			results[i] = result
		}(i, id)
	}
	wg.Wait()

	fulfilled := 0
	for _, result := range results {
		s.True(result.Eligible)
		if result.Request.Status == bank.StatusFulfilled {
			fulfilled++
		}
	}
	s.Equal(1, fulfilled, "exactly one request may win the last unit")
	s.Zero(s.availability(bank.BloodTypeONeg))
}

func (s *ServiceSuite) TestConservationAcrossMixedTraffic() {
	s.seedDonor("donor-1", bank.BloodTypeAPos, nil)
	s.seedRecipient("recipient-1", bank.BloodTypeAPos, nil)
	_, err := s.svc.Donate(s.ctx, "donor-1", 1000)
	s.Require().NoError(err)

	result, err := s.svc.Request(s.ctx, "recipient-1", 350)
	s.Require().NoError(err)
	s.Equal(bank.StatusFulfilled, result.Request.Status)

	s.Equal(1000-350, s.availability(bank.BloodTypeAPos))
}

func (s *ServiceSuite) TestHistories() {
	s.seedDonor("donor-1", bank.BloodTypeOPos, nil)
	s.seedRecipient("recipient-1", bank.BloodTypeOPos, nil)
	_, err := s.svc.Donate(s.ctx, "donor-1", 450)
	s.Require().NoError(err)
	_, err = s.svc.Request(s.ctx, "recipient-1", 100)
	s.Require().NoError(err)

	units, err := s.svc.DonationHistory(s.ctx, "donor-1")
	s.Require().NoError(err)
	s.Require().Len(units, 1)
	s.Equal(450, units[0].QuantityML)

	requests, err := s.svc.RequestHistory(s.ctx, "recipient-1")
	s.Require().NoError(err)
	s.Require().Len(requests, 1)
	s.Equal(bank.StatusFulfilled, requests[0].Status)

	_, err = s.svc.DonationHistory(s.ctx, "ghost")
	s.Require().Error(err)
	s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestAuditEventsEmitted() {
	inbox := make(chan audit.Event, 4)
	WithAudit(inbox)(s.svc)

	s.seedDonor("donor-1", bank.BloodTypeOPos, nil)
	s.seedRecipient("recipient-1", bank.BloodTypeOPos, nil)

	_, err := s.svc.Donate(s.ctx, "donor-1", 450)
	s.Require().NoError(err)
	_, err = s.svc.Request(s.ctx, "recipient-1", 450)
	s.Require().NoError(err)

	s.Require().Len(inbox, 2)
	first := <-inbox
	s.Equal(audit.ActionDonationRecorded, first.Action)
	s.Equal("donor-1", first.ActorID)
	s.Equal(today, first.Timestamp)

	second := <-inbox
	s.Equal(audit.ActionRequestFulfilled, second.Action)
	s.Equal(string(bank.StatusFulfilled), second.Status)
}
