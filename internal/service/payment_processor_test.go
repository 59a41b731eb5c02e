package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flexprice/paycycle/internal/domain/account"
	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/domain/subscription"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/processor"
	"github.com/flexprice/paycycle/internal/testutil"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type unreachableProcessor struct {
	provider types.PaymentProvider
}

func (p *unreachableProcessor) Provider() types.PaymentProvider {
	return p.provider
}

func (p *unreachableProcessor) Charge(ctx context.Context, req *processor.ChargeRequest) (*processor.ChargeResult, error) {
	return nil, errors.New("connection refused")
}

// flakyProcessor times out once and then approves, recording every key it sees
type flakyProcessor struct {
	provider types.PaymentProvider
	keys     []string
}

func (p *flakyProcessor) Provider() types.PaymentProvider {
	return p.provider
}

func (p *flakyProcessor) Charge(ctx context.Context, req *processor.ChargeRequest) (*processor.ChargeResult, error) {
	p.keys = append(p.keys, req.IdempotencyKey)
	if len(p.keys) == 1 {
		return nil, errors.New("read timeout")
	}
	return &processor.ChargeResult{Code: types.PaymentStatusCodeSuccess, TransactionID: "txn_flaky"}, nil
}

type PaymentProcessorServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PaymentProcessorService
	testData struct {
		account *account.CustomerAccount
		sub     *subscription.Subscription
		cycle   *billingcycle.BillingCycle
		amount  decimal.Decimal
	}
}

func TestPaymentProcessorService(t *testing.T) {
	suite.Run(t, new(PaymentProcessorServiceSuite))
}

func (s *PaymentProcessorServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPaymentProcessorService(newTestServiceParams(&s.BaseServiceTestSuite))

	now := s.GetNow()
	s.testData.amount = decimal.NewFromFloat(11.99)
	s.testData.account = s.CreateAccount("cust_process")
	s.testData.sub, s.testData.cycle = s.CreateSubscription(
		s.testData.account,
		types.SubscriptionStatusPaymentFailed,
		types.BillingCycleStatusUnpaid,
		now.AddDate(0, 0, -40),
		now.AddDate(0, 0, -10),
	)
}

func (s *PaymentProcessorServiceSuite) newPayment(track types.PaymentTrack) *payment.Payment {
	return s.CreatePayment(s.testData.sub, s.testData.amount, track, s.GetNow())
}

func (s *PaymentProcessorServiceSuite) TestSuccessfulPayment() {
	s.CreateCard("cust_process", types.CardFundingTypeDebit, true, types.PaymentProvider1, types.PaymentProvider3)
	p := s.newPayment(types.PaymentTrackBankCard)

	result, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusCodeSuccess, result.Code)
	s.Nil(result.Retry)
	s.False(result.RetryStopped)
	s.Equal(1, s.GetSimulated(types.PaymentProvider1).Calls())
	s.Equal(0, s.GetSimulated(types.PaymentProvider3).Calls())

	stored, err := s.GetStores().PaymentRepo.Get(s.GetContext(), p.ID)
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusPaid, stored.Status)
	s.Equal(types.PaymentStatusCodeSuccess, stored.StatusCode())
	s.NotEmpty(lo.FromPtr(stored.ProcessorTransactionID))
	s.Equal(s.GetNow(), lo.FromPtr(stored.ProcessedAt))

	bc, err := s.GetStores().BillingCycleRepo.Get(s.GetContext(), s.testData.cycle.ID)
	s.Require().NoError(err)
	s.Equal(types.BillingCycleStatusPaid, bc.Status)
	s.Equal(s.GetNow(), lo.FromPtr(bc.PaymentDate))
	s.True(s.testData.amount.Equal(bc.PaymentAmount))

	acct, err := s.GetStores().AccountRepo.Get(s.GetContext(), s.testData.account.ID)
	s.Require().NoError(err)
	s.Require().NotNil(acct.LastSuccessfulPaymentAmount)
	s.True(s.testData.amount.Equal(*acct.LastSuccessfulPaymentAmount))
	s.True(acct.Balance.IsZero())

	events := s.GetPublisher().EventsNamed(types.EventPaymentProcessed)
	s.Require().Len(events, 1)
	s.Equal(p.ID, events[0].EntityID)
}

func (s *PaymentProcessorServiceSuite) TestAlreadyPaidIsNoop() {
	s.CreateCard("cust_process", types.CardFundingTypeDebit, true, types.PaymentProvider1)
	p := s.newPayment(types.PaymentTrackBankCard)

	_, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().NoError(err)

	result, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow().Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusCodeSuccess, result.Code)
	s.Equal(1, s.GetSimulated(types.PaymentProvider1).Calls())
	s.Len(s.GetPublisher().EventsNamed(types.EventPaymentProcessed), 1)
}

func (s *PaymentProcessorServiceSuite) TestProcessingOutcomeLeavesPaymentPending() {
	s.CreateCard("cust_process", types.CardFundingTypeDebit, true, types.PaymentProvider1)
	s.GetSimulated(types.PaymentProvider1).Respond(types.PaymentStatusCodeSentToProcessor)
	p := s.newPayment(types.PaymentTrackBankCard)

	result, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusCodeSentToProcessor, result.Code)
	s.Equal(types.PaymentStatusPending, result.Payment.Status)
	s.Nil(result.Retry)

	bc, err := s.GetStores().BillingCycleRepo.Get(s.GetContext(), s.testData.cycle.ID)
	s.Require().NoError(err)
	s.Equal(types.BillingCycleStatusUnpaid, bc.Status)
}

func (s *PaymentProcessorServiceSuite) TestFailedPaymentSchedulesRetry() {
	s.CreateCard("cust_process", types.CardFundingTypeDebit, true, types.PaymentProvider1)
	s.GetSimulated(types.PaymentProvider1).Respond(types.PaymentStatusCodeNSF)
	p := s.newPayment(types.PaymentTrackBankCard)

	result, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusCodeNSF, result.Code)
	s.Equal(types.PaymentStatusFailed, result.Payment.Status)
	s.Require().NotNil(result.Retry)
	s.Equal(types.RetryActionRescheduleNextFriday, result.Retry.Action)
	s.Require().NotNil(result.Retry.ScheduledPayment)
	s.Equal(time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC), result.Retry.ScheduledPayment.Date)
	s.Equal(p.ID, lo.FromPtr(result.Retry.ScheduledPayment.RetryPrevPaymentID))

	acct, err := s.GetStores().AccountRepo.Get(s.GetContext(), s.testData.account.ID)
	s.Require().NoError(err)
	s.Equal(1, acct.NSFCount)
	s.NotNil(acct.LastFailedPaymentDate)

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), s.testData.sub.ID)
	s.Require().NoError(err)
	s.Equal(1, sub.PaymentFailureCnt)
}

func (s *PaymentProcessorServiceSuite) TestRetryChainSettles() {
	s.CreateCard("cust_process", types.CardFundingTypeDebit, true, types.PaymentProvider1)
	s.GetSimulated(types.PaymentProvider1).Respond(types.PaymentStatusCodeExternalFailure)
	p := s.newPayment(types.PaymentTrackBankCard)

	first, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().NoError(err)
	s.Require().NotNil(first.Retry)
	s.Equal(types.RetryActionImmediateRetry, first.Retry.Action)
	retryID := first.Retry.ScheduledPayment.ID

	s.GetSimulated(types.PaymentProvider1).Respond(types.PaymentStatusCodeSuccess)
	second, err := s.service.ProcessPayment(s.GetContext(), retryID, s.GetNow())
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusCodeSuccess, second.Code)

	chain, err := s.GetPaymentStore().Chain(s.GetContext(), retryID)
	s.Require().NoError(err)
	s.Require().Len(chain, 2)
	s.Equal(types.PaymentStatusFailed, chain[0].Status)
	s.Equal(types.PaymentStatusPaid, chain[1].Status)
	s.Equal(types.PaymentTrackAnyCard, chain[1].Track)

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), s.testData.sub.ID)
	s.Require().NoError(err)
	s.Equal(0, sub.PaymentFailureCnt)
}

func (s *PaymentProcessorServiceSuite) TestNoMethodRaisesAlert() {
	p := s.newPayment(types.PaymentTrackBankCard)

	result, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusCodeNoValidBankCard, result.Code)
	s.Require().NotNil(result.Retry)
	s.True(result.Retry.AlertRequired)
	s.Len(s.GetPublisher().EventsNamed(types.EventPaymentRetryAlert), 1)
	for _, provider := range types.PaymentProviders {
		s.Equal(0, s.GetSimulated(provider).Calls())
	}
}

func (s *PaymentProcessorServiceSuite) TestNoAnyCardStopsRetryChain() {
	p := s.newPayment(types.PaymentTrackAnyCard)

	result, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().NoError(err)
	s.True(result.RetryStopped)
	s.Nil(result.Retry)
	s.Equal(types.PaymentStatusCodeNoValidAnyCard, result.Code)

	stored, err := s.GetStores().PaymentRepo.Get(s.GetContext(), p.ID)
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusFailed, stored.Status)
	s.Len(s.GetPublisher().EventsNamed(types.EventPaymentRetryStopped), 1)
}

func (s *PaymentProcessorServiceSuite) TestOnlyScheduledPaymentsAreProcessed() {
	p := s.newPayment(types.PaymentTrackBankCard)
	p.SetOutcome(types.PaymentStatusCodeNSF, s.GetNow())
	s.Require().NoError(s.GetStores().PaymentRepo.Update(s.GetContext(), p))

	result, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Nil(result)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))

	_, err = s.service.ProcessPayment(s.GetContext(), "pay_missing", s.GetNow())
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentProcessorServiceSuite) TestChargeErrorLeavesPaymentScheduled() {
	s.GetProcessors().Register(&unreachableProcessor{provider: types.PaymentProvider1})
	s.CreateCard("cust_process", types.CardFundingTypeDebit, true, types.PaymentProvider1)
	p := s.newPayment(types.PaymentTrackBankCard)

	result, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Nil(result)
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrProcessor))

	stored, err := s.GetStores().PaymentRepo.Get(s.GetContext(), p.ID)
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusScheduled, stored.Status)
	s.Nil(stored.Code)
	s.Empty(s.GetPublisher().EventsNamed(types.EventPaymentProcessed))
}

func (s *PaymentProcessorServiceSuite) subscriptionFor(customerID string) *subscription.Subscription {
	now := s.GetNow()
	acct := s.CreateAccount(customerID)
	sub, _ := s.CreateSubscription(acct, types.SubscriptionStatusPaymentFailed, types.BillingCycleStatusUnpaid,
		now.AddDate(0, 0, -40), now.AddDate(0, 0, -10))
	return sub
}

func (s *PaymentProcessorServiceSuite) TestProcessDuePayments() {
	now := s.GetNow()

	s.CreateCard("cust_due_paid", types.CardFundingTypeDebit, true, types.PaymentProvider1)
	paid := s.CreatePayment(s.subscriptionFor("cust_due_paid"), s.testData.amount, types.PaymentTrackBankCard, now.Add(-time.Hour))

	s.CreateCard("cust_due_nsf", types.CardFundingTypeDebit, true, types.PaymentProvider3)
	s.GetSimulated(types.PaymentProvider3).Respond(types.PaymentStatusCodeNSF)
	nsf := s.CreatePayment(s.subscriptionFor("cust_due_nsf"), s.testData.amount, types.PaymentTrackBankCard, now.AddDate(0, 0, -1))

	noMethod := s.CreatePayment(s.subscriptionFor("cust_due_nomethod"), s.testData.amount, types.PaymentTrackBankCard, now)
	future := s.CreatePayment(s.subscriptionFor("cust_due_later"), s.testData.amount, types.PaymentTrackBankCard, now.AddDate(0, 0, 1))

	result, err := s.service.ProcessDuePayments(s.GetContext(), now)
	s.Require().NoError(err)
	s.NotEmpty(result.RunID)
	s.Equal(3, result.Attempted)
	s.Equal(1, result.Paid)
	s.Equal(2, result.Failed)
	s.Equal(1, result.RetriesScheduled)
	s.Empty(result.Errors)

	statusOf := func(id string) types.PaymentStatus {
		p, err := s.GetStores().PaymentRepo.Get(s.GetContext(), id)
		s.Require().NoError(err)
		return p.Status
	}
	s.Equal(types.PaymentStatusPaid, statusOf(paid.ID))
	s.Equal(types.PaymentStatusFailed, statusOf(nsf.ID))
	s.Equal(types.PaymentStatusFailed, statusOf(noMethod.ID))
	s.Equal(types.PaymentStatusScheduled, statusOf(future.ID))

	// the NSF retry is dated on a later Friday, nothing else is due yet
	result, err = s.service.ProcessDuePayments(s.GetContext(), now)
	s.Require().NoError(err)
	s.Equal(0, result.Attempted)
}

func (s *PaymentProcessorServiceSuite) TestConcurrentAttemptIsRefused() {
	s.CreateCard("cust_process", types.CardFundingTypeDebit, true, types.PaymentProvider1)
	sim := s.GetSimulated(types.PaymentProvider1)
	sim.SetDelay(300 * time.Millisecond)
	p := s.newPayment(types.PaymentTrackBankCard)

	done := make(chan error, 1)
	go func() {
		_, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
		done <- err
	}()

	s.Eventually(func() bool { return sim.Calls() == 1 }, time.Second, time.Millisecond)

	_, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().Error(err)
	s.True(ierr.IsLockNotAcquired(err))

	s.Require().NoError(<-done)
	s.Equal(1, sim.Calls())

	stored, err := s.GetStores().PaymentRepo.Get(s.GetContext(), p.ID)
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusPaid, stored.Status)
}

func (s *PaymentProcessorServiceSuite) TestChargeRetriedWithSameIdempotencyKey() {
	flaky := &flakyProcessor{provider: types.PaymentProvider1}
	s.GetProcessors().Register(flaky)
	s.CreateCard("cust_process", types.CardFundingTypeDebit, true, types.PaymentProvider1)
	p := s.newPayment(types.PaymentTrackBankCard)

	_, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrProcessor))

	stored, err := s.GetStores().PaymentRepo.Get(s.GetContext(), p.ID)
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusScheduled, stored.Status)

	result, err := s.service.ProcessPayment(s.GetContext(), p.ID, s.GetNow())
	s.Require().NoError(err)
	s.Equal(types.PaymentStatusCodeSuccess, result.Code)

	s.Require().Len(flaky.keys, 2)
	s.NotEmpty(flaky.keys[0])
	s.Equal(flaky.keys[0], flaky.keys[1])
}
