package service

import (
	"testing"
	"time"

	"github.com/flexprice/paycycle/internal/domain/account"
	"github.com/flexprice/paycycle/internal/domain/subscription"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/testutil"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *SubscriptionServiceSuite) storedSubscription(id string) *subscription.Subscription {
	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return sub
}

func (s *SubscriptionServiceSuite) storedAccount(id string) *account.CustomerAccount {
	acct, err := s.GetStores().AccountRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return acct
}

func (s *SubscriptionServiceSuite) TestStartTrial() {
	now := s.GetNow()

	result, err := s.service.StartTrial(s.GetContext(), "cust_new", now)
	s.Require().NoError(err)
	s.Require().NotNil(result.Subscription)
	s.Require().NotNil(result.BillingCycle)
	s.Require().NotNil(result.Account)

	sub := s.storedSubscription(result.Subscription.ID)
	s.Equal(types.SubscriptionStatusTrial, sub.Status)
	s.Equal(result.BillingCycle.ID, lo.FromPtr(sub.CurrentBillingCycleID))
	s.Equal(result.Account.ID, sub.AccountID)
	s.True(s.GetConfig().Aging.CycleAmount.Equal(sub.Amount))

	s.Equal(now, result.BillingCycle.StartDate)
	s.Equal(now.AddDate(0, 0, s.GetConfig().Aging.TrialDays), result.BillingCycle.EndDate)
	s.Equal(types.BillingCycleStatusTrial, result.BillingCycle.Status)
	s.True(result.BillingCycle.PaymentAmount.IsZero())

	acct := s.storedAccount(result.Account.ID)
	s.Equal(types.BillingAccountStatusOpen, acct.Status)
	s.Equal(types.BillingAccountRatingNew, acct.Rating)
	s.True(acct.Balance.IsZero())
}

func (s *SubscriptionServiceSuite) TestStartTrialValidation() {
	_, err := s.service.StartTrial(s.GetContext(), "", s.GetNow())
	s.Require().Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.StartTrial(s.GetContext(), "cust_twice", s.GetNow())
	s.Require().NoError(err)
	_, err = s.service.StartTrial(s.GetContext(), "cust_twice", s.GetNow())
	s.Require().Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *SubscriptionServiceSuite) TestCancelSubscription() {
	now := s.GetNow()
	tests := []struct {
		name          string
		status        types.SubscriptionStatus
		cycleEnd      time.Time
		wantStatus    types.SubscriptionStatus
		wantInactive  time.Time
		wantErrorFunc func(error) bool
	}{
		{
			name:         "trial cancels at the end of the trial",
			status:       types.SubscriptionStatusTrial,
			cycleEnd:     now.AddDate(0, 0, 5),
			wantStatus:   types.SubscriptionStatusScheduledCancellation,
			wantInactive: now.AddDate(0, 0, 5),
		},
		{
			name:         "overdue with a closed cycle cancels immediately",
			status:       types.SubscriptionStatusOverdue,
			cycleEnd:     now.Add(-time.Hour),
			wantStatus:   types.SubscriptionStatusCancelled,
			wantInactive: now.Add(-time.Hour),
		},
		{
			name:          "already cancelled",
			status:        types.SubscriptionStatusCancelled,
			cycleEnd:      now.AddDate(0, 0, 5),
			wantStatus:    types.SubscriptionStatusCancelled,
			wantErrorFunc: ierr.IsInvalidOperation,
		},
		{
			name:          "written off",
			status:        types.SubscriptionStatusWrittenOff,
			cycleEnd:      now.AddDate(0, 0, 5),
			wantStatus:    types.SubscriptionStatusWrittenOff,
			wantErrorFunc: ierr.IsInvalidOperation,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			acct := s.CreateAccount("cust_cancel")
			sub, _ := s.CreateSubscription(acct, tt.status, types.BillingCycleStatusNew, now.AddDate(0, -1, 0), tt.cycleEnd)

			result, err := s.service.CancelSubscription(s.GetContext(), "cust_cancel", now)
			stored := s.storedSubscription(sub.ID)
			s.Equal(tt.wantStatus, stored.Status)
			s.False(stored.IsLocked())

			if tt.wantErrorFunc != nil {
				s.Require().Error(err)
				s.True(tt.wantErrorFunc(err))
				s.Nil(stored.InactiveAfter)
				return
			}
			s.Require().NoError(err)
			s.Equal(tt.wantStatus, result.Subscription.Status)
			s.Require().NotNil(stored.InactiveAfter)
			s.Equal(tt.wantInactive, *stored.InactiveAfter)
		})
	}
}

func (s *SubscriptionServiceSuite) TestCancelRefusedWhileAging() {
	now := s.GetNow()
	acct := s.CreateAccount("cust_busy")
	sub, _ := s.CreateSubscription(acct, types.SubscriptionStatusActive, types.BillingCycleStatusNew,
		now.AddDate(0, 0, -3), now.AddDate(0, 0, 27))
	s.Require().NoError(s.GetStores().SubscriptionRepo.AcquireLock(s.GetContext(), sub.ID, now))

	_, err := s.service.CancelSubscription(s.GetContext(), "cust_busy", now)
	s.Require().Error(err)
	s.True(ierr.IsLockNotAcquired(err))

	stored := s.storedSubscription(sub.ID)
	s.Equal(types.SubscriptionStatusActive, stored.Status)
	// the aging run still owns the lock
	s.True(stored.IsLocked())
}

func (s *SubscriptionServiceSuite) TestCancelUnknownCustomer() {
	_, err := s.service.CancelSubscription(s.GetContext(), "cust_missing", s.GetNow())
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestRestartFromScheduledCancellation() {
	now := s.GetNow()
	acct := s.CreateAccount("cust_undo")
	acct.Balance = decimal.NewFromFloat(4.5)
	acct.BalanceDueDate = lo.ToPtr(now)
	s.Require().NoError(s.GetStores().AccountRepo.Update(s.GetContext(), acct))

	sub, bc := s.CreateSubscription(acct, types.SubscriptionStatusActive, types.BillingCycleStatusPaid,
		now.AddDate(0, 0, -10), now.AddDate(0, 0, 20))
	_, err := s.service.CancelSubscription(s.GetContext(), "cust_undo", now)
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusScheduledCancellation, s.storedSubscription(sub.ID).Status)

	result, err := s.service.RestartMembership(s.GetContext(), "cust_undo", now)
	s.Require().NoError(err)
	s.Nil(result.BillingCycle)

	stored := s.storedSubscription(sub.ID)
	s.Equal(types.SubscriptionStatusActive, stored.Status)
	s.Nil(stored.InactiveAfter)
	s.Equal(bc.ID, lo.FromPtr(stored.CurrentBillingCycleID))
	s.False(stored.IsLocked())

	storedAcct := s.storedAccount(acct.ID)
	s.True(storedAcct.Balance.IsZero())
	s.Nil(storedAcct.BalanceDueDate)
}

func (s *SubscriptionServiceSuite) TestRestartFromCancelled() {
	now := s.GetNow()
	acct := s.CreateAccount("cust_back")
	acct.Status = types.BillingAccountStatusClosed
	acct.Rating = types.BillingAccountRatingD90
	acct.ClosedOn = lo.ToPtr(now.AddDate(0, -2, 0))
	s.Require().NoError(s.GetStores().AccountRepo.Update(s.GetContext(), acct))

	sub, oldCycle := s.CreateSubscription(acct, types.SubscriptionStatusCancelled, types.BillingCycleStatusUnpaid,
		now.AddDate(0, -4, 0), now.AddDate(0, -3, 0))

	result, err := s.service.RestartMembership(s.GetContext(), "cust_back", now)
	s.Require().NoError(err)
	s.Require().NotNil(result.BillingCycle)

	s.Equal(now, result.BillingCycle.StartDate)
	s.Equal(types.NextMonthlyCycleEnd(now), result.BillingCycle.EndDate)
	s.Equal(types.BillingCycleStatusNew, result.BillingCycle.Status)

	stored := s.storedSubscription(sub.ID)
	s.Equal(types.SubscriptionStatusActive, stored.Status)
	s.Equal(now, stored.StartDate)
	s.Equal(result.BillingCycle.ID, lo.FromPtr(stored.CurrentBillingCycleID))
	s.NotEqual(oldCycle.ID, lo.FromPtr(stored.CurrentBillingCycleID))

	storedAcct := s.storedAccount(acct.ID)
	s.Equal(types.BillingAccountStatusOpen, storedAcct.Status)
	s.Equal(types.BillingAccountRatingOK, storedAcct.Rating)
	s.True(s.GetConfig().Aging.CycleAmount.Equal(storedAcct.Balance))
	s.Equal(now, lo.FromPtr(storedAcct.BalanceDueDate))
	s.Nil(storedAcct.ClosedOn)
}

func (s *SubscriptionServiceSuite) TestRestartActiveIsRefused() {
	now := s.GetNow()
	acct := s.CreateAccount("cust_active")
	s.CreateSubscription(acct, types.SubscriptionStatusActive, types.BillingCycleStatusNew, now, now.AddDate(0, 1, 0))

	_, err := s.service.RestartMembership(s.GetContext(), "cust_active", now)
	s.Require().Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *SubscriptionServiceSuite) TestGetMembershipStatus() {
	now := s.GetNow()

	status, err := s.service.GetMembershipStatus(s.GetContext(), "cust_nobody", now)
	s.Require().NoError(err)
	s.False(status.HasSubscription)
	s.Nil(status.Subscription)
	s.True(status.AccountBalance.IsZero())

	started, err := s.service.StartTrial(s.GetContext(), "cust_status", now)
	s.Require().NoError(err)

	status, err = s.service.GetMembershipStatus(s.GetContext(), "cust_status", now.Add(12*time.Hour))
	s.Require().NoError(err)
	s.True(status.HasSubscription)
	s.True(status.IsTrial)
	s.Equal(started.Subscription.ID, status.Subscription.ID)
	s.Equal(started.BillingCycle.ID, status.CurrentBillingCycle.ID)
	s.Equal(started.BillingCycle.EndDate, lo.FromPtr(status.NextBillingDate))
	// 13.5 days left rounds up
	s.Equal(14, status.DaysRemainingInCycle)
	s.Equal(started.Account.ID, status.Account.ID)
}

func (s *SubscriptionServiceSuite) TestTrialLifecycle() {
	now := s.GetNow()
	started, err := s.service.StartTrial(s.GetContext(), "cust_journey", now)
	s.Require().NoError(err)

	aging := NewBillingCycleAgingService(newTestServiceParams(&s.BaseServiceTestSuite))

	// nothing to do half way through the trial
	result, err := aging.RunAging(s.GetContext(), now.AddDate(0, 0, 7))
	s.Require().NoError(err)
	s.Equal(0, result.ProcessedCount)

	trialEnd := started.BillingCycle.EndDate
	result, err = aging.RunAging(s.GetContext(), trialEnd)
	s.Require().NoError(err)
	s.Equal(1, result.TransitionedTrials)

	status, err := s.service.GetMembershipStatus(s.GetContext(), "cust_journey", trialEnd)
	s.Require().NoError(err)
	s.False(status.IsTrial)
	s.Equal(types.SubscriptionStatusActive, status.Subscription.Status)
	s.Equal(trialEnd, status.CurrentBillingCycle.StartDate)
	s.Equal(types.NextMonthlyCycleEnd(trialEnd), status.CurrentBillingCycle.EndDate)

	_, err = s.service.CancelSubscription(s.GetContext(), "cust_journey", trialEnd.Add(time.Hour))
	s.Require().NoError(err)

	// the cancellation takes effect once the paid-for cycle is over
	cycleEnd := status.CurrentBillingCycle.EndDate
	_, err = aging.RunAging(s.GetContext(), cycleEnd)
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusCancelled, s.storedSubscription(started.Subscription.ID).Status)
}
