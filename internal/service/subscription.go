package service

import (
	"context"
	"math"
	"time"

	"github.com/flexprice/paycycle/internal/domain/account"
	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	"github.com/flexprice/paycycle/internal/domain/subscription"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// SubscriptionService is the member facing membership lifecycle. Every
// mutation takes the subscription's processing lock so it never interleaves
// with an aging pass.
type SubscriptionService interface {
	StartTrial(ctx context.Context, customerID string, now time.Time) (*MembershipResult, error)
	CancelSubscription(ctx context.Context, customerID string, now time.Time) (*MembershipResult, error)
	RestartMembership(ctx context.Context, customerID string, now time.Time) (*MembershipResult, error)
	GetMembershipStatus(ctx context.Context, customerID string, now time.Time) (*MembershipStatus, error)
}

// MembershipResult is the state left behind by a lifecycle operation.
// BillingCycle is only set when the operation created one.
type MembershipResult struct {
	Subscription *subscription.Subscription `json:"subscription"`
	BillingCycle *billingcycle.BillingCycle `json:"billing_cycle,omitempty"`
	Account      *account.CustomerAccount   `json:"account,omitempty"`
}

// MembershipStatus is a read-only view of a customer's membership
type MembershipStatus struct {
	HasSubscription      bool                       `json:"has_subscription"`
	Subscription         *subscription.Subscription `json:"subscription,omitempty"`
	CurrentBillingCycle  *billingcycle.BillingCycle `json:"current_billing_cycle,omitempty"`
	Account              *account.CustomerAccount   `json:"account,omitempty"`
	AccountBalance       decimal.Decimal            `json:"account_balance"`
	NextBillingDate      *time.Time                 `json:"next_billing_date,omitempty"`
	IsTrial              bool                       `json:"is_trial"`
	DaysRemainingInCycle int                        `json:"days_remaining_in_cycle"`
}

var restartableSubscriptionStatuses = []types.SubscriptionStatus{
	types.SubscriptionStatusCancelled,
	types.SubscriptionStatusDeactivated,
	types.SubscriptionStatusScheduledCancellation,
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) StartTrial(ctx context.Context, customerID string, now time.Time) (*MembershipResult, error) {
	if customerID == "" {
		return nil, ierr.NewError("customer id is required").
			WithHint("Please provide a customer id").
			Mark(ierr.ErrValidation)
	}

	existing, err := s.SubRepo.GetByCustomerID(ctx, customerID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, ierr.NewError("customer already has a subscription").
			WithHint("You already have a membership").
			WithReportableDetails(map[string]any{
				"customer_id":     customerID,
				"subscription_id": existing.ID,
				"status":          existing.Status,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	cfg := s.Config.Aging
	result := &MembershipResult{}
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		acct := &account.CustomerAccount{
			ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER_ACCOUNT),
			CustomerID: customerID,
			Type:       types.CustomerAccountTypeSubscription,
			Status:     types.BillingAccountStatusOpen,
			Rating:     types.BillingAccountRatingNew,
			Balance:    decimal.Zero,
			OpenedOn:   lo.ToPtr(now),
			BaseModel:  types.GetDefaultBaseModel(ctx),
		}
		if err := s.AccountRepo.Create(ctx, acct); err != nil {
			return err
		}

		sub := &subscription.Subscription{
			ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
			CustomerID:       customerID,
			AccountID:        acct.ID,
			Type:             types.SubscriptionTypeMembership,
			Status:           types.SubscriptionStatusTrial,
			ProcessingStatus: types.SubscriptionProcessingStatusNone,
			StartDate:        now,
			Amount:           cfg.CycleAmount,
			Currency:         cfg.Currency,
			BaseModel:        types.GetDefaultBaseModel(ctx),
		}
		if err := s.SubRepo.Create(ctx, sub); err != nil {
			return err
		}

		bc := &billingcycle.BillingCycle{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_CYCLE),
			SubscriptionID: sub.ID,
			StartDate:      now,
			EndDate:        now.AddDate(0, 0, cfg.TrialDays),
			Status:         types.BillingCycleStatusTrial,
			PaymentAmount:  decimal.Zero,
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
		if err := s.BillingCycleRepo.Create(ctx, bc); err != nil {
			return err
		}

		sub.CurrentBillingCycleID = lo.ToPtr(bc.ID)
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		result.Account = acct
		result.Subscription = sub
		result.BillingCycle = bc
		return nil
	})
	if err != nil {
		s.Logger.Errorw("failed to start trial",
			"customer_id", customerID,
			"error", err,
		)
		return nil, err
	}

	s.Logger.Infow("trial subscription started",
		"customer_id", customerID,
		"subscription_id", result.Subscription.ID,
		"billing_cycle_id", result.BillingCycle.ID,
		"trial_end_date", result.BillingCycle.EndDate,
	)
	return result, nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, customerID string, now time.Time) (*MembershipResult, error) {
	sub, err := s.SubRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if !lo.Contains(types.CancellableSubscriptionStatuses, sub.Status) {
		return nil, ierr.NewErrorf("subscription %s is %s", sub.ID, sub.Status).
			WithHintf("Cannot cancel a subscription with status %s", sub.Status).
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"status":          sub.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	err = s.withLock(ctx, sub.ID, now, func(ctx context.Context) error {
		sub, err = s.SubRepo.Get(ctx, sub.ID)
		if err != nil {
			return err
		}

		inactiveAfter := now
		if sub.CurrentBillingCycleID != nil {
			bc, err := s.BillingCycleRepo.Get(ctx, *sub.CurrentBillingCycleID)
			if err != nil && !ierr.IsNotFound(err) {
				return err
			}
			if bc != nil {
				inactiveAfter = bc.EndDate
			}
		}

		if inactiveAfter.After(now) {
			sub.Status = types.SubscriptionStatusScheduledCancellation
		} else {
			sub.Status = types.SubscriptionStatusCancelled
		}
		sub.InactiveAfter = lo.ToPtr(inactiveAfter)
		sub.Touch(ctx)
		return s.SubRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription cancellation processed",
		"customer_id", customerID,
		"subscription_id", sub.ID,
		"new_status", sub.Status,
		"inactive_after", sub.InactiveAfter,
	)
	return &MembershipResult{Subscription: sub}, nil
}

func (s *subscriptionService) RestartMembership(ctx context.Context, customerID string, now time.Time) (*MembershipResult, error) {
	sub, err := s.SubRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if !lo.Contains(restartableSubscriptionStatuses, sub.Status) {
		return nil, ierr.NewErrorf("subscription %s is %s", sub.ID, sub.Status).
			WithHintf("Cannot restart a subscription with status %s", sub.Status).
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"status":          sub.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	result := &MembershipResult{}
	err = s.withLock(ctx, sub.ID, now, func(ctx context.Context) error {
		sub, err = s.SubRepo.Get(ctx, sub.ID)
		if err != nil {
			return err
		}
		acct, err := s.AccountRepo.Get(ctx, sub.AccountID)
		if err != nil {
			return err
		}

		if sub.Status == types.SubscriptionStatusScheduledCancellation {
			acct.Balance = decimal.Zero
			acct.BalanceDueDate = nil
		} else {
			amount := sub.Amount
			if amount.IsZero() {
				amount = s.Config.Aging.CycleAmount
			}
			bc := &billingcycle.BillingCycle{
				ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_CYCLE),
				SubscriptionID: sub.ID,
				StartDate:      now,
				EndDate:        types.NextMonthlyCycleEnd(now),
				Status:         types.BillingCycleStatusNew,
				PaymentAmount:  amount,
				BaseModel:      types.GetDefaultBaseModel(ctx),
			}
			if err := s.BillingCycleRepo.Create(ctx, bc); err != nil {
				return err
			}
			result.BillingCycle = bc

			sub.CurrentBillingCycleID = lo.ToPtr(bc.ID)
			sub.StartDate = now

			acct.Status = types.BillingAccountStatusOpen
			acct.Rating = types.BillingAccountRatingOK
			acct.Balance = amount
			acct.BalanceDueDate = lo.ToPtr(now)
			acct.ClosedOn = nil
		}

		sub.Status = types.SubscriptionStatusActive
		sub.InactiveAfter = nil
		sub.Touch(ctx)
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		acct.Touch(ctx)
		if err := s.AccountRepo.Update(ctx, acct); err != nil {
			return err
		}
		result.Account = acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Subscription = sub

	s.Logger.Infow("membership restarted",
		"customer_id", customerID,
		"subscription_id", sub.ID,
		"new_billing_cycle_id", billingCycleID(result.BillingCycle),
	)
	return result, nil
}

func (s *subscriptionService) GetMembershipStatus(ctx context.Context, customerID string, now time.Time) (*MembershipStatus, error) {
	sub, err := s.SubRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return &MembershipStatus{AccountBalance: decimal.Zero}, nil
		}
		return nil, err
	}

	status := &MembershipStatus{
		HasSubscription: true,
		Subscription:    sub,
		IsTrial:         sub.Status == types.SubscriptionStatusTrial,
		AccountBalance:  decimal.Zero,
	}

	if sub.CurrentBillingCycleID != nil {
		bc, err := s.BillingCycleRepo.Get(ctx, *sub.CurrentBillingCycleID)
		if err != nil && !ierr.IsNotFound(err) {
			return nil, err
		}
		if bc != nil {
			status.CurrentBillingCycle = bc
			status.NextBillingDate = lo.ToPtr(bc.EndDate)
			status.DaysRemainingInCycle = daysRemaining(now, bc.EndDate)
		}
	}

	acct, err := s.AccountRepo.Get(ctx, sub.AccountID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if acct != nil {
		status.Account = acct
		status.AccountBalance = acct.Balance
	}
	return status, nil
}

// withLock runs fn inside a transaction while holding the subscription's
// processing lock. ErrLockNotAcquired is returned when an aging pass holds it.
func (s *subscriptionService) withLock(ctx context.Context, subID string, now time.Time, fn func(ctx context.Context) error) error {
	if err := s.SubRepo.AcquireLock(ctx, subID, now); err != nil {
		if ierr.IsLockNotAcquired(err) {
			s.Logger.Warnw("subscription is being processed, refusing change",
				"subscription_id", subID,
			)
		}
		return err
	}
	defer func() {
		if err := s.SubRepo.ReleaseLock(context.WithoutCancel(ctx), subID, now); err != nil {
			s.Logger.Errorw("failed to release subscription lock",
				"subscription_id", subID,
				"error", err,
			)
		}
	}()

	return s.DB.WithTx(ctx, fn)
}

// daysRemaining rounds partial days up and never goes below zero
func daysRemaining(now, end time.Time) int {
	if !end.After(now) {
		return 0
	}
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}

func billingCycleID(bc *billingcycle.BillingCycle) string {
	if bc == nil {
		return ""
	}
	return bc.ID
}
