package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	"github.com/flexprice/paycycle/internal/domain/subscription"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// BillingCycleAgingService advances subscriptions whose billing cycle is
// ending: rolling paid cycles over, finalizing cancellations and aging
// unpaid cycles into overdue statuses and account ratings.
type BillingCycleAgingService interface {
	RunAging(ctx context.Context, now time.Time) (*AgingResult, error)
}

// AgingResult summarizes one aging sweep
type AgingResult struct {
	RunID                  string   `json:"run_id"`
	ProcessedCount         int      `json:"processed_count"`
	TransitionedTrials     int      `json:"transitioned_trials"`
	CreatedBillingCycles   int      `json:"created_billing_cycles"`
	CancelledSubscriptions int      `json:"cancelled_subscriptions"`
	UpdatedOverdue         int      `json:"updated_overdue"`
	SkippedLocked          int      `json:"skipped_locked"`
	ReleasedStaleLocks     int      `json:"released_stale_locks"`
	Errors                 []string `json:"errors"`

	mu sync.Mutex
}

// agingOutcome is what happened to a single subscription
type agingOutcome struct {
	transition        string
	trialPromoted     bool
	cycleCreated      bool
	cancelled         bool
	overdueUpdated    bool
	daysOverdue       int
	newStatus         types.SubscriptionStatus
	newRating         types.BillingAccountRating
	newBillingCycleID string
	accountID         string
}

func (r *AgingResult) add(o *agingOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ProcessedCount++
	if o.trialPromoted {
		r.TransitionedTrials++
	}
	if o.cycleCreated {
		r.CreatedBillingCycles++
	}
	if o.cancelled {
		r.CancelledSubscriptions++
	}
	if o.overdueUpdated {
		r.UpdatedOverdue++
	}
}

func (r *AgingResult) skip() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SkippedLocked++
}

func (r *AgingResult) fail(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}

type billingCycleAgingService struct {
	ServiceParams
}

func NewBillingCycleAgingService(params ServiceParams) BillingCycleAgingService {
	return &billingCycleAgingService{
		ServiceParams: params,
	}
}

func (s *billingCycleAgingService) RunAging(ctx context.Context, now time.Time) (*AgingResult, error) {
	cfg := s.Config.Aging
	result := &AgingResult{
		RunID:  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AGING_RUN),
		Errors: []string{},
	}

	ctx, finish := s.startTransaction(ctx, "billing_cycle.aging")
	defer finish()

	s.Logger.Infow("starting billing cycle aging",
		"run_id", result.RunID,
		"now", now,
		"look_ahead_window", cfg.LookAheadWindow,
	)

	if cfg.StaleLockAfter > 0 {
		released, err := s.SubRepo.ReleaseStaleLocks(ctx, now.Add(-cfg.StaleLockAfter), now)
		if err != nil {
			s.Logger.Errorw("failed to release stale subscription locks",
				"run_id", result.RunID,
				"error", err,
			)
			return nil, err
		}
		result.ReleasedStaleLocks = released
		if released > 0 {
			s.Logger.Warnw("released stale subscription locks",
				"run_id", result.RunID,
				"count", released,
				"older_than", cfg.StaleLockAfter,
			)
		}
	}

	candidates, err := s.SubRepo.ListAgingCandidates(ctx, &subscription.AgingFilter{
		Statuses:       types.AgeableSubscriptionStatuses,
		CycleEndBefore: now.Add(cfg.LookAheadWindow),
	})
	if err != nil {
		s.Logger.Errorw("failed to list aging candidates",
			"run_id", result.RunID,
			"error", err,
		)
		return nil, err
	}

	s.Logger.Infow("found subscriptions to age",
		"run_id", result.RunID,
		"count", len(candidates),
	)

	p := pool.New().WithMaxGoroutines(max(1, cfg.WorkerCount))
	for _, sub := range candidates {
		subID := sub.ID
		p.Go(func() {
			s.ageWithProfile(ctx, result, subID, now)
		})
	}
	p.Wait()

	s.Logger.Infow("billing cycle aging completed",
		"run_id", result.RunID,
		"processed_count", result.ProcessedCount,
		"transitioned_trials", result.TransitionedTrials,
		"created_billing_cycles", result.CreatedBillingCycles,
		"cancelled_subscriptions", result.CancelledSubscriptions,
		"updated_overdue", result.UpdatedOverdue,
		"skipped_locked", result.SkippedLocked,
		"released_stale_locks", result.ReleasedStaleLocks,
		"errors_count", len(result.Errors),
	)

	return result, nil
}

func (s *billingCycleAgingService) ageWithProfile(ctx context.Context, result *AgingResult, subID string, now time.Time) {
	if s.Pyroscope == nil {
		s.ageOne(ctx, result, subID, now)
		return
	}
	s.Pyroscope.TagWrapper(ctx, map[string]string{"operation": "billing_cycle_aging"}, func(ctx context.Context) {
		s.ageOne(ctx, result, subID, now)
	})
}

// ageOne holds the subscription lock for the whole transition. The lock is
// released on every path, including failures.
func (s *billingCycleAgingService) ageOne(ctx context.Context, result *AgingResult, subID string, now time.Time) {
	if err := s.SubRepo.AcquireLock(ctx, subID, now); err != nil {
		if ierr.IsLockNotAcquired(err) {
			s.Logger.Debugw("subscription locked by another run, skipping",
				"subscription_id", subID,
			)
			result.skip()
			return
		}
		s.recordFailure(result, subID, err)
		return
	}

	defer func() {
		// the sweep's context may be cancelled, the lock must still be freed
		if err := s.SubRepo.ReleaseLock(context.WithoutCancel(ctx), subID, now); err != nil {
			s.Logger.Errorw("failed to release subscription lock",
				"subscription_id", subID,
				"error", err,
			)
		}
	}()

	var outcome *agingOutcome
	err := s.DB.RetriableTx(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = s.transition(ctx, subID, now)
		return err
	})
	if err != nil {
		s.recordFailure(result, subID, err)
		return
	}

	result.add(outcome)
	if outcome.transition == "" {
		return
	}

	s.Logger.Infow("subscription aged",
		"subscription_id", subID,
		"transition", outcome.transition,
		"new_status", outcome.newStatus,
		"new_rating", outcome.newRating,
		"days_overdue", outcome.daysOverdue,
		"new_billing_cycle_id", outcome.newBillingCycleID,
	)

	s.publishEvent(ctx, types.EventSubscriptionAged, "subscription", subID, outcome.accountID, map[string]interface{}{
		"transition":           outcome.transition,
		"new_status":           outcome.newStatus,
		"new_rating":           outcome.newRating,
		"days_overdue":         outcome.daysOverdue,
		"new_billing_cycle_id": outcome.newBillingCycleID,
	})
}

func (s *billingCycleAgingService) recordFailure(result *AgingResult, subID string, err error) {
	result.fail(fmt.Sprintf("error processing subscription %s: %s", subID, err.Error()))
	s.Logger.Errorw("error processing subscription during aging",
		"subscription_id", subID,
		"error", err,
	)
	if s.Sentry != nil {
		s.Sentry.CaptureExceptionWithTags(err, map[string]string{
			"subscription_id": subID,
			"operation":       "billing_cycle_aging",
		})
	}
}

// transition reloads the subscription and its cycle inside the transaction
// and applies the aging state machine
func (s *billingCycleAgingService) transition(ctx context.Context, subID string, now time.Time) (*agingOutcome, error) {
	sub, err := s.SubRepo.Get(ctx, subID)
	if err != nil {
		return nil, err
	}
	if sub.CurrentBillingCycleID == nil {
		return nil, ierr.NewErrorf("subscription %s has no current billing cycle", sub.ID).
			WithHint("Subscription has no current billing cycle").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
				"status":          sub.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	bc, err := s.BillingCycleRepo.Get(ctx, *sub.CurrentBillingCycleID)
	if err != nil {
		return nil, err
	}

	outcome := &agingOutcome{newStatus: sub.Status, accountID: sub.AccountID}

	switch {
	case !sub.IsAgeable():
		// status changed since candidates were listed
		return outcome, nil

	case sub.Status == types.SubscriptionStatusScheduledCancellation:
		if !bc.HasEnded(now) {
			return outcome, nil
		}
		sub.Status = types.SubscriptionStatusCancelled
		sub.Touch(ctx)
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return nil, err
		}
		outcome.transition = "cancelled"
		outcome.cancelled = true
		outcome.newStatus = sub.Status
		return outcome, nil

	case bc.Status.IsPaid():
		if !bc.HasEnded(now) {
			return outcome, nil
		}
		return s.rollOver(ctx, sub, bc, outcome)

	default:
		return s.ageUnpaid(ctx, sub, bc, now, outcome)
	}
}

func (s *billingCycleAgingService) rollOver(ctx context.Context, sub *subscription.Subscription, bc *billingcycle.BillingCycle, outcome *agingOutcome) (*agingOutcome, error) {
	amount := sub.Amount
	if amount.IsZero() {
		amount = s.Config.Aging.CycleAmount
	}

	next := &billingcycle.BillingCycle{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_CYCLE),
		SubscriptionID: sub.ID,
		StartDate:      bc.EndDate,
		EndDate:        types.NextMonthlyCycleEnd(bc.EndDate),
		Status:         types.BillingCycleStatusNew,
		PaymentAmount:  amount,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := s.BillingCycleRepo.Create(ctx, next); err != nil {
		return nil, err
	}

	if sub.Status == types.SubscriptionStatusTrial {
		sub.Status = types.SubscriptionStatusActive
		outcome.trialPromoted = true
	}
	sub.CurrentBillingCycleID = lo.ToPtr(next.ID)
	sub.Touch(ctx)
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	outcome.transition = "billing_cycle_created"
	outcome.cycleCreated = true
	outcome.newStatus = sub.Status
	outcome.newBillingCycleID = next.ID
	return outcome, nil
}

func (s *billingCycleAgingService) ageUnpaid(ctx context.Context, sub *subscription.Subscription, bc *billingcycle.BillingCycle, now time.Time, outcome *agingOutcome) (*agingOutcome, error) {
	days := types.DaysBetween(bc.StartDate, now)
	bc.DaysOverdue = lo.ToPtr(days)
	bc.Touch(ctx)
	if err := s.BillingCycleRepo.Update(ctx, bc); err != nil {
		return nil, err
	}

	outcome.transition = "overdue_updated"
	outcome.overdueUpdated = true
	outcome.daysOverdue = days

	t, ok := types.OverdueTransitionFor(days)
	if !ok {
		return outcome, nil
	}

	if sub.Status != t.Status {
		sub.Status = t.Status
		sub.Touch(ctx)
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return nil, err
		}
	}
	outcome.newStatus = sub.Status

	if t.Rating != "" && sub.AccountID != "" {
		if err := s.AccountRepo.UpdateRating(ctx, sub.AccountID, t.Rating); err != nil {
			return nil, err
		}
		outcome.newRating = t.Rating
	}
	return outcome, nil
}
