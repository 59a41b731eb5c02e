package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flexprice/paycycle/internal/domain/payment"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
)

// RetryService turns failed payments into scheduled retries
type RetryService interface {
	// ScheduleRetry persists the retry payment a decision calls for. Backoff
	// decisions create nothing.
	ScheduleRetry(ctx context.Context, p *payment.Payment, decision *RetryDecision, refDate time.Time) (*RetryScheduleResult, error)

	// ApplyRetryPolicy resolves and schedules the retry for a payment that
	// failed with code. It returns an error marked ErrRetryNotPossible when the
	// chain must stop, after marking the payment terminal.
	ApplyRetryPolicy(ctx context.Context, p *payment.Payment, code types.PaymentStatusCode, refDate time.Time) (*RetryScheduleResult, error)
}

// RetryScheduleResult is what the scheduler did with a decision
type RetryScheduleResult struct {
	Action types.RetryAction `json:"action"`
	// ScheduledPayment is the new retry, nil for backoff actions
	ScheduledPayment *payment.Payment `json:"scheduled_payment,omitempty"`
	// AlertRequired is set for ALERT_BACKOFF, a human should look at the account
	AlertRequired bool `json:"alert_required"`
}

type retryService struct {
	ServiceParams
}

func NewRetryService(params ServiceParams) RetryService {
	return &retryService{
		ServiceParams: params,
	}
}

// RetryDate returns when the retry for action should be attempted
func RetryDate(action types.RetryAction, refDate time.Time) time.Time {
	switch action {
	case types.RetryActionRescheduleNextFriday:
		return types.NextFriday(refDate)
	case types.RetryActionRescheduleNextFridayEOM:
		return types.NextFridayEOM(refDate)
	default:
		return refDate
	}
}

func (s *retryService) ScheduleRetry(ctx context.Context, p *payment.Payment, decision *RetryDecision, refDate time.Time) (*RetryScheduleResult, error) {
	if p == nil || decision == nil {
		return nil, ierr.NewError("payment and decision are required").
			WithHint("A retry needs the failed payment and a resolved decision").
			Mark(ierr.ErrValidation)
	}

	if decision.Action.IsBackoff() {
		return &RetryScheduleResult{
			Action:        decision.Action,
			AlertRequired: decision.Action == types.RetryActionAlertBackoff,
		}, nil
	}

	if decision.Action == types.RetryActionNotPossible {
		return nil, ierr.NewError("retry not possible").
			WithHintf("Payment %s can not be retried", p.ID).
			Mark(ierr.ErrRetryNotPossible)
	}

	retry := newRetryPayment(ctx, p, decision, refDate)

	// single insert carrying every link field, so a failure leaves no partial chain
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		return s.PaymentRepo.Create(ctx, retry)
	})
	if err != nil {
		s.Logger.Errorw("failed to schedule retry payment",
			"payment_id", p.ID,
			"action", decision.Action,
			"bucket", decision.Bucket,
			"error", err,
		)
		return nil, err
	}

	s.Logger.Infow("scheduled retry payment",
		"payment_id", p.ID,
		"retry_payment_id", retry.ID,
		"action", decision.Action,
		"track", retry.Track,
		"date", retry.Date,
		"retry_sequence_nb", retry.RetrySequenceNb,
		"retry_routing_ctx", retry.RetryRoutingCtx,
	)

	s.publishEvent(ctx, types.EventPaymentRetryScheduled, "payment", retry.ID, retry.AccountID, map[string]interface{}{
		"source_payment_id": p.ID,
		"action":            decision.Action,
		"bucket":            decision.Bucket,
		"code":              int(decision.Code),
		"date":              retry.Date,
		"retry_sequence_nb": retry.RetrySequenceNb,
	})

	return &RetryScheduleResult{
		Action:           decision.Action,
		ScheduledPayment: retry,
	}, nil
}

func newRetryPayment(ctx context.Context, p *payment.Payment, decision *RetryDecision, refDate time.Time) *payment.Payment {
	track := decision.Track
	if track == "" {
		track = p.Track
	}
	if track == "" {
		track = types.PaymentTrackBankCard
	}

	return &payment.Payment{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		AccountID:          p.AccountID,
		CustomerID:         p.CustomerID,
		SubscriptionID:     p.SubscriptionID,
		BillingCycleID:     p.BillingCycleID,
		Amount:             p.Amount,
		Currency:           p.Currency,
		Type:               p.Type,
		Direction:          p.Direction,
		Status:             types.PaymentStatusScheduled,
		Track:              track,
		Date:               RetryDate(decision.Action, refDate),
		RetrySequenceNb:    p.RetrySequenceNb + 1,
		RetryPrevPaymentID: lo.ToPtr(p.ID),
		RetryRoutingCtx:    p.RetryRoutingCtx.Union(decision.RoutingCtxPatch),
		RetryAnnotation:    lo.ToPtr(fmt.Sprintf("%s:%s", decision.Action, decision.Bucket)),
		RetryLogicVersion:  lo.ToPtr(types.RetryLogicVersion),
		RetryTraceData: &types.RetryTraceData{
			SourcePaymentID: p.ID,
			SourceCode:      decision.Code,
			SourceBucket:    decision.Bucket,
			TotalRetryCnt:   decision.TotalRetryCnt,
		},
		Memo: lo.ToPtr(fmt.Sprintf("retry_for:%s;code:%d;bucket:%s;action:%s",
			p.ID, int(decision.Code), decision.Bucket, decision.Action)),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}
