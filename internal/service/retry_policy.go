package service

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/domain/payment"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
)

func (s *retryService) ApplyRetryPolicy(ctx context.Context, p *payment.Payment, code types.PaymentStatusCode, refDate time.Time) (*RetryScheduleResult, error) {
	if p == nil {
		return nil, ierr.NewError("payment is required").
			WithHint("A failed payment is required to apply the retry policy").
			Mark(ierr.ErrValidation)
	}

	daysOverdue, err := s.daysOverdue(ctx, p, refDate)
	if err != nil {
		return nil, err
	}
	totalRetryCnt := p.RetrySequenceNb

	decision, err := ResolveRetryDecision(code, daysOverdue, totalRetryCnt)
	if err != nil {
		if ierr.IsRetryNotPossible(err) {
			if stopErr := s.stopRetryChain(ctx, p, code, daysOverdue); stopErr != nil {
				return nil, stopErr
			}
		}
		return nil, err
	}

	s.Logger.Infow("resolved retry policy for failed payment",
		"payment_id", p.ID,
		"code", code,
		"days_overdue", daysOverdue,
		"total_retry_cnt", totalRetryCnt,
		"action", decision.Action,
		"track", decision.Track,
		"bucket", decision.Bucket,
		"retry_routing_ctx_patch", decision.RoutingCtxPatch,
	)

	result, err := s.ScheduleRetry(ctx, p, decision, refDate)
	if err != nil {
		return nil, err
	}

	if result.AlertRequired {
		s.raiseAlert(ctx, p, decision)
	}
	return result, nil
}

// daysOverdue prefers the billing cycle's persisted aging, then the cycle's
// age, then the payment's own age
func (s *retryService) daysOverdue(ctx context.Context, p *payment.Payment, refDate time.Time) (int, error) {
	if p.BillingCycleID == nil {
		return types.DaysBetween(p.Date, refDate), nil
	}

	bc, err := s.BillingCycleRepo.Get(ctx, *p.BillingCycleID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Warnw("billing cycle of failed payment not found, aging from payment date",
				"payment_id", p.ID,
				"billing_cycle_id", *p.BillingCycleID,
			)
			return types.DaysBetween(p.Date, refDate), nil
		}
		return 0, err
	}

	if bc.DaysOverdue != nil {
		return max(0, *bc.DaysOverdue), nil
	}
	return types.DaysBetween(bc.StartDate, refDate), nil
}

func (s *retryService) stopRetryChain(ctx context.Context, p *payment.Payment, code types.PaymentStatusCode, daysOverdue int) error {
	if p.Status != types.PaymentStatusFailed || p.StatusCode() != code {
		p.Status = types.PaymentStatusFailed
		p.Code = &code
		p.Touch(ctx)
		err := s.DB.WithTx(ctx, func(ctx context.Context) error {
			return s.PaymentRepo.Update(ctx, p)
		})
		if err != nil {
			return err
		}
	}

	s.Logger.Infow("retry chain stopped, no retry possible",
		"payment_id", p.ID,
		"code", code,
		"days_overdue", daysOverdue,
		"retry_sequence_nb", p.RetrySequenceNb,
	)

	s.publishEvent(ctx, types.EventPaymentRetryStopped, "payment", p.ID, p.AccountID, map[string]interface{}{
		"code":              int(code),
		"days_overdue":      daysOverdue,
		"retry_sequence_nb": p.RetrySequenceNb,
	})
	return nil
}

func (s *retryService) raiseAlert(ctx context.Context, p *payment.Payment, decision *RetryDecision) {
	s.Logger.Warnw("retry backed off, alert required",
		"payment_id", p.ID,
		"account_id", p.AccountID,
		"code", decision.Code,
		"bucket", decision.Bucket,
	)

	if s.Sentry != nil {
		s.Sentry.CaptureAlert("payment retry requires attention", map[string]string{
			"payment_id": p.ID,
			"account_id": p.AccountID,
			"code":       decision.Code.String(),
			"bucket":     decision.Bucket.String(),
		})
	}

	s.publishEvent(ctx, types.EventPaymentRetryAlert, "payment", p.ID, p.AccountID, map[string]interface{}{
		"code":   int(decision.Code),
		"bucket": decision.Bucket,
	})
}
