package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flexprice/paycycle/internal/cache"
	"github.com/flexprice/paycycle/internal/domain/payment"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/idempotency"
	"github.com/flexprice/paycycle/internal/processor"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"
)

// paymentClaimTTL bounds how long a crashed attempt can keep a payment claimed in this process
const paymentClaimTTL = 5 * time.Minute

// PaymentProcessorService attempts scheduled payments and records their outcome
type PaymentProcessorService interface {
	// ProcessPayment routes and charges a scheduled payment, records the
	// outcome and applies the retry policy when it failed. Paid payments are
	// returned untouched.
	ProcessPayment(ctx context.Context, paymentID string, refDate time.Time) (*ProcessPaymentResult, error)

	// ProcessDuePayments processes one batch of scheduled payments due at or
	// before now. Retries created during the run are left for the next one.
	ProcessDuePayments(ctx context.Context, now time.Time) (*DuePaymentsResult, error)
}

// ProcessPaymentResult is the outcome of one processing attempt
type ProcessPaymentResult struct {
	Payment *payment.Payment        `json:"payment"`
	Code    types.PaymentStatusCode `json:"code"`
	// Retry is what the retry policy did for a failed attempt
	Retry *RetryScheduleResult `json:"retry,omitempty"`
	// RetryStopped is set when the failure ended the retry chain
	RetryStopped bool `json:"retry_stopped"`
}

type paymentProcessorService struct {
	ServiceParams
	routing RoutingService
	retry   RetryService
	claims  cache.Cache
	keys    *idempotency.Generator
}

func NewPaymentProcessorService(params ServiceParams) PaymentProcessorService {
	return &paymentProcessorService{
		ServiceParams: params,
		routing:       NewRoutingService(params),
		retry:         NewRetryService(params),
		claims:        cache.NewInMemoryCache(),
		keys:          idempotency.NewGenerator(),
	}
}

func (s *paymentProcessorService) ProcessPayment(ctx context.Context, paymentID string, refDate time.Time) (*ProcessPaymentResult, error) {
	if paymentID == "" {
		return nil, ierr.NewError("payment id is required").
			WithHint("Please provide a payment id").
			Mark(ierr.ErrValidation)
	}

	p, err := s.PaymentRepo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if p.IsPaid() {
		s.Logger.Warnw("payment already paid, skipping processing",
			"payment_id", p.ID,
		)
		return &ProcessPaymentResult{Payment: p, Code: types.PaymentStatusCodeSuccess}, nil
	}

	if p.Status != types.PaymentStatusScheduled {
		return nil, ierr.NewErrorf("payment %s is %s", p.ID, p.Status).
			WithHint("Only scheduled payments can be processed").
			WithReportableDetails(map[string]any{
				"payment_id": p.ID,
				"status":     p.Status,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	claimKey := cache.PrefixPaymentClaim + p.ID
	if !s.claims.Add(ctx, claimKey, refDate, paymentClaimTTL) {
		return nil, ierr.NewErrorf("payment %s is already being processed", p.ID).
			WithHint("Payment is being processed, try again later").
			WithReportableDetails(map[string]any{
				"payment_id": p.ID,
			}).
			Mark(ierr.ErrLockNotAcquired)
	}
	defer s.claims.Delete(ctx, claimKey)

	route, err := s.routing.Route(ctx, p)
	if err != nil {
		return nil, err
	}

	code, transactionID, err := s.charge(ctx, route)
	if err != nil {
		s.Logger.Errorw("payment charge could not be made",
			"payment_id", p.ID,
			"error", err,
		)
		return nil, err
	}

	p, err = s.recordOutcome(ctx, p.ID, code, transactionID, refDate)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("payment processed",
		"payment_id", p.ID,
		"account_id", p.AccountID,
		"code", code,
		"status", p.Status,
		"processor_transaction_id", lo.FromPtr(p.ProcessorTransactionID),
	)

	s.publishEvent(ctx, types.EventPaymentProcessed, "payment", p.ID, p.AccountID, map[string]interface{}{
		"code":              int(code),
		"status":            p.Status,
		"amount":            p.Amount.String(),
		"retry_sequence_nb": p.RetrySequenceNb,
	})

	result := &ProcessPaymentResult{Payment: p, Code: code}
	if !code.IsFailure() {
		return result, nil
	}

	retry, err := s.retry.ApplyRetryPolicy(ctx, p, code, refDate)
	if err != nil {
		if ierr.IsRetryNotPossible(err) {
			result.RetryStopped = true
			return result, nil
		}
		return nil, err
	}
	result.Retry = retry
	return result, nil
}

// charge calls the processor selected by routing. An incomplete route yields
// the matching no-method code without reaching any processor.
func (s *paymentProcessorService) charge(ctx context.Context, route *RouteResult) (types.PaymentStatusCode, string, error) {
	if code, ok := route.NoRouteCode(); ok {
		return code, "", nil
	}

	proc, err := s.Processors.Get(route.Processor.ProviderName)
	if err != nil {
		return 0, "", err
	}

	res, err := proc.Charge(ctx, &processor.ChargeRequest{
		Payment:       route.Payment,
		PaymentMethod: route.PaymentMethod,
		Registration:  route.Processor,
		IdempotencyKey: s.keys.GenerateKey(idempotency.ScopeCharge, map[string]interface{}{
			"payment_id":   route.Payment.ID,
			"processor_id": route.Processor.ID,
		}),
	})
	if err != nil {
		return 0, "", ierr.WithError(err).
			WithHintf("Charge through %s failed", route.Processor.ProviderName).
			WithReportableDetails(map[string]any{
				"payment_id": route.Payment.ID,
				"provider":   route.Processor.ProviderName,
			}).
			Mark(ierr.ErrProcessor)
	}
	if s.Sentry != nil {
		s.Sentry.AddBreadcrumb("payment", "charge attempted", map[string]interface{}{
			"payment_id": route.Payment.ID,
			"provider":   route.Processor.ProviderName,
			"code":       int(res.Code),
		})
	}
	return res.Code, res.TransactionID, nil
}

func (s *paymentProcessorService) recordOutcome(ctx context.Context, paymentID string, code types.PaymentStatusCode, transactionID string, at time.Time) (*payment.Payment, error) {
	var p *payment.Payment
	err := s.DB.RetriableTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.PaymentRepo.Get(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != types.PaymentStatusScheduled {
			return ierr.NewErrorf("payment %s changed to %s while processing", p.ID, p.Status).
				WithHint("Payment was processed concurrently").
				Mark(ierr.ErrInvalidOperation)
		}

		p.SetOutcome(code, at)
		if transactionID != "" {
			p.ProcessorTransactionID = lo.ToPtr(transactionID)
		}
		p.Touch(ctx)
		if err := s.PaymentRepo.Update(ctx, p); err != nil {
			return err
		}

		switch {
		case code.IsSuccess():
			return s.recordSuccess(ctx, p, at)
		case code.IsProcessing():
			return nil
		default:
			return s.recordFailure(ctx, p, code, at)
		}
	})
	if err != nil {
		s.Logger.Errorw("failed to record payment outcome",
			"payment_id", paymentID,
			"code", code,
			"error", err,
		)
		return nil, err
	}
	return p, nil
}

func (s *paymentProcessorService) recordSuccess(ctx context.Context, p *payment.Payment, at time.Time) error {
	acct, err := s.AccountRepo.Get(ctx, p.AccountID)
	if err != nil {
		return err
	}
	acct.RecordSuccess(p.Amount, at)
	acct.Touch(ctx)
	if err := s.AccountRepo.Update(ctx, acct); err != nil {
		return err
	}

	if p.BillingCycleID != nil {
		bc, err := s.BillingCycleRepo.Get(ctx, *p.BillingCycleID)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if err == nil {
			bc.Status = types.BillingCycleStatusPaid
			bc.PaymentDate = &at
			bc.PaymentAmount = p.Amount
			bc.Touch(ctx)
			if err := s.BillingCycleRepo.Update(ctx, bc); err != nil {
				return err
			}
		}
	}

	if p.SubscriptionID != nil {
		return s.updateFailureCount(ctx, *p.SubscriptionID, func(cnt int) int { return 0 })
	}
	return nil
}

func (s *paymentProcessorService) recordFailure(ctx context.Context, p *payment.Payment, code types.PaymentStatusCode, at time.Time) error {
	acct, err := s.AccountRepo.Get(ctx, p.AccountID)
	if err != nil {
		return err
	}
	acct.RecordFailure(p.Amount, code, at)
	acct.Touch(ctx)
	if err := s.AccountRepo.Update(ctx, acct); err != nil {
		return err
	}

	if p.SubscriptionID != nil {
		return s.updateFailureCount(ctx, *p.SubscriptionID, func(cnt int) int { return cnt + 1 })
	}
	return nil
}

func (s *paymentProcessorService) updateFailureCount(ctx context.Context, subscriptionID string, next func(int) int) error {
	sub, err := s.SubRepo.Get(ctx, subscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil
		}
		return err
	}
	cnt := next(sub.PaymentFailureCnt)
	if cnt == sub.PaymentFailureCnt {
		return nil
	}
	sub.PaymentFailureCnt = cnt
	sub.Touch(ctx)
	return s.SubRepo.Update(ctx, sub)
}

// DuePaymentsResult summarizes a due payment run
type DuePaymentsResult struct {
	RunID            string   `json:"run_id"`
	Attempted        int      `json:"attempted"`
	Paid             int      `json:"paid"`
	Pending          int      `json:"pending"`
	Failed           int      `json:"failed"`
	RetriesScheduled int      `json:"retries_scheduled"`
	RetriesStopped   int      `json:"retries_stopped"`
	Errors           []string `json:"errors"`

	mu sync.Mutex
}

func (r *DuePaymentsResult) add(res *ProcessPaymentResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attempted++
	switch {
	case res.Code.IsSuccess():
		r.Paid++
	case res.Code.IsProcessing():
		r.Pending++
	default:
		r.Failed++
	}
	if res.Retry != nil && res.Retry.ScheduledPayment != nil {
		r.RetriesScheduled++
	}
	if res.RetryStopped {
		r.RetriesStopped++
	}
}

func (r *DuePaymentsResult) fail(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}

func (s *paymentProcessorService) ProcessDuePayments(ctx context.Context, now time.Time) (*DuePaymentsResult, error) {
	cfg := s.Config.Payments
	result := &DuePaymentsResult{
		RunID:  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_RUN),
		Errors: make([]string, 0),
	}

	ctx, finish := s.startTransaction(ctx, "payments.due_run")
	defer finish()

	due, err := s.PaymentRepo.ListDue(ctx, now, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("starting due payment run",
		"run_id", result.RunID,
		"now", now,
		"due_count", len(due),
	)

	var limiter *rate.Limiter
	if cfg.ChargesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ChargesPerSecond), max(1, cfg.WorkerCount))
	}

	p := pool.New().WithMaxGoroutines(max(1, cfg.WorkerCount))
	for _, dp := range due {
		paymentID := dp.ID
		p.Go(func() {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					result.fail(fmt.Sprintf("payment %s not attempted: %s", paymentID, err.Error()))
					return
				}
			}

			res, err := s.ProcessPayment(ctx, paymentID, now)
			if err != nil {
				result.fail(fmt.Sprintf("error processing payment %s: %s", paymentID, err.Error()))
				s.Logger.Errorw("error processing due payment",
					"payment_id", paymentID,
					"error", err,
				)
				if s.Sentry != nil {
					s.Sentry.CaptureExceptionWithTags(err, map[string]string{
						"payment_id": paymentID,
						"operation":  "due_payment_run",
					})
				}
				return
			}
			result.add(res)
		})
	}
	p.Wait()

	s.Logger.Infow("due payment run completed",
		"run_id", result.RunID,
		"attempted", result.Attempted,
		"paid", result.Paid,
		"pending", result.Pending,
		"failed", result.Failed,
		"retries_scheduled", result.RetriesScheduled,
		"retries_stopped", result.RetriesStopped,
		"errors_count", len(result.Errors),
	)
	return result, nil
}
