package models

import (
	"time"

	ierr "github.com/flexprice/paycycle/internal/errors"
)

const (
	// DefaultAgingActivityTimeout bounds a single sweep
	DefaultAgingActivityTimeout = time.Minute * 30

	DefaultInitialInterval    = time.Second * 10
	DefaultMaximumInterval    = time.Minute * 5
	DefaultBackoffCoefficient = 2.0
	DefaultMaximumAttempts    = 3
)

// BillingCycleAgingWorkflowInput starts an aging run. RunAt overrides the
// reference time, the workflow's own clock is used when it is nil.
type BillingCycleAgingWorkflowInput struct {
	RunAt *time.Time `json:"run_at,omitempty"`
}

func (i BillingCycleAgingWorkflowInput) Validate() error {
	if i.RunAt != nil && i.RunAt.IsZero() {
		return ierr.NewError("run_at must not be the zero time").
			WithHint("Leave run_at empty to age against the current time").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingCycleAgingActivityInput is the reference time the activity ages against
type BillingCycleAgingActivityInput struct {
	Now time.Time `json:"now"`
}

func (i BillingCycleAgingActivityInput) Validate() error {
	if i.Now.IsZero() {
		return ierr.NewError("now is required").
			WithHint("Aging needs a reference time").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingCycleAgingWorkflowResult mirrors the sweep summary
type BillingCycleAgingWorkflowResult struct {
	RunID                  string    `json:"run_id"`
	Status                 string    `json:"status"`
	ProcessedCount         int       `json:"processed_count"`
	TransitionedTrials     int       `json:"transitioned_trials"`
	CreatedBillingCycles   int       `json:"created_billing_cycles"`
	CancelledSubscriptions int       `json:"cancelled_subscriptions"`
	UpdatedOverdue         int       `json:"updated_overdue"`
	SkippedLocked          int       `json:"skipped_locked"`
	ReleasedStaleLocks     int       `json:"released_stale_locks"`
	Errors                 []string  `json:"errors,omitempty"`
	CompletedAt            time.Time `json:"completed_at"`
}

const (
	WorkflowStatusCompleted = "completed"
	WorkflowStatusFailed    = "failed"
)
