package types

import (
	"fmt"
	"strings"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/samber/lo"
)

// TemporalTaskQueue represents a logical grouping of workflows and activities
type TemporalTaskQueue string

const (
	TemporalTaskQueueBilling TemporalTaskQueue = "billing"
)

// String returns the string representation of the task queue
func (tq TemporalTaskQueue) String() string {
	return string(tq)
}

// Validate validates the task queue
func (tq TemporalTaskQueue) Validate() error {
	allowedQueues := []TemporalTaskQueue{
		TemporalTaskQueueBilling,
	}
	if lo.Contains(allowedQueues, tq) {
		return nil
	}
	return ierr.NewError("invalid task queue").
		WithHint(fmt.Sprintf("Task queue must be one of: %s", strings.Join(lo.Map(allowedQueues, func(tq TemporalTaskQueue, _ int) string { return string(tq) }), ", "))).
		Mark(ierr.ErrValidation)
}

// TemporalWorkflowType represents the type of workflow
type TemporalWorkflowType string

const (
	TemporalBillingCycleAgingWorkflow TemporalWorkflowType = "BillingCycleAgingWorkflow"
)

// String returns the string representation of the workflow type
func (w TemporalWorkflowType) String() string {
	return string(w)
}

// Validate validates the workflow type
func (w TemporalWorkflowType) Validate() error {
	allowedWorkflows := []TemporalWorkflowType{
		TemporalBillingCycleAgingWorkflow,
	}
	if lo.Contains(allowedWorkflows, w) {
		return nil
	}
	return ierr.NewError("invalid workflow type").
		WithHint(fmt.Sprintf("Workflow type must be one of: %s", strings.Join(lo.Map(allowedWorkflows, func(w TemporalWorkflowType, _ int) string { return string(w) }), ", "))).
		Mark(ierr.ErrValidation)
}

// TaskQueue returns the task queue the workflow runs on
func (w TemporalWorkflowType) TaskQueue() TemporalTaskQueue {
	return TemporalTaskQueueBilling
}

// WorkflowID builds a stable workflow id for the given identifier
func (w TemporalWorkflowType) WorkflowID(identifier string) string {
	return fmt.Sprintf("%s-%s", w, identifier)
}
