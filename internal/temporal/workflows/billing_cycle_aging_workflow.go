package workflows

import (
	"github.com/flexprice/paycycle/internal/temporal/activities"
	"github.com/flexprice/paycycle/internal/temporal/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// WorkflowBillingCycleAging must match the function name
const WorkflowBillingCycleAging = "BillingCycleAgingWorkflow"

// BillingCycleAgingWorkflow runs one aging sweep. It is started on a cron
// schedule so each run is a fresh execution.
func BillingCycleAgingWorkflow(ctx workflow.Context, input models.BillingCycleAgingWorkflowInput) (*models.BillingCycleAgingWorkflowResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	logger := workflow.GetLogger(ctx)

	now := workflow.Now(ctx).UTC()
	if input.RunAt != nil {
		now = input.RunAt.UTC()
	}
	logger.Info("Starting billing cycle aging workflow", "now", now)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: models.DefaultAgingActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    models.DefaultInitialInterval,
			BackoffCoefficient: models.DefaultBackoffCoefficient,
			MaximumInterval:    models.DefaultMaximumInterval,
			MaximumAttempts:    models.DefaultMaximumAttempts,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var result models.BillingCycleAgingWorkflowResult
	err := workflow.ExecuteActivity(ctx, activities.ActivityRunBillingCycleAging, models.BillingCycleAgingActivityInput{
		Now: now,
	}).Get(ctx, &result)
	if err != nil {
		logger.Error("Billing cycle aging failed", "error", err)
		errorMsg := err.Error()
		return &models.BillingCycleAgingWorkflowResult{
			Status:      models.WorkflowStatusFailed,
			Errors:      []string{errorMsg},
			CompletedAt: workflow.Now(ctx),
		}, nil
	}

	logger.Info("Billing cycle aging completed",
		"run_id", result.RunID,
		"processed_count", result.ProcessedCount,
		"errors_count", len(result.Errors))

	result.CompletedAt = workflow.Now(ctx)
	return &result, nil
}
