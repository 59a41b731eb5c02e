package activities

import (
	"context"

	"github.com/flexprice/paycycle/internal/service"
	"github.com/flexprice/paycycle/internal/temporal/models"
	"github.com/flexprice/paycycle/internal/types"
	"go.temporal.io/sdk/activity"
)

// ActivityRunBillingCycleAging must match the registered method name
const ActivityRunBillingCycleAging = "RunBillingCycleAging"

type AgingActivities struct {
	agingService service.BillingCycleAgingService
}

func NewAgingActivities(agingService service.BillingCycleAgingService) *AgingActivities {
	return &AgingActivities{
		agingService: agingService,
	}
}

// RunBillingCycleAging runs one aging sweep. Per-subscription failures are
// reported in the result and do not fail the activity.
func (a *AgingActivities) RunBillingCycleAging(ctx context.Context, input models.BillingCycleAgingActivityInput) (*models.BillingCycleAgingWorkflowResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	logger := activity.GetLogger(ctx)
	logger.Info("Running billing cycle aging", "now", input.Now)

	ctx = types.SetUserID(ctx, types.SystemUserID)
	result, err := a.agingService.RunAging(ctx, input.Now)
	if err != nil {
		return nil, err
	}

	return &models.BillingCycleAgingWorkflowResult{
		RunID:                  result.RunID,
		Status:                 models.WorkflowStatusCompleted,
		ProcessedCount:         result.ProcessedCount,
		TransitionedTrials:     result.TransitionedTrials,
		CreatedBillingCycles:   result.CreatedBillingCycles,
		CancelledSubscriptions: result.CancelledSubscriptions,
		UpdatedOverdue:         result.UpdatedOverdue,
		SkippedLocked:          result.SkippedLocked,
		ReleasedStaleLocks:     result.ReleasedStaleLocks,
		Errors:                 result.Errors,
	}, nil
}
