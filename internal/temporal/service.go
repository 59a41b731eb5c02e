package temporal

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/config"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/temporal/models"
	"github.com/flexprice/paycycle/internal/temporal/workflows"
	"github.com/flexprice/paycycle/internal/types"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

// Service starts workflows on behalf of the application
type Service struct {
	client *TemporalClient
	log    *logger.Logger
	cfg    config.TemporalConfig
}

func NewService(client *TemporalClient, cfg *config.Configuration, log *logger.Logger) *Service {
	return &Service{
		client: client,
		log:    log,
		cfg:    cfg.Temporal,
	}
}

// StartBillingCycleAgingCron schedules the recurring aging workflow. It is
// idempotent: an already running cron execution is left in place.
func (s *Service) StartBillingCycleAgingCron(ctx context.Context) error {
	if s.cfg.AgingCron == "" {
		s.log.Infow("billing cycle aging cron disabled")
		return nil
	}

	workflowID := types.TemporalBillingCycleAgingWorkflow.WorkflowID("cron")
	we, err := s.client.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           workflowID,
		TaskQueue:    s.cfg.TaskQueue,
		CronSchedule: s.cfg.AgingCron,
	}, workflows.WorkflowBillingCycleAging, models.BillingCycleAgingWorkflowInput{})
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if ierr.As(err, &alreadyStarted) {
			s.log.Infow("billing cycle aging cron already scheduled", "workflow_id", workflowID)
			return nil
		}
		return ierr.WithError(err).
			WithHint("Failed to schedule billing cycle aging").
			Mark(ierr.ErrSystem)
	}

	s.log.Infow("scheduled billing cycle aging cron",
		"workflow_id", workflowID,
		"run_id", we.GetRunID(),
		"cron", s.cfg.AgingCron,
	)
	return nil
}

// TriggerBillingCycleAging starts a one-off aging run against runAt
func (s *Service) TriggerBillingCycleAging(ctx context.Context, runAt time.Time) (string, error) {
	workflowID := types.TemporalBillingCycleAgingWorkflow.WorkflowID(types.GenerateUUID())
	we, err := s.client.Client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: s.cfg.TaskQueue,
	}, workflows.WorkflowBillingCycleAging, models.BillingCycleAgingWorkflowInput{RunAt: &runAt})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to start billing cycle aging").
			Mark(ierr.ErrSystem)
	}

	s.log.Infow("started billing cycle aging workflow",
		"workflow_id", workflowID,
		"run_id", we.GetRunID(),
		"run_at", runAt,
	)
	return workflowID, nil
}
