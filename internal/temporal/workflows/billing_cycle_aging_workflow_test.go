package workflows

import (
	"testing"
	"time"

	"github.com/flexprice/paycycle/internal/temporal/activities"
	"github.com/flexprice/paycycle/internal/temporal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type BillingCycleAgingWorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env        *testsuite.TestWorkflowEnvironment
	activities *activities.AgingActivities
}

func TestBillingCycleAgingWorkflow(t *testing.T) {
	suite.Run(t, new(BillingCycleAgingWorkflowSuite))
}

func (s *BillingCycleAgingWorkflowSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.activities = activities.NewAgingActivities(nil)
	s.env.RegisterWorkflow(BillingCycleAgingWorkflow)
	s.env.RegisterActivity(s.activities.RunBillingCycleAging)
}

func (s *BillingCycleAgingWorkflowSuite) TearDownTest() {
	s.env.AssertExpectations(s.T())
}

func (s *BillingCycleAgingWorkflowSuite) TestRunAtOverridesWorkflowClock() {
	runAt := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	s.env.OnActivity(s.activities.RunBillingCycleAging, mock.Anything, mock.MatchedBy(func(in models.BillingCycleAgingActivityInput) bool {
		return in.Now.Equal(runAt)
	})).Return(&models.BillingCycleAgingWorkflowResult{
		RunID:                "aging_run",
		Status:               models.WorkflowStatusCompleted,
		ProcessedCount:       3,
		TransitionedTrials:   1,
		CreatedBillingCycles: 2,
		Errors:               []string{"error processing subscription subs_1: boom"},
	}, nil).Once()

	s.env.ExecuteWorkflow(BillingCycleAgingWorkflow, models.BillingCycleAgingWorkflowInput{RunAt: &runAt})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result models.BillingCycleAgingWorkflowResult
	s.Require().NoError(s.env.GetWorkflowResult(&result))
	s.Equal("aging_run", result.RunID)
	s.Equal(models.WorkflowStatusCompleted, result.Status)
	s.Equal(3, result.ProcessedCount)
	s.Equal(2, result.CreatedBillingCycles)
	s.Len(result.Errors, 1)
	s.False(result.CompletedAt.IsZero())
}

func (s *BillingCycleAgingWorkflowSuite) TestDefaultsToWorkflowClock() {
	start := time.Date(2026, time.April, 1, 6, 30, 0, 0, time.UTC)
	s.env.SetStartTime(start)

	s.env.OnActivity(s.activities.RunBillingCycleAging, mock.Anything, mock.MatchedBy(func(in models.BillingCycleAgingActivityInput) bool {
		return in.Now.Equal(start)
	})).Return(&models.BillingCycleAgingWorkflowResult{Status: models.WorkflowStatusCompleted}, nil).Once()

	s.env.ExecuteWorkflow(BillingCycleAgingWorkflow, models.BillingCycleAgingWorkflowInput{})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *BillingCycleAgingWorkflowSuite) TestActivityFailureIsReported() {
	s.env.OnActivity(s.activities.RunBillingCycleAging, mock.Anything, mock.Anything).
		Return(nil, temporal.NewNonRetryableApplicationError("database unavailable", "database", nil))

	s.env.ExecuteWorkflow(BillingCycleAgingWorkflow, models.BillingCycleAgingWorkflowInput{})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result models.BillingCycleAgingWorkflowResult
	s.Require().NoError(s.env.GetWorkflowResult(&result))
	s.Equal(models.WorkflowStatusFailed, result.Status)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], "database unavailable")
}

func (s *BillingCycleAgingWorkflowSuite) TestRejectsZeroRunAt() {
	zero := time.Time{}
	s.env.ExecuteWorkflow(BillingCycleAgingWorkflow, models.BillingCycleAgingWorkflowInput{RunAt: &zero})

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}
