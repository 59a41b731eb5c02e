package temporal

import (
	"testing"
	"time"

	"github.com/flexprice/paycycle/internal/service"
	"github.com/flexprice/paycycle/internal/temporal/models"
	"github.com/flexprice/paycycle/internal/temporal/workflows"
	"github.com/flexprice/paycycle/internal/testutil"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"
)

type RegistrationSuite struct {
	testutil.BaseServiceTestSuite
	testsuite.WorkflowTestSuite
}

func TestRegistration(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

func (s *RegistrationSuite) serviceParams() service.ServiceParams {
	stores := s.GetStores()
	return service.NewServiceParams(
		s.BaseServiceTestSuite.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		stores.PaymentRepo,
		stores.PaymentMethodRepo,
		stores.SubscriptionRepo,
		stores.BillingCycleRepo,
		stores.AccountRepo,
		s.GetPublisher(),
		s.GetProcessors(),
		s.GetSentry(),
		nil,
	)
}

func (s *RegistrationSuite) TestAgingWorkflowAgainstStores() {
	now := s.GetNow()
	acct := s.CreateAccount("cust_temporal")
	sub, _ := s.CreateSubscription(acct, types.SubscriptionStatusTrial, types.BillingCycleStatusTrial,
		now.AddDate(0, 0, -14), now.Add(-time.Hour))

	env := s.NewTestWorkflowEnvironment()
	RegisterWorkflowsAndActivities(env, s.serviceParams())

	env.ExecuteWorkflow(workflows.BillingCycleAgingWorkflow, models.BillingCycleAgingWorkflowInput{RunAt: &now})

	s.True(env.IsWorkflowCompleted())
	s.Require().NoError(env.GetWorkflowError())

	var result models.BillingCycleAgingWorkflowResult
	s.Require().NoError(env.GetWorkflowResult(&result))
	s.Equal(models.WorkflowStatusCompleted, result.Status)
	s.Equal(1, result.ProcessedCount)
	s.Equal(1, result.TransitionedTrials)
	s.Empty(result.Errors)

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.Require().NoError(err)
	s.Equal(types.SubscriptionStatusActive, stored.Status)
}
