package temporal

import (
	"github.com/flexprice/paycycle/internal/service"
	"github.com/flexprice/paycycle/internal/temporal/activities"
	"github.com/flexprice/paycycle/internal/temporal/workflows"
	"go.temporal.io/sdk/worker"
)

// Registry is the subset of worker.Worker used for registration, satisfied
// by both the real worker and the SDK test environments
type Registry interface {
	RegisterWorkflow(w interface{})
	RegisterActivity(a interface{})
}

var _ Registry = (worker.Worker)(nil)

// RegisterWorkflowsAndActivities registers all workflows and activities with a Temporal worker.
func RegisterWorkflowsAndActivities(r Registry, params service.ServiceParams) {
	// function and method names double as the registered names
	r.RegisterWorkflow(workflows.BillingCycleAgingWorkflow)

	agingActivities := activities.NewAgingActivities(service.NewBillingCycleAgingService(params))
	r.RegisterActivity(agingActivities.RunBillingCycleAging)

	params.Logger.Infow("temporal workflows and activities registered",
		"workflows", []string{workflows.WorkflowBillingCycleAging},
		"activities", []string{activities.ActivityRunBillingCycleAging},
	)
}
