package dto

import "github.com/flexprice/paycycle/internal/service"

// RunAgingRequest triggers an aging sweep. Async hands the run to the
// workflow engine instead of sweeping in the request.
type RunAgingRequest struct {
	ReferenceDateRequest
	Async bool `json:"async"`
}

type AgingResponse struct {
	*service.AgingResult
}

// ScheduledAgingResponse is returned when the sweep was handed to a workflow
type ScheduledAgingResponse struct {
	WorkflowID string `json:"workflow_id"`
	Status     string `json:"status"`
}
