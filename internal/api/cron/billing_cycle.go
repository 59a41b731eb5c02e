package cron

import (
	"net/http"
	"time"

	"github.com/flexprice/paycycle/internal/api/dto"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/service"
	"github.com/flexprice/paycycle/internal/temporal"
	"github.com/gin-gonic/gin"
)

// BillingCycleHandler triggers billing cycle aging
type BillingCycleHandler struct {
	agingService    service.BillingCycleAgingService
	temporalService *temporal.Service
	logger          *logger.Logger
}

// NewBillingCycleHandler creates a new billing cycle handler. temporalService
// may be nil, async runs are then refused.
func NewBillingCycleHandler(
	agingService service.BillingCycleAgingService,
	temporalService *temporal.Service,
	logger *logger.Logger,
) *BillingCycleHandler {
	return &BillingCycleHandler{
		agingService:    agingService,
		temporalService: temporalService,
		logger:          logger,
	}
}

// RunAging sweeps the subscriptions whose billing cycle is ending
func (h *BillingCycleHandler) RunAging(c *gin.Context) {
	var req dto.RunAgingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Errorw("failed to parse aging request", "error", err)
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	ctx := c.Request.Context()
	now := req.Resolve(time.Now())

	if req.Async {
		if h.temporalService == nil {
			c.Error(ierr.NewError("workflow engine not configured").
				WithHint("Async aging runs are not available").
				Mark(ierr.ErrInvalidOperation))
			return
		}
		workflowID, err := h.temporalService.TriggerBillingCycleAging(ctx, now)
		if err != nil {
			h.logger.Errorw("failed to start aging workflow", "error", err)
			c.Error(err)
			return
		}
		c.JSON(http.StatusAccepted, dto.ScheduledAgingResponse{
			WorkflowID: workflowID,
			Status:     "scheduled",
		})
		return
	}

	h.logger.Infow("starting billing cycle aging cron job", "now", now.Format(time.RFC3339))

	result, err := h.agingService.RunAging(ctx, now)
	if err != nil {
		h.logger.Errorw("failed to run billing cycle aging", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.AgingResponse{AgingResult: result})
}
