package cron

import (
	"net/http"
	"time"

	"github.com/flexprice/paycycle/internal/api/dto"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/service"
	"github.com/gin-gonic/gin"
)

// PaymentHandler drives scheduled payment processing
type PaymentHandler struct {
	processor service.PaymentProcessorService
	logger    *logger.Logger
}

func NewPaymentHandler(processor service.PaymentProcessorService, logger *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		processor: processor,
		logger:    logger,
	}
}

func (h *PaymentHandler) bindReferenceDate(c *gin.Context) (time.Time, bool) {
	var req dto.ReferenceDateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Errorw("failed to parse request parameters", "error", err)
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return time.Time{}, false
		}
	}
	return req.Resolve(time.Now()), true
}

// ProcessPayment attempts a single scheduled payment
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	refDate, ok := h.bindReferenceDate(c)
	if !ok {
		return
	}

	result, err := h.processor.ProcessPayment(c.Request.Context(), id, refDate)
	if err != nil {
		h.logger.Errorw("failed to process payment", "payment_id", id, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewProcessPaymentResponse(result))
}

// ProcessDuePayments attempts one batch of due payments
func (h *PaymentHandler) ProcessDuePayments(c *gin.Context) {
	now, ok := h.bindReferenceDate(c)
	if !ok {
		return
	}

	h.logger.Infow("starting due payments cron job", "now", now.Format(time.RFC3339))

	result, err := h.processor.ProcessDuePayments(c.Request.Context(), now)
	if err != nil {
		h.logger.Errorw("failed to process due payments", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.DuePaymentsResponse{DuePaymentsResult: result})
}
