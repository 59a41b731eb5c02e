package v1

import (
	"net/http"
	"time"

	"github.com/flexprice/paycycle/internal/api/dto"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/service"
	"github.com/gin-gonic/gin"
)

type MembershipHandler struct {
	service service.SubscriptionService
	log     *logger.Logger
}

func NewMembershipHandler(service service.SubscriptionService, log *logger.Logger) *MembershipHandler {
	return &MembershipHandler{service: service, log: log}
}

// request pulls the customer id from the path and the optional reference date from the body
func (h *MembershipHandler) request(c *gin.Context) (string, time.Time, bool) {
	customerID := c.Param("customer_id")
	if customerID == "" {
		c.Error(ierr.NewError("customer_id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation))
		return "", time.Time{}, false
	}

	var req dto.ReferenceDateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.log.Errorw("failed to bind JSON", "error", err)
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return "", time.Time{}, false
		}
	}
	return customerID, req.Resolve(time.Now()), true
}

// @Summary Start a trial membership
// @Tags Memberships
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Success 201 {object} dto.MembershipResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /customers/{customer_id}/membership/trial [post]
func (h *MembershipHandler) StartTrial(c *gin.Context) {
	customerID, now, ok := h.request(c)
	if !ok {
		return
	}

	result, err := h.service.StartTrial(c.Request.Context(), customerID, now)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMembershipResponse(result))
}

// @Summary Cancel a membership at the end of the current cycle
// @Tags Memberships
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Success 200 {object} dto.MembershipResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /customers/{customer_id}/membership/cancel [post]
func (h *MembershipHandler) Cancel(c *gin.Context) {
	customerID, now, ok := h.request(c)
	if !ok {
		return
	}

	result, err := h.service.CancelSubscription(c.Request.Context(), customerID, now)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMembershipResponse(result))
}

// @Summary Restart a cancelled membership
// @Tags Memberships
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Success 200 {object} dto.MembershipResponse
// @Router /customers/{customer_id}/membership/restart [post]
func (h *MembershipHandler) Restart(c *gin.Context) {
	customerID, now, ok := h.request(c)
	if !ok {
		return
	}

	result, err := h.service.RestartMembership(c.Request.Context(), customerID, now)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMembershipResponse(result))
}

// @Summary Get membership status
// @Tags Memberships
// @Produce json
// @Param customer_id path string true "Customer ID"
// @Success 200 {object} dto.MembershipStatusResponse
// @Router /customers/{customer_id}/membership [get]
func (h *MembershipHandler) GetStatus(c *gin.Context) {
	customerID, now, ok := h.request(c)
	if !ok {
		return
	}

	status, err := h.service.GetMembershipStatus(c.Request.Context(), customerID, now)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.MembershipStatusResponse{MembershipStatus: status})
}
