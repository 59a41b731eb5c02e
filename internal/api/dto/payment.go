package dto

import (
	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/service"
	"github.com/flexprice/paycycle/internal/types"
)

// ProcessPaymentResponse reports the outcome of one processing attempt
type ProcessPaymentResponse struct {
	Payment      *payment.Payment        `json:"payment"`
	Code         types.PaymentStatusCode `json:"code"`
	CodeName     string                  `json:"code_name"`
	RetryAction  types.RetryAction       `json:"retry_action,omitempty"`
	RetryPayment *payment.Payment        `json:"retry_payment,omitempty"`
	AlertRaised  bool                    `json:"alert_raised"`
	RetryStopped bool                    `json:"retry_stopped"`
}

func NewProcessPaymentResponse(result *service.ProcessPaymentResult) *ProcessPaymentResponse {
	resp := &ProcessPaymentResponse{
		Payment:      result.Payment,
		Code:         result.Code,
		CodeName:     result.Code.String(),
		RetryStopped: result.RetryStopped,
	}
	if result.Retry != nil {
		resp.RetryAction = result.Retry.Action
		resp.RetryPayment = result.Retry.ScheduledPayment
		resp.AlertRaised = result.Retry.AlertRequired
	}
	return resp
}

type DuePaymentsResponse struct {
	*service.DuePaymentsResult
}
