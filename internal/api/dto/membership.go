package dto

import (
	"github.com/flexprice/paycycle/internal/domain/account"
	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	"github.com/flexprice/paycycle/internal/domain/subscription"
	"github.com/flexprice/paycycle/internal/service"
)

// MembershipResponse is returned by the lifecycle endpoints
type MembershipResponse struct {
	Subscription *subscription.Subscription `json:"subscription"`
	BillingCycle *billingcycle.BillingCycle `json:"billing_cycle,omitempty"`
	Account      *account.CustomerAccount   `json:"account,omitempty"`
}

func NewMembershipResponse(result *service.MembershipResult) *MembershipResponse {
	return &MembershipResponse{
		Subscription: result.Subscription,
		BillingCycle: result.BillingCycle,
		Account:      result.Account,
	}
}

type MembershipStatusResponse struct {
	*service.MembershipStatus
}
