package types

import (
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/samber/lo"
)

// PaymentMethodStatus is the verification state of a customer's instrument
type PaymentMethodStatus string

const (
	PaymentMethodStatusProcessing PaymentMethodStatus = "PROCESSING"
	PaymentMethodStatusValid      PaymentMethodStatus = "VALID"
	PaymentMethodStatusInvalid    PaymentMethodStatus = "INVALID"
	PaymentMethodStatusDeleted    PaymentMethodStatus = "DELETED"
	PaymentMethodStatusBlocked    PaymentMethodStatus = "BLOCKED"
	PaymentMethodStatusExpired    PaymentMethodStatus = "EXPIRED"
)

func (s PaymentMethodStatus) Validate() error {
	allowed := []PaymentMethodStatus{
		PaymentMethodStatusProcessing,
		PaymentMethodStatusValid,
		PaymentMethodStatusInvalid,
		PaymentMethodStatusDeleted,
		PaymentMethodStatusBlocked,
		PaymentMethodStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment method status").
			WithHint("Invalid payment method status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentMethodType represents the type of payment method
type PaymentMethodType string

const (
	PaymentMethodTypeCard PaymentMethodType = "CARD"
	PaymentMethodTypeBank PaymentMethodType = "BANK"
)

func (t PaymentMethodType) Validate() error {
	allowed := []PaymentMethodType{PaymentMethodTypeCard, PaymentMethodTypeBank}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid payment method type").
			WithHint("Invalid payment method type").
			WithReportableDetails(map[string]any{
				"type":         t,
				"allowed_type": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CardFundingType is the funding source behind a card
type CardFundingType string

const (
	CardFundingTypeCredit  CardFundingType = "CREDIT"
	CardFundingTypeDebit   CardFundingType = "DEBIT"
	CardFundingTypePrepaid CardFundingType = "PREPAID"
	CardFundingTypeUnknown CardFundingType = "UNKNOWN"
)

// IsBankCard reports whether the card draws directly on a bank balance
func (f CardFundingType) IsBankCard() bool {
	return f == CardFundingTypeDebit || f == CardFundingTypePrepaid
}

// PaymentProvider identifies one of the interchangeable downstream processors
type PaymentProvider string

const (
	PaymentProvider1 PaymentProvider = "PROVIDER_1"
	PaymentProvider2 PaymentProvider = "PROVIDER_2"
	PaymentProvider3 PaymentProvider = "PROVIDER_3"
	PaymentProvider4 PaymentProvider = "PROVIDER_4"
)

// PaymentProviders lists every provider in routing priority order
var PaymentProviders = []PaymentProvider{
	PaymentProvider1,
	PaymentProvider2,
	PaymentProvider3,
	PaymentProvider4,
}

func (p PaymentProvider) String() string {
	return string(p)
}

func (p PaymentProvider) Validate() error {
	if !lo.Contains(PaymentProviders, p) {
		return ierr.NewError("invalid payment provider").
			WithHint("Invalid payment provider").
			WithReportableDetails(map[string]any{
				"provider":         p,
				"allowed_provider": PaymentProviders,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ExclusionTag is the routing context tag that removes the provider from routing
func (p PaymentProvider) ExclusionTag() RoutingContextTag {
	switch p {
	case PaymentProvider1:
		return RoutingContextNoProvider1
	case PaymentProvider2:
		return RoutingContextNoProvider2
	case PaymentProvider3:
		return RoutingContextNoProvider3
	case PaymentProvider4:
		return RoutingContextNoProvider4
	}
	return ""
}

// RoutingContextTag is a processor exclusion accumulated across a retry chain
type RoutingContextTag string

const (
	RoutingContextNoProvider1 RoutingContextTag = "NO_PROVIDER_1"
	RoutingContextNoProvider2 RoutingContextTag = "NO_PROVIDER_2"
	RoutingContextNoProvider3 RoutingContextTag = "NO_PROVIDER_3"
	RoutingContextNoProvider4 RoutingContextTag = "NO_PROVIDER_4"
)

// ProcessorExternalIDDeleted marks a tombstoned processor registration
const ProcessorExternalIDDeleted = "DELETED"

// RoutingContext is the set of exclusion tags carried by a payment
type RoutingContext []RoutingContextTag

// Has reports whether tag is present
func (r RoutingContext) Has(tag RoutingContextTag) bool {
	return lo.Contains(r, tag)
}

// Union returns the set union of r and patch, preserving first-seen order
func (r RoutingContext) Union(patch RoutingContext) RoutingContext {
	return lo.Uniq(append(append(RoutingContext{}, r...), patch...))
}
