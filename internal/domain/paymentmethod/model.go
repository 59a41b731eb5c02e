package paymentmethod

import (
	"time"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
)

// PaymentMethod is a card or bank instrument owned by a customer
type PaymentMethod struct {
	ID          string                    `db:"id" json:"id"`
	CustomerID  string                    `db:"customer_id" json:"customer_id"`
	Type        types.PaymentMethodType   `db:"type" json:"type"`
	Status      types.PaymentMethodStatus `db:"status" json:"status"`
	FundingType *types.CardFundingType    `db:"funding_type" json:"funding_type,omitempty"`
	CardBrand   *string                   `db:"card_brand" json:"card_brand,omitempty"`
	CardLast4   *string                   `db:"card_last4" json:"card_last4,omitempty"`
	ExpMonth    *string                   `db:"exp_month" json:"exp_month,omitempty"`
	ExpYear     *string                   `db:"exp_year" json:"exp_year,omitempty"`
	Issuer      *string                   `db:"issuer" json:"issuer,omitempty"`
	// Default is maintained by the caller, at most one per customer
	Default   bool       `db:"is_default" json:"default"`
	Deleted   bool       `db:"deleted" json:"deleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy *string    `db:"deleted_by" json:"deleted_by,omitempty"`
	Memo      *string    `db:"memo" json:"memo,omitempty"`

	types.BaseModel
}

// IsValid reports whether the method may carry a payment
func (pm *PaymentMethod) IsValid() bool {
	return pm != nil && !pm.Deleted && pm.Status == types.PaymentMethodStatusValid
}

// IsCard reports whether the method is a card
func (pm *PaymentMethod) IsCard() bool {
	return pm.Type == types.PaymentMethodTypeCard
}

// Funding returns the card funding type, UNKNOWN when not reported
func (pm *PaymentMethod) Funding() types.CardFundingType {
	if pm.FundingType == nil {
		return types.CardFundingTypeUnknown
	}
	return *pm.FundingType
}

func (pm *PaymentMethod) Validate() error {
	if pm.CustomerID == "" {
		return ierr.NewError("invalid customer id").
			WithHint("Customer id is required").
			Mark(ierr.ErrValidation)
	}
	if err := pm.Type.Validate(); err != nil {
		return err
	}
	return pm.Status.Validate()
}

// PaymentMethodProcessor is a provider specific registration of a payment method
type PaymentMethodProcessor struct {
	ID                    string                `db:"id" json:"id"`
	PaymentMethodID       string                `db:"payment_method_id" json:"payment_method_id"`
	ProviderName          types.PaymentProvider `db:"provider_name" json:"provider_name"`
	ProcessorExternalID   *string               `db:"processor_external_id" json:"processor_external_id,omitempty"`
	ProviderAccountID     *string               `db:"provider_account_id" json:"provider_account_id,omitempty"`
	IsRecurring           bool                  `db:"is_recurring" json:"is_recurring"`
	ProcessorExternalData types.Metadata        `db:"processor_external_data" json:"processor_external_data,omitempty"`

	types.BaseModel
}

// IsTombstoned reports a registration that was removed at the provider
func (p *PaymentMethodProcessor) IsTombstoned() bool {
	return p.ProcessorExternalID != nil && *p.ProcessorExternalID == types.ProcessorExternalIDDeleted
}

func (p *PaymentMethodProcessor) Validate() error {
	if p.PaymentMethodID == "" {
		return ierr.NewError("invalid payment method id").
			WithHint("Payment method id is required").
			Mark(ierr.ErrValidation)
	}
	return p.ProviderName.Validate()
}
