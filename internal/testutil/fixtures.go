package testutil

import (
	"time"

	"github.com/flexprice/paycycle/internal/domain/account"
	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/domain/paymentmethod"
	"github.com/flexprice/paycycle/internal/domain/subscription"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CreateAccount stores an open account for customerID
func (s *BaseServiceTestSuite) CreateAccount(customerID string) *account.CustomerAccount {
	acct := &account.CustomerAccount{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER_ACCOUNT),
		CustomerID: customerID,
		Type:       types.CustomerAccountTypeSubscription,
		Status:     types.BillingAccountStatusOpen,
		Rating:     types.BillingAccountRatingOK,
		Balance:    decimal.Zero,
		BaseModel:  types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(s.stores.AccountRepo.Create(s.ctx, acct))
	return acct
}

// CreateSubscription stores a subscription whose current cycle spans [start, end)
func (s *BaseServiceTestSuite) CreateSubscription(
	acct *account.CustomerAccount,
	status types.SubscriptionStatus,
	cycleStatus types.BillingCycleStatus,
	start, end time.Time,
) (*subscription.Subscription, *billingcycle.BillingCycle) {
	sub := &subscription.Subscription{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID:       acct.CustomerID,
		AccountID:        acct.ID,
		Type:             types.SubscriptionTypeMembership,
		Status:           status,
		ProcessingStatus: types.SubscriptionProcessingStatusNone,
		StartDate:        start,
		Amount:           s.config.Aging.CycleAmount,
		Currency:         s.config.Aging.Currency,
		BaseModel:        types.GetDefaultBaseModel(s.ctx),
	}
	bc := &billingcycle.BillingCycle{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_CYCLE),
		SubscriptionID: sub.ID,
		StartDate:      start,
		EndDate:        end,
		Status:         cycleStatus,
		PaymentAmount:  s.config.Aging.CycleAmount,
		BaseModel:      types.GetDefaultBaseModel(s.ctx),
	}
	sub.CurrentBillingCycleID = &bc.ID

	s.Require().NoError(s.stores.SubscriptionRepo.Create(s.ctx, sub))
	s.Require().NoError(s.stores.BillingCycleRepo.Create(s.ctx, bc))
	return sub, bc
}

// CreateCard stores a valid card for customerID with one registration per provider
func (s *BaseServiceTestSuite) CreateCard(
	customerID string,
	funding types.CardFundingType,
	isDefault bool,
	providers ...types.PaymentProvider,
) (*paymentmethod.PaymentMethod, map[types.PaymentProvider]*paymentmethod.PaymentMethodProcessor) {
	base := types.GetDefaultBaseModel(s.ctx)
	// keep creation order stable for first-eligible selection
	base.CreatedAt = base.CreatedAt.Add(time.Duration(len(s.methodsOf(customerID))) * time.Millisecond)

	pm := &paymentmethod.PaymentMethod{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_METHOD),
		CustomerID:  customerID,
		Type:        types.PaymentMethodTypeCard,
		Status:      types.PaymentMethodStatusValid,
		FundingType: lo.ToPtr(funding),
		CardBrand:   lo.ToPtr("visa"),
		CardLast4:   lo.ToPtr("4242"),
		Default:     isDefault,
		BaseModel:   base,
	}
	s.Require().NoError(s.stores.PaymentMethodRepo.Create(s.ctx, pm))

	registrations := make(map[types.PaymentProvider]*paymentmethod.PaymentMethodProcessor, len(providers))
	for i, provider := range providers {
		reg := &paymentmethod.PaymentMethodProcessor{
			ID:                  types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT_METHOD_PROCESSOR),
			PaymentMethodID:     pm.ID,
			ProviderName:        provider,
			ProcessorExternalID: lo.ToPtr("ext_" + types.GenerateUUID()),
			IsRecurring:         true,
			BaseModel:           base,
		}
		reg.CreatedAt = reg.CreatedAt.Add(time.Duration(i) * time.Millisecond)
		s.Require().NoError(s.stores.PaymentMethodRepo.CreateProcessor(s.ctx, reg))
		registrations[provider] = reg
	}
	return pm, registrations
}

func (s *BaseServiceTestSuite) methodsOf(customerID string) []*paymentmethod.PaymentMethod {
	methods, err := s.stores.PaymentMethodRepo.ListByCustomerID(s.ctx, customerID)
	s.Require().NoError(err)
	return methods
}

// CreatePayment stores a scheduled pull payment for the subscription's current cycle
func (s *BaseServiceTestSuite) CreatePayment(
	sub *subscription.Subscription,
	amount decimal.Decimal,
	track types.PaymentTrack,
	date time.Time,
) *payment.Payment {
	p := &payment.Payment{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		AccountID:       sub.AccountID,
		CustomerID:      sub.CustomerID,
		SubscriptionID:  lo.ToPtr(sub.ID),
		BillingCycleID:  sub.CurrentBillingCycleID,
		Amount:          amount,
		Currency:        sub.Currency,
		Type:            types.PaymentTypeSubscription,
		Direction:       types.PaymentDirectionPull,
		Status:          types.PaymentStatusScheduled,
		Track:           track,
		Date:            date,
		RetryRoutingCtx: types.RoutingContext{},
		BaseModel:       types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(s.stores.PaymentRepo.Create(s.ctx, p))
	return p
}
