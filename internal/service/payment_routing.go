package service

import (
	"context"

	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/domain/paymentmethod"
	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/samber/lo"
)

// RoutingService selects the payment method and processor registration that
// carry a payment attempt
type RoutingService interface {
	// RoutePayment attaches a method and a processor to the payment when it can
	// and returns the payment as persisted. Finding no route is not an error.
	RoutePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error)

	// Route is RoutePayment returning the selected method and registration as well
	Route(ctx context.Context, p *payment.Payment) (*RouteResult, error)
}

// RouteResult is the outcome of routing a payment. PaymentMethod and
// Processor are nil when no method or no eligible processor was found.
type RouteResult struct {
	Payment       *payment.Payment
	PaymentMethod *paymentmethod.PaymentMethod
	Processor     *paymentmethod.PaymentMethodProcessor
}

// NoRouteCode is the status code recorded when the route is incomplete
func (r *RouteResult) NoRouteCode() (types.PaymentStatusCode, bool) {
	switch {
	case r.PaymentMethod == nil:
		return types.NoValidPaymentMethodCode(r.Payment.Track), true
	case r.Processor == nil:
		return types.NoRemainingProcessorCode(r.Payment.Track), true
	}
	return 0, false
}

type routingService struct {
	ServiceParams
}

func NewRoutingService(params ServiceParams) RoutingService {
	return &routingService{
		ServiceParams: params,
	}
}

func (s *routingService) RoutePayment(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	result, err := s.Route(ctx, p)
	if err != nil {
		return nil, err
	}
	return result.Payment, nil
}

func (s *routingService) Route(ctx context.Context, p *payment.Payment) (*RouteResult, error) {
	if p == nil {
		return nil, ierr.NewError("payment is required").
			WithHint("A payment is required for routing").
			Mark(ierr.ErrValidation)
	}

	var result *RouteResult
	// serializable so two concurrent routings of one payment can not attach different processors
	err := s.DB.RetriableTx(ctx, func(ctx context.Context) error {
		current, err := s.PaymentRepo.Get(ctx, p.ID)
		if err != nil {
			return err
		}
		result, err = s.route(ctx, current)
		return err
	})
	if err != nil {
		s.Logger.Errorw("failed to route payment",
			"payment_id", p.ID,
			"track", p.Track,
			"error", err,
		)
		return nil, err
	}
	return result, nil
}

func (s *routingService) route(ctx context.Context, p *payment.Payment) (*RouteResult, error) {
	s.Logger.Debugw("starting payment routing",
		"payment_id", p.ID,
		"customer_id", p.CustomerID,
		"amount", p.Amount,
		"track", p.Track,
		"retry_routing_ctx", p.RetryRoutingCtx,
	)

	result := &RouteResult{Payment: p}

	pm, err := s.selectPaymentMethod(ctx, p)
	if err != nil {
		return nil, err
	}
	if pm == nil {
		s.Logger.Infow("payment routing unsuccessful, no payment method for track",
			"payment_id", p.ID,
			"track", p.Track,
		)
		return result, nil
	}
	result.PaymentMethod = pm

	changed := false
	if lo.FromPtr(p.PaymentMethodID) != pm.ID {
		p.PaymentMethodID = lo.ToPtr(pm.ID)
		// a registration always belongs to the attached method
		p.PaymentMethodProcessorID = nil
		changed = true
	}

	reg, err := s.selectProcessor(ctx, p, pm)
	if err != nil {
		return nil, err
	}
	if reg != nil {
		result.Processor = reg
		if lo.FromPtr(p.PaymentMethodProcessorID) != reg.ID {
			p.PaymentMethodProcessorID = lo.ToPtr(reg.ID)
			changed = true
		}
	} else if p.PaymentMethodProcessorID != nil {
		p.PaymentMethodProcessorID = nil
		changed = true
	}

	if changed {
		p.Touch(ctx)
		if err := s.PaymentRepo.Update(ctx, p); err != nil {
			return nil, err
		}
	}

	if reg == nil {
		s.Logger.Infow("payment routing unsuccessful, no eligible processor",
			"payment_id", p.ID,
			"payment_method_id", pm.ID,
			"track", p.Track,
		)
		return result, nil
	}

	s.Logger.Infow("payment routed",
		"payment_id", p.ID,
		"payment_method_id", pm.ID,
		"processor_id", reg.ID,
		"provider", reg.ProviderName,
	)
	return result, nil
}

// selectPaymentMethod keeps a valid attached method, otherwise picks the
// customer's default eligible method for the track, otherwise the first one
func (s *routingService) selectPaymentMethod(ctx context.Context, p *payment.Payment) (*paymentmethod.PaymentMethod, error) {
	if p.PaymentMethodID != nil {
		attached, err := s.PaymentMethodRepo.Get(ctx, *p.PaymentMethodID)
		if err != nil && !ierr.IsNotFound(err) {
			return nil, err
		}
		if err == nil && attached.IsValid() {
			return attached, nil
		}
	}

	var eligible func(pm *paymentmethod.PaymentMethod) bool
	switch p.Track {
	case types.PaymentTrackBankCard:
		eligible = func(pm *paymentmethod.PaymentMethod) bool {
			return pm.IsCard() && pm.IsValid() && pm.Funding().IsBankCard()
		}
	case types.PaymentTrackAnyCard:
		eligible = func(pm *paymentmethod.PaymentMethod) bool {
			return pm.IsCard() && pm.IsValid()
		}
	default:
		// bank transfers are not routed to card processors
		return nil, nil
	}

	methods, err := s.PaymentMethodRepo.ListByCustomerID(ctx, p.CustomerID)
	if err != nil {
		return nil, err
	}

	candidates := lo.Filter(methods, func(pm *paymentmethod.PaymentMethod, _ int) bool {
		return eligible(pm)
	})
	if len(candidates) == 0 {
		return nil, nil
	}
	if def, ok := lo.Find(candidates, func(pm *paymentmethod.PaymentMethod) bool { return pm.Default }); ok {
		return def, nil
	}
	return candidates[0], nil
}

// selectProcessor applies provider priority: provider 1, then provider 2 when
// it does not compete with 3 or 4 or the amount is high, then 3, then 4
func (s *routingService) selectProcessor(ctx context.Context, p *payment.Payment, pm *paymentmethod.PaymentMethod) (*paymentmethod.PaymentMethodProcessor, error) {
	registrations, err := s.PaymentMethodRepo.ListProcessors(ctx, pm.ID)
	if err != nil {
		return nil, err
	}

	byProvider := make(map[types.PaymentProvider]*paymentmethod.PaymentMethodProcessor, len(types.PaymentProviders))
	for _, reg := range registrations {
		if reg.IsTombstoned() {
			continue
		}
		if _, seen := byProvider[reg.ProviderName]; !seen {
			byProvider[reg.ProviderName] = reg
		}
	}

	eligible := make(map[types.PaymentProvider]bool, len(types.PaymentProviders))
	for _, provider := range types.PaymentProviders {
		_, registered := byProvider[provider]
		eligible[provider] = registered && !p.RetryRoutingCtx.Has(provider.ExclusionTag())
	}
	if pm.Funding() == types.CardFundingTypeCredit {
		eligible[types.PaymentProvider2] = false
	}

	highValue := p.Amount.GreaterThanOrEqual(s.Config.Routing.HighValueThreshold)

	s.Logger.Debugw("processor eligibility",
		"payment_id", p.ID,
		"payment_method_id", pm.ID,
		"funding_type", pm.Funding(),
		"high_value", highValue,
		"provider_1_eligible", eligible[types.PaymentProvider1],
		"provider_2_eligible", eligible[types.PaymentProvider2],
		"provider_3_eligible", eligible[types.PaymentProvider3],
		"provider_4_eligible", eligible[types.PaymentProvider4],
	)

	switch {
	case eligible[types.PaymentProvider1]:
		return byProvider[types.PaymentProvider1], nil
	case eligible[types.PaymentProvider2] &&
		(!eligible[types.PaymentProvider3] || highValue) &&
		(!eligible[types.PaymentProvider4] || highValue):
		return byProvider[types.PaymentProvider2], nil
	case eligible[types.PaymentProvider3]:
		return byProvider[types.PaymentProvider3], nil
	case eligible[types.PaymentProvider4]:
		return byProvider[types.PaymentProvider4], nil
	}
	return nil, nil
}
