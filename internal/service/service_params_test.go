package service

import "github.com/flexprice/paycycle/internal/testutil"

// newTestServiceParams wires every service dependency to the suite's in-memory fakes
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		DB:                s.GetDB(),
		PaymentRepo:       stores.PaymentRepo,
		PaymentMethodRepo: stores.PaymentMethodRepo,
		SubRepo:           stores.SubscriptionRepo,
		BillingCycleRepo:  stores.BillingCycleRepo,
		AccountRepo:       stores.AccountRepo,
		EventPublisher:    s.GetPublisher(),
		Processors:        s.GetProcessors(),
		Sentry:            s.GetSentry(),
	}
}
