package testutil

import (
	"context"
	"time"

	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/domain/account"
	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/domain/paymentmethod"
	"github.com/flexprice/paycycle/internal/domain/subscription"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/processor"
	"github.com/flexprice/paycycle/internal/sentry"
	"github.com/flexprice/paycycle/internal/types"
	"github.com/flexprice/paycycle/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	PaymentRepo       payment.Repository
	PaymentMethodRepo paymentmethod.Repository
	SubscriptionRepo  subscription.Repository
	BillingCycleRepo  billingcycle.Repository
	AccountRepo       account.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	payments   *InMemoryPaymentStore
	methods    *InMemoryPaymentMethodStore
	subs       *InMemorySubscriptionStore
	cycles     *InMemoryBillingCycleStore
	accounts   *InMemoryAccountStore
	faults     *Faults
	publisher  *InMemoryPublisherService
	db         *MockPostgresClient
	processors *processor.Registry
	simulated  map[types.PaymentProvider]*processor.Simulated
	sentry     *sentry.Service
	logger     *logger.Logger
	config     *config.Configuration
	now        time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Sentry.Enabled = false

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.sentry = sentry.NewSentryService(cfg, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.setupProcessors()
	s.now = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.payments = NewInMemoryPaymentStore()
	s.methods = NewInMemoryPaymentMethodStore()
	s.cycles = NewInMemoryBillingCycleStore()
	s.subs = NewInMemorySubscriptionStore(s.cycles)
	s.accounts = NewInMemoryAccountStore()
	s.faults = NewFaults()

	s.stores = Stores{
		PaymentRepo:       &FailingPaymentStore{Repository: s.payments, Faults: s.faults},
		PaymentMethodRepo: s.methods,
		SubscriptionRepo:  &FailingSubscriptionStore{Repository: s.subs, Faults: s.faults},
		BillingCycleRepo:  &FailingBillingCycleStore{Repository: s.cycles, Faults: s.faults},
		AccountRepo:       s.accounts,
	}

	s.db = NewMockPostgresClient(s.logger)
	s.publisher = NewInMemoryEventPublisher()
}

func (s *BaseServiceTestSuite) setupProcessors() {
	s.simulated = make(map[types.PaymentProvider]*processor.Simulated, len(types.PaymentProviders))
	s.processors = processor.NewRegistry()
	for _, provider := range types.PaymentProviders {
		sim := processor.NewSimulated(provider)
		s.simulated[provider] = sim
		s.processors.Register(sim)
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.payments.Clear()
	s.methods.Clear()
	s.subs.Clear()
	s.cycles.Clear()
	s.accounts.Clear()
	s.publisher.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPaymentStore returns the concrete payment store, for chain inspection
func (s *BaseServiceTestSuite) GetPaymentStore() *InMemoryPaymentStore {
	return s.payments
}

// GetFaults returns the fault table shared by the failing store wrappers
func (s *BaseServiceTestSuite) GetFaults() *Faults {
	return s.faults
}

// GetPublisher returns the test event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryPublisherService {
	return s.publisher
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetProcessors returns the registry of simulated processors
func (s *BaseServiceTestSuite) GetProcessors() *processor.Registry {
	return s.processors
}

// GetSimulated returns the simulated processor for provider
func (s *BaseServiceTestSuite) GetSimulated(provider types.PaymentProvider) *processor.Simulated {
	return s.simulated[provider]
}

// GetSentry returns a disabled sentry service
func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentry
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
