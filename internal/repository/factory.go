package repository

import (
	"github.com/flexprice/paycycle/internal/domain/account"
	"github.com/flexprice/paycycle/internal/domain/billingcycle"
	"github.com/flexprice/paycycle/internal/domain/payment"
	"github.com/flexprice/paycycle/internal/domain/paymentmethod"
	"github.com/flexprice/paycycle/internal/domain/subscription"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
	postgresRepo "github.com/flexprice/paycycle/internal/repository/postgres"
)

type RepositoryType string

const (
	PostgresRepo RepositoryType = "postgres"
)

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewPaymentMethodRepository(db *postgres.DB, logger *logger.Logger) paymentmethod.Repository {
	return postgresRepo.NewPaymentMethodRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewBillingCycleRepository(db *postgres.DB, logger *logger.Logger) billingcycle.Repository {
	return postgresRepo.NewBillingCycleRepository(db, logger)
}

func NewAccountRepository(db *postgres.DB, logger *logger.Logger) account.Repository {
	return postgresRepo.NewAccountRepository(db, logger)
}
