package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/paycycle/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment  DeploymentConfig  `validate:"required"`
	Server      ServerConfig      `validate:"required"`
	Logging     LoggingConfig     `validate:"required"`
	Postgres    PostgresConfig    `validate:"required"`
	Transaction TransactionConfig `validate:"required"`
	Aging       AgingConfig       `validate:"required"`
	Routing     RoutingConfig     `validate:"required"`
	Payments    PaymentRunConfig  `validate:"required"`
	Temporal    TemporalConfig
	Kafka       KafkaConfig
	Event       EventConfig
	Sentry      SentryConfig
	Pyroscope   PyroscopeConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" default:"10"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" default:"5"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" default:"60"`
	AutoMigrate            bool   `mapstructure:"auto_migrate" default:"false"`
	MigrationsPath         string `mapstructure:"migrations_path" default:"migrations/postgres"`
}

// TransactionConfig bounds the retry budget for serializable transactions
type TransactionConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=1"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// AgingConfig drives the billing cycle aging sweep
type AgingConfig struct {
	LookAheadWindow time.Duration   `mapstructure:"look_ahead_window" validate:"required"`
	StaleLockAfter  time.Duration   `mapstructure:"stale_lock_after"`
	WorkerCount     int             `mapstructure:"worker_count" validate:"min=1"`
	CycleAmount     decimal.Decimal `mapstructure:"cycle_amount"`
	Currency        string          `mapstructure:"currency" validate:"required"`
	TrialDays       int             `mapstructure:"trial_days" validate:"min=0"`
}

// PaymentRunConfig bounds a due payment run
type PaymentRunConfig struct {
	BatchSize   int `mapstructure:"batch_size" validate:"min=1"`
	WorkerCount int `mapstructure:"worker_count" validate:"min=1"`
	// ChargesPerSecond caps processor calls per run, 0 disables the limit
	ChargesPerSecond float64 `mapstructure:"charges_per_second" validate:"min=0"`
}

// RoutingConfig tunes processor selection
type RoutingConfig struct {
	HighValueThreshold decimal.Decimal `mapstructure:"high_value_threshold"`
}

type TemporalConfig struct {
	Address   string `mapstructure:"address"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	APIKey    string `mapstructure:"api_key"`
	TLS       bool   `mapstructure:"tls"`
	AgingCron string `mapstructure:"aging_cron"`
}

type KafkaConfig struct {
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
	Topic    string   `mapstructure:"topic"`
	TLS      bool     `mapstructure:"tls"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

type PyroscopeConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	ServerAddress   string   `mapstructure:"server_address"`
	ApplicationName string   `mapstructure:"application_name"`
	BasicAuthUser   string   `mapstructure:"basic_auth_user"`
	BasicAuthPass   string   `mapstructure:"basic_auth_pass"`
	SampleRate      uint32   `mapstructure:"sample_rate" default:"100"`
	ProfileTypes    []string `mapstructure:"profile_types"`
	DisableGCRuns   bool     `mapstructure:"disable_gc_runs"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional, only used for local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paycycle")

	v.SetEnvPrefix("PAYCYCLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:           "localhost",
			Port:           5432,
			User:           "paycycle",
			DBName:         "paycycle",
			SSLMode:        "disable",
			MigrationsPath: "migrations/postgres",
		},
		Transaction: TransactionConfig{
			MaxAttempts: 5,
			RetryDelay:  500 * time.Millisecond,
		},
		Aging: AgingConfig{
			LookAheadWindow: 8 * time.Hour,
			StaleLockAfter:  2 * time.Hour,
			WorkerCount:     4,
			CycleAmount:     decimal.NewFromFloat(11.99),
			Currency:        "usd",
			TrialDays:       14,
		},
		Routing: RoutingConfig{
			HighValueThreshold: decimal.NewFromInt(30),
		},
		Payments: PaymentRunConfig{
			BatchSize:        100,
			WorkerCount:      4,
			ChargesPerSecond: 20,
		},
		Temporal: TemporalConfig{
			Address:   "localhost:7233",
			Namespace: "default",
			TaskQueue: types.TemporalTaskQueueBilling.String(),
			AgingCron: "0 * * * *",
		},
		Event: EventConfig{PublishDestination: types.PublishToMemory},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

// GetURL returns the postgres:// form used by the migrator
func (c PostgresConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode,
	)
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()

	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("postgres.migrations_path", "migrations/postgres")
	v.SetDefault("transaction.max_attempts", d.Transaction.MaxAttempts)
	v.SetDefault("transaction.retry_delay", d.Transaction.RetryDelay)
	v.SetDefault("aging.look_ahead_window", d.Aging.LookAheadWindow)
	v.SetDefault("aging.stale_lock_after", d.Aging.StaleLockAfter)
	v.SetDefault("aging.worker_count", d.Aging.WorkerCount)
	v.SetDefault("aging.cycle_amount", d.Aging.CycleAmount.String())
	v.SetDefault("aging.currency", d.Aging.Currency)
	v.SetDefault("aging.trial_days", d.Aging.TrialDays)
	v.SetDefault("routing.high_value_threshold", d.Routing.HighValueThreshold.String())
	v.SetDefault("payments.batch_size", d.Payments.BatchSize)
	v.SetDefault("payments.worker_count", d.Payments.WorkerCount)
	v.SetDefault("payments.charges_per_second", d.Payments.ChargesPerSecond)
	v.SetDefault("temporal.task_queue", d.Temporal.TaskQueue)
	v.SetDefault("temporal.aging_cron", d.Temporal.AgingCron)
	v.SetDefault("event.publish_destination", d.Event.PublishDestination)
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("pyroscope.sample_rate", 100)
}
