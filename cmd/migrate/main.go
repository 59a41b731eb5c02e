package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/flexprice/paycycle/internal/config"
	"github.com/flexprice/paycycle/internal/logger"
	"github.com/flexprice/paycycle/internal/postgres"
)

func main() {
	command := flag.String("command", "up", "Migration command: up, down or status")
	flag.Parse()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database",
		"host", cfg.Postgres.Host,
		"dbname", cfg.Postgres.DBName,
		"migrations_path", cfg.Postgres.MigrationsPath,
	)

	if err := postgres.Migrate(cfg, logger, postgres.MigrationCommand(*command)); err != nil {
		logger.Errorw("Migration failed", "command", *command, "error", err)
		os.Exit(1)
	}

	fmt.Println("Migration process completed")
}
