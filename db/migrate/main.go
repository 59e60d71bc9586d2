package main

import (
	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/pkg/database"
	"github.com/onurcolak/sms-sender/pkg/logger"
)

// Creates or updates the send log schema without starting the service.
func main() {
	cfg := environments.Load()
	logger.Init(cfg.Log.Env, cfg.Log.Level)

	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Errorf("Failed to close database: %v", err)
		}
	}()

	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	var count int64
	if err := db.Get(&count, "SELECT COUNT(*) FROM sms_logs"); err != nil {
		logger.Fatalf("Failed to count send log rows: %v", err)
	}

	logger.Infof("Migration completed, sms_logs holds %d rows", count)
}
