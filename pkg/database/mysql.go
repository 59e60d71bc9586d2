package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/pkg/logger"
)

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Connected to MySQL database %s", cfg.DBName)
	return db, nil
}

// Each statement must be idempotent, they run on every start.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS sms_logs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		provider VARCHAR(50) NOT NULL,
		message_id VARCHAR(100),
		recipient VARCHAR(32) NOT NULL,
		body TEXT NOT NULL,
		originator VARCHAR(32) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		error VARCHAR(255),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_sms_logs_status (status),
		INDEX idx_sms_logs_message_id (message_id),
		INDEX idx_sms_logs_created_at (created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

func RunMigrations(db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}

	logger.Infof("Database migrations completed (%d statements)", len(migrations))

	return nil
}
