package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/sms-sender/internal/domain"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

const smsLogColumns = "id, provider, message_id, recipient, body, originator, status, error, created_at"

// SMSLogRepository persists the send log.
type SMSLogRepository struct {
	db *sqlx.DB
}

func NewSMSLogRepository(db *sqlx.DB) *SMSLogRepository {
	return &SMSLogRepository{db: db}
}

func (r *SMSLogRepository) Create(ctx context.Context, entry domain.SMSLog) (*domain.SMSLog, error) {
	query := `
		INSERT INTO sms_logs (provider, message_id, recipient, body, originator, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.Provider, entry.MessageID, entry.Recipient, entry.Body, entry.Originator, entry.Status, entry.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sms log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *SMSLogRepository) GetByID(ctx context.Context, id int64) (*domain.SMSLog, error) {
	query := "SELECT " + smsLogColumns + " FROM sms_logs WHERE id = ?"

	var entry domain.SMSLog
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sms log: %w", err)
	}

	return &entry, nil
}

// UpdateStatus records the latest known status for a vendor message id.
func (r *SMSLogRepository) UpdateStatus(ctx context.Context, providerName, messageID string, status sms.Status) error {
	query := `
		UPDATE sms_logs
		SET status = ?
		WHERE provider = ? AND message_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, status, providerName, messageID)
	if err != nil {
		return fmt.Errorf("failed to update sms status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("no sms log found for %s message %s", providerName, messageID)
	}

	return nil
}

func (r *SMSLogRepository) GetAll(
	ctx context.Context,
	status *sms.Status,
	page, pageSize int,
) ([]domain.SMSLog, int64, error) {
	offset := (page - 1) * pageSize

	var (
		where string
		args  []any
	)
	if status != nil {
		where = " WHERE status = ?"
		args = append(args, *status)
	}

	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, "SELECT COUNT(*) FROM sms_logs"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count sms logs: %w", err)
	}

	query := "SELECT " + smsLogColumns + " FROM sms_logs" + where + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"

	logs := []domain.SMSLog{}
	if err := r.db.SelectContext(ctx, &logs, query, append(args, pageSize, offset)...); err != nil {
		return nil, 0, fmt.Errorf("failed to get sms logs: %w", err)
	}

	return logs, totalCount, nil
}

func (r *SMSLogRepository) GetStats(ctx context.Context) (domain.SMSStats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0)      AS sent,
			COALESCE(SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END), 0) AS delivered,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)    AS failed,
			COALESCE(SUM(CASE WHEN status = 'queued' THEN 1 ELSE 0 END), 0)    AS queued,
			COALESCE(SUM(CASE WHEN status = 'info' THEN 1 ELSE 0 END), 0)      AS info
		FROM sms_logs
	`

	var stats domain.SMSStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return domain.SMSStats{}, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}
