package domain

import (
	"time"

	"github.com/onurcolak/sms-sender/pkg/sms"
)

// SMSLog is one row of the send log.
type SMSLog struct {
	ID         int64      `db:"id" json:"id"`
	Provider   string     `db:"provider" json:"provider"`
	MessageID  *string    `db:"message_id" json:"messageId,omitempty"`
	Recipient  string     `db:"recipient" json:"recipient"`
	Body       string     `db:"body" json:"body"`
	Originator string     `db:"originator" json:"originator"`
	Status     sms.Status `db:"status" json:"status"`
	Error      *string    `db:"error" json:"error,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// NewSMSLog builds a log row from a send result.
func NewSMSLog(providerName string, r sms.Result) SMSLog {
	entry := SMSLog{
		Provider:   providerName,
		Recipient:  r.Recipient,
		Body:       r.Body,
		Originator: r.Originator,
		Status:     r.Status,
	}
	if r.HasID() {
		id := r.ID
		entry.MessageID = &id
	}
	if msg := r.ExtraString("error"); msg != "" {
		entry.Error = &msg
	}
	return entry
}

// SMSStats counts send log rows per status.
type SMSStats struct {
	Sent      int64 `json:"sent" db:"sent"`
	Delivered int64 `json:"delivered" db:"delivered"`
	Failed    int64 `json:"failed" db:"failed"`
	Queued    int64 `json:"queued" db:"queued"`
	Info      int64 `json:"info" db:"info"`
	Pending   int   `json:"pending" db:"-"`
}

// CachedResult is what the result cache keeps per vendor message id.
type CachedResult struct {
	Provider string     `json:"provider"`
	Result   sms.Result `json:"result"`
	SentAt   time.Time  `json:"sentAt"`
}

// FlushReport summarizes one drain of the delayed queue.
type FlushReport struct {
	Results []sms.Result `json:"results"`
	Errors  []string     `json:"errors,omitempty"`
	Sent    int          `json:"sent"`
	Failed  int          `json:"failed"`
}

type ProviderInfo struct {
	Name     string   `json:"name"`
	Active   bool     `json:"active"`
	Features []string `json:"features"`
}

// Alert is posted to the alert webhook when flushes keep failing.
type Alert struct {
	Alert               string `json:"alert"`
	RunNumber           int64  `json:"runNumber"`
	ConsecutiveFailures int    `json:"consecutiveFailures"`
	MessagesInBatch     int    `json:"messagesInBatch"`
	Timestamp           string `json:"timestamp"`
	Message             string `json:"message"`
}
