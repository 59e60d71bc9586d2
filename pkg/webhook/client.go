package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/onurcolak/sms-sender/internal/domain"
	"github.com/onurcolak/sms-sender/pkg/logger"
)

// Client posts operational alerts to a webhook.
type Client struct {
	httpClient *resty.Client
}

func NewWebhookClient(timeout time.Duration) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client}
}

// SendAlert accepts 200 and 204 as delivered.
func (c *Client) SendAlert(ctx context.Context, webhookURL string, alert domain.Alert) error {
	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		Post(webhookURL)
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}

	logger.Infof("Alert webhook %s answered in %v (status: %d)", webhookURL, time.Since(startTime), resp.StatusCode())

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("unexpected alert webhook status: %d, body: %s", resp.StatusCode(), resp.String())
	}

	return nil
}
