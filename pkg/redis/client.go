package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/internal/domain"
	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

type Client struct {
	client valkey.Client
	ttl    time.Duration
}

const (
	resultKeyPrefix  = "sms_result:"
	defaultResultTTL = 24 * time.Hour
)

func NewRedisClient(cfg environments.RedisConfig) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,

		// DoCache is never used
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.ResultTTL
	if ttl <= 0 {
		ttl = defaultResultTTL
	}

	logger.Infof("Connected to Redis (via Valkey client)")

	return &Client{client: client, ttl: ttl}, nil
}

// CacheResult stores a send result under its vendor message id.
// Results without an id are skipped.
func (c *Client) CacheResult(ctx context.Context, providerName string, result sms.Result, sentAt time.Time) error {
	if !result.HasID() {
		return nil
	}

	data, err := json.Marshal(domain.CachedResult{
		Provider: providerName,
		Result:   result,
		SentAt:   sentAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	key := resultKeyPrefix + result.ID

	err = c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(c.ttl).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to cache sms result: %w", err)
	}

	logger.Debugf("Cached %s result %s in Redis", providerName, result.ID)

	return nil
}

// GetCachedResult returns nil, nil when the id is unknown or expired.
func (c *Client) GetCachedResult(ctx context.Context, messageID string) (*domain.CachedResult, error) {
	result := c.client.Do(ctx, c.client.B().Get().Key(resultKeyPrefix+messageID).Build())
	if result.Error() != nil {
		if valkey.IsValkeyNil(result.Error()) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached result: %w", result.Error())
	}

	data, err := result.ToString()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached result: %w", err)
	}

	var cached domain.CachedResult
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &cached, nil
}

// GetAllCachedResults returns every cached result keyed by message id.
func (c *Client) GetAllCachedResults(ctx context.Context) (map[string]*domain.CachedResult, error) {
	pattern := resultKeyPrefix + "*"

	var keys []string
	var cursor uint64
	for {
		result := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(pattern).Count(100).Build())
		if result.Error() != nil {
			return nil, fmt.Errorf("failed to scan cache keys: %w", result.Error())
		}

		scanResult, err := result.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to parse scan result: %w", err)
		}

		keys = append(keys, scanResult.Elements...)
		cursor = scanResult.Cursor

		if cursor == 0 {
			break
		}
	}

	results := make(map[string]*domain.CachedResult, len(keys))

	for _, key := range keys {
		data, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).ToString()
		if err != nil {
			// expired between SCAN and GET
			continue
		}

		var cached domain.CachedResult
		if err := json.Unmarshal([]byte(data), &cached); err != nil {
			logger.Warnf("failed to decode cached result %q: %v", key, err)
			continue
		}

		results[strings.TrimPrefix(key, resultKeyPrefix)] = &cached
	}

	return results, nil
}

func (c *Client) Close() error {
	c.client.Close()
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}
