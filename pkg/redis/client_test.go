package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

func setupRedisTest(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client, err := NewRedisClient(environments.RedisConfig{
		Host:      mr.Host(),
		Port:      mr.Port(),
		ResultTTL: time.Hour,
	})
	if err != nil {
		mr.Close()
		t.Fatalf("failed to create client: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return client, mr
}

func sentResult(id string) sms.Result {
	r := sms.NewResult("0642424242", "foo", "me")
	r.ID = id
	r.Status = sms.StatusSent
	return r
}

func TestClient_CacheAndGetResult(t *testing.T) {
	client, mr := setupRedisTest(t)
	ctx := context.Background()
	sentAt := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	if err := client.CacheResult(ctx, "nexmo", sentResult("0A130A1B"), sentAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mr.Exists("sms_result:0A130A1B") {
		t.Fatalf("expected key to be stored")
	}
	if ttl := mr.TTL("sms_result:0A130A1B"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %s", ttl)
	}

	cached, err := client.GetCachedResult(ctx, "0A130A1B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached == nil {
		t.Fatalf("expected cached result")
	}
	if cached.Provider != "nexmo" || cached.Result.ID != "0A130A1B" || cached.Result.Status != sms.StatusSent {
		t.Fatalf("unexpected cached result: %+v", cached)
	}
	if !cached.SentAt.Equal(sentAt) {
		t.Fatalf("expected sentAt %s, got %s", sentAt, cached.SentAt)
	}
}

func TestClient_CacheResultWithoutIDIsSkipped(t *testing.T) {
	client, mr := setupRedisTest(t)

	if err := client.CacheResult(context.Background(), "nexmo", sms.NewResult("0642424242", "foo", ""), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestClient_GetCachedResultMissing(t *testing.T) {
	client, _ := setupRedisTest(t)

	cached, err := client.GetCachedResult(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached != nil {
		t.Fatalf("expected nil, got %+v", cached)
	}
}

func TestClient_GetCachedResultExpired(t *testing.T) {
	client, mr := setupRedisTest(t)
	ctx := context.Background()

	if err := client.CacheResult(ctx, "twilio", sentResult("SM1"), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.FastForward(2 * time.Hour)

	cached, err := client.GetCachedResult(ctx, "SM1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached != nil {
		t.Fatalf("expected expired entry to be gone")
	}
}

func TestClient_GetAllCachedResults(t *testing.T) {
	client, mr := setupRedisTest(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := client.CacheResult(ctx, "dummy", sentResult(id), time.Now()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := mr.Set("sms_result:broken", "{not json"); err != nil {
		t.Fatalf("failed to seed broken key: %v", err)
	}
	if err := mr.Set("other:key", "x"); err != nil {
		t.Fatalf("failed to seed other key: %v", err)
	}

	all, err := client.GetAllCachedResults(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}
	for _, id := range []string{"a", "b", "c"} {
		if all[id] == nil || all[id].Result.ID != id {
			t.Fatalf("missing result %q: %+v", id, all)
		}
	}
}

func TestClient_Ping(t *testing.T) {
	client, _ := setupRedisTest(t)

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}
