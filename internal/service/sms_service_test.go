package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/internal/domain"
	"github.com/onurcolak/sms-sender/pkg/provider"
	"github.com/onurcolak/sms-sender/pkg/sender"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

//
// Test fakes – only for this file.
//

type fakeRepo struct {
	created       []domain.SMSLog
	statusUpdates []statusUpdate
	updateErr     error
	stats         domain.SMSStats
}

type statusUpdate struct {
	provider  string
	messageID string
	status    sms.Status
}

func (r *fakeRepo) Create(ctx context.Context, entry domain.SMSLog) (*domain.SMSLog, error) {
	entry.ID = int64(len(r.created) + 1)
	r.created = append(r.created, entry)
	return &entry, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, providerName, messageID string, status sms.Status) error {
	r.statusUpdates = append(r.statusUpdates, statusUpdate{providerName, messageID, status})
	return r.updateErr
}

func (r *fakeRepo) GetAll(ctx context.Context, status *sms.Status, page, pageSize int) ([]domain.SMSLog, int64, error) {
	return r.created, int64(len(r.created)), nil
}

func (r *fakeRepo) GetStats(ctx context.Context) (domain.SMSStats, error) {
	return r.stats, nil
}

type fakeCache struct {
	cached map[string]*domain.CachedResult
}

func (c *fakeCache) CacheResult(ctx context.Context, providerName string, result sms.Result, sentAt time.Time) error {
	if c.cached == nil {
		c.cached = make(map[string]*domain.CachedResult)
	}
	c.cached[result.ID] = &domain.CachedResult{Provider: providerName, Result: result, SentAt: sentAt}
	return nil
}

func (c *fakeCache) GetCachedResult(ctx context.Context, messageID string) (*domain.CachedResult, error) {
	return c.cached[messageID], nil
}

func (c *fakeCache) GetAllCachedResults(ctx context.Context) (map[string]*domain.CachedResult, error) {
	return c.cached, nil
}

// fakeGateway is a provider with every optional capability.
type fakeGateway struct {
	name    string
	sendErr map[string]error
	sent    []string
	status  sms.Status
	reports []provider.Report
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	g.sent = append(g.sent, recipient)
	result := sms.NewResult(recipient, body, originator)
	if err := g.sendErr[recipient]; err != nil {
		return result, err
	}
	result.ID = fmt.Sprintf("%s-%d", g.name, len(g.sent))
	result.Status = sms.StatusSent
	return result, nil
}

func (g *fakeGateway) Status(ctx context.Context, messageID string) (sms.Result, error) {
	return sms.Result{ID: messageID, Status: g.status}, nil
}

func (g *fakeGateway) Credit(ctx context.Context) (provider.Credit, error) {
	return provider.Credit{User: g.name, Limit: 100, Used: 40}, nil
}

func (g *fakeGateway) Reports(ctx context.Context) ([]provider.Report, error) {
	return g.reports, nil
}

func newTestService(t *testing.T, delayed bool, gateways ...provider.Provider) (*SMSService, *fakeRepo, *fakeCache) {
	t.Helper()

	dispatcher := sender.New(gateways...)
	repo := &fakeRepo{}
	cache := &fakeCache{}

	var d *sender.DelayedSender
	if delayed {
		d = sender.NewDelayedSender(dispatcher, nil)
	}

	cfg := environments.SenderConfig{MaxBodyLength: 20}

	if d == nil {
		return NewSMSService(dispatcher, nil, repo, cache, cfg), repo, cache
	}
	return NewSMSService(dispatcher, d, repo, cache, cfg), repo, cache
}

//
// Tests
//

func TestSend_RecordsAndCaches(t *testing.T) {
	gw := &fakeGateway{name: "gw"}
	svc, repo, cache := newTestService(t, false, gw)

	result, err := svc.Send(context.Background(), "0642424242", "hello", "me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ID != "gw-1" || result.Status != sms.StatusSent {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 log row, got %d", len(repo.created))
	}
	if repo.created[0].Provider != "gw" || *repo.created[0].MessageID != "gw-1" {
		t.Fatalf("unexpected log row: %+v", repo.created[0])
	}
	if cache.cached["gw-1"] == nil {
		t.Fatalf("expected result to be cached")
	}
}

func TestSend_EmptyBodyIsLoggedAsFailedWithoutGatewayCall(t *testing.T) {
	gw := &fakeGateway{name: "gw"}
	svc, repo, cache := newTestService(t, false, gw)

	result, err := svc.Send(context.Background(), "0642424242", "", "me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != sms.StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if len(gw.sent) != 0 {
		t.Fatalf("expected no gateway call, got %d", len(gw.sent))
	}
	if len(repo.created) != 1 || repo.created[0].MessageID != nil {
		t.Fatalf("expected one failed log row, got %+v", repo.created)
	}
	if len(cache.cached) != 0 {
		t.Fatalf("expected nothing cached")
	}
}

func TestSend_BodyTooLong(t *testing.T) {
	gw := &fakeGateway{name: "gw"}
	svc, repo, _ := newTestService(t, false, gw)

	_, err := svc.Send(context.Background(), "0642424242", strings.Repeat("x", 21), "me")
	if !errors.Is(err, ErrBodyTooLong) {
		t.Fatalf("expected ErrBodyTooLong, got %v", err)
	}
	if len(gw.sent) != 0 || len(repo.created) != 0 {
		t.Fatalf("expected no side effects")
	}
}

func TestSend_GatewayErrorIsReturned(t *testing.T) {
	gw := &fakeGateway{name: "gw", sendErr: map[string]error{"0642424242": sms.ErrInvalidCredentials}}
	svc, repo, _ := newTestService(t, false, gw)

	_, err := svc.Send(context.Background(), "0642424242", "hello", "me")
	if !errors.Is(err, sms.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no log row for a rejected call")
	}
}

func TestQueue_Disabled(t *testing.T) {
	svc, _, _ := newTestService(t, false, &fakeGateway{name: "gw"})

	if _, err := svc.Queue(context.Background(), "0642424242", "hello", ""); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("expected ErrQueueDisabled, got %v", err)
	}
	if _, err := svc.Flush(context.Background()); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("expected ErrQueueDisabled, got %v", err)
	}
}

func TestQueueAndFlush(t *testing.T) {
	gw := &fakeGateway{name: "gw", sendErr: map[string]error{"bad": errors.New("rejected")}}
	svc, repo, _ := newTestService(t, true, gw)
	ctx := context.Background()

	queued, err := svc.Queue(ctx, "good", "hello", "me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queued.Status != sms.StatusQueued {
		t.Fatalf("expected queued, got %s", queued.Status)
	}
	if _, err := svc.Queue(ctx, "bad", "hello", "me"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", svc.Pending())
	}
	if len(gw.sent) != 0 {
		t.Fatalf("expected no gateway call before flush")
	}

	report, err := svc.Flush(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Sent != 1 || report.Failed != 1 || len(report.Errors) != 1 || len(report.Results) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if svc.Pending() != 0 {
		t.Fatalf("expected queue to be drained")
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected both outcomes logged, got %d", len(repo.created))
	}
	if repo.created[1].Recipient != "bad" || repo.created[1].Error == nil {
		t.Fatalf("expected failed row for bad recipient, got %+v", repo.created[1])
	}

	again, err := svc.Flush(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again.Results) != 0 || len(gw.sent) != 2 {
		t.Fatalf("second flush must not resend, got %+v", again)
	}
}

func TestFlush_CancelledContextRequeuesWithoutFailures(t *testing.T) {
	gw := &fakeGateway{name: "gw"}
	svc, repo, _ := newTestService(t, true, gw)

	for _, recipient := range []string{"first", "second"} {
		if _, err := svc.Queue(context.Background(), recipient, "hello", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Flush(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 0 || report.Sent != 0 {
		t.Fatalf("interrupted flush must not count failures, got %+v", report)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected the cancellation to be reported, got %v", report.Errors)
	}
	if svc.Pending() != 2 {
		t.Fatalf("expected 2 requeued, got %d", svc.Pending())
	}
	if len(repo.created) != 0 || len(gw.sent) != 0 {
		t.Fatalf("nothing should be sent or logged, got %d rows, %d sends", len(repo.created), len(gw.sent))
	}

	report, err = svc.Flush(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Sent != 2 || svc.Pending() != 0 {
		t.Fatalf("expected requeued messages to go out, got %+v", report)
	}
}

func TestStatus(t *testing.T) {
	gw := &fakeGateway{name: "gw", status: sms.StatusDelivered}
	svc, repo, cache := newTestService(t, false, gw)

	result, err := svc.Status(context.Background(), "gw", "id-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != sms.StatusDelivered {
		t.Fatalf("expected delivered, got %s", result.Status)
	}
	if len(repo.statusUpdates) != 1 || repo.statusUpdates[0] != (statusUpdate{"gw", "id-1", sms.StatusDelivered}) {
		t.Fatalf("unexpected status updates: %+v", repo.statusUpdates)
	}
	if cache.cached["id-1"] == nil {
		t.Fatalf("expected refreshed cache entry")
	}
}

func TestStatus_UnknownAndUnsupported(t *testing.T) {
	svc, _, _ := newTestService(t, false, provider.NewDummy())

	if _, err := svc.Status(context.Background(), "nope", "id"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if _, err := svc.Status(context.Background(), "dummy", "id"); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
	if _, err := svc.Credit(context.Background(), "dummy"); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
	if _, err := svc.Reports(context.Background(), "dummy"); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}

func TestCredit(t *testing.T) {
	svc, _, _ := newTestService(t, false, &fakeGateway{name: "gw"})

	credit, err := svc.Credit(context.Background(), "gw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credit.Limit != 100 || credit.Used != 40 {
		t.Fatalf("unexpected credit: %+v", credit)
	}
}

func TestReports_UpdatesDeliveryStatus(t *testing.T) {
	gw := &fakeGateway{name: "gw", reports: []provider.Report{
		{Type: provider.ReportTypeDelivery, MessageID: "m1", Status: "DELIVERED"},
		{Type: provider.ReportTypeDelivery, MessageID: "m2", Status: "EXPIRED"},
		{Type: provider.ReportTypeIncoming, Source: "447111111112", Message: "48656C6C6F"},
	}}
	svc, repo, _ := newTestService(t, false, gw)
	repo.updateErr = errors.New("no rows")

	reports, err := svc.Reports(context.Background(), "gw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if len(repo.statusUpdates) != 2 {
		t.Fatalf("expected 2 status updates, got %+v", repo.statusUpdates)
	}
	if repo.statusUpdates[0].status != sms.StatusDelivered || repo.statusUpdates[1].status != sms.StatusFailed {
		t.Fatalf("unexpected statuses: %+v", repo.statusUpdates)
	}
}

func TestProvidersAndSetActive(t *testing.T) {
	svc, _, _ := newTestService(t, false, &fakeGateway{name: "b"}, provider.NewDummy())

	infos := svc.Providers()
	if len(infos) != 2 || infos[0].Name != "b" || infos[1].Name != "dummy" {
		t.Fatalf("unexpected providers: %+v", infos)
	}
	if !infos[0].Active || infos[1].Active {
		t.Fatalf("expected first registered provider to be active: %+v", infos)
	}
	if len(infos[0].Features) != 4 || len(infos[1].Features) != 1 {
		t.Fatalf("unexpected features: %+v", infos)
	}

	if err := svc.SetActiveProvider("missing"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if err := svc.SetActiveProvider("dummy"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if infos := svc.Providers(); !infos[1].Active {
		t.Fatalf("expected dummy to be active: %+v", infos)
	}
}

func TestStats_IncludesPending(t *testing.T) {
	svc, repo, _ := newTestService(t, true, &fakeGateway{name: "gw"})
	repo.stats = domain.SMSStats{Sent: 3}

	if _, err := svc.Queue(context.Background(), "0642424242", "hello", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Sent != 3 || stats.Pending != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCachedResults_WithoutCache(t *testing.T) {
	svc := NewSMSService(sender.New(provider.NewDummy()), nil, &fakeRepo{}, nil, environments.SenderConfig{})

	if _, err := svc.CachedResult(context.Background(), "id"); !errors.Is(err, ErrCacheDisabled) {
		t.Fatalf("expected ErrCacheDisabled, got %v", err)
	}
	if _, err := svc.CachedResults(context.Background()); !errors.Is(err, ErrCacheDisabled) {
		t.Fatalf("expected ErrCacheDisabled, got %v", err)
	}

	// no cache must not break sending
	if _, err := svc.Send(context.Background(), "0642424242", "hello", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
