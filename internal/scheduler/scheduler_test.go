package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/onurcolak/sms-sender/internal/domain"
)

// fakeFlusher is a simple test double for queueFlusher.
type fakeFlusher struct {
	mu       sync.Mutex
	report   domain.FlushReport
	errToRet error
	calls    int
}

func (f *fakeFlusher) Flush(ctx context.Context) (domain.FlushReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.report, f.errToRet
}

type fakeAlerts struct {
	mu     sync.Mutex
	alerts []domain.Alert
	urls   []string
	sent   chan struct{}
}

func (f *fakeAlerts) SendAlert(ctx context.Context, webhookURL string, alert domain.Alert) error {
	f.mu.Lock()
	f.alerts = append(f.alerts, alert)
	f.urls = append(f.urls, webhookURL)
	f.mu.Unlock()
	if f.sent != nil {
		f.sent <- struct{}{}
	}
	return nil
}

func TestScheduler_Flush_MixedResults(t *testing.T) {
	ctx := context.Background()

	flusher := &fakeFlusher{report: domain.FlushReport{Sent: 2, Failed: 1}}
	s := NewScheduler(flusher, nil, time.Minute)

	// Set some alert config but keep alertWebhook empty so no alerts go out
	s.SetAlerting("", 3)

	s.flush(ctx)

	status := s.GetStatus()
	if status.MessagesSent != 2 {
		t.Errorf("expected MessagesSent=2, got %d", status.MessagesSent)
	}
	if status.RunsCount != 1 {
		t.Errorf("expected RunsCount=1, got %d", status.RunsCount)
	}
	if status.ConsecutiveAllFailCount != 0 {
		t.Errorf("expected ConsecutiveAllFailCount=0, got %d", status.ConsecutiveAllFailCount)
	}
	if flusher.calls != 1 {
		t.Fatalf("expected 1 call to Flush, got %d", flusher.calls)
	}
}

func TestScheduler_Flush_AllFailIncrementsCounter(t *testing.T) {
	flusher := &fakeFlusher{report: domain.FlushReport{Failed: 2}}
	s := NewScheduler(flusher, nil, time.Minute)
	s.SetAlerting("", 5)

	s.flush(context.Background())

	status := s.GetStatus()
	if status.MessagesSent != 0 {
		t.Errorf("expected MessagesSent=0, got %d", status.MessagesSent)
	}
	if status.ConsecutiveAllFailCount != 1 {
		t.Errorf("expected ConsecutiveAllFailCount=1, got %d", status.ConsecutiveAllFailCount)
	}
}

func TestScheduler_Flush_EmptyQueueKeepsCounter(t *testing.T) {
	flusher := &fakeFlusher{report: domain.FlushReport{Failed: 1}}
	s := NewScheduler(flusher, nil, time.Minute)

	s.flush(context.Background())
	flusher.report = domain.FlushReport{}
	s.flush(context.Background())

	status := s.GetStatus()
	if status.RunsCount != 2 {
		t.Errorf("expected RunsCount=2, got %d", status.RunsCount)
	}
	if status.ConsecutiveAllFailCount != 1 {
		t.Errorf("expected ConsecutiveAllFailCount=1, got %d", status.ConsecutiveAllFailCount)
	}
}

func TestScheduler_Flush_ErrorDoesNotCount(t *testing.T) {
	flusher := &fakeFlusher{errToRet: errors.New("queue disabled")}
	s := NewScheduler(flusher, nil, time.Minute)

	s.flush(context.Background())

	status := s.GetStatus()
	if status.RunsCount != 1 || status.MessagesSent != 0 || status.ConsecutiveAllFailCount != 0 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestScheduler_Flush_AlertAfterThreshold(t *testing.T) {
	flusher := &fakeFlusher{report: domain.FlushReport{Failed: 3}}
	alerts := &fakeAlerts{sent: make(chan struct{}, 1)}
	s := NewScheduler(flusher, alerts, time.Minute)
	s.SetAlerting("http://alerts.local/hook", 2)

	s.flush(context.Background())

	select {
	case <-alerts.sent:
		t.Fatalf("alert sent before threshold")
	case <-time.After(20 * time.Millisecond):
	}

	s.flush(context.Background())

	select {
	case <-alerts.sent:
	case <-time.After(time.Second):
		t.Fatalf("expected alert after threshold")
	}

	alerts.mu.Lock()
	defer alerts.mu.Unlock()
	if len(alerts.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts.alerts))
	}
	got := alerts.alerts[0]
	if got.ConsecutiveFailures != 2 || got.MessagesInBatch != 3 || got.RunNumber != 2 {
		t.Fatalf("unexpected alert: %+v", got)
	}
	if alerts.urls[0] != "http://alerts.local/hook" {
		t.Fatalf("unexpected webhook url %q", alerts.urls[0])
	}
}

func TestScheduler_StartAndStopToggleRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(&fakeFlusher{}, nil, 10*time.Millisecond)

	if s.IsRunning() {
		t.Fatalf("expected scheduler to be not running initially")
	}

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if !s.IsRunning() {
		t.Fatalf("expected scheduler to be running after Start")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	if s.IsRunning() {
		t.Fatalf("expected scheduler to be not running after Stop")
	}
}

func TestScheduler_StartRejectsZeroInterval(t *testing.T) {
	s := NewScheduler(&fakeFlusher{}, nil, 0)

	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if s.IsRunning() {
		t.Fatalf("scheduler should not be running")
	}
}

func TestScheduler_StartWithParamsDefaultsInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewScheduler(&fakeFlusher{}, nil, 0)
	if err := s.StartWithParams(ctx, 0, "", 0); err != nil {
		t.Fatalf("StartWithParams returned error: %v", err)
	}
	defer s.Stop()

	if got := s.GetStatus().Interval; got != (2 * time.Minute).String() {
		t.Fatalf("expected default interval, got %s", got)
	}
}
