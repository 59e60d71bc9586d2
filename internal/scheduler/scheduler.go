package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/onurcolak/sms-sender/internal/domain"
	"github.com/onurcolak/sms-sender/pkg/logger"
)

// queueFlusher matches SMSService.Flush so the scheduler can be tested with a fake.
type queueFlusher interface {
	Flush(ctx context.Context) (domain.FlushReport, error)
}

type alertSender interface {
	SendAlert(ctx context.Context, webhookURL string, alert domain.Alert) error
}

type Scheduler struct {
	flusher         queueFlusher
	alerts          alertSender
	interval        time.Duration
	alertWebhook    string
	alertThreshold  int // consecutive all-fail flushes before alerting
	lastAlertSentAt time.Time

	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	mu       sync.RWMutex

	lastRunAt time.Time
	sentCount int64
	runsCount int64

	consecutiveAllFailCount int
}

func NewScheduler(flusher queueFlusher, alerts alertSender, interval time.Duration) *Scheduler {
	return &Scheduler{
		flusher:  flusher,
		alerts:   alerts,
		interval: interval,
	}
}

// SetAlerting configures the alert webhook used on repeated failed flushes.
func (s *Scheduler) SetAlerting(webhookURL string, threshold int) {
	s.mu.Lock()
	s.alertWebhook = webhookURL
	s.alertThreshold = threshold
	s.mu.Unlock()
}

func (s *Scheduler) StartWithParams(
	ctx context.Context,
	interval time.Duration,
	alertWebhook string,
	alertThreshold int,
) error {
	if interval <= 0 {
		interval = 2 * time.Minute
	}

	s.mu.Lock()
	s.interval = interval
	s.alertWebhook = alertWebhook
	s.alertThreshold = alertThreshold
	s.consecutiveAllFailCount = 0
	s.mu.Unlock()

	return s.Start(ctx)
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is already running")
		return nil
	}

	if s.interval <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("invalid flush interval %v", s.interval)
	}

	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	interval := s.interval
	stopChan := s.stopChan
	doneChan := s.doneChan
	s.mu.Unlock()

	logger.Infof("Starting scheduler with flush interval: %v", interval)

	go s.run(ctx, interval, stopChan, doneChan)

	return nil
}

func (s *Scheduler) run(ctx context.Context, interval time.Duration, stopChan, doneChan chan struct{}) {
	defer close(doneChan)

	s.flush(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush(ctx)
			logger.Debugf("Next flush in %v", interval)

		case <-stopChan:
			logger.Warnf("Scheduler received stop signal")
			return

		case <-ctx.Done():
			logger.Warnf("Scheduler context cancelled")
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		}
	}
}

func (s *Scheduler) flush(ctx context.Context) {
	s.mu.Lock()
	s.lastRunAt = time.Now()
	s.runsCount++
	runNumber := s.runsCount
	alertWebhook := s.alertWebhook
	alertThreshold := s.alertThreshold
	s.mu.Unlock()

	report, err := s.flusher.Flush(ctx)
	if err != nil {
		logger.Errorf("[Run #%d] Error flushing queue: %v", runNumber, err)
		return
	}

	total := report.Sent + report.Failed
	if total == 0 {
		logger.Debugf("[Run #%d] Nothing to flush", runNumber)
		return
	}

	s.mu.Lock()
	s.sentCount += int64(report.Sent)

	if report.Sent == 0 {
		s.consecutiveAllFailCount++
		logger.Warnf("[Run #%d] All %d messages failed (consecutive count: %d/%d)",
			runNumber, total, s.consecutiveAllFailCount, alertThreshold)

		if alertThreshold > 0 && s.consecutiveAllFailCount >= alertThreshold && alertWebhook != "" && s.alerts != nil {
			alert := domain.Alert{
				Alert:               "consecutive_all_fail",
				RunNumber:           runNumber,
				ConsecutiveFailures: s.consecutiveAllFailCount,
				MessagesInBatch:     total,
				Timestamp:           time.Now().Format(time.RFC3339),
				Message: fmt.Sprintf(
					"All %d messages failed for %d consecutive flushes",
					total,
					s.consecutiveAllFailCount,
				),
			}
			go s.sendAlert(alertWebhook, alert)
		}
	} else {
		if s.consecutiveAllFailCount > 0 {
			logger.Debugf("[Run #%d] Resetting consecutive failure count (was: %d)", runNumber, s.consecutiveAllFailCount)
		}
		s.consecutiveAllFailCount = 0
	}
	s.mu.Unlock()

	logger.Infof("[Run #%d] Flushed %d messages, %d sent, %d failed", runNumber, total, report.Sent, report.Failed)
}

func (s *Scheduler) sendAlert(webhookURL string, alert domain.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.alerts.SendAlert(ctx, webhookURL, alert); err != nil {
		logger.Errorf("Failed to send alert: %v", err)
		return
	}

	s.mu.Lock()
	s.lastAlertSentAt = time.Now()
	s.mu.Unlock()

	logger.Infof("Alert sent to %s (consecutive failures: %d)", webhookURL, alert.ConsecutiveFailures)
}

func (s *Scheduler) Stop() error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is not running")
		return nil
	}

	s.running = false
	stopChan := s.stopChan
	doneChan := s.doneChan
	s.mu.Unlock()

	close(stopChan)
	<-doneChan

	logger.Infof("Scheduler stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) GetStatus() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := SchedulerStatus{
		Running:                 s.running,
		LastRunAt:               s.lastRunAt,
		MessagesSent:            s.sentCount,
		RunsCount:               s.runsCount,
		Interval:                s.interval.String(),
		ConsecutiveAllFailCount: s.consecutiveAllFailCount,
		LastAlertSentAt:         s.lastAlertSentAt,
	}

	if s.running && !s.lastRunAt.IsZero() {
		status.NextRunAt = s.lastRunAt.Add(s.interval)
	}

	return status
}

type SchedulerStatus struct {
	Running                 bool      `json:"running"`
	LastRunAt               time.Time `json:"lastRunAt,omitempty"`
	NextRunAt               time.Time `json:"nextRunAt,omitempty"`
	MessagesSent            int64     `json:"messagesSent"`
	RunsCount               int64     `json:"runsCount"`
	Interval                string    `json:"interval"`
	ConsecutiveAllFailCount int       `json:"consecutiveAllFailCount"`
	LastAlertSentAt         time.Time `json:"lastAlertSentAt,omitempty"`
}
