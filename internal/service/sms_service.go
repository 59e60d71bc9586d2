package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/onurcolak/sms-sender/environments"
	"github.com/onurcolak/sms-sender/internal/domain"
	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/provider"
	"github.com/onurcolak/sms-sender/pkg/sender"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrNotSupported    = errors.New("operation not supported by provider")
	ErrBodyTooLong     = errors.New("body exceeds maximum length")
	ErrQueueDisabled   = errors.New("delayed sending is not enabled")
	ErrCacheDisabled   = errors.New("result cache not configured")
)

// Small internal interfaces so we can test without touching real DB/Redis/gateways.
type smsLogRepository interface {
	Create(ctx context.Context, entry domain.SMSLog) (*domain.SMSLog, error)
	UpdateStatus(ctx context.Context, providerName, messageID string, status sms.Status) error
	GetAll(ctx context.Context, status *sms.Status, page, pageSize int) ([]domain.SMSLog, int64, error)
	GetStats(ctx context.Context) (domain.SMSStats, error)
}

type resultCache interface {
	CacheResult(ctx context.Context, providerName string, result sms.Result, sentAt time.Time) error
	GetCachedResult(ctx context.Context, messageID string) (*domain.CachedResult, error)
	GetAllCachedResults(ctx context.Context) (map[string]*domain.CachedResult, error)
}

type delayedSender interface {
	sender.Sender
	Flush(ctx context.Context) ([]sms.Result, []error)
	Pending() int
}

type SMSService struct {
	sender  sender.Dispatcher
	delayed delayedSender
	repo    smsLogRepository
	cache   resultCache
	config  environments.SenderConfig
}

// NewSMSService wires the service. delayed and cache may be nil.
func NewSMSService(
	dispatcher sender.Dispatcher,
	delayed delayedSender,
	repo smsLogRepository,
	cache resultCache,
	config environments.SenderConfig,
) *SMSService {
	return &SMSService{
		sender:  dispatcher,
		delayed: delayed,
		repo:    repo,
		cache:   cache,
		config:  config,
	}
}

// Send dispatches immediately through the active provider.
func (s *SMSService) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	if err := s.checkBody(body); err != nil {
		return sms.Result{}, err
	}

	name := s.activeProviderName()

	result, err := s.sender.Send(ctx, recipient, body, originator)
	if err != nil {
		logger.Errorf("Failed to send sms to %s via %s: %v", recipient, name, err)
		return result, err
	}

	s.record(ctx, name, result)

	return result, nil
}

// Queue stores the message until the next Flush.
func (s *SMSService) Queue(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	if s.delayed == nil {
		return sms.Result{}, ErrQueueDisabled
	}
	if err := s.checkBody(body); err != nil {
		return sms.Result{}, err
	}

	result, err := s.delayed.Send(ctx, recipient, body, originator)
	if err != nil {
		return result, fmt.Errorf("failed to queue sms: %w", err)
	}

	logger.Debugf("Queued sms to %s (%d pending)", recipient, s.delayed.Pending())

	return result, nil
}

// Flush drains the delayed queue and records every outcome.
func (s *SMSService) Flush(ctx context.Context) (domain.FlushReport, error) {
	if s.delayed == nil {
		return domain.FlushReport{}, ErrQueueDisabled
	}

	batchID := uuid.NewString()
	pending := s.delayed.Pending()
	if pending == 0 {
		logger.Debugf("No queued sms to flush")
		return domain.FlushReport{Results: []sms.Result{}}, nil
	}

	logger.Infof("Flushing %d queued sms (batch %s)", pending, batchID)

	results, errs := s.delayed.Flush(ctx)
	name := s.activeProviderName()

	report := domain.FlushReport{Results: make([]sms.Result, 0, len(results))}
	for _, r := range results {
		s.record(ctx, name, r)
		report.Results = append(report.Results, r)
		if r.IsSent() {
			report.Sent++
		} else {
			report.Failed++
		}
	}

	for _, err := range errs {
		report.Errors = append(report.Errors, err.Error())

		var sendErr *sender.SendError
		if !errors.As(err, &sendErr) && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			// the unsent rest of the batch went back on the queue
			logger.Warnf("Batch %s interrupted, %d sms requeued: %v", batchID, s.delayed.Pending(), err)
			continue
		}

		logger.Errorf("Batch %s: %v", batchID, err)
		report.Failed++

		if sendErr != nil {
			failed := sms.NewResult(sendErr.Recipient, sendErr.Body, sendErr.Originator).WithExtra("error", sendErr.Err.Error())
			s.record(ctx, name, failed)
		}
	}

	logger.Infof("Batch %s flushed: %d sent, %d failed", batchID, report.Sent, report.Failed)

	return report, nil
}

// Pending is the number of queued messages, 0 when delayed sending is off.
func (s *SMSService) Pending() int {
	if s.delayed == nil {
		return 0
	}
	return s.delayed.Pending()
}

// Status polls the gateway for a message and updates the send log.
func (s *SMSService) Status(ctx context.Context, providerName, messageID string) (sms.Result, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return sms.Result{}, err
	}

	checker, ok := p.(provider.StatusChecker)
	if !ok {
		return sms.Result{}, fmt.Errorf("%w: %s has no status query", ErrNotSupported, providerName)
	}

	result, err := checker.Status(ctx, messageID)
	if err != nil {
		return result, fmt.Errorf("failed to query status: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, providerName, messageID, result.Status); err != nil {
		logger.Warnf("Failed to update send log for %s message %s: %v", providerName, messageID, err)
	}
	s.cacheResult(ctx, providerName, result)

	return result, nil
}

func (s *SMSService) Credit(ctx context.Context, providerName string) (provider.Credit, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return provider.Credit{}, err
	}

	checker, ok := p.(provider.CreditChecker)
	if !ok {
		return provider.Credit{}, fmt.Errorf("%w: %s has no credit query", ErrNotSupported, providerName)
	}

	credit, err := checker.Credit(ctx)
	if err != nil {
		return provider.Credit{}, fmt.Errorf("failed to query credit: %w", err)
	}
	return credit, nil
}

func (s *SMSService) Reports(ctx context.Context, providerName string) ([]provider.Report, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	poller, ok := p.(provider.ReportPoller)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no report polling", ErrNotSupported, providerName)
	}

	reports, err := poller.Reports(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to poll reports: %w", err)
	}

	for _, r := range reports {
		if r.Type != provider.ReportTypeDelivery || r.MessageID == "" {
			continue
		}
		status := reportStatus(r.Status)
		if err := s.repo.UpdateStatus(ctx, providerName, r.MessageID, status); err != nil {
			logger.Debugf("Report for unknown %s message %s: %v", providerName, r.MessageID, err)
		}
	}

	return reports, nil
}

// Providers lists registered providers sorted by name.
func (s *SMSService) Providers() []domain.ProviderInfo {
	active := s.activeProviderName()
	providers := s.sender.Providers()

	infos := make([]domain.ProviderInfo, 0, len(providers))
	for name, p := range providers {
		infos = append(infos, domain.ProviderInfo{
			Name:     name,
			Active:   name == active,
			Features: features(p),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	return infos
}

// ActiveProvider is the name of the provider Send uses, "" when none is registered.
func (s *SMSService) ActiveProvider() string {
	return s.activeProviderName()
}

func (s *SMSService) SetActiveProvider(name string) error {
	if _, err := s.provider(name); err != nil {
		return err
	}
	s.sender.Using(name)
	logger.Infof("Active provider switched to %s", name)
	return nil
}

func (s *SMSService) Logs(ctx context.Context, status *sms.Status, page, pageSize int) ([]domain.SMSLog, int64, error) {
	return s.repo.GetAll(ctx, status, page, pageSize)
}

func (s *SMSService) Stats(ctx context.Context) (domain.SMSStats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		return domain.SMSStats{}, err
	}
	stats.Pending = s.Pending()
	return stats, nil
}

func (s *SMSService) CachedResult(ctx context.Context, messageID string) (*domain.CachedResult, error) {
	if s.cache == nil {
		return nil, ErrCacheDisabled
	}
	return s.cache.GetCachedResult(ctx, messageID)
}

func (s *SMSService) CachedResults(ctx context.Context) (map[string]*domain.CachedResult, error) {
	if s.cache == nil {
		return nil, ErrCacheDisabled
	}
	return s.cache.GetAllCachedResults(ctx)
}

func (s *SMSService) checkBody(body string) error {
	if s.config.MaxBodyLength > 0 && len(body) > s.config.MaxBodyLength {
		return fmt.Errorf("%w: %d > %d characters", ErrBodyTooLong, len(body), s.config.MaxBodyLength)
	}
	return nil
}

func (s *SMSService) provider(name string) (provider.Provider, error) {
	p, ok := s.sender.Providers()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func (s *SMSService) activeProviderName() string {
	p, err := s.sender.Provider()
	if err != nil {
		return ""
	}
	return p.Name()
}

// record appends to the send log and caches results carrying a vendor id.
// Storage failures are logged, the message has already left.
func (s *SMSService) record(ctx context.Context, providerName string, result sms.Result) {
	if _, err := s.repo.Create(ctx, domain.NewSMSLog(providerName, result)); err != nil {
		logger.Errorf("Failed to write send log for %s: %v", result.Recipient, err)
	}
	s.cacheResult(ctx, providerName, result)
}

func (s *SMSService) cacheResult(ctx context.Context, providerName string, result sms.Result) {
	if s.cache == nil || !result.HasID() {
		return
	}
	if err := s.cache.CacheResult(ctx, providerName, result, time.Now()); err != nil {
		logger.Warnf("Failed to cache result %s: %v", result.ID, err)
	}
}

func features(p provider.Provider) []string {
	out := []string{"send"}
	if _, ok := p.(provider.StatusChecker); ok {
		out = append(out, "status")
	}
	if _, ok := p.(provider.CreditChecker); ok {
		out = append(out, "credit")
	}
	if _, ok := p.(provider.ReportPoller); ok {
		out = append(out, "reports")
	}
	return out
}

// reportStatus maps delivery report states onto the result status.
func reportStatus(s string) sms.Status {
	switch s {
	case "DELIVERED":
		return sms.StatusDelivered
	case "BUFFERED":
		return sms.StatusQueued
	default:
		return sms.StatusFailed
	}
}
