package sender

import (
	"context"
	"fmt"
	"sync"

	"github.com/onurcolak/sms-sender/pkg/logger"
	"github.com/onurcolak/sms-sender/pkg/provider"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

// Sender sends one message and reports the normalized result.
type Sender interface {
	Send(ctx context.Context, recipient, body, originator string) (sms.Result, error)
}

// Dispatcher is a Sender backed by a registry of named providers.
type Dispatcher interface {
	Sender
	RegisterProvider(p provider.Provider)
	RegisterProviders(ps ...provider.Provider)
	Using(name string)
	Providers() map[string]provider.Provider
	Provider() (provider.Provider, error)
}

// SendError carries the message a provider failed on.
type SendError struct {
	Recipient  string
	Body       string
	Originator string
	Err        error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send sms to %s: %v", e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// SMSSender dispatches to the active provider. When none was chosen with
// Using, the first registered provider is used.
type SMSSender struct {
	mu        sync.RWMutex
	providers map[string]provider.Provider
	order     []string
	active    string
}

func New(providers ...provider.Provider) *SMSSender {
	s := &SMSSender{
		providers: make(map[string]provider.Provider),
	}
	s.RegisterProviders(providers...)
	return s
}

// RegisterProvider adds p, replacing any provider with the same name. The
// replacement keeps its original registration position.
func (s *SMSSender) RegisterProvider(p provider.Provider) {
	if p == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := p.Name()
	if _, ok := s.providers[name]; !ok {
		s.order = append(s.order, name)
	}
	s.providers[name] = p
}

func (s *SMSSender) RegisterProviders(ps ...provider.Provider) {
	for _, p := range ps {
		s.RegisterProvider(p)
	}
}

// Using switches the active provider. Unknown or empty names are ignored.
func (s *SMSSender) Using(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providers[name]; !ok {
		if name != "" {
			logger.Warnf("Provider %q is not registered, keeping current provider", name)
		}
		return
	}
	s.active = name
}

// Providers returns a copy of the registry.
func (s *SMSSender) Providers() map[string]provider.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]provider.Provider, len(s.providers))
	for name, p := range s.providers {
		out[name] = p
	}
	return out
}

// Provider resolves the provider Send would use.
func (s *SMSSender) Provider() (provider.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.providers[s.active]; ok {
		return p, nil
	}
	if len(s.order) == 0 {
		return nil, sms.ErrNoProvider
	}
	return s.providers[s.order[0]], nil
}

// Send validates the input, then hands the message to the active provider.
// Empty recipient or body yields a failed result without any provider call.
func (s *SMSSender) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	if recipient == "" || body == "" {
		logger.Debugf("Skipping sms with empty recipient or body")
		return sms.NewResult(recipient, body, originator), nil
	}

	p, err := s.Provider()
	if err != nil {
		return sms.NewResult(recipient, body, originator), err
	}

	result, err := p.Send(ctx, recipient, body, originator)
	if err != nil {
		logger.L().Error().
			Err(err).
			Str("provider", p.Name()).
			Str("recipient", recipient).
			Msg("sms send failed")
		if !result.Status.Valid() {
			result = sms.NewResult(recipient, body, originator)
		}
		return result, &SendError{
			Recipient:  recipient,
			Body:       body,
			Originator: originator,
			Err:        err,
		}
	}

	if !result.Status.Valid() {
		result.Status = sms.StatusFailed
	}

	logger.L().Debug().
		Str("provider", p.Name()).
		Str("recipient", recipient).
		Str("id", result.ID).
		Str("status", string(result.Status)).
		Msg("sms sent")

	return result, nil
}
