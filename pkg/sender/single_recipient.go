package sender

import (
	"context"

	"github.com/onurcolak/sms-sender/pkg/provider"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

// SingleRecipientSender routes every message to one fixed number, used in
// staging so no real customer receives test traffic. Results still report
// the recipient the caller asked for.
type SingleRecipientSender struct {
	next      Dispatcher
	recipient string
}

func NewSingleRecipientSender(next Dispatcher, recipient string) *SingleRecipientSender {
	return &SingleRecipientSender{next: next, recipient: recipient}
}

func (s *SingleRecipientSender) Send(ctx context.Context, recipient, body, originator string) (sms.Result, error) {
	result, err := s.next.Send(ctx, s.recipient, body, originator)
	if !result.Status.Valid() {
		return sms.NewResult(recipient, body, originator), err
	}
	result.Recipient = recipient
	return result, err
}

// Recipient is the pinned number.
func (s *SingleRecipientSender) Recipient() string {
	return s.recipient
}

func (s *SingleRecipientSender) RegisterProvider(p provider.Provider) {
	s.next.RegisterProvider(p)
}

func (s *SingleRecipientSender) RegisterProviders(ps ...provider.Provider) {
	s.next.RegisterProviders(ps...)
}

func (s *SingleRecipientSender) Using(name string) {
	s.next.Using(name)
}

func (s *SingleRecipientSender) Providers() map[string]provider.Provider {
	return s.next.Providers()
}

func (s *SingleRecipientSender) Provider() (provider.Provider, error) {
	return s.next.Provider()
}
