package sender

import (
	"context"

	"github.com/onurcolak/sms-sender/pkg/provider"
	"github.com/onurcolak/sms-sender/pkg/sms"
)

// DelayedSender queues messages and sends them through the wrapped
// dispatcher on Flush.
type DelayedSender struct {
	next Dispatcher
	pool Pool
}

func NewDelayedSender(next Dispatcher, pool Pool) *DelayedSender {
	if pool == nil {
		pool = NewMemoryPool()
	}
	return &DelayedSender{next: next, pool: pool}
}

// Send enqueues the message and returns it with status queued.
func (d *DelayedSender) Send(_ context.Context, recipient, body, originator string) (sms.Result, error) {
	result := sms.NewResult(recipient, body, originator)
	result.Status = sms.StatusQueued

	d.pool.Enqueue(result)
	return result, nil
}

// Flush sends every pending message through the wrapped dispatcher.
func (d *DelayedSender) Flush(ctx context.Context) ([]sms.Result, []error) {
	return d.pool.Flush(ctx, d.next)
}

// Pending is the number of queued messages.
func (d *DelayedSender) Pending() int {
	return d.pool.Len()
}

func (d *DelayedSender) RegisterProvider(p provider.Provider) {
	d.next.RegisterProvider(p)
}

func (d *DelayedSender) RegisterProviders(ps ...provider.Provider) {
	d.next.RegisterProviders(ps...)
}

func (d *DelayedSender) Using(name string) {
	d.next.Using(name)
}

func (d *DelayedSender) Providers() map[string]provider.Provider {
	return d.next.Providers()
}

func (d *DelayedSender) Provider() (provider.Provider, error) {
	return d.next.Provider()
}
