package sender

import (
	"context"
	"sync"

	"github.com/onurcolak/sms-sender/pkg/sms"
)

// Pool holds messages waiting to be sent.
type Pool interface {
	Enqueue(r sms.Result)
	Len() int
	Flush(ctx context.Context, s Sender) ([]sms.Result, []error)
}

// MemoryPool is a process-local FIFO queue.
type MemoryPool struct {
	mu    sync.Mutex
	queue []sms.Result
}

func NewMemoryPool() *MemoryPool {
	return &MemoryPool{}
}

func (p *MemoryPool) Enqueue(r sms.Result) {
	p.mu.Lock()
	p.queue = append(p.queue, r)
	p.mu.Unlock()
}

func (p *MemoryPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Flush takes every queued message out of the pool and sends them in order.
// A failing message is reported in errors and does not stop the batch.
// Messages enqueued while flushing wait for the next flush, as do the ones
// left when ctx is cancelled.
func (p *MemoryPool) Flush(ctx context.Context, s Sender) ([]sms.Result, []error) {
	p.mu.Lock()
	batch := p.queue
	p.queue = nil
	p.mu.Unlock()

	var (
		results []sms.Result
		errs    []error
	)

	for i, msg := range batch {
		if err := ctx.Err(); err != nil {
			p.requeue(batch[i:])
			errs = append(errs, err)
			break
		}

		result, err := s.Send(ctx, msg.Recipient, msg.Body, msg.Originator)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}

	return results, errs
}

// requeue puts unsent messages back ahead of anything enqueued meanwhile.
func (p *MemoryPool) requeue(rest []sms.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	queue := make([]sms.Result, 0, len(rest)+len(p.queue))
	queue = append(queue, rest...)
	p.queue = append(queue, p.queue...)
}
