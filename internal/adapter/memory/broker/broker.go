// Package broker is an in-process implementation of the work queue and reply
// channels. It backs the local role and the service tests.
package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/deque"

	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

var _ secondary.Broker = &Broker{}

// fifo is an unbounded queue whose consumers can wait on a context
type fifo struct {
	mu     sync.Mutex
	items  deque.Deque[[]byte]
	ready  chan struct{}
	done   chan struct{}
	closed bool
}

func newFifo() *fifo {
	return &fifo{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

func (q *fifo) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *fifo) push(payload []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items.PushBack(payload)
	q.signal()
	return true
}

func (q *fifo) pop(ctx context.Context) ([]byte, error) {
	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			payload := q.items.PopFront()
			// wake the next waiter if more is queued
			if q.items.Len() > 0 {
				q.signal()
			}
			q.mu.Unlock()
			return payload, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, errs.ErrSubscriptionClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.done:
		case <-q.ready:
		}
	}
}

func (q *fifo) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
}

func (q *fifo) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Broker keeps the work queue and every open reply channel in memory
type Broker struct {
	requests *fifo

	replyMu sync.RWMutex
	replies map[string]*subscription
}

func NewBroker() *Broker {
	return &Broker{
		requests: newFifo(),
		replies:  make(map[string]*subscription),
	}
}

// PublishRequest implements secondary.WorkQueue
func (b *Broker) PublishRequest(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.requests.push(payload)
	return nil
}

// ConsumeRequest implements secondary.WorkQueue
func (b *Broker) ConsumeRequest(ctx context.Context) ([]byte, error) {
	return b.requests.pop(ctx)
}

// PendingRequests returns the number of queued, unconsumed requests
func (b *Broker) PendingRequests() int {
	return b.requests.len()
}

// OpenReplyChannel implements secondary.ReplyBroker
func (b *Broker) OpenReplyChannel(ctx context.Context, name string) (secondary.ReplySubscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.replyMu.Lock()
	defer b.replyMu.Unlock()

	if _, exists := b.replies[name]; exists {
		return nil, fmt.Errorf("reply channel already open: %s", name)
	}
	sub := &subscription{broker: b, name: name, queue: newFifo()}
	b.replies[name] = sub
	return sub, nil
}

// PublishReply implements secondary.ReplyBroker
func (b *Broker) PublishReply(ctx context.Context, name string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.replyMu.RLock()
	sub, exists := b.replies[name]
	b.replyMu.RUnlock()

	if exists {
		sub.queue.push(payload)
	}
	return nil
}

// OpenReplyChannels returns the number of subscribed reply channels
func (b *Broker) OpenReplyChannels() int {
	b.replyMu.RLock()
	defer b.replyMu.RUnlock()
	return len(b.replies)
}

type subscription struct {
	broker *Broker
	name   string
	queue  *fifo
	once   sync.Once
}

func (s *subscription) Receive(ctx context.Context) ([]byte, error) {
	return s.queue.pop(ctx)
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.broker.replyMu.Lock()
		delete(s.broker.replies, s.name)
		s.broker.replyMu.Unlock()
		s.queue.close()
	})
	return nil
}
