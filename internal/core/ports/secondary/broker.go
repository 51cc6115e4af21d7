package secondary

import "context"

// WorkQueue is a competing-consumer queue: every published message is
// delivered to exactly one consumer.
type WorkQueue interface {
	// PublishRequest appends a message to the shared work queue
	PublishRequest(ctx context.Context, payload []byte) error

	// ConsumeRequest blocks until a message is available or ctx is done
	ConsumeRequest(ctx context.Context) ([]byte, error)
}

// ReplySubscription is the consuming side of a single reply channel
type ReplySubscription interface {
	// Receive blocks until a reply arrives or ctx is done
	Receive(ctx context.Context) ([]byte, error)

	Close() error
}

// ReplyBroker manages dynamically named publish/subscribe reply channels
type ReplyBroker interface {
	// OpenReplyChannel subscribes to the named channel. Messages published
	// before it returns may be lost.
	OpenReplyChannel(ctx context.Context, name string) (ReplySubscription, error)

	// PublishReply publishes to the named channel. Without a subscriber the
	// message is dropped.
	PublishReply(ctx context.Context, name string, payload []byte) error
}

type Broker interface {
	WorkQueue
	ReplyBroker
}
