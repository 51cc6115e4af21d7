package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/protocol"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

const (
	// consumePollTimeout bounds a single BRPOP so cancellation is noticed
	consumePollTimeout = 1 * time.Second

	defaultReplyBuffer = 1000
)

var _ secondary.Broker = &RedisBroker{}

// RedisBroker implements the work queue with a Redis list and the reply
// channels with Redis Pub/Sub
type RedisBroker struct {
	redisClient *redis.Client
	queueKey    string
	replyBuffer int
	logger      primary.Logger
}

// RedisBrokerOption configures a RedisBroker
type RedisBrokerOption func(*RedisBroker)

// WithQueueKey sets the Redis key of the work queue
func WithQueueKey(key string) RedisBrokerOption {
	return func(b *RedisBroker) {
		b.queueKey = key
	}
}

// WithReplyBuffer sets how many replies a subscription buffers client side
func WithReplyBuffer(size int) RedisBrokerOption {
	return func(b *RedisBroker) {
		b.replyBuffer = size
	}
}

// NewRedisBroker creates a new Redis broker
func NewRedisBroker(redisClient *redis.Client, logger primary.Logger, options ...RedisBrokerOption) *RedisBroker {
	b := &RedisBroker{
		redisClient: redisClient,
		queueKey:    protocol.RequestQueue,
		replyBuffer: defaultReplyBuffer,
		logger:      logger,
	}

	// Apply options
	for _, option := range options {
		option(b)
	}

	return b
}

// PublishRequest pushes a request onto the work queue
func (b *RedisBroker) PublishRequest(ctx context.Context, payload []byte) error {
	if err := b.redisClient.LPush(ctx, b.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish request: %w", err)
	}
	return nil
}

// ConsumeRequest pops the oldest request, blocking until one is available
func (b *RedisBroker) ConsumeRequest(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := b.redisClient.BRPop(ctx, consumePollTimeout, b.queueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to consume request: %w", err)
		}

		// BRPOP replies with [key, value]
		if len(result) != 2 {
			return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(result))
		}
		return []byte(result[1]), nil
	}
}

// OpenReplyChannel subscribes to name and waits for the subscription to be confirmed
func (b *RedisBroker) OpenReplyChannel(ctx context.Context, name string) (secondary.ReplySubscription, error) {
	pubsub := b.redisClient.Subscribe(ctx, name)

	// Wait for confirmation so no reply published after this point is lost
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to reply channel: %w", err)
	}

	b.logger.Debug("Subscribed to reply channel", "channel", name)
	return &replySubscription{
		pubsub:   pubsub,
		messages: pubsub.Channel(redis.WithChannelSize(b.replyBuffer)),
	}, nil
}

// PublishReply publishes a reply on the named channel
func (b *RedisBroker) PublishReply(ctx context.Context, name string, payload []byte) error {
	if err := b.redisClient.Publish(ctx, name, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish reply: %w", err)
	}
	return nil
}

type replySubscription struct {
	pubsub   *redis.PubSub
	messages <-chan *redis.Message
}

func (s *replySubscription) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-s.messages:
		if !ok {
			return nil, errs.ErrSubscriptionClosed
		}
		return []byte(msg.Payload), nil
	}
}

func (s *replySubscription) Close() error {
	return s.pubsub.Close()
}
