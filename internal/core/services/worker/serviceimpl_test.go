package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/mcpricing.net/internal/adapter/logging"
	"gitlab.com/mcpricing.net/internal/adapter/memory/broker"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/core/services/worker"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/protocol"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

type fixedPath []float64

func (p fixedPath) Generate() []float64 {
	return p
}

func fixedFactory(path ...float64) worker.GeneratorFactory {
	return func(domain.OptionSpec) secondary.PathGenerator {
		return fixedPath(path)
	}
}

func testOption() domain.OptionSpec {
	return domain.OptionSpec{
		Name:         "IBM",
		PayoutType:   domain.PayoutTypeEuropean,
		InterestRate: 0.0001,
		Volatility:   0.01,
		StrikePrice:  100,
		Duration:     3,
		InitialPrice: 100,
	}
}

func startWorker(t *testing.T, ctx context.Context, w worker.IWorkerService) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()
	return errCh
}

func publishRequest(t *testing.T, b *broker.Broker, replyChannel string, option domain.OptionSpec) {
	t.Helper()
	frame, err := protocol.EncodeJobRequest(domain.JobRequest{Option: option, ReplyChannel: replyChannel})
	require.NoError(t, err)
	require.NoError(t, b.PublishRequest(context.Background(), frame))
}

func publishControl(t *testing.T, b *broker.Broker, tag string) {
	t.Helper()
	frame, err := protocol.EncodeControl(domain.ControlMessage{Tag: tag})
	require.NoError(t, err)
	require.NoError(t, b.PublishRequest(context.Background(), frame))
}

func receivePayout(t *testing.T, sub secondary.ReplySubscription) float64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	frame, err := sub.Receive(ctx)
	require.NoError(t, err)
	sample, err := protocol.DecodePayoutSample(frame)
	require.NoError(t, err)
	return sample.Value
}

func requireNoReply(t *testing.T, sub secondary.ReplySubscription) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := sub.Receive(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerRepliesWithPayout(t *testing.T) {
	chk := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := broker.NewBroker()
	sub, err := b.OpenReplyChannel(ctx, "reply")
	chk.NoError(err)

	w := worker.NewWorkerService(b, logging.NewNopLogger(), worker.WithGeneratorFactory(fixedFactory(110, 120)))
	errCh := startWorker(t, ctx, w)

	publishRequest(t, b, "reply", testOption())
	chk.Equal(20.0, receivePayout(t, sub))

	asian := testOption()
	asian.PayoutType = domain.PayoutTypeAsian
	publishRequest(t, b, "reply", asian)
	chk.Equal(15.0, receivePayout(t, sub))

	stats := w.Stats()
	chk.Equal(uint64(2), stats.Processed)
	chk.Zero(stats.Dropped)
	chk.Equal(1, stats.CacheSize)

	cancel()
	chk.NoError(<-errCh)
}

func TestWorkerDropsMalformedRequest(t *testing.T) {
	chk := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := broker.NewBroker()
	sub, err := b.OpenReplyChannel(ctx, "reply")
	chk.NoError(err)

	w := worker.NewWorkerService(b, logging.NewNopLogger(), worker.WithGeneratorFactory(fixedFactory(130)))
	errCh := startWorker(t, ctx, w)

	// bad JSON, bad header, unknown message type and an unknown payout type
	chk.NoError(b.PublishRequest(ctx, protocol.EncodeFrame(protocol.MsgJobRequest, []byte(`{"replyChannel":`))))
	chk.NoError(b.PublishRequest(ctx, []byte("garbage")))
	chk.NoError(b.PublishRequest(ctx, protocol.EncodeFrame(0x7F, []byte(`{}`))))
	chk.NoError(b.PublishRequest(ctx, protocol.EncodeFrame(protocol.MsgJobRequest,
		[]byte(`{"optionName":"IBM","payOutType":"Bermudan","duration":1,"initialPrice":1,"replyChannel":"reply"}`))))

	chk.Eventually(func() bool {
		return w.Stats().Dropped == 4
	}, 2*time.Second, 5*time.Millisecond)
	requireNoReply(t, sub)

	// still consuming
	publishRequest(t, b, "reply", testOption())
	chk.Equal(30.0, receivePayout(t, sub))
	chk.Equal(uint64(1), w.Stats().Processed)

	cancel()
	chk.NoError(<-errCh)
}

func TestWorkerIgnoresEndingMessage(t *testing.T) {
	chk := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := broker.NewBroker()
	sub, err := b.OpenReplyChannel(ctx, "reply")
	chk.NoError(err)

	w := worker.NewWorkerService(b, logging.NewNopLogger(), worker.WithGeneratorFactory(fixedFactory(101)))
	errCh := startWorker(t, ctx, w)

	publishControl(t, b, domain.ControlTagEnding)
	publishRequest(t, b, "reply", testOption())
	chk.Equal(1.0, receivePayout(t, sub))

	cancel()
	chk.NoError(<-errCh)
}

func TestWorkerTerminatesOnUnexpectedControlMessage(t *testing.T) {
	chk := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b := broker.NewBroker()
	sub, err := b.OpenReplyChannel(ctx, "reply")
	chk.NoError(err)

	w := worker.NewWorkerService(b, logging.NewNopLogger(), worker.WithGeneratorFactory(fixedFactory(101)))
	errCh := startWorker(t, ctx, w)

	publishControl(t, b, "shutdown-now")
	chk.ErrorIs(<-errCh, errs.ErrProtocolViolation)

	// nothing consumes after termination
	publishRequest(t, b, "reply", testOption())
	requireNoReply(t, sub)
	chk.Equal(1, b.PendingRequests())
}

func TestWorkerTerminatesOnMalformedControlMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b := broker.NewBroker()
	w := worker.NewWorkerService(b, logging.NewNopLogger())
	errCh := startWorker(t, ctx, w)

	require.NoError(t, b.PublishRequest(ctx, protocol.EncodeFrame(protocol.MsgControl, []byte("ending"))))
	require.ErrorIs(t, <-errCh, errs.ErrProtocolViolation)
}

func TestPoolStopsOnProtocolViolation(t *testing.T) {
	chk := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b := broker.NewBroker()
	sub, err := b.OpenReplyChannel(ctx, "reply")
	chk.NoError(err)

	pool := worker.NewPool(3, b, logging.NewNopLogger(), worker.WithGeneratorFactory(fixedFactory(105)))
	chk.Equal(3, pool.Size())
	errCh := startWorker(t, ctx, pool)

	for i := 0; i < 30; i++ {
		publishRequest(t, b, "reply", testOption())
	}
	for i := 0; i < 30; i++ {
		chk.Equal(5.0, receivePayout(t, sub))
	}
	chk.Eventually(func() bool {
		return pool.Stats().Processed == 30
	}, time.Second, 5*time.Millisecond)

	publishControl(t, b, "bogus")
	chk.ErrorIs(<-errCh, errs.ErrProtocolViolation)
}

func TestEmptyPoolIsRejected(t *testing.T) {
	pool := worker.NewPool(0, broker.NewBroker(), logging.NewNopLogger())
	require.ErrorIs(t, pool.Run(context.Background()), errs.ErrInvalidConfig)
}
