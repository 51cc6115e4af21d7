package worker

import (
	"context"
	"fmt"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/montecarlo"
	"gitlab.com/mcpricing.net/internal/protocol"
	"gitlab.com/mcpricing.net/internal/static/errs"
)

var _ primary.MessageHandler = (*JobRequestHandler)(nil)

// JobRequestHandler evaluates one payout and publishes it to the job's reply channel
type JobRequestHandler struct {
	Cache   *GeneratorCache
	Replies secondary.ReplyBroker
	Logger  primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *JobRequestHandler) HandleMessage(ctx context.Context, payload []byte) error {
	request, err := protocol.DecodeJobRequest(payload)
	if err != nil {
		return err
	}

	evaluator, err := montecarlo.NewPayoutEvaluator(request.Option.StrikePrice, request.Option.PayoutType)
	if err != nil {
		return err
	}

	generator := h.Cache.Get(request.ReplyChannel, request.Option)
	payout := evaluator.Payout(generator.Generate())

	reply := protocol.EncodePayoutSample(domain.PayoutSample{Value: payout})
	if err := h.Replies.PublishReply(ctx, request.ReplyChannel, reply); err != nil {
		return fmt.Errorf("failed to publish payout: %w", err)
	}

	return nil
}

var _ primary.MessageHandler = (*ControlHandler)(nil)

// ControlHandler accepts the "ending" tag; any other control message is a
// protocol violation.
type ControlHandler struct {
	Logger primary.Logger
}

// HandleMessage implements the MessageHandler interface
func (h *ControlHandler) HandleMessage(ctx context.Context, payload []byte) error {
	msg, err := protocol.DecodeControl(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrProtocolViolation, err)
	}

	if msg.Tag != domain.ControlTagEnding {
		return fmt.Errorf("%w: unexpected control message %q", errs.ErrProtocolViolation, msg.Tag)
	}

	h.Logger.Info("Received ending message")
	return nil
}
