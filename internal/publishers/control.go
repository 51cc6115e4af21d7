package publishers

import (
	"context"
	"fmt"

	"gitlab.com/mcpricing.net/internal/core/ports/primary"
	"gitlab.com/mcpricing.net/internal/core/ports/secondary"
	"gitlab.com/mcpricing.net/internal/domain"
	"gitlab.com/mcpricing.net/internal/protocol"
)

// ControlPublisher puts control messages on the shared work queue
type ControlPublisher struct {
	Queue  secondary.WorkQueue
	Logger primary.Logger
}

func NewControlPublisher(queue secondary.WorkQueue, logger primary.Logger) *ControlPublisher {
	return &ControlPublisher{
		Queue:  queue,
		Logger: logger,
	}
}

// SendControl publishes one control message. Whichever worker consumes it
// acts on it.
func (p *ControlPublisher) SendControl(ctx context.Context, tag string) error {
	frame, err := protocol.EncodeControl(domain.ControlMessage{Tag: tag})
	if err != nil {
		return err
	}

	if err := p.Queue.PublishRequest(ctx, frame); err != nil {
		p.Logger.Error("Failed to send control message", "tag", tag, "error", err)
		return fmt.Errorf("failed to send control message: %w", err)
	}

	p.Logger.Debug("Control message sent", "tag", tag)
	return nil
}

// SendEnding publishes one "ending" message per worker
func (p *ControlPublisher) SendEnding(ctx context.Context, workers int) error {
	for i := 0; i < workers; i++ {
		if err := p.SendControl(ctx, domain.ControlTagEnding); err != nil {
			return err
		}
	}

	p.Logger.Info("Ending messages sent", "workers", workers)
	return nil
}
