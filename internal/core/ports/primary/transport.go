package primary

import (
	"context"
)

// MessageHandler defines an interface for handling different message types
// consumed from the work queue
type MessageHandler interface {
	HandleMessage(ctx context.Context, payload []byte) error
}
