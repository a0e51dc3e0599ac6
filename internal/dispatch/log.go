// Package dispatch holds notification transports.
package dispatch

import (
	"context"

	"github.com/KirkDiggler/pickup/internal/common/uuid"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/notify"
	"go.uber.org/zap"
)

// LogDispatcher writes messages to the log instead of sending them. It is
// the default transport when no SMS provider is configured.
type LogDispatcher struct {
	logger        *zap.Logger
	uuidGenerator uuid.UUID
}

// NewLogDispatcher creates a dispatcher that logs every message
func NewLogDispatcher(logger *zap.Logger, uuidGenerator uuid.UUID) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if uuidGenerator == nil {
		uuidGenerator = uuid.New()
	}

	return &LogDispatcher{
		logger:        logger,
		uuidGenerator: uuidGenerator,
	}
}

// Send logs the message and returns a generated message ID
func (d *LogDispatcher) Send(_ context.Context, input *notify.SendInput) (*notify.SendOutput, error) {
	id := d.uuidGenerator.NewUUID()

	d.logger.Info("notification",
		zap.String("message_id", id),
		zap.String("dedupe_key", input.DedupeKey),
		zap.String("to", directory.MaskPhone(input.To)),
		zap.String("body", input.Body),
	)

	return &notify.SendOutput{MessageID: id}, nil
}
