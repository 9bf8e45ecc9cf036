package notification

import (
	"context"
	"log/slog"

	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

// NoopNotifier logs failures instead of forwarding them. Used when no ops
// channel is configured.
type NoopNotifier struct {
	logger *slog.Logger
}

func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) NotifyFailure(_ context.Context, failure outbound.HandlerFailure) error {
	n.logger.Info("noop: handler failure",
		"kind", string(failure.Kind),
		"interactionID", failure.InteractionID,
		"type", failure.Type,
		"name", failure.Name,
		"guildID", failure.GuildID,
		"userID", failure.UserID,
		"error", failure.Err,
	)
	return nil
}
