package outbound

import (
	"context"

	"github.com/jonny/interactbot/internal/domain/model"
)

// OriginalMessage addresses the message created by the initial acknowledgement.
const OriginalMessage = "@original"

// FollowUpRequest addresses a webhook-style follow-up by interaction token.
// MessageID is OriginalMessage to edit the deferred response, or empty to
// post a new follow-up message.
type FollowUpRequest struct {
	ApplicationID string
	Token         string
	MessageID     string
	Data          model.MessageData
}

// FollowUpSender delivers follow-up messages over the asynchronous channel.
type FollowUpSender interface {
	// Send creates or edits a follow-up message and returns the message as
	// reported by the platform.
	Send(ctx context.Context, req FollowUpRequest) (model.Message, error)
	// Delete removes a follow-up message.
	Delete(ctx context.Context, applicationID, token, messageID string) error
}
