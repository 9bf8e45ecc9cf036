package outbound

import (
	"context"
	"time"
)

type FailureKind string

const (
	FailureHandler  FailureKind = "handler"
	FailureFollowUp FailureKind = "follow_up"
	FailureTimeout  FailureKind = "ack_timeout"
)

type HandlerFailure struct {
	Kind          FailureKind
	InteractionID string
	Type          string
	Name          string
	GuildID       string
	UserID        string
	Err           error
	OccurredAt    time.Time
}

// FailureNotifier reports handler failures that happen after the HTTP exchange
// completed and therefore cannot reach the end user.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, failure HandlerFailure) error
}
