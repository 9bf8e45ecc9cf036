package interaction

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPayload is returned when a reply carries no content-bearing field.
	ErrEmptyPayload = errors.New("interaction: response payload has no content")

	// ErrInvalidTransition is returned when an acknowledgement is not valid for
	// the interaction kind or its current state.
	ErrInvalidTransition = errors.New("interaction: invalid acknowledgement transition")

	ErrAlreadyAcknowledged = fmt.Errorf("%w: already acknowledged", ErrInvalidTransition)

	// ErrTokenExpired is returned without network I/O once the interaction
	// token has outlived its lifetime.
	ErrTokenExpired = errors.New("interaction: token expired")
)

// FollowUpError reports a failed follow-up delivery. It is never retried.
type FollowUpError struct {
	MessageID string
	Err       error
}

func (e *FollowUpError) Error() string {
	target := e.MessageID
	if target == "" {
		target = "new message"
	}
	return fmt.Sprintf("interaction: follow-up delivery to %s failed: %v", target, e.Err)
}

func (e *FollowUpError) Unwrap() error { return e.Err }

func invalidFor(op string, kind fmt.Stringer) error {
	return fmt.Errorf("%w: %s is not allowed for %s interactions", ErrInvalidTransition, op, kind)
}
