package outboundtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

// DeleteCall records one FollowUpSender.Delete invocation.
type DeleteCall struct {
	ApplicationID string
	Token         string
	MessageID     string
}

// FollowUpRecorder is an in-memory FollowUpSender. Err, when set, is
// returned from every call after it is recorded.
type FollowUpRecorder struct {
	mu      sync.Mutex
	sends   []outbound.FollowUpRequest
	deletes []DeleteCall
	sent    chan outbound.FollowUpRequest
	Err     error
}

var _ outbound.FollowUpSender = (*FollowUpRecorder)(nil)

func NewFollowUpRecorder() *FollowUpRecorder {
	return &FollowUpRecorder{sent: make(chan outbound.FollowUpRequest, 64)}
}

func (r *FollowUpRecorder) Send(_ context.Context, req outbound.FollowUpRequest) (model.Message, error) {
	r.mu.Lock()
	r.sends = append(r.sends, req)
	n := len(r.sends)
	err := r.Err
	r.mu.Unlock()

	r.sent <- req
	if err != nil {
		return model.Message{}, err
	}
	id := req.MessageID
	if id == "" {
		id = fmt.Sprintf("followup-%d", n)
	}
	return model.Message{ID: id, Content: req.Data.Content}, nil
}

func (r *FollowUpRecorder) Delete(_ context.Context, applicationID, token, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, DeleteCall{ApplicationID: applicationID, Token: token, MessageID: messageID})
	return r.Err
}

// Sent delivers every request as it is recorded, for tests that wait on a
// handler running in the background.
func (r *FollowUpRecorder) Sent() <-chan outbound.FollowUpRequest { return r.sent }

func (r *FollowUpRecorder) Sends() []outbound.FollowUpRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]outbound.FollowUpRequest(nil), r.sends...)
}

func (r *FollowUpRecorder) Deletes() []DeleteCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DeleteCall(nil), r.deletes...)
}

// FailureRecorder is an in-memory FailureNotifier.
type FailureRecorder struct {
	mu       sync.Mutex
	failures []outbound.HandlerFailure
	notified chan outbound.HandlerFailure
}

var _ outbound.FailureNotifier = (*FailureRecorder)(nil)

func NewFailureRecorder() *FailureRecorder {
	return &FailureRecorder{notified: make(chan outbound.HandlerFailure, 64)}
}

func (r *FailureRecorder) NotifyFailure(_ context.Context, f outbound.HandlerFailure) error {
	r.mu.Lock()
	r.failures = append(r.failures, f)
	r.mu.Unlock()
	r.notified <- f
	return nil
}

func (r *FailureRecorder) Notified() <-chan outbound.HandlerFailure { return r.notified }

func (r *FailureRecorder) Failures() []outbound.HandlerFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]outbound.HandlerFailure(nil), r.failures...)
}
