package interaction

import (
	"context"
	"errors"
	"time"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

// State is the acknowledgement state of one interaction.
type State int

const (
	Unacknowledged State = iota
	Acknowledged
)

func (s State) String() string {
	if s == Acknowledged {
		return "acknowledged"
	}
	return "unacknowledged"
}

var errNoSender = errors.New("no follow-up sender configured")

// Options configures the follow-up side of an Acknowledger.
type Options struct {
	FollowUps     outbound.FollowUpSender
	TokenLifetime time.Duration
	Now           func() time.Time
}

// Acknowledger enforces the one-shot acknowledgement contract for a single
// interaction and routes everything after a deferral through the follow-up
// channel. The synchronous methods never perform I/O.
type Acknowledger struct {
	interaction model.Interaction
	opts        Options
	cell        ResponseCell
	state       State
	done        chan struct{}
}

func NewAcknowledger(i model.Interaction, opts Options) *Acknowledger {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Acknowledger{
		interaction: i,
		opts:        opts,
		done:        make(chan struct{}),
	}
}

func (a *Acknowledger) State() State { return a.state }

func (a *Acknowledger) Acknowledged() bool { return a.state == Acknowledged }

// Deferred reports whether the initial acknowledgement was a deferral.
func (a *Acknowledger) Deferred() bool {
	r, ok := a.cell.Load()
	return ok && r.Deferred()
}

// Done is closed once the initial acknowledgement is captured.
func (a *Acknowledger) Done() <-chan struct{} { return a.done }

// Response returns the captured acknowledgement, if any.
func (a *Acknowledger) Response() (model.Response, bool) { return a.cell.Load() }

func (a *Acknowledger) capture(r model.Response) {
	a.cell.Store(r)
	a.state = Acknowledged
	close(a.done)
}

// Reply acknowledges with a channel message. After a deferral it finalizes
// the deferred response through the follow-up channel instead.
func (a *Acknowledger) Reply(ctx context.Context, data model.MessageData) error {
	if !data.HasContent() {
		return ErrEmptyPayload
	}
	switch {
	case a.state == Unacknowledged:
		a.capture(model.Response{Type: model.ResponseChannelMessage, Data: &data})
		return nil
	case a.Deferred():
		_, err := a.send(ctx, outbound.OriginalMessage, data)
		return err
	default:
		return ErrAlreadyAcknowledged
	}
}

// DeferReply acknowledges now and promises a channel message later.
func (a *Acknowledger) DeferReply(opts model.DeferOptions) error {
	if a.state != Unacknowledged {
		return ErrAlreadyAcknowledged
	}
	r := model.Response{Type: model.ResponseDeferredChannelMessage}
	if opts.Flags != 0 {
		r.Data = &opts
	}
	a.capture(r)
	return nil
}

// Update edits the message the component is attached to. An empty data
// acknowledges without changing anything. After DeferUpdate it edits the
// original message through the follow-up channel.
func (a *Acknowledger) Update(ctx context.Context, data model.MessageData) error {
	if a.interaction.Type != model.InteractionTypeMessageComponent {
		return invalidFor("update", a.interaction.Type)
	}
	switch {
	case a.state == Unacknowledged:
		r := model.Response{Type: model.ResponseUpdateMessage}
		if data.HasContent() || data.Flags != 0 {
			r.Data = &data
		}
		a.capture(r)
		return nil
	case a.Deferred():
		_, err := a.send(ctx, outbound.OriginalMessage, data)
		return err
	default:
		return ErrAlreadyAcknowledged
	}
}

func (a *Acknowledger) DeferUpdate() error {
	if a.interaction.Type != model.InteractionTypeMessageComponent {
		return invalidFor("deferUpdate", a.interaction.Type)
	}
	if a.state != Unacknowledged {
		return ErrAlreadyAcknowledged
	}
	a.capture(model.Response{Type: model.ResponseDeferredMessageUpdate})
	return nil
}

// ShowModal opens a modal as the initial acknowledgement.
func (a *Acknowledger) ShowModal(p Payload[model.ModalData]) error {
	switch a.interaction.Type {
	case model.InteractionTypeApplicationCommand, model.InteractionTypeMessageComponent:
	default:
		return invalidFor("showModal", a.interaction.Type)
	}
	if a.state != Unacknowledged {
		return ErrAlreadyAcknowledged
	}
	data, err := p.Resolve()
	if err != nil {
		return err
	}
	a.capture(model.Response{Type: model.ResponseModal, Data: &data})
	return nil
}

// EditReply edits the original response through the follow-up channel.
// The platform decides whether the edit is acceptable.
func (a *Acknowledger) EditReply(ctx context.Context, data model.MessageData) (model.Message, error) {
	return a.send(ctx, outbound.OriginalMessage, data)
}

// FollowUp posts a new message through the follow-up channel.
func (a *Acknowledger) FollowUp(ctx context.Context, data model.MessageData) (model.Message, error) {
	if !data.HasContent() {
		return model.Message{}, ErrEmptyPayload
	}
	return a.send(ctx, "", data)
}

// DeleteReply deletes the original response.
func (a *Acknowledger) DeleteReply(ctx context.Context) error {
	if err := a.checkFollowUp(); err != nil {
		return &FollowUpError{MessageID: outbound.OriginalMessage, Err: err}
	}
	err := a.opts.FollowUps.Delete(ctx, a.interaction.ApplicationID, a.interaction.Token, outbound.OriginalMessage)
	if err != nil {
		return &FollowUpError{MessageID: outbound.OriginalMessage, Err: err}
	}
	return nil
}

func (a *Acknowledger) checkFollowUp() error {
	if a.opts.FollowUps == nil {
		return errNoSender
	}
	if a.interaction.TokenExpired(a.opts.Now(), a.opts.TokenLifetime) {
		return ErrTokenExpired
	}
	return nil
}

func (a *Acknowledger) send(ctx context.Context, messageID string, data model.MessageData) (model.Message, error) {
	if err := a.checkFollowUp(); err != nil {
		return model.Message{}, &FollowUpError{MessageID: messageID, Err: err}
	}
	msg, err := a.opts.FollowUps.Send(ctx, outbound.FollowUpRequest{
		ApplicationID: a.interaction.ApplicationID,
		Token:         a.interaction.Token,
		MessageID:     messageID,
		Data:          data,
	})
	if err != nil {
		return model.Message{}, &FollowUpError{MessageID: messageID, Err: err}
	}
	return msg, nil
}
