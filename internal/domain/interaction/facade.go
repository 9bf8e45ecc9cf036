package interaction

import (
	"context"

	"github.com/jonny/interactbot/internal/domain/model"
)

// base binds one raw interaction to its Acknowledger. Constructing it performs
// no I/O.
type base struct {
	raw model.Interaction
	ack *Acknowledger
}

func newBase(i model.Interaction, opts Options) base {
	return base{raw: i, ack: NewAcknowledger(i, opts)}
}

func (b *base) Raw() model.Interaction           { return b.raw }
func (b *base) ID() string                       { return b.raw.ID }
func (b *base) Token() string                    { return b.raw.Token }
func (b *base) GuildID() string                  { return b.raw.GuildID }
func (b *base) ChannelID() string                { return b.raw.ChannelID }
func (b *base) Invoker() *model.User             { return b.raw.Invoker() }
func (b *base) Acknowledger() *Acknowledger      { return b.ack }
func (b *base) Response() (model.Response, bool) { return b.ack.Response() }
func (b *base) Acknowledged() bool               { return b.ack.Acknowledged() }
func (b *base) Deferred() bool                   { return b.ack.Deferred() }

func (b *base) Reply(ctx context.Context, data model.MessageData) error {
	return b.ack.Reply(ctx, data)
}

func (b *base) DeferReply(opts model.DeferOptions) error {
	return b.ack.DeferReply(opts)
}

func (b *base) FollowUp(ctx context.Context, data model.MessageData) (model.Message, error) {
	return b.ack.FollowUp(ctx, data)
}

func (b *base) EditReply(ctx context.Context, data model.MessageData) (model.Message, error) {
	return b.ack.EditReply(ctx, data)
}

func (b *base) DeleteReply(ctx context.Context) error {
	return b.ack.DeleteReply(ctx)
}
