package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/interactbot/internal/domain/model"
	"github.com/jonny/interactbot/internal/domain/port/outbound"
	"github.com/jonny/interactbot/internal/domain/port/outbound/outboundtest"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testInteraction(t *testing.T, typ model.InteractionType, data any) model.Interaction {
	t.Helper()
	i := model.Interaction{
		ID:            model.SnowflakeAt(testNow),
		ApplicationID: "app1",
		Type:          typ,
		Token:         "tok1",
	}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		i.Data = raw
	}
	return i
}

func testOptions(rec *outboundtest.FollowUpRecorder) Options {
	return Options{FollowUps: rec, TokenLifetime: 15 * time.Minute, Now: func() time.Time { return testNow }}
}

func newTestAck(t *testing.T, typ model.InteractionType) (*Acknowledger, *outboundtest.FollowUpRecorder) {
	t.Helper()
	rec := outboundtest.NewFollowUpRecorder()
	return NewAcknowledger(testInteraction(t, typ, nil), testOptions(rec)), rec
}

func isDone(a *Acknowledger) bool {
	select {
	case <-a.Done():
		return true
	default:
		return false
	}
}

func TestAcknowledger_InitialState(t *testing.T) {
	a, _ := newTestAck(t, model.InteractionTypeApplicationCommand)

	assert.Equal(t, Unacknowledged, a.State())
	assert.False(t, a.Acknowledged())
	assert.False(t, a.Deferred())
	assert.False(t, isDone(a))
	_, ok := a.Response()
	assert.False(t, ok)
}

func TestAcknowledger_Transitions(t *testing.T) {
	ctx := context.Background()
	modal := model.ModalData{CustomID: "m1", Title: "T", Components: []model.Component{{Type: model.ComponentActionRow}}}

	tests := []struct {
		name     string
		typ      model.InteractionType
		ack      func(a *Acknowledger) error
		wantType model.ResponseType
		deferred bool
	}{
		{
			name:     "reply",
			typ:      model.InteractionTypeApplicationCommand,
			ack:      func(a *Acknowledger) error { return a.Reply(ctx, model.MessageData{Content: "hi"}) },
			wantType: model.ResponseChannelMessage,
		},
		{
			name:     "defer reply",
			typ:      model.InteractionTypeModalSubmit,
			ack:      func(a *Acknowledger) error { return a.DeferReply(model.DeferOptions{}) },
			wantType: model.ResponseDeferredChannelMessage,
			deferred: true,
		},
		{
			name:     "update",
			typ:      model.InteractionTypeMessageComponent,
			ack:      func(a *Acknowledger) error { return a.Update(ctx, model.MessageData{Content: "new"}) },
			wantType: model.ResponseUpdateMessage,
		},
		{
			name:     "defer update",
			typ:      model.InteractionTypeMessageComponent,
			ack:      func(a *Acknowledger) error { return a.DeferUpdate() },
			wantType: model.ResponseDeferredMessageUpdate,
			deferred: true,
		},
		{
			name:     "show modal from command",
			typ:      model.InteractionTypeApplicationCommand,
			ack:      func(a *Acknowledger) error { return a.ShowModal(Raw(modal)) },
			wantType: model.ResponseModal,
		},
		{
			name:     "show modal from component",
			typ:      model.InteractionTypeMessageComponent,
			ack:      func(a *Acknowledger) error { return a.ShowModal(Raw(modal)) },
			wantType: model.ResponseModal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, rec := newTestAck(t, tt.typ)

			require.NoError(t, tt.ack(a))

			assert.Equal(t, Acknowledged, a.State())
			assert.True(t, isDone(a))
			assert.Equal(t, tt.deferred, a.Deferred())
			resp, ok := a.Response()
			require.True(t, ok)
			assert.Equal(t, tt.wantType, resp.Type)
			assert.Empty(t, rec.Sends(), "initial acknowledgement must not use the follow-up channel")
		})
	}
}

func TestAcknowledger_SecondAckRejected(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAck(t, model.InteractionTypeMessageComponent)
	require.NoError(t, a.Update(ctx, model.MessageData{Content: "first"}))

	assert.ErrorIs(t, a.DeferReply(model.DeferOptions{}), ErrAlreadyAcknowledged)
	assert.ErrorIs(t, a.DeferUpdate(), ErrAlreadyAcknowledged)
	assert.ErrorIs(t, a.Reply(ctx, model.MessageData{Content: "x"}), ErrInvalidTransition)
	assert.ErrorIs(t, a.Update(ctx, model.MessageData{Content: "x"}), ErrAlreadyAcknowledged)
	assert.ErrorIs(t, a.ShowModal(Raw(model.ModalData{CustomID: "m"})), ErrAlreadyAcknowledged)

	resp, _ := a.Response()
	assert.Equal(t, "first", resp.Data.(*model.MessageData).Content)
}

func TestAcknowledger_KindRestrictions(t *testing.T) {
	ctx := context.Background()
	modal := Raw(model.ModalData{CustomID: "m"})

	cmd, _ := newTestAck(t, model.InteractionTypeApplicationCommand)
	assert.ErrorIs(t, cmd.Update(ctx, model.MessageData{Content: "x"}), ErrInvalidTransition)
	assert.ErrorIs(t, cmd.DeferUpdate(), ErrInvalidTransition)

	submit, _ := newTestAck(t, model.InteractionTypeModalSubmit)
	assert.ErrorIs(t, submit.ShowModal(modal), ErrInvalidTransition)

	assert.Equal(t, Unacknowledged, cmd.State())
	assert.Equal(t, Unacknowledged, submit.State())
}

func TestAcknowledger_EmptyReplyRejected(t *testing.T) {
	a, _ := newTestAck(t, model.InteractionTypeApplicationCommand)

	err := a.Reply(context.Background(), model.MessageData{Flags: model.FlagEphemeral})
	assert.ErrorIs(t, err, ErrEmptyPayload)
	assert.False(t, a.Acknowledged())
}

func TestAcknowledger_EmptyUpdateAcknowledgesWithoutData(t *testing.T) {
	a, _ := newTestAck(t, model.InteractionTypeMessageComponent)

	require.NoError(t, a.Update(context.Background(), model.MessageData{}))
	resp, _ := a.Response()
	assert.Equal(t, model.ResponseUpdateMessage, resp.Type)
	assert.Nil(t, resp.Data)
}

func TestAcknowledger_DeferReplyFlags(t *testing.T) {
	a, _ := newTestAck(t, model.InteractionTypeApplicationCommand)

	require.NoError(t, a.DeferReply(model.DeferOptions{Flags: model.FlagEphemeral}))
	resp, _ := a.Response()
	opts, ok := resp.DeferOptions()
	require.True(t, ok)
	assert.Equal(t, model.FlagEphemeral, opts.Flags)
}

func TestAcknowledger_ReplyAfterDeferEditsOriginal(t *testing.T) {
	ctx := context.Background()
	a, rec := newTestAck(t, model.InteractionTypeApplicationCommand)
	require.NoError(t, a.DeferReply(model.DeferOptions{}))

	require.NoError(t, a.Reply(ctx, model.MessageData{Content: "done"}))

	sends := rec.Sends()
	require.Len(t, sends, 1)
	assert.Equal(t, outbound.OriginalMessage, sends[0].MessageID)
	assert.Equal(t, "app1", sends[0].ApplicationID)
	assert.Equal(t, "tok1", sends[0].Token)
	assert.Equal(t, "done", sends[0].Data.Content)

	resp, _ := a.Response()
	assert.Equal(t, model.ResponseDeferredChannelMessage, resp.Type, "captured acknowledgement is unchanged")
}

func TestAcknowledger_UpdateAfterDeferUpdateEditsOriginal(t *testing.T) {
	ctx := context.Background()
	a, rec := newTestAck(t, model.InteractionTypeMessageComponent)
	require.NoError(t, a.DeferUpdate())

	require.NoError(t, a.Update(ctx, model.MessageData{Content: "edited"}))
	sends := rec.Sends()
	require.Len(t, sends, 1)
	assert.Equal(t, outbound.OriginalMessage, sends[0].MessageID)
}

func TestAcknowledger_FollowUps(t *testing.T) {
	ctx := context.Background()
	a, rec := newTestAck(t, model.InteractionTypeApplicationCommand)
	require.NoError(t, a.DeferReply(model.DeferOptions{}))

	msg, err := a.FollowUp(ctx, model.MessageData{Content: "extra"})
	require.NoError(t, err)
	assert.Equal(t, "followup-1", msg.ID)

	msg, err = a.EditReply(ctx, model.MessageData{Content: "edit"})
	require.NoError(t, err)
	assert.Equal(t, outbound.OriginalMessage, msg.ID)

	require.NoError(t, a.DeleteReply(ctx))

	sends := rec.Sends()
	require.Len(t, sends, 2)
	assert.Empty(t, sends[0].MessageID)
	assert.Equal(t, outbound.OriginalMessage, sends[1].MessageID)
	assert.Equal(t, []outboundtest.DeleteCall{{ApplicationID: "app1", Token: "tok1", MessageID: outbound.OriginalMessage}}, rec.Deletes())
}

func TestAcknowledger_FollowUpEmptyPayload(t *testing.T) {
	a, rec := newTestAck(t, model.InteractionTypeApplicationCommand)

	_, err := a.FollowUp(context.Background(), model.MessageData{})
	assert.ErrorIs(t, err, ErrEmptyPayload)
	assert.Empty(t, rec.Sends())
}

func TestAcknowledger_ExpiredTokenSkipsNetwork(t *testing.T) {
	rec := outboundtest.NewFollowUpRecorder()
	opts := testOptions(rec)
	opts.Now = func() time.Time { return testNow.Add(16 * time.Minute) }
	a := NewAcknowledger(testInteraction(t, model.InteractionTypeApplicationCommand, nil), opts)
	require.NoError(t, a.DeferReply(model.DeferOptions{}))

	_, err := a.FollowUp(context.Background(), model.MessageData{Content: "late"})
	assert.ErrorIs(t, err, ErrTokenExpired)

	var fe *FollowUpError
	require.True(t, errors.As(err, &fe))
	assert.Empty(t, fe.MessageID)

	assert.ErrorIs(t, a.DeleteReply(context.Background()), ErrTokenExpired)
	assert.Empty(t, rec.Sends())
	assert.Empty(t, rec.Deletes())
}

func TestAcknowledger_SenderFailureWrapped(t *testing.T) {
	sendErr := errors.New("boom")
	a, rec := newTestAck(t, model.InteractionTypeApplicationCommand)
	rec.Err = sendErr

	_, err := a.EditReply(context.Background(), model.MessageData{Content: "x"})
	assert.ErrorIs(t, err, sendErr)

	var fe *FollowUpError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, outbound.OriginalMessage, fe.MessageID)
	assert.Contains(t, err.Error(), "@original")
	assert.Len(t, rec.Sends(), 1, "follow-ups are not retried")
}

func TestAcknowledger_NoSender(t *testing.T) {
	a := NewAcknowledger(testInteraction(t, model.InteractionTypeApplicationCommand, nil), Options{})

	_, err := a.FollowUp(context.Background(), model.MessageData{Content: "x"})
	var fe *FollowUpError
	assert.True(t, errors.As(err, &fe))
}

func TestAcknowledger_ShowModalSerializationFailureLeavesUnacknowledged(t *testing.T) {
	a, _ := newTestAck(t, model.InteractionTypeApplicationCommand)

	err := a.ShowModal(From[model.ModalData](model.NewModal("", "")))
	require.Error(t, err)
	assert.False(t, a.Acknowledged())
	assert.False(t, isDone(a))

	err = a.ShowModal(Payload[model.ModalData]{})
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestResponseCell(t *testing.T) {
	var c ResponseCell
	_, ok := c.Load()
	assert.False(t, ok)

	c.Store(model.Response{Type: model.ResponsePong})
	c.Store(model.Response{Type: model.ResponseChannelMessage})

	r, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, model.ResponseChannelMessage, r.Type)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unacknowledged", Unacknowledged.String())
	assert.Equal(t, "acknowledged", Acknowledged.String())
}
