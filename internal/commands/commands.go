package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonny/interactbot/internal/dispatch"
	"github.com/jonny/interactbot/internal/domain/interaction"
	"github.com/jonny/interactbot/internal/domain/model"
)

const (
	FeedbackModalID = "feedback"
	FeedbackTextID  = "feedback_text"
	FeedbackRolesID = "feedback_roles"
	VotePrefix      = "vote:"
	MenuID          = "menu"
	maxEchoLength   = 2000
)

// Set holds the example handlers and their dependencies.
type Set struct {
	logger  *slog.Logger
	started time.Time
	now     func() time.Time
}

func New(logger *slog.Logger) *Set {
	return &Set{logger: logger, started: time.Now(), now: time.Now}
}

// Register adds every handler of the set to reg.
func (s *Set) Register(reg *dispatch.Registry) {
	reg.Command("ping", s.ping)
	reg.Command("echo", s.echo)
	reg.Command("report", s.report)
	reg.Command("feedback", s.feedback)
	reg.Modal(FeedbackModalID, s.feedbackSubmit)
	reg.ComponentPrefix(VotePrefix, s.vote)
	reg.Component(MenuID, s.menu)
}

func (s *Set) ping(ctx context.Context, i *interaction.CommandInteraction) error {
	return i.Reply(ctx, model.MessageData{Content: "Pong!"})
}

type echoOptions struct {
	Text      string `option:"text"`
	Ephemeral bool   `option:"ephemeral"`
}

func (s *Set) echo(ctx context.Context, i *interaction.CommandInteraction) error {
	var opts echoOptions
	if err := i.BindOptions(&opts); err != nil {
		return err
	}
	text := strings.TrimSpace(opts.Text)
	if text == "" {
		text = "(nothing to echo)"
	}
	msg := model.NewMessage(truncate(text, maxEchoLength))
	if opts.Ephemeral {
		msg.Ephemeral()
	}
	data, err := msg.Serialize()
	if err != nil {
		return err
	}
	return i.Reply(ctx, data)
}

// report acknowledges with a deferral and delivers the summary as an edit of
// the original response.
func (s *Set) report(ctx context.Context, i *interaction.CommandInteraction) error {
	if err := i.DeferReply(model.DeferOptions{Flags: model.FlagEphemeral}); err != nil {
		return err
	}

	summary := s.summary(i)
	if _, err := i.EditReply(ctx, model.MessageData{Embeds: []model.Embed{summary}}); err != nil {
		return err
	}
	s.logger.Debug("report delivered", "interactionID", i.ID())
	return nil
}

func (s *Set) summary(i *interaction.CommandInteraction) model.Embed {
	invoker := "unknown"
	if u := i.Invoker(); u != nil {
		invoker = u.Username
	}
	guild := i.GuildID()
	if guild == "" {
		guild = "direct message"
	}
	uptime := s.now().Sub(s.started).Truncate(time.Second)
	return model.Embed{
		Title: "Status report",
		Fields: []model.EmbedField{
			{Name: "Requested by", Value: invoker, Inline: true},
			{Name: "Guild", Value: guild, Inline: true},
			{Name: "Uptime", Value: uptime.String(), Inline: true},
		},
	}
}

func (s *Set) feedback(_ context.Context, i *interaction.CommandInteraction) error {
	one := 1
	roles := model.Component{
		Type:      model.ComponentRoleSelect,
		CustomID:  FeedbackRolesID,
		MinValues: &one,
		MaxValues: 3,
	}
	modal := model.NewModal(FeedbackModalID, "Send feedback").
		AddTextInput(FeedbackTextID, "What should we improve?", model.TextInputParagraph, true).
		AddLabel("Teams", "Which teams should see this?", roles)
	return i.ShowModal(interaction.From[model.ModalData](modal))
}

func (s *Set) feedbackSubmit(ctx context.Context, i *interaction.ModalSubmitInteraction) error {
	text, ok := i.TextValue(FeedbackTextID)
	if !ok || strings.TrimSpace(text) == "" {
		return i.Reply(ctx, model.MessageData{Content: "Feedback was empty.", Flags: model.FlagEphemeral})
	}

	roles, _ := i.Roles(FeedbackRolesID)
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	content := "Thanks for the feedback!"
	if len(names) > 0 {
		content += " Shared with: " + strings.Join(names, ", ")
	}
	return i.Reply(ctx, model.MessageData{Content: content, Flags: model.FlagEphemeral})
}

func (s *Set) vote(ctx context.Context, i *interaction.ComponentInteraction) error {
	raw := strings.TrimPrefix(i.CustomID(), VotePrefix)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return i.Reply(ctx, model.MessageData{Content: "That vote is no longer valid.", Flags: model.FlagEphemeral})
	}
	voter := "someone"
	if u := i.Invoker(); u != nil {
		voter = u.Username
	}
	next := model.Button(fmt.Sprintf("%s%d", VotePrefix, n+1), "Vote", model.ButtonPrimary)
	data, err := model.NewMessage(fmt.Sprintf("Votes: %d (last by %s)", n+1, voter)).AddButtons(next).Serialize()
	if err != nil {
		return err
	}
	return i.Update(ctx, data)
}

func (s *Set) menu(ctx context.Context, i *interaction.ComponentInteraction) error {
	if err := i.DeferUpdate(); err != nil {
		return err
	}
	choice := "nothing"
	if vals := i.Values(); len(vals) > 0 {
		choice = strings.Join(vals, ", ")
	}
	_, err := i.EditReply(ctx, model.MessageData{Content: "Selected: " + choice})
	return err
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
