package slack

import (
	"context"
	"fmt"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/interactbot/internal/domain/port/outbound"
)

// Config holds Slack notifier configuration.
type Config struct {
	BotToken string
	Channel  string
	// APIURL overrides the Slack Web API endpoint; empty uses the default.
	APIURL string
}

// Notifier implements outbound.FailureNotifier by posting to an ops channel.
type Notifier struct {
	client *slackapi.Client
	config Config
}

var _ outbound.FailureNotifier = (*Notifier)(nil)

func NewNotifier(cfg Config) *Notifier {
	var opts []slackapi.Option
	if cfg.APIURL != "" {
		opts = append(opts, slackapi.OptionAPIURL(cfg.APIURL))
	}
	return &Notifier{
		client: slackapi.New(cfg.BotToken, opts...),
		config: cfg,
	}
}

// NotifyFailure posts a Block Kit card describing the failure.
func (n *Notifier) NotifyFailure(ctx context.Context, failure outbound.HandlerFailure) error {
	_, _, err := n.client.PostMessageContext(ctx, n.config.Channel,
		slackapi.MsgOptionBlocks(BuildFailureBlocks(failure)...),
		slackapi.MsgOptionText(fmt.Sprintf("%s %s failed: %s", kindEmoji(failure.Kind), failure.Name, failure.Kind), false),
	)
	if err != nil {
		return fmt.Errorf("slack NotifyFailure: %w", err)
	}
	return nil
}

// BuildFailureBlocks renders a failure as a header, a field section and a
// context line.
func BuildFailureBlocks(failure outbound.HandlerFailure) []slackapi.Block {
	header := slackapi.NewHeaderBlock(
		slackapi.NewTextBlockObject(slackapi.PlainTextType, fmt.Sprintf("Interaction %s failed", failure.Name), true, false),
	)

	fields := []*slackapi.TextBlockObject{
		markdownField("Kind", string(failure.Kind)),
		markdownField("Type", failure.Type),
		markdownField("Interaction", failure.InteractionID),
	}
	if failure.GuildID != "" {
		fields = append(fields, markdownField("Guild", failure.GuildID))
	}
	if failure.UserID != "" {
		fields = append(fields, markdownField("User", failure.UserID))
	}
	section := slackapi.NewSectionBlock(nil, fields, nil)

	errText := "unknown error"
	if failure.Err != nil {
		errText = failure.Err.Error()
	}
	detail := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("```\n%s\n```", errText), false, false),
		nil, nil,
	)

	occurred := failure.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	ctxBlock := slackapi.NewContextBlock("",
		slackapi.NewTextBlockObject(slackapi.MarkdownType, "Occurred at "+occurred.Format(time.RFC3339), false, false),
	)

	return []slackapi.Block{header, section, detail, ctxBlock}
}

func markdownField(name, value string) *slackapi.TextBlockObject {
	return slackapi.NewTextBlockObject(slackapi.MarkdownType, fmt.Sprintf("*%s*\n%s", name, value), false, false)
}

func kindEmoji(kind outbound.FailureKind) string {
	switch kind {
	case outbound.FailureTimeout:
		return ":hourglass:"
	case outbound.FailureFollowUp:
		return ":incoming_envelope:"
	default:
		return ":x:"
	}
}
