package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type InteractionType int

const (
	InteractionTypePing               InteractionType = 1
	InteractionTypeApplicationCommand InteractionType = 2
	InteractionTypeMessageComponent   InteractionType = 3
	InteractionTypeAutocomplete       InteractionType = 4
	InteractionTypeModalSubmit        InteractionType = 5
)

func (t InteractionType) String() string {
	switch t {
	case InteractionTypePing:
		return "ping"
	case InteractionTypeApplicationCommand:
		return "command"
	case InteractionTypeMessageComponent:
		return "component"
	case InteractionTypeAutocomplete:
		return "autocomplete"
	case InteractionTypeModalSubmit:
		return "modal_submit"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Interaction is one inbound event as delivered by the platform. Data holds the
// kind-specific payload and is decoded on demand by the typed accessors.
type Interaction struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"application_id"`
	Type          InteractionType `json:"type"`
	Token         string          `json:"token"`
	Version       int             `json:"version"`
	GuildID       string          `json:"guild_id,omitempty"`
	ChannelID     string          `json:"channel_id,omitempty"`
	Member        *Member         `json:"member,omitempty"`
	User          *User           `json:"user,omitempty"`
	Message       *Message        `json:"message,omitempty"`
	Locale        string          `json:"locale,omitempty"`
	GuildLocale   string          `json:"guild_locale,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// ParseInteraction decodes a raw webhook body.
func ParseInteraction(body []byte) (Interaction, error) {
	var i Interaction
	if err := json.Unmarshal(body, &i); err != nil {
		return Interaction{}, fmt.Errorf("decoding interaction: %w", err)
	}
	if i.ID == "" || i.Type == 0 {
		return Interaction{}, fmt.Errorf("decoding interaction: missing id or type")
	}
	return i, nil
}

// Invoker returns the user that triggered the interaction. Guild interactions
// carry it inside member, DMs carry it at the top level.
func (i Interaction) Invoker() *User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// CreatedAt is derived from the interaction id.
func (i Interaction) CreatedAt() (time.Time, error) {
	return SnowflakeTime(i.ID)
}

// TokenExpired reports whether the interaction token is older than lifetime.
// Interactions with an undecodable id are treated as fresh.
func (i Interaction) TokenExpired(now time.Time, lifetime time.Duration) bool {
	created, err := i.CreatedAt()
	if err != nil || lifetime <= 0 {
		return false
	}
	return now.Sub(created) > lifetime
}

func (i Interaction) CommandData() (CommandData, error) {
	var d CommandData
	if err := i.decodeData(InteractionTypeApplicationCommand, &d); err != nil {
		return CommandData{}, err
	}
	return d, nil
}

func (i Interaction) ComponentData() (ComponentData, error) {
	var d ComponentData
	if err := i.decodeData(InteractionTypeMessageComponent, &d); err != nil {
		return ComponentData{}, err
	}
	return d, nil
}

func (i Interaction) ModalSubmitData() (ModalSubmitData, error) {
	var d ModalSubmitData
	if err := i.decodeData(InteractionTypeModalSubmit, &d); err != nil {
		return ModalSubmitData{}, err
	}
	return d, nil
}

func (i Interaction) decodeData(want InteractionType, dst any) error {
	if i.Type != want {
		return fmt.Errorf("interaction %s is %s, not %s", i.ID, i.Type, want)
	}
	if len(i.Data) == 0 {
		return fmt.Errorf("interaction %s has no data", i.ID)
	}
	if err := json.Unmarshal(i.Data, dst); err != nil {
		return fmt.Errorf("decoding %s data: %w", want, err)
	}
	return nil
}

type CommandData struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     int             `json:"type"`
	Options  []CommandOption `json:"options,omitempty"`
	Resolved Resolved        `json:"resolved"`
	GuildID  string          `json:"guild_id,omitempty"`
	TargetID string          `json:"target_id,omitempty"`
}

type CommandOptionType int

const (
	OptionTypeSubCommand      CommandOptionType = 1
	OptionTypeSubCommandGroup CommandOptionType = 2
	OptionTypeString          CommandOptionType = 3
	OptionTypeInteger         CommandOptionType = 4
	OptionTypeBoolean         CommandOptionType = 5
	OptionTypeUser            CommandOptionType = 6
	OptionTypeChannel         CommandOptionType = 7
	OptionTypeRole            CommandOptionType = 8
	OptionTypeMentionable     CommandOptionType = 9
	OptionTypeNumber          CommandOptionType = 10
	OptionTypeAttachment      CommandOptionType = 11
)

type CommandOption struct {
	Name    string            `json:"name"`
	Type    CommandOptionType `json:"type"`
	Value   any               `json:"value,omitempty"`
	Options []CommandOption   `json:"options,omitempty"`
	Focused bool              `json:"focused,omitempty"`
}

type ComponentData struct {
	CustomID      string        `json:"custom_id"`
	ComponentType ComponentType `json:"component_type"`
	Values        []string      `json:"values,omitempty"`
	Resolved      Resolved      `json:"resolved"`
}

type ModalSubmitData struct {
	CustomID   string              `json:"custom_id"`
	Components SubmittedComponents `json:"components"`
	Resolved   Resolved            `json:"resolved"`
}
