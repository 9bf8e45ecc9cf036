package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Serializable is implemented by builders that assemble a payload of type T.
type Serializable[T any] interface {
	Serialize() (T, error)
}

const (
	maxModalComponents = 5
	maxMessageContent  = 2000
	maxMessageEmbeds   = 10
	maxActionRows      = 5
	maxRowComponents   = 5
)

// ModalBuilder assembles a ModalData fluently.
type ModalBuilder struct {
	data ModalData
}

func NewModal(customID, title string) *ModalBuilder {
	return &ModalBuilder{data: ModalData{CustomID: customID, Title: title}}
}

// AddTextInput appends a text input wrapped in its own action row.
func (b *ModalBuilder) AddTextInput(customID, label string, style TextInputStyle, required bool) *ModalBuilder {
	b.data.Components = append(b.data.Components, Component{
		Type: ComponentActionRow,
		Components: []Component{{
			Type:     ComponentTextInput,
			CustomID: customID,
			Label:    label,
			Style:    int(style),
			Required: &required,
		}},
	})
	return b
}

// AddLabel appends a label wrapping a single input component.
func (b *ModalBuilder) AddLabel(label, description string, input Component) *ModalBuilder {
	b.data.Components = append(b.data.Components, Component{
		Type:        ComponentLabel,
		Label:       label,
		Description: description,
		Component:   &input,
	})
	return b
}

func (b *ModalBuilder) Serialize() (ModalData, error) {
	var errs []error
	if b.data.CustomID == "" {
		errs = append(errs, errors.New("modal custom_id is required"))
	}
	if b.data.Title == "" {
		errs = append(errs, errors.New("modal title is required"))
	}
	if n := len(b.data.Components); n == 0 || n > maxModalComponents {
		errs = append(errs, fmt.Errorf("modal needs 1-%d components, got %d", maxModalComponents, n))
	}
	if err := errors.Join(errs...); err != nil {
		return ModalData{}, err
	}
	out := b.data
	out.Components = append([]Component(nil), b.data.Components...)
	return out, nil
}

// MessageBuilder assembles a MessageData fluently.
type MessageBuilder struct {
	data MessageData
}

func NewMessage(content string) *MessageBuilder {
	return &MessageBuilder{data: MessageData{Content: content}}
}

func (b *MessageBuilder) Ephemeral() *MessageBuilder {
	b.data.Flags |= FlagEphemeral
	return b
}

func (b *MessageBuilder) AddEmbed(e Embed) *MessageBuilder {
	b.data.Embeds = append(b.data.Embeds, e)
	return b
}

func (b *MessageBuilder) AddButtons(buttons ...Component) *MessageBuilder {
	b.data.Components = append(b.data.Components, Component{Type: ComponentActionRow, Components: buttons})
	return b
}

func (b *MessageBuilder) Serialize() (MessageData, error) {
	var errs []error
	if n := utf8.RuneCountInString(b.data.Content); n > maxMessageContent {
		errs = append(errs, fmt.Errorf("message content is %d characters, limit is %d", n, maxMessageContent))
	}
	if n := len(b.data.Embeds); n > maxMessageEmbeds {
		errs = append(errs, fmt.Errorf("message has %d embeds, limit is %d", n, maxMessageEmbeds))
	}
	if n := len(b.data.Components); n > maxActionRows {
		errs = append(errs, fmt.Errorf("message has %d action rows, limit is %d", n, maxActionRows))
	}
	for i, row := range b.data.Components {
		if n := len(row.Components); n == 0 || n > maxRowComponents {
			errs = append(errs, fmt.Errorf("action row %d needs 1-%d components, got %d", i, maxRowComponents, n))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return MessageData{}, err
	}
	return b.data, nil
}

func Button(customID, label string, style ButtonStyle) Component {
	return Component{Type: ComponentButton, CustomID: customID, Label: label, Style: int(style)}
}
