package model

import (
	"encoding/json"
	"fmt"
)

// ResponseType codes are fixed by the platform schema.
type ResponseType int

const (
	ResponsePong                   ResponseType = 1
	ResponseChannelMessage         ResponseType = 4
	ResponseDeferredChannelMessage ResponseType = 5
	ResponseDeferredMessageUpdate  ResponseType = 6
	ResponseUpdateMessage          ResponseType = 7
	ResponseAutocompleteResult     ResponseType = 8
	ResponseModal                  ResponseType = 9
)

func (t ResponseType) String() string {
	switch t {
	case ResponsePong:
		return "pong"
	case ResponseChannelMessage:
		return "channel_message"
	case ResponseDeferredChannelMessage:
		return "deferred_channel_message"
	case ResponseDeferredMessageUpdate:
		return "deferred_message_update"
	case ResponseUpdateMessage:
		return "update_message"
	case ResponseAutocompleteResult:
		return "autocomplete_result"
	case ResponseModal:
		return "modal"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Deferred reports whether the response unlocks the follow-up channel.
func (t ResponseType) Deferred() bool {
	return t == ResponseDeferredChannelMessage || t == ResponseDeferredMessageUpdate
}

type MessageFlags int

const (
	FlagSuppressEmbeds MessageFlags = 1 << 2
	FlagEphemeral      MessageFlags = 1 << 6
)

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type AllowedMentions struct {
	Parse []string `json:"parse"`
	Roles []string `json:"roles,omitempty"`
	Users []string `json:"users,omitempty"`
}

// MessageData is the content-bearing payload of channel-message, update and
// follow-up requests.
type MessageData struct {
	TTS             bool             `json:"tts,omitempty"`
	Content         string           `json:"content,omitempty"`
	Embeds          []Embed          `json:"embeds,omitempty"`
	AllowedMentions *AllowedMentions `json:"allowed_mentions,omitempty"`
	Flags           MessageFlags     `json:"flags,omitempty"`
	Components      []Component      `json:"components,omitempty"`
}

// HasContent reports whether at least one content-bearing field is set.
func (d MessageData) HasContent() bool {
	return d.Content != "" || len(d.Embeds) > 0 || len(d.Components) > 0
}

// DeferOptions carries the presentation flags of a deferred acknowledgement.
type DeferOptions struct {
	Flags MessageFlags `json:"flags,omitempty"`
}

type ModalData struct {
	CustomID   string      `json:"custom_id"`
	Title      string      `json:"title"`
	Components []Component `json:"components"`
}

// Response is the initial acknowledgement. Data holds *MessageData,
// *DeferOptions or *ModalData depending on Type, or nil.
type Response struct {
	Type ResponseType `json:"type"`
	Data any          `json:"data,omitempty"`
}

func (r Response) Deferred() bool { return r.Type.Deferred() }

func (r Response) Message() (*MessageData, bool) {
	d, ok := r.Data.(*MessageData)
	return d, ok
}

func (r Response) Modal() (*ModalData, bool) {
	d, ok := r.Data.(*ModalData)
	return d, ok
}

func (r Response) DeferOptions() (*DeferOptions, bool) {
	d, ok := r.Data.(*DeferOptions)
	return d, ok
}

func (r *Response) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type ResponseType    `json:"type"`
		Data json.RawMessage `json:"data,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Type = raw.Type
	r.Data = nil
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}
	var dst any
	switch raw.Type {
	case ResponseChannelMessage, ResponseUpdateMessage:
		dst = &MessageData{}
	case ResponseDeferredChannelMessage, ResponseDeferredMessageUpdate:
		dst = &DeferOptions{}
	case ResponseModal:
		dst = &ModalData{}
	default:
		return fmt.Errorf("response type %s carries no data", raw.Type)
	}
	if err := json.Unmarshal(raw.Data, dst); err != nil {
		return fmt.Errorf("decoding %s data: %w", raw.Type, err)
	}
	r.Data = dst
	return nil
}
