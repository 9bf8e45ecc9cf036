package model

import (
	"encoding/json"
	"fmt"
)

type ComponentType int

const (
	ComponentActionRow         ComponentType = 1
	ComponentButton            ComponentType = 2
	ComponentStringSelect      ComponentType = 3
	ComponentTextInput         ComponentType = 4
	ComponentUserSelect        ComponentType = 5
	ComponentRoleSelect        ComponentType = 6
	ComponentMentionableSelect ComponentType = 7
	ComponentChannelSelect     ComponentType = 8
	ComponentTextDisplay       ComponentType = 10
	ComponentLabel             ComponentType = 18
	ComponentFileUpload        ComponentType = 19
)

type ButtonStyle int

const (
	ButtonPrimary   ButtonStyle = 1
	ButtonSecondary ButtonStyle = 2
	ButtonSuccess   ButtonStyle = 3
	ButtonDanger    ButtonStyle = 4
	ButtonLink      ButtonStyle = 5
)

type TextInputStyle int

const (
	TextInputShort     TextInputStyle = 1
	TextInputParagraph TextInputStyle = 2
)

type SelectOption struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

// Component is an outbound component as sent in message and modal payloads.
// Rows nest children in Components, labels wrap exactly one Component.
type Component struct {
	Type        ComponentType  `json:"type"`
	ID          int            `json:"id,omitempty"`
	CustomID    string         `json:"custom_id,omitempty"`
	Components  []Component    `json:"components,omitempty"`
	Component   *Component     `json:"component,omitempty"`
	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	Content     string         `json:"content,omitempty"`
	Style       int            `json:"style,omitempty"`
	URL         string         `json:"url,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Value       string         `json:"value,omitempty"`
	Required    *bool          `json:"required,omitempty"`
	MinLength   *int           `json:"min_length,omitempty"`
	MaxLength   int            `json:"max_length,omitempty"`
	MinValues   *int           `json:"min_values,omitempty"`
	MaxValues   int            `json:"max_values,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
}

// SubmittedComponent is one node of a submitted component tree. The set of
// implementations is closed: *ActionRowNode, *LabelNode and *LeafNode.
type SubmittedComponent interface {
	submitted()
}

type ActionRowNode struct {
	ID         int
	Components []SubmittedComponent
}

type LabelNode struct {
	ID        int
	Component SubmittedComponent
}

// LeafNode is an input that carries a value. Value is set for text inputs,
// Values for selects and uploads; a present but empty selection is a non-nil
// empty slice.
type LeafNode struct {
	ID       int
	Type     ComponentType
	CustomID string
	Value    *string
	Values   []string
}

func (*ActionRowNode) submitted() {}
func (*LabelNode) submitted()     {}
func (*LeafNode) submitted()      {}

// SubmittedComponents decodes the heterogeneous tree by its type discriminant.
type SubmittedComponents []SubmittedComponent

type rawSubmitted struct {
	Type       ComponentType     `json:"type"`
	ID         int               `json:"id,omitempty"`
	CustomID   string            `json:"custom_id,omitempty"`
	Value      *string           `json:"value,omitempty"`
	Values     []string          `json:"values"`
	Components []json.RawMessage `json:"components,omitempty"`
	Component  json.RawMessage   `json:"component,omitempty"`
}

func (c *SubmittedComponents) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	nodes := make(SubmittedComponents, 0, len(raws))
	for _, raw := range raws {
		n, err := decodeSubmitted(raw)
		if err != nil {
			return err
		}
		nodes = append(nodes, n)
	}
	*c = nodes
	return nil
}

func decodeSubmitted(b []byte) (SubmittedComponent, error) {
	var r rawSubmitted
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decoding submitted component: %w", err)
	}
	switch r.Type {
	case ComponentActionRow:
		row := &ActionRowNode{ID: r.ID, Components: make([]SubmittedComponent, 0, len(r.Components))}
		for _, child := range r.Components {
			n, err := decodeSubmitted(child)
			if err != nil {
				return nil, err
			}
			row.Components = append(row.Components, n)
		}
		return row, nil
	case ComponentLabel:
		if !present(r.Component) {
			return nil, fmt.Errorf("label %d has no component", r.ID)
		}
		child, err := decodeSubmitted(r.Component)
		if err != nil {
			return nil, err
		}
		return &LabelNode{ID: r.ID, Component: child}, nil
	default:
		// Action rows and labels are the only wrappers in a modal submission.
		if len(r.Components) > 0 || present(r.Component) {
			return nil, fmt.Errorf("component %d of type %d cannot wrap other components", r.ID, r.Type)
		}
		return &LeafNode{ID: r.ID, Type: r.Type, CustomID: r.CustomID, Value: r.Value, Values: r.Values}, nil
	}
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// MarshalJSON writes the tree back in the platform's submission shape.
func (c SubmittedComponents) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(c))
	for _, n := range c {
		out = append(out, encodeSubmitted(n))
	}
	return json.Marshal(out)
}

func encodeSubmitted(n SubmittedComponent) any {
	switch node := n.(type) {
	case *ActionRowNode:
		children := make([]any, 0, len(node.Components))
		for _, child := range node.Components {
			children = append(children, encodeSubmitted(child))
		}
		return map[string]any{"type": ComponentActionRow, "id": node.ID, "components": children}
	case *LabelNode:
		return map[string]any{"type": ComponentLabel, "id": node.ID, "component": encodeSubmitted(node.Component)}
	case *LeafNode:
		m := map[string]any{"type": node.Type, "id": node.ID, "custom_id": node.CustomID}
		if node.Value != nil {
			m["value"] = *node.Value
		}
		if node.Values != nil {
			m["values"] = node.Values
		}
		return m
	default:
		return nil
	}
}
