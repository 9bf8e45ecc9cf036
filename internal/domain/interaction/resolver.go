package interaction

import "github.com/jonny/interactbot/internal/domain/model"

// Value is the submitted value of one input: either text or a selection.
type Value struct {
	text      *string
	selection []string
}

func (v Value) Text() (string, bool) {
	if v.text == nil {
		return "", false
	}
	return *v.text, true
}

func (v Value) Selection() ([]string, bool) {
	return v.selection, v.selection != nil
}

func (v Value) IsSelection() bool { return v.selection != nil }

// Resolver answers point queries over a submitted component tree. Lookups
// return the first matching input in pre-order; a missing custom id is
// reported as absent, never as an error.
type Resolver struct {
	components model.SubmittedComponents
	resolved   model.Resolved
}

func NewResolver(components model.SubmittedComponents, resolved model.Resolved) *Resolver {
	return &Resolver{components: components, resolved: resolved}
}

func (r *Resolver) find(customID string) (*model.LeafNode, bool) {
	for _, n := range r.components {
		if leaf, ok := match(n, customID); ok {
			return leaf, true
		}
	}
	return nil, false
}

func match(n model.SubmittedComponent, customID string) (*model.LeafNode, bool) {
	switch node := n.(type) {
	case *model.ActionRowNode:
		for _, child := range node.Components {
			if leaf, ok := match(child, customID); ok {
				return leaf, true
			}
		}
	case *model.LabelNode:
		if node.Component != nil {
			return match(node.Component, customID)
		}
	case *model.LeafNode:
		if node.CustomID == customID && (node.Value != nil || node.Values != nil) {
			return node, true
		}
	}
	return nil, false
}

// TextValue returns the text of a text input.
func (r *Resolver) TextValue(customID string) (string, bool) {
	leaf, ok := r.find(customID)
	if !ok || leaf.Value == nil {
		return "", false
	}
	return *leaf.Value, true
}

// SelectionValues returns the selected ids of a select or upload. An empty
// selection is returned as a non-nil empty slice.
func (r *Resolver) SelectionValues(customID string) ([]string, bool) {
	leaf, ok := r.find(customID)
	if !ok || leaf.Values == nil {
		return nil, false
	}
	return leaf.Values, true
}

// ComponentValue returns the text value if present, else the selection.
func (r *Resolver) ComponentValue(customID string) (Value, bool) {
	leaf, ok := r.find(customID)
	if !ok {
		return Value{}, false
	}
	if leaf.Value != nil {
		return Value{text: leaf.Value}, true
	}
	return Value{selection: leaf.Values}, true
}

// Entities maps the selection of customID through entities, dropping ids
// without a resolved entry.
func Entities[T any](r *Resolver, customID string, entities map[string]T) ([]T, bool) {
	ids, ok := r.SelectionValues(customID)
	if !ok {
		return nil, false
	}
	return resolveIDs(ids, entities), true
}

func resolveIDs[T any](ids []string, entities map[string]T) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if e, ok := entities[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func first[T any](items []T, ok bool) (T, bool) {
	var zero T
	if !ok || len(items) == 0 {
		return zero, false
	}
	return items[0], true
}

func (r *Resolver) Roles(customID string) ([]model.Role, bool) {
	return Entities(r, customID, r.resolved.Roles)
}

func (r *Resolver) Users(customID string) ([]model.User, bool) {
	return Entities(r, customID, r.resolved.Users)
}

func (r *Resolver) Members(customID string) ([]model.Member, bool) {
	return Entities(r, customID, r.resolved.Members)
}

func (r *Resolver) Channels(customID string) ([]model.Channel, bool) {
	return Entities(r, customID, r.resolved.Channels)
}

func (r *Resolver) Attachments(customID string) ([]model.Attachment, bool) {
	return Entities(r, customID, r.resolved.Attachments)
}

func (r *Resolver) Role(customID string) (model.Role, bool) {
	roles, ok := r.Roles(customID)
	return first(roles, ok)
}

func (r *Resolver) User(customID string) (model.User, bool) {
	users, ok := r.Users(customID)
	return first(users, ok)
}

func (r *Resolver) Member(customID string) (model.Member, bool) {
	members, ok := r.Members(customID)
	return first(members, ok)
}

func (r *Resolver) Channel(customID string) (model.Channel, bool) {
	channels, ok := r.Channels(customID)
	return first(channels, ok)
}

func (r *Resolver) Attachment(customID string) (model.Attachment, bool) {
	attachments, ok := r.Attachments(customID)
	return first(attachments, ok)
}
