package interaction

import (
	"context"

	"github.com/jonny/interactbot/internal/domain/model"
)

// ComponentInteraction is the façade for button clicks and select menus on
// a message. It is the trigger of a submission, so it exposes the
// interaction's own metadata rather than a resolver.
type ComponentInteraction struct {
	base
	data model.ComponentData
}

func NewComponent(i model.Interaction, opts Options) (*ComponentInteraction, error) {
	data, err := i.ComponentData()
	if err != nil {
		return nil, err
	}
	return &ComponentInteraction{base: newBase(i, opts), data: data}, nil
}

func (c *ComponentInteraction) CustomID() string                   { return c.data.CustomID }
func (c *ComponentInteraction) ComponentType() model.ComponentType { return c.data.ComponentType }
func (c *ComponentInteraction) Values() []string                   { return c.data.Values }
func (c *ComponentInteraction) Data() model.ComponentData          { return c.data }

func (c *ComponentInteraction) MessageID() string {
	if c.raw.Message == nil {
		return ""
	}
	return c.raw.Message.ID
}

func (c *ComponentInteraction) SelectedUsers() []model.User {
	return resolveIDs(c.data.Values, c.data.Resolved.Users)
}

func (c *ComponentInteraction) SelectedRoles() []model.Role {
	return resolveIDs(c.data.Values, c.data.Resolved.Roles)
}

func (c *ComponentInteraction) SelectedChannels() []model.Channel {
	return resolveIDs(c.data.Values, c.data.Resolved.Channels)
}

func (c *ComponentInteraction) Update(ctx context.Context, data model.MessageData) error {
	return c.ack.Update(ctx, data)
}

func (c *ComponentInteraction) DeferUpdate() error {
	return c.ack.DeferUpdate()
}

func (c *ComponentInteraction) ShowModal(p Payload[model.ModalData]) error {
	return c.ack.ShowModal(p)
}
