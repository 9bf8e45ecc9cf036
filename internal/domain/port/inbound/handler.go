package inbound

import (
	"context"

	"github.com/jonny/interactbot/internal/domain/interaction"
)

// Handlers receive the façade for their interaction kind and acknowledge it
// by calling exactly one of its acknowledgement methods. A handler may keep
// running after acknowledging to deliver follow-ups.
type (
	CommandHandler     func(ctx context.Context, i *interaction.CommandInteraction) error
	ComponentHandler   func(ctx context.Context, i *interaction.ComponentInteraction) error
	ModalSubmitHandler func(ctx context.Context, i *interaction.ModalSubmitInteraction) error
)

// HandlerRegistry maps command names and custom ids to handlers.
type HandlerRegistry interface {
	LookupCommand(name string) (CommandHandler, bool)
	LookupComponent(customID string) (ComponentHandler, bool)
	LookupModal(customID string) (ModalSubmitHandler, bool)
}
