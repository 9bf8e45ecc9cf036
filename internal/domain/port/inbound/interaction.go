package inbound

import (
	"context"

	"github.com/jonny/interactbot/internal/domain/model"
)

// InteractionPort turns one verified interaction into its initial
// acknowledgement. Work the handler does after acknowledging continues in the
// background.
type InteractionPort interface {
	Dispatch(ctx context.Context, i model.Interaction) (model.Response, error)
}
