package interaction

import "github.com/jonny/interactbot/internal/domain/model"

// ModalSubmitInteraction is the façade for a submitted modal. The resolver
// query surface is promoted from the embedded Resolver.
type ModalSubmitInteraction struct {
	base
	*Resolver
	data model.ModalSubmitData
}

func NewModalSubmit(i model.Interaction, opts Options) (*ModalSubmitInteraction, error) {
	data, err := i.ModalSubmitData()
	if err != nil {
		return nil, err
	}
	return &ModalSubmitInteraction{
		base:     newBase(i, opts),
		Resolver: NewResolver(data.Components, data.Resolved),
		data:     data,
	}, nil
}

func (m *ModalSubmitInteraction) CustomID() string            { return m.data.CustomID }
func (m *ModalSubmitInteraction) Data() model.ModalSubmitData { return m.data }
func (m *ModalSubmitInteraction) Resolved() model.Resolved    { return m.data.Resolved }
