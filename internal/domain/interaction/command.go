package interaction

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/jonny/interactbot/internal/domain/model"
)

// CommandInteraction is the façade for application command invocations.
type CommandInteraction struct {
	base
	data model.CommandData
}

func NewCommand(i model.Interaction, opts Options) (*CommandInteraction, error) {
	data, err := i.CommandData()
	if err != nil {
		return nil, err
	}
	return &CommandInteraction{base: newBase(i, opts), data: data}, nil
}

func (c *CommandInteraction) Name() string             { return c.data.Name }
func (c *CommandInteraction) Data() model.CommandData  { return c.data }
func (c *CommandInteraction) Resolved() model.Resolved { return c.data.Resolved }

func (c *CommandInteraction) ShowModal(p Payload[model.ModalData]) error {
	return c.ack.ShowModal(p)
}

// Subcommand returns the invoked subcommand path, e.g. ["group", "sub"].
func (c *CommandInteraction) Subcommand() []string {
	var path []string
	opts := c.data.Options
	for len(opts) == 1 && (opts[0].Type == model.OptionTypeSubCommand || opts[0].Type == model.OptionTypeSubCommandGroup) {
		path = append(path, opts[0].Name)
		opts = opts[0].Options
	}
	return path
}

// Options returns the leaf options, below any subcommand.
func (c *CommandInteraction) Options() []model.CommandOption {
	opts := c.data.Options
	for len(opts) == 1 && (opts[0].Type == model.OptionTypeSubCommand || opts[0].Type == model.OptionTypeSubCommandGroup) {
		opts = opts[0].Options
	}
	return opts
}

func (c *CommandInteraction) Option(name string) (model.CommandOption, bool) {
	for _, o := range c.Options() {
		if o.Name == name {
			return o, true
		}
	}
	return model.CommandOption{}, false
}

func (c *CommandInteraction) StringOption(name string) (string, bool) {
	o, ok := c.Option(name)
	if !ok {
		return "", false
	}
	s, ok := o.Value.(string)
	return s, ok
}

// IntOption reads an integer option. JSON numbers decode as float64.
func (c *CommandInteraction) IntOption(name string) (int64, bool) {
	o, ok := c.Option(name)
	if !ok {
		return 0, false
	}
	f, ok := o.Value.(float64)
	return int64(f), ok
}

func (c *CommandInteraction) BoolOption(name string) (bool, bool) {
	o, ok := c.Option(name)
	if !ok {
		return false, false
	}
	b, ok := o.Value.(bool)
	return b, ok
}

// BindOptions decodes the leaf options into dst, a pointer to a struct whose
// fields are tagged `option:"name"`.
func (c *CommandInteraction) BindOptions(dst any) error {
	values := make(map[string]any, len(c.Options()))
	for _, o := range c.Options() {
		values[o.Name] = o.Value
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "option",
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return fmt.Errorf("creating option decoder: %w", err)
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("binding options of /%s: %w", c.data.Name, err)
	}
	return nil
}
