package interaction

import "github.com/jonny/interactbot/internal/domain/model"

// ResponseCell holds the response produced so far for one interaction.
// It has a single writer, the Acknowledger that owns it.
type ResponseCell struct {
	resp *model.Response
}

func (c *ResponseCell) Store(r model.Response) {
	c.resp = &r
}

// Load returns the last stored response, or false when none was stored yet.
func (c *ResponseCell) Load() (model.Response, bool) {
	if c.resp == nil {
		return model.Response{}, false
	}
	return *c.resp, true
}
