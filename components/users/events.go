// components/users/events.go
//
// Browser events arrive as {type, field, value} triples, form-encoded over
// HTTP or JSON over the WebSocket.  apply turns one triple into a form
// event and runs it on the machine.
//
//------------------------------------------------------------------------------

package users

import (
	"errors"
	"fmt"

	"github.com/yanizio/cadastro/internal/form"
)

// Wire event types.
const (
	evChange   = "change"
	evBlur     = "blur"
	evSubmit   = "submit"
	evDelete   = "delete"
	evGenerate = "generate"
	evToggle   = "toggle"
)

// ErrBadEvent is returned for an unknown event type.
var ErrBadEvent = errors.New("unknown event type")

// wireEvent is one browser event.
type wireEvent struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// apply runs ev on m.  Values of masked fields are formatted with the
// field's mask before they reach the form.
func (c *Component) apply(m *form.Machine, ev wireEvent) error {
	switch ev.Type {
	case evSubmit:
		return m.Dispatch(form.SubmitRequested{})
	case evDelete:
		return m.Dispatch(form.DeleteRequested{})
	case evGenerate:
		m.GeneratePassword()
		return nil
	case evChange, evBlur, evToggle:
	default:
		return fmt.Errorf("%w: %q", ErrBadEvent, ev.Type)
	}

	f, err := form.ParseField(ev.Field)
	if err != nil {
		return err
	}
	switch ev.Type {
	case evChange:
		return m.Dispatch(form.ValueChanged{Field: f, Value: c.mask(f, ev.Value)})
	case evBlur:
		return m.Dispatch(form.Blurred{Field: f})
	default:
		return m.Dispatch(form.VisibilityToggled{Field: f})
	}
}

func (c *Component) mask(f form.Field, raw string) string {
	if fd := c.def.Field(f); fd != nil && fd.Mask != "" {
		return form.ApplyMask(fd.Mask, raw)
	}
	return raw
}

// clientError reports whether err was caused by a malformed event.
func clientError(err error) bool {
	return errors.Is(err, ErrBadEvent) ||
		errors.Is(err, form.ErrUnknownField) ||
		errors.Is(err, form.ErrNotEditing)
}
