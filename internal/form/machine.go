// internal/form/machine.go
//
// Cadastro – Forms subsystem: the state machine driven by the host.
//
// Context
//   Machine owns one State and the host callbacks.  Dispatch validates the
//   event, runs Reduce, and then executes the effects in order.  Callbacks
//   are fire-and-forget: the machine never inspects what they do and never
//   waits on anything they start.
//
//   A Machine is not safe for concurrent use.  The session layer serialises
//   events per form mount.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"maps"
)

// ErrNotEditing is returned when a delete is requested on a create form.
var ErrNotEditing = errors.New("delete is only available while editing")

// Host holds the callbacks supplied by the view hosting the form.  Any of
// them may be nil.
type Host struct {
	OnSubmit func(Values)
	OnDelete func()
	OnNotice func(Notice)
}

// Machine drives one mounted form.
type Machine struct {
	state   State
	host    Host
	initial map[string]string
	pwSrc   PasswordSource
}

// Option configures a Machine.
type Option func(*Machine)

// WithPasswordSource overrides the random source used by GeneratePassword.
func WithPasswordSource(src PasswordSource) Option {
	return func(m *Machine) { m.pwSrc = src }
}

// NewMachine mounts a form.  In edit mode the values are seeded from
// initialData; in create mode initialData is ignored.
func NewMachine(editing bool, initialData map[string]string, host Host, opts ...Option) *Machine {
	m := &Machine{
		state:   NewState(editing, initialData),
		host:    host,
		initial: maps.Clone(initialData),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// State returns a copy of the current state.
func (m *Machine) State() State { return m.state }

// Editing reports whether the form is in update mode.
func (m *Machine) Editing() bool { return m.state.Editing }

// SetInitialData reseeds the form when the host's initial data changes while
// editing.  Unchanged data is a no-op so seeding happens once per change.
func (m *Machine) SetInitialData(data map[string]string) {
	if !m.state.Editing || maps.Equal(m.initial, data) {
		return
	}
	m.initial = maps.Clone(data)
	m.state, _ = Reduce(m.state, Seeded{Data: data})
}

// SetEditing switches mode.  Entering edit mode seeds from data.
func (m *Machine) SetEditing(editing bool, data map[string]string) {
	if editing == m.state.Editing {
		m.SetInitialData(data)
		return
	}
	m.state.Editing = editing
	if editing {
		m.initial = maps.Clone(data)
		m.state, _ = Reduce(m.state, Seeded{Data: data})
	}
}

// GeneratePassword fills both password fields with a fresh random password
// and returns it.
func (m *Machine) GeneratePassword() string {
	pw := GeneratePassword(m.pwSrc)
	m.state, _ = Reduce(m.state, PasswordGenerated{Password: pw})
	return pw
}

// Dispatch applies ev and runs the resulting effects.  It returns
// ErrUnknownField for events naming a field outside the form and
// ErrNotEditing for a delete on a create form.
func (m *Machine) Dispatch(ev Event) error {
	if err := m.check(ev); err != nil {
		return err
	}

	next, effects := Reduce(m.state, ev)
	m.state = next

	for _, eff := range effects {
		switch e := eff.(type) {
		case Accepted:
			if m.host.OnSubmit != nil {
				m.host.OnSubmit(e.Values)
			}
			if !m.state.Editing {
				m.state = m.state.reset()
			}
		case Rejected:
			if m.host.OnNotice != nil {
				m.host.OnNotice(e.Notice)
			}
		case Deleted:
			if m.host.OnDelete != nil {
				m.host.OnDelete()
			}
		}
	}
	return nil
}

func (m *Machine) check(ev Event) error {
	switch e := ev.(type) {
	case ValueChanged:
		return checkField(e.Field)
	case Blurred:
		return checkField(e.Field)
	case VisibilityToggled:
		if e.Field != Password && e.Field != ConfirmPassword {
			return fmt.Errorf("%w: %s has no visibility toggle", ErrUnknownField, e.Field)
		}
	case DeleteRequested:
		if !m.state.Editing {
			return ErrNotEditing
		}
	case nil:
		return errors.New("nil event")
	}
	return nil
}

func checkField(f Field) error {
	if !f.Valid() {
		return fmt.Errorf("%w %d", ErrUnknownField, int(f))
	}
	return nil
}
