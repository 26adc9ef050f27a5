// internal/form/state.go
//
// Cadastro – Forms subsystem: form state and reducer.
//
// Context
//   A State bundles values, validity flags, touched flags, and the password
//   visibility toggles into one value.  Reduce is the only code that moves a
//   State forward.  It is pure: given the same State and Event it returns the
//   same result, and the side effects a transition asks for (calling the
//   submit or delete callback, raising a notice) come back as Effect values
//   for the Machine to execute.
//
// Evaluation timing
//   •  Blurred(f) marks f touched and evaluates f in the same step.
//   •  ValueChanged(f) re-evaluates f only if f is already touched.  The
//      confirmation field paired with f is re-evaluated too when touched.
//   •  SubmitRequested evaluates everything and touches everything.
//   •  PasswordGenerated evaluates both password flags immediately.
//
//------------------------------------------------------------------------------

package form

// State is the complete FormValidator state.  The zero value is an empty
// create-mode form.
type State struct {
	Values  Values
	Invalid Flags // written only by the evaluator
	Touched Flags // false → true, cleared only by a create-mode reset
	Visible Flags // password visibility toggles
	Editing bool
}

// NewState returns the initial state for the given mode.  In edit mode the
// values are seeded from data; absent keys default to the empty string.
func NewState(editing bool, data map[string]string) State {
	s := State{Editing: editing}
	if editing && data != nil {
		s.Values = ValuesFromMap(data)
	}
	return s
}

// ShowError reports whether the inline error for f should be visible.
func (s State) ShowError(f Field) bool { return s.Invalid[f] && s.Touched[f] }

// Errors returns the inline messages currently visible, keyed by field.
func (s State) Errors() map[Field]string {
	out := make(map[Field]string)
	for _, f := range Fields {
		if s.ShowError(f) {
			out[f] = Message(f)
		}
	}
	return out
}

// acceptable reports whether every field is valid and non-empty.
func (s State) acceptable() bool {
	if s.Invalid.Any() {
		return false
	}
	for _, v := range s.Values {
		if v == "" {
			return false
		}
	}
	return true
}

// reset returns the empty state for the same mode.
func (s State) reset() State { return State{Editing: s.Editing} }

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

// Event is one user interaction.  The set is closed: only the types in this
// file implement it.
type Event interface{ event() }

// ValueChanged overwrites the value of one field.
type ValueChanged struct {
	Field Field
	Value string
}

// Blurred records that the user left a field.
type Blurred struct{ Field Field }

// SubmitRequested runs the submit gate.
type SubmitRequested struct{}

// DeleteRequested asks the host to delete the record being edited.
type DeleteRequested struct{}

// PasswordGenerated writes Password into both password fields.  The caller
// generates the string so Reduce stays deterministic.
type PasswordGenerated struct{ Password string }

// VisibilityToggled flips the show/hide state of a password field.
type VisibilityToggled struct{ Field Field }

// Seeded repopulates every value from the host's initial data.
type Seeded struct{ Data map[string]string }

func (ValueChanged) event()      {}
func (Blurred) event()           {}
func (SubmitRequested) event()   {}
func (DeleteRequested) event()   {}
func (PasswordGenerated) event() {}
func (VisibilityToggled) event() {}
func (Seeded) event()            {}

// -----------------------------------------------------------------------------
// Effects
// -----------------------------------------------------------------------------

// Effect is a side effect requested by a transition.
type Effect interface{ effect() }

// Accepted carries the values of an accepted submission.
type Accepted struct{ Values Values }

// Rejected carries the aggregate notice of a refused submission.
type Rejected struct{ Notice Notice }

// Deleted asks the host to run its delete callback.
type Deleted struct{}

func (Accepted) effect() {}
func (Rejected) effect() {}
func (Deleted) effect()  {}

// Notice is the aggregate notification the host renders as a dialog.
type Notice struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// RejectedNotice is raised once per refused submission.
var RejectedNotice = Notice{
	Icon:  "error",
	Title: "Erro",
	Text:  "Por favor, corrija os erros antes de enviar.",
}

// -----------------------------------------------------------------------------
// Reducer
// -----------------------------------------------------------------------------

// Reduce applies ev to s.  Events naming an unknown field leave s unchanged;
// Machine.Dispatch rejects them before they reach here.
//
// For an accepted submit in create mode the returned State is NOT yet reset:
// the callback must see the submitted values first, so Machine performs the
// reset after running the Accepted effect.
func Reduce(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case ValueChanged:
		if !e.Field.Valid() {
			return s, nil
		}
		s.Values[e.Field] = e.Value
		s.revalidate(e.Field)
		return s, nil

	case Blurred:
		if !e.Field.Valid() {
			return s, nil
		}
		s.Touched[e.Field] = true
		s.Invalid[e.Field] = Invalid(e.Field, s.Values)
		return s, nil

	case SubmitRequested:
		s.Invalid = Evaluate(s.Values)
		s.Touched = all()
		if !s.acceptable() {
			return s, []Effect{Rejected{Notice: RejectedNotice}}
		}
		return s, []Effect{Accepted{Values: s.Values}}

	case DeleteRequested:
		if !s.Editing {
			return s, nil
		}
		return s, []Effect{Deleted{}}

	case PasswordGenerated:
		s.Values[Password] = e.Password
		s.Values[ConfirmPassword] = e.Password
		s.Invalid[Password] = Invalid(Password, s.Values)
		s.Invalid[ConfirmPassword] = Invalid(ConfirmPassword, s.Values)
		return s, nil

	case VisibilityToggled:
		if e.Field != Password && e.Field != ConfirmPassword {
			return s, nil
		}
		s.Visible[e.Field] = !s.Visible[e.Field]
		return s, nil

	case Seeded:
		if !s.Editing {
			return s, nil
		}
		s.Values = ValuesFromMap(e.Data)
		for _, f := range Fields {
			if s.Touched[f] {
				s.Invalid[f] = Invalid(f, s.Values)
			}
		}
		return s, nil
	}
	return s, nil
}

// revalidate re-evaluates f and its confirmation partner, each only if the
// user already touched it.
func (s *State) revalidate(f Field) {
	if s.Touched[f] {
		s.Invalid[f] = Invalid(f, s.Values)
	}
	if p, ok := pairOf(f); ok && s.Touched[p] {
		s.Invalid[p] = Invalid(p, s.Values)
	}
}
