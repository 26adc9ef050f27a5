// internal/form/field.go
//
// Cadastro – Forms subsystem: field identifiers and value containers.
//
// Context
//   The registration form has a closed set of seven fields.  Values and
//   per-field flags are stored in fixed-size arrays indexed by Field, so a
//   State is a plain value that can be copied, compared, and reduced without
//   the sub-maps drifting apart.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
)

// Field identifies one input of the registration form.
type Field int

const (
	Name Field = iota
	Phone
	NationalID
	Email
	ConfirmEmail
	Password
	ConfirmPassword

	numFields = int(ConfirmPassword) + 1
)

// Fields lists every field in display order.
var Fields = [numFields]Field{
	Name, Phone, NationalID, Email, ConfirmEmail, Password, ConfirmPassword,
}

// ErrUnknownField is returned by ParseField for names outside the closed set.
var ErrUnknownField = errors.New("unknown form field")

var fieldNames = [numFields]string{
	"name", "phone", "nationalId", "email", "confirmEmail", "password", "confirmPassword",
}

// aliases accepts the legacy Portuguese keys that older clients still post.
var aliases = map[string]Field{
	"nome":         Name,
	"telefone":     Phone,
	"cpf":          NationalID,
	"senha":        Password,
	"confirmSenha": ConfirmPassword,
}

// String returns the wire name of f.
func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// Valid reports whether f is one of the seven known fields.
func (f Field) Valid() bool { return f >= 0 && int(f) < numFields }

// ParseField maps a wire name (or legacy alias) to its Field.
func ParseField(s string) (Field, error) {
	for i, n := range fieldNames {
		if n == s {
			return Field(i), nil
		}
	}
	if f, ok := aliases[s]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownField, s)
}

// MarshalText lets Field act as a JSON map key and string value.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w %d", ErrUnknownField, int(f))
	}
	return []byte(fieldNames[f]), nil
}

// UnmarshalText is the inverse of MarshalText.
func (f *Field) UnmarshalText(b []byte) error {
	v, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// pairOf returns the confirmation field that depends on f, if any.
func pairOf(f Field) (Field, bool) {
	switch f {
	case Email:
		return ConfirmEmail, true
	case Password:
		return ConfirmPassword, true
	}
	return 0, false
}

// Values holds the current string value of every field.  The zero value is
// the empty form.
type Values [numFields]string

// Get returns the value of f.
func (v Values) Get(f Field) string { return v[f] }

// Map converts v to the wire mapping handed to the submit callback.
func (v Values) Map() map[string]string {
	out := make(map[string]string, numFields)
	for _, f := range Fields {
		out[f.String()] = v[f]
	}
	return out
}

// ValuesFromMap builds Values from a wire mapping.  Absent keys default to
// the empty string and unknown keys are ignored.
func ValuesFromMap(m map[string]string) Values {
	var v Values
	for k, s := range m {
		if f, err := ParseField(k); err == nil {
			v[f] = s
		}
	}
	return v
}

// Flags is a per-field boolean set.
type Flags [numFields]bool

// Any reports whether at least one flag is set.
func (fl Flags) Any() bool {
	for _, b := range fl {
		if b {
			return true
		}
	}
	return false
}

// all returns a Flags value with every field set.
func all() Flags {
	var fl Flags
	for i := range fl {
		fl[i] = true
	}
	return fl
}
