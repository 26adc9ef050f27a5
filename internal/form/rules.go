// internal/form/rules.go
//
// Cadastro – Forms subsystem: validity evaluator.
//
// Context
//   Every rule is a pure predicate over the current Values.  A rule returns
//   true when the field is INVALID, matching how the flags are rendered.  The
//   two confirmation fields compare against their primary field with exact,
//   case-sensitive equality and no trimming.
//
//------------------------------------------------------------------------------

package form

import (
	"strings"
	"unicode/utf8"
)

const (
	documentDigits    = 11 // phone (DDD + 9 digits) and CPF
	minPasswordLength = 6

	asciiDigits = "0123456789"
)

// rules is indexed by Field.
var rules = [numFields]func(Values) bool{
	Name:            func(v Values) bool { return v[Name] == "" || strings.ContainsAny(v[Name], asciiDigits) },
	Phone:           func(v Values) bool { return len(Digits(v[Phone])) != documentDigits },
	NationalID:      func(v Values) bool { return len(Digits(v[NationalID])) != documentDigits },
	Email:           func(v Values) bool { return !strings.Contains(v[Email], "@") },
	ConfirmEmail:    func(v Values) bool { return v[Email] != v[ConfirmEmail] },
	// Length counts code points.  A browser's String.length counts UTF-16
	// units, so "😀😀😀" is 6 there and 3 here, and is rejected here.
	Password:        func(v Values) bool { return utf8.RuneCountInString(v[Password]) < minPasswordLength },
	ConfirmPassword: func(v Values) bool { return v[Password] != v[ConfirmPassword] },
}

// Invalid reports whether field f is invalid given the values v.
func Invalid(f Field, v Values) bool { return rules[f](v) }

// Evaluate runs every rule over v.
func Evaluate(v Values) Flags {
	var fl Flags
	for _, f := range Fields {
		fl[f] = rules[f](v)
	}
	return fl
}

// Digits returns only the ASCII digits of s, in order.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// messages is the inline product copy shown next to an invalid field.
var messages = [numFields]string{
	Name:            "O nome não deve conter números ou está vazio",
	Phone:           "Telefone deve ter 11 dígitos ou está vazio",
	NationalID:      "CPF deve ter 11 dígitos ou está vazio",
	Email:           "O email deve conter @ ou está vazio",
	ConfirmEmail:    "Os emails não são iguais ou está vazio",
	Password:        "Senha deve ter no mínimo 6 caracteres ou está vazio",
	ConfirmPassword: "As senhas não são iguais ou está vazio",
}

// Message returns the inline error message for f.
func Message(f Field) string { return messages[f] }
