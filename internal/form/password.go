package form

import "math/rand/v2"

const (
	passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()_+"

	// GeneratedPasswordLength is the length of strings built by GeneratePassword.
	GeneratedPasswordLength = 8
)

// PasswordSource supplies uniform indexes for the password generator.
// *rand.Rand satisfies it; tests pass a seeded one.
type PasswordSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// GeneratePassword returns GeneratedPasswordLength characters drawn uniformly
// from the generator alphabet.  A nil src uses the process-wide source.
func GeneratePassword(src PasswordSource) string {
	if src == nil {
		src = globalSource{}
	}
	b := make([]byte, GeneratedPasswordLength)
	for i := range b {
		b[i] = passwordCharset[src.IntN(len(passwordCharset))]
	}
	return string(b)
}
