// internal/user/model.go
//
// User record persisted by the registration form.
//
// Context
// -------
// The form hands over display values (masked phone and CPF, plaintext
// password).  NewRecord normalises them into what the table stores: digits
// only for phone and CPF, a bcrypt hash instead of the password.  The
// validate tags repeat the form's rules on the normalised shape so nothing
// malformed reaches SQL even if a caller bypasses the form.
//
// bcrypt reads at most 72 bytes and the form sets no upper bound, so the
// password is first reduced to base64(SHA-256), 44 bytes, and bcrypt hashes
// that.  CheckPassword applies the same step.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package user

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanizio/cadastro/internal/form"
)

// Record mirrors one row of the users table.
type Record struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"          validate:"required,excludesall=0123456789"`
	Phone        string    `db:"phone"         validate:"required,numeric,len=11"`
	CPF          string    `db:"cpf"           validate:"required,numeric,len=11"`
	Email        string    `db:"email"         validate:"required,contains=@"`
	PasswordHash string    `db:"password_hash" validate:"required"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

var v = validator.New()

// Validate checks the record against its tags.
func (r *Record) Validate() error { return v.Struct(r) }

// NewRecord converts accepted form values into a record.  The password is
// hashed with bcrypt at the given cost (bcrypt.DefaultCost when 0).
func NewRecord(vals form.Values, cost int) (*Record, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword(prehash(vals.Get(form.Password)), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	r := &Record{
		Name:         vals.Get(form.Name),
		Phone:        form.Digits(vals.Get(form.Phone)),
		CPF:          form.Digits(vals.Get(form.NationalID)),
		Email:        vals.Get(form.Email),
		PasswordHash: string(hash),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// CheckPassword reports whether pw matches the stored hash.
func (r *Record) CheckPassword(pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), prehash(pw)) == nil
}

// prehash maps any password onto 44 printable bytes.
func prehash(pw string) []byte {
	sum := sha256.Sum256([]byte(pw))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// InitialData returns the values used to seed the edit form.  Phone and CPF
// are re-masked with the given masks.  The password fields stay empty: the
// stored hash cannot be shown, so an update asks for the password again.
func (r *Record) InitialData(phoneMask, cpfMask string) map[string]string {
	return map[string]string{
		form.Name.String():         r.Name,
		form.Phone.String():        form.ApplyMask(phoneMask, r.Phone),
		form.NationalID.String():   form.ApplyMask(cpfMask, r.CPF),
		form.Email.String():        r.Email,
		form.ConfirmEmail.String(): r.Email,
	}
}
