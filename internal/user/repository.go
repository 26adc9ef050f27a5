// internal/user/repository.go
//
// Query helpers for the users table.
//
// Context
// -------
// The registration form's submit and delete callbacks land here.  The
// Repository wraps a *sqlx.DB and runs simple parameterised statements that
// work unchanged on MySQL and SQLite (both use “?” placeholders and
// CURRENT_TIMESTAMP).
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrNotFound is returned when no row matches the id.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when the email or CPF is already registered.
	ErrDuplicate = errors.New("email or CPF already registered")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// Repository persists user records.  Safe for concurrent use.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps db.
func NewRepository(db *sqlx.DB) *Repository { return &Repository{db: db} }

// Create inserts r and returns its new id.  r.ID is updated too.
func (repo *Repository) Create(ctx context.Context, r *Record) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	const q = `INSERT INTO users (name, phone, cpf, email, password_hash)
               VALUES (?, ?, ?, ?, ?)`

	res, err := repo.db.ExecContext(ctx, q, r.Name, r.Phone, r.CPF, r.Email, r.PasswordHash)
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	return id, nil
}

// Update overwrites the editable columns of row r.ID.  MySQL reports zero
// affected rows for a no-op update, so existence is not checked here; the
// caller loaded the row with ByID when the edit form was mounted.
func (repo *Repository) Update(ctx context.Context, r *Record) error {
	if r.ID == 0 {
		return ErrNotFound
	}
	if err := r.Validate(); err != nil {
		return err
	}
	const q = `UPDATE users
                  SET name = ?, phone = ?, cpf = ?, email = ?, password_hash = ?,
                      updated_at = CURRENT_TIMESTAMP
                WHERE id = ?`

	_, err := repo.db.ExecContext(ctx, q, r.Name, r.Phone, r.CPF, r.Email, r.PasswordHash, r.ID)
	return translate(err)
}

// Delete removes row id.
func (repo *Repository) Delete(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ByID fetches one row.
func (repo *Repository) ByID(ctx context.Context, id int64) (*Record, error) {
	const q = `SELECT id, name, phone, cpf, email, password_hash, created_at, updated_at
                 FROM users
                WHERE id = ?
                LIMIT 1`

	var r Record
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// translate maps driver-specific unique-key violations to ErrDuplicate.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %s", ErrDuplicate, me.Message)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") { // SQLite
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
