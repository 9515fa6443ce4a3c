package repository

import (
	"errors"

	"estate-api/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrDuplicate wraps a unique-constraint violation. Use errors.As with
	// *DuplicateError to learn which column collided.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleState is returned when a compare-and-swap update finds that the
	// row moved on since it was read.
	ErrStaleState = errors.New("auth state changed concurrently")
	// ErrNotFound is returned by writes that matched no live row.
	ErrNotFound = errors.New("record not found")
)

// DuplicateError names the column behind a unique violation.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return "duplicate " + e.Field
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

const uniqueViolation = "23505"

// constraint name -> request field
var uniqueFields = map[string]string{
	"users_email_key": "email",
	"users_phone_key": "phone",
}

func asDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	field, ok := uniqueFields[pgErr.ConstraintName]
	if !ok {
		field = pgErr.ConstraintName
	}
	return &DuplicateError{Field: field}
}

type Repository struct {
	User      UserRepository
	AuthState AuthStateRepository
	Bootstrap BootstrapRepository
	Tx        database.Transactor
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:      NewUserRepository(db, log),
		AuthState: NewAuthStateRepository(db, log),
		Bootstrap: NewBootstrapRepository(db, log),
		Tx:        database.NewTransactor(db),
	}
}
