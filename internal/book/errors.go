package book

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no book matches the requested ISBN.
	ErrNotFound = errors.New("book not found")
	// ErrValidation matches every *ValidationError through errors.Is.
	ErrValidation = errors.New("invalid book data")
)

// SQLSTATE reported by Postgres on a primary key or unique index collision.
const sqlStateUniqueViolation = "23505"

// FieldError describes one rejected field of a book payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a payload is missing fields or carries
// values of the wrong type. Nothing reaches the database in that case.
type ValidationError struct {
	Fields []FieldError
}

func newValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// BackendError wraps any storage failure that is neither a missing row nor a
// validation problem. Code holds the Postgres SQLSTATE when one is available.
type BackendError struct {
	Op   string
	Code string
	Err  error
}

func newBackendError(op string, err error) *BackendError {
	be := &BackendError{Op: op, Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		be.Code = pgErr.Code
	}
	return be
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s book (sqlstate %s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s book: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err was caused by inserting an ISBN that
// already exists.
func IsDuplicate(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Code == sqlStateUniqueViolation
}
