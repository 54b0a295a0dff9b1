package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// NotFoundError reports that a targeted single-entity operation matched no row.
type NotFoundError struct {
	Entity string
	ID     any
}

func NewNotFound(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with identifier '%v' not found", e.Entity, e.ID)
}

// ValidationError reports malformed or constraint-violating input.
type ValidationError struct {
	Field  string
	Detail string
	Err    error
}

func NewValidation(field, detail string) *ValidationError {
	return &ValidationError{Field: field, Detail: detail}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Detail
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DatabaseError reports a store failure, including a write whose read-back
// returned nothing.
type DatabaseError struct {
	Entity string
	ID     any
	Err    error
}

func NewDatabase(entity string, id any, err error) *DatabaseError {
	return &DatabaseError{Entity: entity, ID: id, Err: err}
}

func (e *DatabaseError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("database error: %v", e.Err)
	}
	return fmt.Sprintf("database error on %s: %v", e.Entity, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// HandleDatabaseError is the translation point every repository funnels its
// failures through. Classified errors pass through untouched, driver
// constraint violations become ValidationError, anything else is a
// DatabaseError. A nil err stays nil.
func HandleDatabaseError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	var (
		nf *NotFoundError
		ve *ValidationError
		de *DatabaseError
	)
	if errors.As(err, &nf) || errors.As(err, &ve) || errors.As(err, &de) {
		return err
	}
	if detail, ok := constraintViolation(err); ok {
		return &ValidationError{Detail: detail, Err: err}
	}
	return NewDatabase(entity, id, err)
}

// constraintViolation recognizes integrity violations from the drivers the
// store layer can run on: lib/pq, pgx and sqlite3.
func constraintViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return pqErr.Message, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return pgErr.Message, true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		return liteErr.Error(), true
	}
	return "", false
}

// ProblemFor selects the problem document, and with it the status code, for
// any error. This is the only place kinds are mapped to statuses.
func ProblemFor(err error) ProblemDetail {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		return problem
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return NewNotFoundProblem(nf.Entity, nf.ID)
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		p := ErrValidation.WithDetail(ve.Error())
		if ve.Field != "" {
			p = p.WithExtension("field", ve.Field)
		}
		return p
	}
	var de *DatabaseError
	if errors.As(err, &de) {
		return ErrDatabase.WithDetail(de.Error())
	}
	return ErrInternal.WithDetail(err.Error())
}
