package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/jobtrack/internal/domain"
)

// ErrAlreadyExists is wrapped by every ConflictError, so callers can test
// with errors.Is(err, store.ErrAlreadyExists).
var ErrAlreadyExists = errors.New("already exists")

// ReferentialError reports a foreign key that does not resolve to an
// existing row. It is returned before the write is attempted.
type ReferentialError struct {
	// Entity is the referenced entity, e.g. "company".
	Entity string

	// Field is the referencing column, e.g. "company_id".
	Field string

	// ID is the id that did not resolve. Zero when the engine reported the
	// violation without identifying the row.
	ID int64
}

// Error implements the error interface.
func (e *ReferentialError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: foreign key does not reference an existing row", e.Entity)
	}
	return fmt.Sprintf("%s %d does not reference an existing %s", e.Field, e.ID, e.Entity)
}

// ConflictError reports a uniqueness violation: a duplicate tag name or a
// tag already attached to a job.
type ConflictError struct {
	Entity  string
	Message string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Message)
}

// Unwrap returns ErrAlreadyExists.
func (e *ConflictError) Unwrap() error {
	return ErrAlreadyExists
}

// StorageError reports a failure of the storage engine that is not an
// entity-level problem: I/O, corruption, locking, a closed handle.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

// Unwrap returns the driver error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsValidation returns true if err is or wraps a *domain.ValidationError.
func IsValidation(err error) bool {
	return domain.IsValidationError(err)
}

// IsReferential returns true if err is or wraps a *ReferentialError.
func IsReferential(err error) bool {
	var re *ReferentialError
	return errors.As(err, &re)
}

// IsConflict returns true if err is or wraps a *ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsStorage returns true if err is or wraps a *StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// classify converts a driver error into the error taxonomy. Constraint
// violations reported by SQLite become the matching entity-level error;
// everything else becomes a *StorageError. Errors that are already
// classified pass through unchanged.
func classify(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsReferential(err) || IsConflict(err) || IsStorage(err) {
		return err
	}

	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &ConflictError{Entity: entityOr(entity), Message: se.Error()}
		case sqlite3.ErrConstraintForeignKey:
			return &ReferentialError{Entity: entityOr(entity)}
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return &domain.ValidationError{Entity: entityOr(entity), Message: se.Error()}
		}
	}

	return &StorageError{Op: op, Err: err}
}

func entityOr(entity string) string {
	if entity == "" {
		return "record"
	}
	return entity
}
