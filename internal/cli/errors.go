package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/jobtrack/internal/domain"
	"github.com/roach88/jobtrack/internal/store"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric     = "E000" // Unclassified error
	ErrCodeValidation  = "E001" // Entity invariant violated
	ErrCodeReferential = "E002" // Referenced company, job or tag does not exist
	ErrCodeConflict    = "E003" // Duplicate tag name or tag already attached
	ErrCodeNotFound    = "E004" // No entity with the given id
	ErrCodeStorage     = "E005" // Database failure
	ErrCodeUsage       = "E006" // Malformed arguments or flags
	ErrCodeFixture     = "E007" // Fixture file could not be read or parsed
	ErrCodeConfig      = "E008" // Configuration could not be loaded
)

// NotFoundError reports a lookup by id that matched nothing.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// UsageError reports malformed arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// FixtureError reports a fixture file that could not be loaded.
type FixtureError struct {
	Err error
}

func (e *FixtureError) Error() string {
	return e.Err.Error()
}

func (e *FixtureError) Unwrap() error {
	return e.Err
}

// configError reports a configuration that could not be resolved.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// classifyError maps err to an error code, an exit code and optional
// details for the JSON envelope.
func classifyError(err error) (code string, exit int, details interface{}) {
	var (
		ve  *domain.ValidationError
		re  *store.ReferentialError
		ce  *store.ConflictError
		nf  *NotFoundError
		se  *store.StorageError
		ue  *UsageError
		fe  *FixtureError
		cfg *configError
	)

	switch {
	case errors.As(err, &ve):
		if ve.Field == "" {
			return ErrCodeValidation, ExitFailure, nil
		}
		return ErrCodeValidation, ExitFailure, map[string]string{"entity": ve.Entity, "field": ve.Field}
	case errors.As(err, &re):
		d := map[string]interface{}{"entity": re.Entity}
		if re.Field != "" {
			d["field"] = re.Field
			d["id"] = re.ID
		}
		return ErrCodeReferential, ExitFailure, d
	case errors.As(err, &ce):
		return ErrCodeConflict, ExitFailure, map[string]string{"entity": ce.Entity}
	case errors.As(err, &nf):
		return ErrCodeNotFound, ExitFailure, map[string]interface{}{"entity": nf.Entity, "id": nf.ID}
	case errors.As(err, &fe):
		return ErrCodeFixture, ExitFailure, nil
	case errors.As(err, &se):
		return ErrCodeStorage, ExitCommandError, nil
	case errors.As(err, &ue):
		return ErrCodeUsage, ExitCommandError, nil
	case errors.As(err, &cfg):
		return ErrCodeConfig, ExitCommandError, nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return ErrCodeGeneric, exitErr.Code, nil
	}
	return ErrCodeGeneric, ExitCommandError, nil
}

// parseID parses a positive integer id argument.
func parseID(entity, arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, &UsageError{Message: fmt.Sprintf("invalid %s id %q: must be a positive integer", entity, arg)}
	}
	return id, nil
}
