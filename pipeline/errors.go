package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lingua-board/generator"
)

// ConfigurationError is fatal and non-retryable; it carries every missing
// setting so the operator sees the full list at once.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// AuthorizationError rejects a trigger before any side effect occurs.
type AuthorizationError struct{}

func (e *AuthorizationError) Error() string {
	return "invalid or missing trigger credential"
}

// TimeoutError is raised by WithTimeout when an operation outlives its
// deadline.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Limit)
}

// PersistenceError wraps a store failure. When a compensating rollback also
// failed, RollbackErr and the identifiers needing manual cleanup are carried
// alongside the original error, never replacing it.
type PersistenceError struct {
	Op          string
	Err         error
	RollbackErr error
	OrphanIDs   []primitive.ObjectID
}

func (e *PersistenceError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("%s failed: %v (rollback also failed: %v, %d rows may need manual cleanup)",
			e.Op, e.Err, e.RollbackErr, len(e.OrphanIDs))
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Categorize maps an error to its stable report category.
func Categorize(err error) string {
	var (
		cfgErr     *ConfigurationError
		authErr    *AuthorizationError
		persistErr *PersistenceError
		validErr   *generator.ValidationError
		timeoutErr *TimeoutError
		genErr     *generator.GenerationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &authErr):
		return "authorization"
	case errors.As(err, &persistErr):
		return "persistence"
	case errors.As(err, &validErr):
		return "validation"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &genErr):
		return "generation"
	default:
		return "internal"
	}
}
