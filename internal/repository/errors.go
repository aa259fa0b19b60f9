package repository

import (
	"errors"

	apperrors "github.com/jwalitptl/memory-api/pkg/errors"
)

// MapError converts a repository error into an application error for resource
func MapError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperrors.NotFound(resource, err)
	case errors.Is(err, ErrConflict):
		return apperrors.Conflict(resource+" already exists", err)
	default:
		if _, ok := apperrors.As(err); ok {
			return err
		}
		return apperrors.Dependency("database operation failed", err)
	}
}
