package app

import (
	"errors"

	"growt/internal/domain"
)

var (
	// ErrNotFound indicates the entity does not exist or is not visible to
	// the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput wraps every request validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict indicates a uniqueness violation such as a reused tag.
	ErrConflict = domain.ErrDuplicate
)
