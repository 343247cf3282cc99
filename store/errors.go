package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entry doesn't exist.
	ErrNotFound = errors.New("lexicon: entry not found")

	// ErrConflict is matched by every create that collides with an existing entry.
	ErrConflict = errors.New("lexicon: entry already exists")

	// ErrAlreadyExists is returned when an entry with the same key exists.
	ErrAlreadyExists = fmt.Errorf("%w: duplicate key", ErrConflict)

	// ErrDuplicateValue is returned when the value's unique constraint is violated.
	ErrDuplicateValue = fmt.Errorf("%w: duplicate value", ErrConflict)
)
