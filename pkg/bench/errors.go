package bench

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrDuplicateCase is returned when a case with the same normalized identity is already registered.
	ErrDuplicateCase = errors.New("duplicate benchmark case")
	// ErrInvalidCase is returned for cases that cannot be registered (missing names, no operation, bad channels).
	ErrInvalidCase = errors.New("invalid benchmark case")
	// ErrSealed is returned when registering into a registry that is already in use by a run.
	ErrSealed = errors.New("registry is sealed")
)
