package rig

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingObject reports a reference to a component that does not
	// exist, was excluded, or has the wrong type.
	ErrMissingObject = errors.New("missing object")
	// ErrInvalidObject reports structurally malformed component data.
	ErrInvalidObject = errors.New("invalid object")
	// ErrCycle reports a component lying on a dependency cycle.
	ErrCycle = errors.New("dependency cycle")
)

// BuildError records why a component was excluded from the execution order.
type BuildError struct {
	ID   ID
	Name string
	Type ComponentType
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s %q (id %d): %v", e.Type, e.Name, e.ID, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// UpdateError records a failed component update. The component keeps its
// dirt and is retried on the next pass.
type UpdateError struct {
	ID   ID
	Name string
	Dirt ComponentDirt
	Err  error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update %q (id %d, dirt %#x): %v", e.Name, e.ID, uint16(e.Dirt), e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

func missingf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMissingObject, fmt.Sprintf(format, args...))
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidObject, fmt.Sprintf(format, args...))
}
