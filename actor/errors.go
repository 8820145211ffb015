package actor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDescriptor is returned by Desc.Validate and New. No body is
	// constructed when it is returned.
	ErrInvalidDescriptor = errors.New("invalid descriptor")

	// ErrContractViolation reports a call the body cannot honour: mutating the
	// dynamics of a static body, integrating forces on a kinematic body, or
	// passing non-finite or out-of-range values. The body is left unchanged.
	ErrContractViolation = errors.New("contract violation")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDescriptor, fmt.Sprintf(format, args...))
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}
