package core

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable error taxonomy exposed across both the idiomatic
// Go surface and the cabi ABI surface.
type ErrorCode int

const (
	// Success indicates no error. Go callers never see this as an error
	// value; it exists so the ABI surface has a zero value meaning "ok".
	Success ErrorCode = iota
	InvalidArgument
	OutOfMemory
	InvalidState
	BudgetInsufficient
	ConservationViolation
	WitnessInvalid
	DomainDestroyed
)

// Error satisfies the error interface so ErrorCode values can be passed
// directly as the target of errors.Is(err, core.WitnessInvalid) without
// wrapping them in a SubstrateError first.
func (c ErrorCode) Error() string { return c.String() }

func (c ErrorCode) String() string {
	switch c {
	case Success:
		return "success"
	case InvalidArgument:
		return "invalid argument"
	case OutOfMemory:
		return "out of memory"
	case InvalidState:
		return "invalid state"
	case BudgetInsufficient:
		return "budget insufficient"
	case ConservationViolation:
		return "conservation violation"
	case WitnessInvalid:
		return "witness invalid"
	case DomainDestroyed:
		return "domain destroyed"
	default:
		return "unknown error"
	}
}

// SubstrateError binds an ErrorCode to the operation that produced it,
// chaining onto fmt.Errorf("%w") like pkg/utils.Wrap does elsewhere in this
// module. Use errors.Is(err, SomeCode) for matching (SubstrateError's Is
// method compares its Code against an ErrorCode target).
type SubstrateError struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *SubstrateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *SubstrateError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, core.InvalidState) work directly against an
// ErrorCode, so callers don't need to know about SubstrateError.
func (e *SubstrateError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

func newErr(code ErrorCode, op string) error {
	return &SubstrateError{Code: code, Op: op}
}

func wrapErr(code ErrorCode, op string, err error) error {
	return &SubstrateError{Code: code, Op: op, Err: err}
}

// CodeOf extracts the ErrorCode carried by err, or Success if err is nil, or
// InvalidArgument if err does not originate from this package.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var se *SubstrateError
	if errors.As(err, &se) {
		return se.Code
	}
	return InvalidArgument
}
