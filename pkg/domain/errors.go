package domain

import "errors"

// Rejection errors returned by store operations when a precondition does not hold.
// Callers match them with errors.Is; the returned errors wrap them with context.
var (
	ErrBuildingNotFound = errors.New("building not found")
	ErrBuildingExists   = errors.New("building already exists")
	ErrElevatorNotFound = errors.New("elevator not found")
	ErrElevatorExists   = errors.New("elevator already exists")
	ErrFloorOutOfRange  = errors.New("floor outside building range")
	ErrElevatorInactive = errors.New("elevator is inactive")
)

// ErrInvalidInput is returned by the sanitizer when the input is absent or
// cannot be coerced into a canonical record.
var ErrInvalidInput = errors.New("invalid input")

// IsRejection reports whether err is one of the expected, caller-recoverable
// outcomes rather than an infrastructure failure.
func IsRejection(err error) bool {
	switch {
	case errors.Is(err, ErrBuildingNotFound),
		errors.Is(err, ErrBuildingExists),
		errors.Is(err, ErrElevatorNotFound),
		errors.Is(err, ErrElevatorExists),
		errors.Is(err, ErrFloorOutOfRange),
		errors.Is(err, ErrElevatorInactive),
		errors.Is(err, ErrInvalidInput):
		return true
	default:
		return false
	}
}
