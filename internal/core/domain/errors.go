package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the target resource no longer exists
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a domain rule violation such as a duplicate
	// report or an already-registered listing
	ErrDuplicate = errors.New("duplicate")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated indicates a write was attempted without a valid session
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller does not own the target resource
	ErrForbidden = errors.New("forbidden")

	// ErrServerFault indicates a generic backend failure
	ErrServerFault = errors.New("server fault")

	// ErrUnreachable indicates no response was received at all
	ErrUnreachable = errors.New("network unreachable")
)

// FailureKind is the user-facing category a mutation failure maps to.
// Every error crossing the mutation coordinator boundary resolves to
// exactly one kind.
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureUnauthenticated FailureKind = "unauthenticated"
	FailureForbidden       FailureKind = "forbidden"
	FailureNotFound        FailureKind = "not_found"
	FailureDuplicate       FailureKind = "duplicate"
	FailureValidation      FailureKind = "validation"
	FailureServerFault     FailureKind = "server_fault"
	FailureUnreachable     FailureKind = "unreachable"
)

// ClassifyFailure maps an error to its failure kind.
// Unrecognized errors are treated as server faults so no raw transport
// error reaches the presentation layer unclassified.
func ClassifyFailure(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrUnauthenticated):
		return FailureUnauthenticated
	case errors.Is(err, ErrForbidden):
		return FailureForbidden
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	case errors.Is(err, ErrDuplicate):
		return FailureDuplicate
	case errors.Is(err, ErrInvalidInput):
		return FailureValidation
	case errors.Is(err, ErrUnreachable):
		return FailureUnreachable
	default:
		return FailureServerFault
	}
}
