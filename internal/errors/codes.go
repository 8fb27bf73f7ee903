// Package errors defines the machine-readable error taxonomy shared by the
// contract lifecycle and its outbound surfaces.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Contract store errors
	CodeDuplicateContract Code = "DUPLICATE_CONTRACT"
	CodeAlreadyActive     Code = "ALREADY_ACTIVE"
	CodeNotFound          Code = "NOT_FOUND"
	CodeAlreadyClosed     Code = "ALREADY_CLOSED"

	// Platform call errors
	CodeForbidden Code = "FORBIDDEN"
	CodeTransient Code = "TRANSIENT"
	CodeFatal     Code = "FATAL"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// FailedPrecondition - state doesn't allow operation
	case CodeDuplicateContract,
		CodeAlreadyActive,
		CodeAlreadyClosed:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	case CodeForbidden:
		return codes.PermissionDenied

	case CodeTransient:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
