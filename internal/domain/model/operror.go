package model

// ErrorKind classifies an operation failure.
type ErrorKind string

const (
	// ErrKindValidation marks missing or empty required input, caught
	// before any remote call is made.
	ErrKindValidation ErrorKind = "validation"
	// ErrKindLookup marks an id that does not resolve to an active record.
	ErrKindLookup ErrorKind = "lookup"
	// ErrKindRemoteRejected marks an explicit rejection by the Slack API
	// (bad token, missing permission, unknown channel).
	ErrKindRemoteRejected ErrorKind = "remote_rejected"
	// ErrKindUnexpected marks everything else: network faults, decoding
	// faults, programming faults.
	ErrKindUnexpected ErrorKind = "unexpected"
)

// OpError is the tagged failure variant of every console operation.
// Message is user-facing; it is what the {success:false, error} envelope
// carries at the HTTP boundary.
type OpError struct {
	Kind    ErrorKind
	Message string
}

func (e *OpError) Error() string { return e.Message }

// NewOpError builds an OpError with the given kind and message.
func NewOpError(kind ErrorKind, message string) *OpError {
	return &OpError{Kind: kind, Message: message}
}
