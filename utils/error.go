package utils

import "errors"

// ErrorKind classifies business-rule failures. All of them abort the
// enclosing DB transaction with zero side effects; none are retryable.
type ErrorKind string

const (
	ErrorKindNotFound               ErrorKind = "NotFound"
	ErrorKindInvalidStateTransition ErrorKind = "InvalidStateTransition"
	ErrorKindDocumentLocked         ErrorKind = "DocumentLocked"
	ErrorKindValidation             ErrorKind = "ValidationError"
)

// DomainError is a structured business-rule failure carrying the kind and a
// human-readable message. Match with errors.Is against the sentinels below.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Is matches by kind so any DomainError compares equal to its sentinel.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrorRecordNotFound covers both "absent" and "owned by another tenant";
	// the two are indistinguishable on purpose (no existence leaks across
	// tenants).
	ErrorRecordNotFound         = &DomainError{Kind: ErrorKindNotFound, Message: "record not found"}
	ErrorInvalidStateTransition = &DomainError{Kind: ErrorKindInvalidStateTransition, Message: "invalid state transition"}
	ErrorDocumentLocked         = &DomainError{Kind: ErrorKindDocumentLocked, Message: "document is locked"}
	ErrorValidation             = &DomainError{Kind: ErrorKindValidation, Message: "validation failed"}
)

func NewNotFound(message string) error {
	return &DomainError{Kind: ErrorKindNotFound, Message: message}
}

func NewInvalidStateTransition(message string) error {
	return &DomainError{Kind: ErrorKindInvalidStateTransition, Message: message}
}

func NewDocumentLocked(message string) error {
	return &DomainError{Kind: ErrorKindDocumentLocked, Message: message}
}

func NewValidationError(message string) error {
	return &DomainError{Kind: ErrorKindValidation, Message: message}
}
