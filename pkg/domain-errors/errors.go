// Package domainerrors provides coded domain errors. Stores return sentinel
// errors (pkg/platform/sentinel); services wrap or translate them into coded
// errors here; the HTTP layer maps codes onto statuses. Codes travel to
// callers, messages stay server-side for internal failures. Conventionally
// imported as dErrors.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers. The taxonomy mirrors the operation
// contract: input codes are retryable after correcting the request, state
// codes after re-reading state, authorization codes only after a privilege
// change, funds codes after funding or approving.
type Code string

const (
	// Input errors.
	CodeBadRequest     Code = "bad_request"
	CodeValidation     Code = "validation"
	CodeInvalidInput   Code = "invalid_input"
	CodeInvalidLength  Code = "invalid_length"
	CodeInvalidName    Code = "invalid_name"
	CodeLabelTooLong   Code = "label_too_long"
	CodeLengthMismatch Code = "length_mismatch"

	// State errors.
	CodeAlreadyExists Code = "already_exists"
	CodeNotFound      Code = "not_found"
	CodeConfigNotSet  Code = "config_not_set"
	CodeNothingStaked Code = "nothing_staked"
	CodeConflict      Code = "conflict"
	CodeInvalidState  Code = "invalid_state"

	CodeAlreadyInitialized Code = "already_initialized"

	// Authorization errors.
	CodeUnauthorized        Code = "unauthorized"
	CodeNotCertificateOwner Code = "not_certificate_owner"
	CodeNotBothOwner        Code = "not_both_owner"
	CodeNotMintlisted       Code = "not_mintlisted"
	CodeDistributionLocked  Code = "distribution_locked"

	// Funds errors.
	CodeInsufficientFunds     Code = "insufficient_funds"
	CodeInsufficientAllowance Code = "insufficient_allowance"

	CodeInternal Code = "internal_error"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so nothing leaks through the HTTP boundary unclassified.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}
