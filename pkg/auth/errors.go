package auth

import (
	"errors"
	"strings"
)

type Code string

const (
	CodeInvalidInput       Code = "invalid_input"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeEmailNotConfirmed  Code = "email_not_confirmed"
	CodeEmailTaken         Code = "email_taken"
	CodeInvalidSession     Code = "invalid_session"
	CodeUnknownProvider    Code = "unknown_provider"
	CodeBackend            Code = "backend"
)

// Error is what every auth operation fails with. Message is human readable
// and shown to the user as is.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

func backendError(err error) error {
	return &Error{Code: CodeBackend, Message: err.Error()}
}

const emailNotConfirmedText = "email not confirmed"

// IsEmailNotConfirmed matches on the message text, the way hosted auth
// providers report this case.
func IsEmailNotConfirmed(err error) bool {
	var ae *Error
	if !errors.As(err, &ae) {
		return false
	}
	return strings.Contains(strings.ToLower(ae.Message), emailNotConfirmedText)
}

// IsCode reports whether err is an auth Error with the given code.
func IsCode(err error, code Code) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
