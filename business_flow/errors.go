// Package businessflow contains the core business logic and use cases for the script sharing service
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Script-related errors
	ErrScriptNotFound     = errors.New("script not found")
	ErrPermalinkMissing   = errors.New("permalink is missing")
	ErrPermalinkTaken     = errors.New("permalink already exists")
	ErrPermalinkExhausted = errors.New("could not find a free permalink")

	// Captcha errors
	ErrInvalidCaptcha = errors.New("captcha validation failed")

	// Admin-related errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// FieldRequiredError reports the first required submission field that was
// missing or blank
type FieldRequiredError struct {
	Field string
}

func (e *FieldRequiredError) Error() string {
	return e.Field + " is required"
}

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsScriptNotFound(err error) bool {
	return errors.Is(err, ErrScriptNotFound)
}

func IsPermalinkMissing(err error) bool {
	return errors.Is(err, ErrPermalinkMissing)
}

func IsPermalinkTaken(err error) bool {
	return errors.Is(err, ErrPermalinkTaken)
}

func IsPermalinkExhausted(err error) bool {
	return errors.Is(err, ErrPermalinkExhausted)
}

func IsInvalidCaptcha(err error) bool {
	return errors.Is(err, ErrInvalidCaptcha)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

// IsFieldRequired reports whether err is a missing-field validation failure
// and returns the offending field name
func IsFieldRequired(err error) (string, bool) {
	var fieldErr *FieldRequiredError
	if errors.As(err, &fieldErr) {
		return fieldErr.Field, true
	}
	return "", false
}
