// Package apperr defines the errors surfaced to API clients. Every error
// carries a machine-readable code next to its human message.
package apperr

import (
	"errors"

	"teklip/marketplace/internal/model"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindBadRequest
	KindConflict
	KindUnprocessable
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindUnprocessable:
		return "unprocessable"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

const (
	CodeUserNotFound            = "user_not_found"
	CodeInvalidVerificationCode = "invalid_verification_code"
	CodeAuthError               = "auth_error"
	CodeDuplicateEmail          = "user_exists_duplicate_email"
	CodePasswordConfirmation    = "password_confirmation_does_not_match"
	CodePasswordError           = "password_error"
	CodeEmailAlreadyVerified    = "email_already_verified"
	CodeEmailNotVerified        = "email_not_verified"
	CodePhoneNotVerified        = "phone_number_not_verified"
	CodeDisabledUser            = "disabled_user"

	CodeValidation      = "validation_error"
	CodeBadRequest      = "bad_request"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeTooManyRequests = "too_many_requests"
	CodeMailError       = "mail_error"
	CodeInternal        = "internal_error"

	CodePostNotFound      = "post_not_found"
	CodeInvalidTransition = "invalid_status_transition"
	CodeReasonRequired    = "reason_required"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []model.FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func NotFound(code, msg string) *Error      { return New(KindNotFound, code, msg) }
func Unauthorized(code, msg string) *Error  { return New(KindUnauthorized, code, msg) }
func Forbidden(code, msg string) *Error     { return New(KindForbidden, code, msg) }
func BadRequest(code, msg string) *Error    { return New(KindBadRequest, code, msg) }
func Conflict(code, msg string) *Error      { return New(KindConflict, code, msg) }
func Unprocessable(code, msg string) *Error { return New(KindUnprocessable, code, msg) }

func TooManyRequests(msg string) *Error {
	return New(KindTooManyRequests, CodeTooManyRequests, msg)
}

// Validation wraps a structured field error list.
func Validation(fields []model.FieldError) *Error {
	e := New(KindBadRequest, CodeValidation, "validation failed")
	e.Fields = fields
	return e
}

// Internal hides cause from clients but keeps it for logging.
func Internal(code string, cause error) *Error {
	if code == "" {
		code = CodeInternal
	}
	return &Error{Kind: KindInternal, Code: code, Message: "internal server error", cause: cause}
}

// As extracts an *Error from err. Anything else is reported as internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("", err)
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
