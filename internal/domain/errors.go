package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrQuotaExhausted indicates that the user's subscription cannot cover another ad.
	ErrQuotaExhausted = errors.New("ad quota exhausted")
	// ErrCouponUnavailable is returned when an atomic redemption matched no redeemable coupon.
	ErrCouponUnavailable = errors.New("coupon unavailable")
)

// DuplicateKeyError reports a unique index violation on Field.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// ErrorKind classifies an AppError for the HTTP boundary.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindValidation      ErrorKind = "validation_failed"
	KindConflict        ErrorKind = "conflict"
	KindBadRequest      ErrorKind = "bad_request"
	KindUnauthorized    ErrorKind = "unauthorized"
	KindForbidden       ErrorKind = "forbidden"
	KindTooManyRequests ErrorKind = "too_many_requests"
	KindInternal        ErrorKind = "internal"
)

// AppError is an operational error that is safe to show to clients.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func Validation(msg string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg, Fields: fields}
}

func Conflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func BadRequest(msg string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: msg}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func TooManyRequests(msg string) *AppError {
	return &AppError{Kind: KindTooManyRequests, Message: msg}
}

// Internal wraps an unexpected failure. The message shown to clients is generic.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Something went wrong", Err: err}
}

// AsAppError attempts to extract an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for anything unclassified.
func KindOf(err error) ErrorKind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindInternal
}
