package model

import "errors"

var (
	// User related errors
	ErrUserNotFound     = errors.New("user not found")
	ErrBadCredentials   = errors.New("bad credentials")
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// Token related errors
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Resource related errors
	ErrBookNotFound = errors.New("book not found")
	ErrCarNotFound  = errors.New("car not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
