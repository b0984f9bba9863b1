// Package common holds the error taxonomy shared by every feature package.
package common

import "errors"

var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps transport, auth and exhausted-retry failures of the backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrValidation marks malformed input, e.g. a missing event ID before a mutating call.
	ErrValidation = errors.New("validation failure")
	// ErrInsufficientBalance is returned when a redemption would drive a token balance negative.
	ErrInsufficientBalance = errors.New("insufficient token balance")
	// ErrEventFull is returned when a join would exceed the event's participant cap.
	ErrEventFull = errors.New("event is full")
	// ErrEventExpired is returned when joining an event whose expiry has passed.
	ErrEventExpired = errors.New("event has expired")
	// ErrForbidden means the caller may not act on the record.
	ErrForbidden = errors.New("forbidden")
)
