// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and verifiers and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the request lacks a credential where one is required.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a credential was presented but is invalid, expired,
	// or its scope does not cover the targeted resource.
	ErrForbidden = errors.New("forbidden")

	// ErrUnsupportedMediaType indicates the declared content type is not
	// allow-listed, or does not match the stored type on update.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrPayloadTooLarge indicates the request body exceeds the configured ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrNotAcceptable indicates the uploaded content was flagged by the scanner.
	ErrNotAcceptable = errors.New("not acceptable")

	// ErrBadRequest indicates a malformed structured payload (e.g. invalid JSON).
	ErrBadRequest = errors.New("bad request")

	// ErrInvalidInput indicates the input data fails validation.
	ErrInvalidInput = errors.New("invalid input")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
