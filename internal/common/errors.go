// Package common defines shared helpers and sentinel errors used across the
// client packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Local vault errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrNoLocalKey     = errors.New("no key stored in local vault")

	// Session-level errors.
	ErrNotConnected = errors.New("wallet not connected")
)
