// Package models defines the typed records shared by the scoring services,
// the record stores, and the HTTP API.
package models

import (
	"errors"
	"fmt"
)

// ErrValidation is returned when a create or update request is malformed.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Response is the envelope returned by every successful API call.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}
