package domain

import "errors"

var (
	// ErrNotFound is returned when a conversation or message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRole is returned when a message role is outside the fixed set.
	ErrInvalidRole = errors.New("invalid message role")
)
