package tutor

import "errors"

var (
	// ErrDraftFailed marks a framework drafting failure, fatal to the turn
	ErrDraftFailed = errors.New("framework drafting failed")

	// ErrStreamFailed marks a failed streamed reply
	ErrStreamFailed = errors.New("streamed reply failed")
)
