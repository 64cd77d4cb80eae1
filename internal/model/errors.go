package model

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrConversationClosed is returned for turns against a conversation
	// whose status is completed or archived.
	ErrConversationClosed = errors.New("conversation closed")
)
