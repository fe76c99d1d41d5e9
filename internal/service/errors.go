package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPackNotFound    = errors.New("pack not found")
	ErrWorkNotFound    = errors.New("work not found")
	ErrRowNotFound     = errors.New("assigned work not found")
	ErrEmptyPack       = errors.New("pack has no resolvable works")
	ErrInvalidStatus   = errors.New("invalid work status")
	ErrDoneMarkMissing = errors.New("pack is not marked done for this student")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrSMSDisabled     = errors.New("sms sending is not configured")
	ErrNoArchivedBody  = errors.New("archived notification body is not available")
)

// ValidationError reports caller mistakes (unresolvable tokens, empty
// inputs) synchronously; nothing was written when it is returned.
type ValidationError struct {
	Message string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
}

func NewValidationError(message string, missing ...string) error {
	return &ValidationError{Message: message, Missing: missing}
}
