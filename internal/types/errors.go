package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrInvalidID        = errors.New("invalid company id")
	ErrValidation       = errors.New("validation failed")
	ErrDuplicate        = errors.New("duplicate title")
	ErrNotFound         = errors.New("not found")

	ErrStore = errors.New("primary store error")
	ErrIndex = errors.New("search index error")
	// ErrIndexMissing is reported by the index adapter when no document has
	// ever been written; the coordinator turns it into an empty listing.
	ErrIndexMissing = errors.New("search index does not exist")
)

func Err(typedError error, innerErr error, msgTemplate string, args ...any) error {
	if msgTemplate == "" {
		return errors.Join(typedError, innerErr)
	}
	return errors.Join(typedError, innerErr, fmt.Errorf(msgTemplate, args...))
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
}

type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, f := range fe {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "\n")
}

const usageHint = "usage: title is required (1-100 characters); description and url are optional strings"

// Render formats the failures for the caller: one message per offending
// field, newline-joined, with the usage hint appended once at the end.
func (fe FieldErrors) Render() string {
	if len(fe) == 0 {
		return usageHint
	}
	return fe.Error() + "\n" + usageHint
}
