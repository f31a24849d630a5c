package domain

import "errors"

// Domain errors
var (
	ErrNoPages          = errors.New("document produced no pages")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrFileNotFound     = errors.New("file not found")
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
