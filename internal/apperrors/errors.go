// Package apperrors defines the error taxonomy shared by the intake path
// and the pipeline workers.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error by which collaborator or contract produced it.
type Kind string

const (
	// KindValidation marks a bad request: unknown applicant/question
	// reference or malformed payload. Rejected synchronously, never
	// enqueued.
	KindValidation Kind = "VALIDATION"
	// KindStorage marks a media store write or read failure.
	KindStorage Kind = "STORAGE"
	// KindTranscription marks a transcript generator failure (network,
	// quota, unsupported media, empty audio).
	KindTranscription Kind = "TRANSCRIPTION"
	// KindScoring marks a scorer failure, including structurally invalid
	// responses.
	KindScoring Kind = "SCORING"
	// KindStaleTask marks a task whose locator no longer matches the row
	// it targets. Discarded at debug level, never user-visible.
	KindStaleTask Kind = "STALE_TASK"
	// KindNotFound marks a missing record on a read path.
	KindNotFound Kind = "NOT_FOUND"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether any error in err's chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}
