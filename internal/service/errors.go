package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/article-image-api/internal/validation"
)

// Sentinel errors. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrBadRequest     = errors.New("bad request")
	ErrHash           = errors.New("failed to hash image")
	ErrGatewayTimeout = errors.New("image host timed out")
	ErrBadGateway     = errors.New("image host failed")
)

// ValidationFailure carries the field errors of a rejected request
type ValidationFailure struct {
	Errors []validation.ValidationError
}

func (e *ValidationFailure) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		msgs = append(msgs, ve.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationFailure) Is(target error) bool {
	return target == ErrValidation
}

// UploadError is a failed call to the remote image host.
// Kind is ErrGatewayTimeout or ErrBadGateway.
type UploadError struct {
	Kind         error
	RemoteStatus int
	Detail       string
	Err          error
}

func (e *UploadError) Error() string {
	if e.RemoteStatus != 0 {
		return fmt.Sprintf("%v (remote status %d): %s", e.Kind, e.RemoteStatus, e.Detail)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
	}
	return e.Kind.Error()
}

func (e *UploadError) Is(target error) bool {
	return target == e.Kind
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
