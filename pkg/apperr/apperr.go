// Package apperr holds the error kinds shared by the document, export and
// grammar services. Callers match them with errors.Is and errors.As; only
// the message crosses the HTTP and CLI boundary.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNoFile           = errors.New("no file selected")
	ErrInvalidPath      = errors.New("path validation failed")
	ErrInvalidExtension = errors.New("invalid file extension: expected .manjaword.json")
	ErrPathUnavailable  = errors.New("application data path unavailable")
	ErrUnavailable      = errors.New("grammar service unavailable")
)

// DeserializationError reports stored bytes that are not a valid document envelope.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return "malformed document: " + e.Err.Error()
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// SerializationError reports a payload that could not be encoded.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return "json error: " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error { return e.Err }

// FormatError reports a failure while rendering an export format.
type FormatError struct {
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	return e.Format + " error: " + e.Err.Error()
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsNoFile reports whether err means the user dismissed a file dialog.
func IsNoFile(err error) bool {
	return errors.Is(err, ErrNoFile)
}

// StatusCode maps an error to the HTTP status returned to the UI.
func StatusCode(err error) int {
	var deser *DeserializationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNoFile),
		errors.Is(err, ErrInvalidPath),
		errors.Is(err, ErrInvalidExtension):
		return http.StatusBadRequest
	case errors.As(err, &deser):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
