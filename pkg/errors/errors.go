// Package errors defines the sentinel errors shared by the index builders,
// the query engine and the persistence layer, plus an AppError type that
// attaches a caller-facing message and HTTP status to a sentinel.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTermNotFound          = errors.New("term not found")
	ErrEmptyQuery            = errors.New("empty query")
	ErrMissingStatistics     = errors.New("corpus statistics not available")
	ErrZeroDocumentFrequency = errors.New("zero document frequency")
	ErrUnsupportedVariant    = errors.New("unsupported index variant")
	ErrIndexNotLoaded        = errors.New("index not loaded")
	ErrCorruptIndex          = errors.New("corrupt index")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInternal              = errors.New("internal error")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// TermNotFound reports a term absent from the index.
func TermNotFound(term string) *AppError {
	return Newf(ErrTermNotFound, http.StatusNotFound, "%q", term)
}

// ZeroDocumentFrequency reports a BM25 term that no document contains.
func ZeroDocumentFrequency(term string) *AppError {
	return Newf(ErrZeroDocumentFrequency, http.StatusNotFound, "%q appears in no document", term)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrTermNotFound), errors.Is(err, ErrZeroDocumentFrequency):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyQuery), errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnsupportedVariant):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingStatistics), errors.Is(err, ErrIndexNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
