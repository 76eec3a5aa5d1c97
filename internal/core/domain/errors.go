package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// On delete/unindex paths it is treated as a successful no-op.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTranslationDisabled indicates the administrative kill-switch
	// for translation is set. Surfaced immediately, never retried.
	ErrTranslationDisabled = errors.New("translation disabled")

	// ErrClassificationDisabled indicates the administrative
	// kill-switch for remote language classification is set.
	ErrClassificationDisabled = errors.New("language classification disabled")

	// ErrUnsupportedLanguage indicates a language code outside the
	// configured profile set.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrMissingConfig indicates a required credential or setting is
	// absent at construction time. Fatal at startup, never retried.
	ErrMissingConfig = errors.New("missing configuration")

	// ErrInvalidTerm indicates a glossary term pair failed validation.
	// The specific pair is skipped with a warning; the batch continues.
	ErrInvalidTerm = errors.New("invalid glossary term")
)

// UpstreamError wraps a failure returned by an external provider.
// Transient upstream errors are retried with backoff; permanent ones
// propagate immediately.
type UpstreamError struct {
	// Provider names the failing collaborator (e.g., "deepl", "pinecone").
	Provider string

	// Status is the HTTP status code, or 0 for transport failures.
	Status int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying:
// transport errors, rate limits and server-side errors.
func (e *UpstreamError) Transient() bool {
	if e.Status == 0 {
		return true
	}
	return e.Status == 429 || e.Status >= 500
}

// IsTransient reports whether err is a transient upstream failure.
func IsTransient(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Transient()
	}
	return false
}
