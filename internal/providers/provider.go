package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharmasatrya/flightproxy/internal/models"
)

var ErrMissingCredentials = errors.New("API key not configured")

// RawResponse is the provider payload decoded without a schema. The normalizer reads it field by field.
type RawResponse map[string]any

type Provider interface {
	Name() string
	Search(ctx context.Context, q models.TripQuery) (RawResponse, error)
	Airports(ctx context.Context, query string) ([]models.Airport, error)
}

// StatusError is a non-success response from the provider.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

type ProviderError struct {
	Provider string
	Err      error
	// Transient marks network failures that are worth another attempt.
	Transient bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}
