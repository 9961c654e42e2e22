package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type rateLimitError struct {
	retryable bool
}

func (e *rateLimitError) Error() string { return "rate limited" }

type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

type serverError struct {
	statusCode int
	body       string
}

func (e *serverError) Error() string {
	return "server error: " + e.body
}

// MissingCredentialError reports that no API key could be resolved for a
// provider. It is raised before any review work starts so a misconfigured
// run fails fast instead of mid-batch.
type MissingCredentialError struct {
	Provider Provider
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no API key for %s: set it in the config file or the %s environment variable",
		e.Provider, e.Provider.EnvKey())
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	if errors.As(err, &ae) {
		return true
	}
	var mce *MissingCredentialError
	return errors.As(err, &mce)
}

// IsMissingCredential checks if an error is a missing-credential error.
func IsMissingCredential(err error) bool {
	var mce *MissingCredentialError
	return errors.As(err, &mce)
}

func isRetryable(err error) bool {
	var rle *rateLimitError
	if errors.As(err, &rle) {
		return true
	}
	var se *serverError
	return errors.As(err, &se)
}

func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
