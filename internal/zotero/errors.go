package zotero

import (
	"errors"
	"fmt"
)

// Common errors returned by the Zotero client.
var (
	// ErrNotFound indicates the item was not found.
	ErrNotFound = errors.New("not found in Zotero")

	// ErrAuthError indicates a missing or invalid API key.
	ErrAuthError = errors.New("Zotero authentication error")

	// ErrRateLimited indicates the server asked us to back off.
	ErrRateLimited = errors.New("Zotero rate limit exceeded")

	// ErrNetworkError indicates the request never got a response.
	ErrNetworkError = errors.New("network error communicating with Zotero")

	// ErrInvalidResponse indicates an unexpected response body.
	ErrInvalidResponse = errors.New("invalid response from Zotero")
)

// UploadError is a non-2xx response from the Zotero API.
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("Zotero API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a missing item.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var upErr *UploadError
	if errors.As(err, &upErr) {
		return upErr.StatusCode == 404
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var upErr *UploadError
	if errors.As(err, &upErr) {
		return upErr.StatusCode == 401 || upErr.StatusCode == 403
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var upErr *UploadError
	if errors.As(err, &upErr) {
		return upErr.StatusCode == 429
	}
	return false
}

// IsNetworkError returns true if the request failed before a response.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetworkError)
}
