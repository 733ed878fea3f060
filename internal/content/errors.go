package content

import (
	"errors"
	"fmt"
)

// ConfigurationError reports missing or invalid adapter configuration.
// It is returned before any network call is attempted.
type ConfigurationError struct {
	Source string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Source, e.Field, e.Reason)
}

// FetchError reports a network failure or a non-OK response from a backend.
type FetchError struct {
	Source     string
	StatusCode int
	// Reason is a user-facing explanation, when the adapter has one.
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Reason)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned HTTP %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s: fetch failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a malformed listing, such as a spreadsheet that lacks
// a required column.
type ParseError struct {
	Source string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrItemNotFound is returned when a render failure names an unknown item.
var ErrItemNotFound = errors.New("item not found")

// RenderFailure records that an item's preview failed to load on a client.
type RenderFailure struct {
	ItemID      string
	Placeholder Placeholder
}

func (e *RenderFailure) Error() string {
	return fmt.Sprintf("preview for %s failed, showing %s", e.ItemID, e.Placeholder)
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsFetch reports whether err is a FetchError.
func IsFetch(err error) bool {
	var target *FetchError
	return errors.As(err, &target)
}

// IsParse reports whether err is a ParseError.
func IsParse(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}
