package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents network and non-success status errors
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypePersistence represents store read/write errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeDelivery represents per-subscriber delivery errors
	ErrorTypeDelivery ErrorType = "delivery"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// WatchError represents a pipeline-specific error
type WatchError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *WatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *WatchError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth retrying within a cycle
func (e *WatchError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch:
		return true
	case ErrorTypeRateLimit:
		return false
	case ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// New creates a new WatchError
func New(errType ErrorType, source, message string, err error) *WatchError {
	return &WatchError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(source, message string, err error) *WatchError {
	return New(ErrorTypeFetch, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *WatchError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *WatchError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewPersistence creates a new persistence error
func NewPersistence(source, message string, err error) *WatchError {
	return New(ErrorTypePersistence, source, message, err)
}

// NewDelivery creates a new delivery error
func NewDelivery(source, message string, err error) *WatchError {
	return New(ErrorTypeDelivery, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *WatchError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *WatchError {
	return New(ErrorTypeConfiguration, "", message, err)
}
