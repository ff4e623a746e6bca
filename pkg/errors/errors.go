package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents page fetch failures (DNS, timeout, non-2xx)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents a fetch refused because the site rate limited us
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents HTML or selector file parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeStore represents persisted state read/write errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeNotify represents push delivery errors
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PromoError is an error raised somewhere along a monitoring run
type PromoError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PromoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *PromoError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error aborts a run. Only a failed page fetch does.
func (e *PromoError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// IsType reports whether err wraps a PromoError of the given type
func IsType(err error, errType ErrorType) bool {
	var pe *PromoError
	if stderrors.As(err, &pe) {
		return pe.Type == errType
	}
	return false
}

// New creates a new PromoError
func New(errType ErrorType, source, message string, err error) *PromoError {
	return &PromoError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *PromoError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *PromoError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *PromoError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewStore creates a new store error
func NewStore(source, message string, err error) *PromoError {
	return New(ErrorTypeStore, source, message, err)
}

// NewNotify creates a new notification error
func NewNotify(source, message string, err error) *PromoError {
	return New(ErrorTypeNotify, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PromoError {
	return New(ErrorTypeConfiguration, "config", message, err)
}
