package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network, timeout and HTTP-layer errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeConfiguration represents configuration and config sheet errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeSheet represents output sheet errors
	ErrorTypeSheet ErrorType = "sheet"
	// ErrorTypeRecorder represents errors of the optional row recorders
	ErrorTypeRecorder ErrorType = "recorder"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
)

// PriceError represents an error raised while checking prices
type PriceError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PriceError) Error() string {
	if e.Source == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *PriceError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error must abort the whole run.
// Only access to the external sheets is fatal; per-URL errors are recovered.
func (e *PriceError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeConfiguration, ErrorTypeSheet:
		return true
	default:
		return false
	}
}

// Is reports whether any error in err's chain is a PriceError of the given type
func Is(err error, errType ErrorType) bool {
	var pe *PriceError
	if errors.As(err, &pe) {
		return pe.Type == errType
	}
	return false
}

// IsFatal reports whether err carries a fatal PriceError
func IsFatal(err error) bool {
	var pe *PriceError
	if errors.As(err, &pe) {
		return pe.IsFatal()
	}
	return false
}

// New creates a new PriceError
func New(errType ErrorType, source, message string, err error) *PriceError {
	return &PriceError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *PriceError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *PriceError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PriceError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewSheet creates a new sheet error
func NewSheet(sheet, message string, err error) *PriceError {
	return New(ErrorTypeSheet, sheet, message, err)
}

// NewRecorder creates a new recorder error
func NewRecorder(recorder, message string, err error) *PriceError {
	return New(ErrorTypeRecorder, recorder, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *PriceError {
	return New(ErrorTypeValidation, source, message, nil)
}
