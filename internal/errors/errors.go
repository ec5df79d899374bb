package errors

import (
	stderrors "errors"
	"fmt"
)

// SiteError is the coded error type used across sitesearch.
type SiteError struct {
	Code       string
	Message    string
	Category   Category
	Severity   Severity
	Details    map[string]string
	Cause      error
	Retryable  bool
	Suggestion string
}

func (e *SiteError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *SiteError) Unwrap() error {
	return e.Cause
}

// Is matches another *SiteError by code, so sentinel-style comparisons
// work through errors.Is.
func (e *SiteError) Is(target error) bool {
	t, ok := target.(*SiteError)
	return ok && e.Code == t.Code
}

// WithDetail attaches a key/value pair and returns e.
func (e *SiteError) WithDetail(key, value string) *SiteError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the hint shown by FormatForCLI.
func (e *SiteError) WithSuggestion(s string) *SiteError {
	e.Suggestion = s
	return e
}

// WithRetryable overrides the retry flag derived from the code.
func (e *SiteError) WithRetryable(retryable bool) *SiteError {
	e.Retryable = retryable
	return e
}

// New creates a SiteError. Category, severity and the retry flag are
// derived from code.
func New(code, message string, cause error) *SiteError {
	return &SiteError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap turns err into a SiteError carrying err's message. Returns nil for
// a nil err.
func Wrap(code string, err error) *SiteError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError reports an invalid configuration value.
func ConfigError(message string, cause error) *SiteError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError reports bad caller input.
func ValidationError(message string, cause error) *SiteError {
	return New(ErrCodeInvalidInput, message, cause)
}

// As returns the first SiteError in err's chain.
func As(err error) (*SiteError, bool) {
	var se *SiteError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsRetryable reports whether err (or anything it wraps) is a retryable
// SiteError.
func IsRetryable(err error) bool {
	se, ok := As(err)
	return ok && se.Retryable
}

// IsFatal reports whether err carries fatal severity.
func IsFatal(err error) bool {
	se, ok := As(err)
	return ok && se.Severity == SeverityFatal
}

// GetCode returns the code of the first SiteError in err's chain, or "".
func GetCode(err error) string {
	if se, ok := As(err); ok {
		return se.Code
	}
	return ""
}
