// Package errors provides coded errors for sitesearch.
//
// Codes follow the pattern ERR_XXX_DESCRIPTION where the first digit
// selects the category:
//   - 1XX: configuration
//   - 2XX: index resource (files, parsing)
//   - 3XX: network
//   - 4XX: validation
//   - 5XX: internal
package errors

// Category groups error codes.
type Category string

const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryNetwork    Category = "NETWORK"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
)

// Severity tells callers whether they can keep going.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

const (
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	ErrCodeIndexNotFound = "ERR_201_INDEX_NOT_FOUND"
	ErrCodeIndexRead     = "ERR_202_INDEX_READ"
	ErrCodeIndexFormat   = "ERR_205_INDEX_FORMAT"
	ErrCodeIndexParse    = "ERR_206_INDEX_PARSE"

	ErrCodeIndexFetch  = "ERR_301_INDEX_FETCH"
	ErrCodeIndexStatus = "ERR_302_INDEX_STATUS"

	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeQueryEmpty   = "ERR_404_QUERY_EMPTY"
	ErrCodeInvalidURL   = "ERR_406_INVALID_URL"

	ErrCodeInternal       = "ERR_501_INTERNAL"
	ErrCodeNavigateFailed = "ERR_502_NAVIGATE_FAILED"
)

func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

func severityFromCode(code string) Severity {
	if code == ErrCodeConfigInvalid {
		return SeverityFatal
	}
	if isRetryableCode(code) {
		return SeverityWarning
	}
	return SeverityError
}

// Fetch failures and 5xx statuses are worth another attempt; a 404 is not,
// but the loader decides that from the status it saw.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeIndexFetch, ErrCodeIndexStatus:
		return true
	default:
		return false
	}
}
