// Package errors provides structured error handling for docarc.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Archive and document errors (not found, malformed)
//   - 3XX: Embedding provider errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryNotFound indicates a missing archive, symbol, or article.
	// These surface to the adapter as empty results, never as crashes.
	CategoryNotFound Category = "NOT_FOUND"
	// CategoryIO indicates unreadable roots, directories, or index files.
	CategoryIO Category = "IO"
	// CategoryMalformed indicates unparsable document or index JSON.
	CategoryMalformed Category = "MALFORMED"
	// CategoryUnavailable indicates the embedding provider is not loaded.
	CategoryUnavailable Category = "UNAVAILABLE"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort the operation.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the process can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Archive and document errors (200-299)
	ErrCodeArchiveNotFound   = "ERR_201_ARCHIVE_NOT_FOUND"
	ErrCodeSymbolNotFound    = "ERR_202_SYMBOL_NOT_FOUND"
	ErrCodeArticleNotFound   = "ERR_203_ARTICLE_NOT_FOUND"
	ErrCodeRootUnreadable    = "ERR_204_ROOT_UNREADABLE"
	ErrCodeDocumentMalformed = "ERR_205_DOCUMENT_MALFORMED"
	ErrCodeIndexCorrupt      = "ERR_206_INDEX_CORRUPT"
	ErrCodeIndexLocked       = "ERR_207_INDEX_LOCKED"

	// Embedding provider errors (300-399)
	ErrCodeModelNotLoaded   = "ERR_301_MODEL_NOT_LOADED"
	ErrCodeEmbeddingFailed  = "ERR_302_EMBEDDING_FAILED"
	ErrCodeModelUnreachable = "ERR_303_MODEL_UNREACHABLE"
	ErrCodeModelMismatch    = "ERR_304_MODEL_MISMATCH"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeQueryEmpty   = "ERR_402_QUERY_EMPTY"
	ErrCodeInvalidPath  = "ERR_403_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeSearchFailed = "ERR_502_SEARCH_FAILED"
	ErrCodeIndexFailed  = "ERR_503_INDEX_FAILED"
	ErrCodeSaveFailed   = "ERR_504_SAVE_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	switch code {
	case ErrCodeArchiveNotFound, ErrCodeSymbolNotFound, ErrCodeArticleNotFound:
		return CategoryNotFound
	case ErrCodeDocumentMalformed, ErrCodeIndexCorrupt:
		return CategoryMalformed
	case ErrCodeModelNotLoaded, ErrCodeModelUnreachable:
		return CategoryUnavailable
	}

	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract the leading digit of the numeric portion
	// (e.g. "1" from "ERR_101_CONFIG_NOT_FOUND").
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryUnavailable
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	// Model-not-loaded is the one condition a caller must treat as fatal to
	// the current operation: no retry, no reload.
	case ErrCodeModelNotLoaded, ErrCodeModelMismatch:
		return SeverityFatal
	// Per-file and per-root failures degrade a batch, never abort it.
	case ErrCodeDocumentMalformed, ErrCodeRootUnreadable, ErrCodeSaveFailed:
		return SeverityWarning
	}
	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeEmbeddingFailed, ErrCodeModelUnreachable:
		return true
	default:
		return false
	}
}
