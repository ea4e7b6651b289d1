// Package cerr provides the structured error type shared by every package in
// conceptrag. Errors carry a code, category, severity, retryability and an
// optional user-facing suggestion so that callers at the tool boundary (see
// internal/mcpserver) can render the taxonomy from §7 without
// re-deriving it from a bare error string.
//
// Codes follow ERR_XXX_DESCRIPTION where the leading digit buckets the
// category:
//
//	1xx config, 2xx IO, 3xx transient/network, 4xx validation, 5xx internal.
package cerr

// Category classifies an error for logging and metrics.
type Category string

const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryTransient  Category = "TRANSIENT"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
)

// Severity is how urgently an operator should care.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Kind is the §7 error taxonomy, independent of the numeric code bucket.
type Kind string

const (
	KindNotFound           Kind = "NotFound"
	KindValidation         Kind = "Validation"
	KindTransientIO        Kind = "TransientIO"
	KindCircuitBreakerOpen Kind = "CircuitBreakerOpen"
	KindBulkheadRejection  Kind = "BulkheadRejection"
	KindTimeout            Kind = "Timeout"
	KindFatal              Kind = "Fatal"
)

// Error codes, bucketed the way the prior implementation buckets its own (ERR_1xx..5xx).
const (
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"
	ErrCodeConfigMissing = "ERR_102_CONFIG_MISSING"

	ErrCodeStoreIO        = "ERR_201_STORE_IO"
	ErrCodeCheckpointIO   = "ERR_202_CHECKPOINT_IO"
	ErrCodeCorruptRow     = "ERR_203_CORRUPT_ROW"
	ErrCodeStageCacheIO   = "ERR_204_STAGE_CACHE_IO"

	ErrCodeTransientStore = "ERR_301_TRANSIENT_STORE"
	ErrCodeTransientLLM   = "ERR_302_TRANSIENT_LLM"
	ErrCodeCircuitOpen    = "ERR_303_CIRCUIT_OPEN"
	ErrCodeBulkheadFull   = "ERR_304_BULKHEAD_FULL"
	ErrCodeTimeout        = "ERR_305_TIMEOUT"

	ErrCodeInvalidQuery       = "ERR_401_INVALID_QUERY"
	ErrCodeDimensionMismatch  = "ERR_402_DIMENSION_MISMATCH"
	ErrCodeInvalidPredicate   = "ERR_403_INVALID_PREDICATE"
	ErrCodeNotFound           = "ERR_404_NOT_FOUND"

	ErrCodeInternal          = "ERR_501_INTERNAL"
	ErrCodeEmbeddingFailed   = "ERR_502_EMBEDDING_FAILED"
	ErrCodeSchemaInvariant   = "ERR_503_SCHEMA_INVARIANT"
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
		return CategoryTransient
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

func kindFromCode(code string) Kind {
	switch code {
	case ErrCodeNotFound:
		return KindNotFound
	case ErrCodeInvalidQuery, ErrCodeDimensionMismatch, ErrCodeInvalidPredicate:
		return KindValidation
	case ErrCodeTransientStore, ErrCodeTransientLLM, ErrCodeStoreIO, ErrCodeStageCacheIO:
		return KindTransientIO
	case ErrCodeCircuitOpen:
		return KindCircuitBreakerOpen
	case ErrCodeBulkheadFull:
		return KindBulkheadRejection
	case ErrCodeTimeout:
		return KindTimeout
	case ErrCodeCorruptRow, ErrCodeSchemaInvariant:
		return KindFatal
	default:
		return KindFatal
	}
}

func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeCorruptRow, ErrCodeSchemaInvariant, ErrCodeDimensionMismatch:
		return SeverityFatal
	case ErrCodeTransientStore, ErrCodeTransientLLM, ErrCodeCircuitOpen, ErrCodeBulkheadFull, ErrCodeTimeout:
		return SeverityWarning
	case ErrCodeNotFound:
		return SeverityInfo
	default:
		return SeverityError
	}
}

func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeTransientStore, ErrCodeTransientLLM, ErrCodeTimeout:
		return true
	default:
		return false
	}
}
