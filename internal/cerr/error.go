package cerr

import "fmt"

// ConceptError is the structured error type threaded through every package.
type ConceptError struct {
	Code       string
	Kind       Kind
	Category   Category
	Severity   Severity
	Message    string
	Details    map[string]string
	Cause      error
	Retryable  bool
	Suggestion string
}

func (e *ConceptError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ConceptError) Unwrap() error {
	return e.Cause
}

func (e *ConceptError) Is(target error) bool {
	t, ok := target.(*ConceptError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail attaches a key-value detail and returns the receiver.
func (e *ConceptError) WithDetail(key, value string) *ConceptError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion attaches an actionable hint, e.g. didYouMean text.
func (e *ConceptError) WithSuggestion(s string) *ConceptError {
	e.Suggestion = s
	return e
}

// New builds a ConceptError from a code; category/kind/severity/retryable
// are derived from the code bucket.
func New(code, message string, cause error) *ConceptError {
	return &ConceptError{
		Code:      code,
		Kind:      kindFromCode(code),
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Message:   message,
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap promotes a plain error to a ConceptError under the given code.
func Wrap(code string, err error) *ConceptError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound builds a §7 NotFound error — never logged as an error, just
// surfaced as an empty result or None by the caller.
func NotFound(message string) *ConceptError {
	return New(ErrCodeNotFound, message, nil)
}

// Validation builds a §7 Validation error — rejected at the tool boundary,
// never retried.
func Validation(message string, cause error) *ConceptError {
	return New(ErrCodeInvalidQuery, message, cause)
}

// TransientStore builds a retryable store I/O error.
func TransientStore(message string, cause error) *ConceptError {
	return New(ErrCodeTransientStore, message, cause)
}

// Fatal builds a §7 Fatal error — a schema invariant violation, corrupt row,
// or dimension mismatch. Not retried; the caller should mark itself
// unhealthy for the process lifetime.
func Fatal(code, message string, cause error) *ConceptError {
	e := New(code, message, cause)
	e.Severity = SeverityFatal
	e.Kind = KindFatal
	e.Retryable = false
	return e
}

// CircuitOpen builds the error returned when a circuit is open.
func CircuitOpen(name string) *ConceptError {
	return New(ErrCodeCircuitOpen, fmt.Sprintf("circuit %q is open", name), nil)
}

// BulkheadRejected builds the error returned when the bulkhead queue is full.
func BulkheadRejected(name string) *ConceptError {
	return New(ErrCodeBulkheadFull, fmt.Sprintf("bulkhead %q is full", name), nil)
}

// TimeoutError builds the error returned when an operation times out.
func TimeoutError(name string) *ConceptError {
	return New(ErrCodeTimeout, fmt.Sprintf("operation %q timed out", name), nil)
}

// IsRetryable reports whether err is a ConceptError marked retryable.
func IsRetryable(err error) bool {
	if ce, ok := err.(*ConceptError); ok {
		return ce.Retryable
	}
	return false
}

// IsFatal reports whether err is a ConceptError of Fatal severity.
func IsFatal(err error) bool {
	if ce, ok := err.(*ConceptError); ok {
		return ce.Severity == SeverityFatal
	}
	return false
}

// KindOf extracts the §7 Kind, defaulting to Fatal for unrecognized errors.
func KindOf(err error) Kind {
	if ce, ok := err.(*ConceptError); ok {
		return ce.Kind
	}
	return KindFatal
}

// CodeOf extracts the error code, or "" if err is not a ConceptError.
func CodeOf(err error) string {
	if ce, ok := err.(*ConceptError); ok {
		return ce.Code
	}
	return ""
}
