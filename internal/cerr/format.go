package cerr

import "encoding/json"

// ToolPayload is the machine-readable error shape returned to MCP callers:
// isError is set, and error_kind/message/didYouMean ride alongside it per §7.
type ToolPayload struct {
	ErrorKind   string            `json:"error_kind"`
	Message     string            `json:"message"`
	Code        string            `json:"code,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	DidYouMean  []string          `json:"didYouMean,omitempty"`
}

// ToToolPayload converts any error into the tool-facing error payload.
func ToToolPayload(err error, didYouMean []string) ToolPayload {
	if err == nil {
		return ToolPayload{}
	}
	ce, ok := err.(*ConceptError)
	if !ok {
		return ToolPayload{ErrorKind: string(KindFatal), Message: err.Error(), DidYouMean: didYouMean}
	}
	return ToolPayload{
		ErrorKind:  string(ce.Kind),
		Message:    ce.Message,
		Code:       ce.Code,
		Details:    ce.Details,
		DidYouMean: didYouMean,
	}
}

// ForLog flattens a ConceptError into slog-friendly key/value attributes.
func ForLog(err error) []any {
	if err == nil {
		return nil
	}
	ce, ok := err.(*ConceptError)
	if !ok {
		return []any{"error", err.Error()}
	}
	attrs := []any{
		"error_code", ce.Code,
		"error_kind", string(ce.Kind),
		"category", string(ce.Category),
		"severity", string(ce.Severity),
		"retryable", ce.Retryable,
		"message", ce.Message,
	}
	if ce.Cause != nil {
		attrs = append(attrs, "cause", ce.Cause.Error())
	}
	for k, v := range ce.Details {
		attrs = append(attrs, "detail_"+k, v)
	}
	return attrs
}

// MarshalJSON lets a ConceptError be JSON-encoded directly (e.g. in a
// checkpoint failedFiles report or CLI --json output).
func (e *ConceptError) MarshalJSON() ([]byte, error) {
	type wire struct {
		Code       string            `json:"code"`
		Kind       string            `json:"kind"`
		Category   string            `json:"category"`
		Severity   string            `json:"severity"`
		Message    string            `json:"message"`
		Details    map[string]string `json:"details,omitempty"`
		Suggestion string            `json:"suggestion,omitempty"`
		Retryable  bool              `json:"retryable"`
		Cause      string            `json:"cause,omitempty"`
	}
	w := wire{
		Code:       e.Code,
		Kind:       string(e.Kind),
		Category:   string(e.Category),
		Severity:   string(e.Severity),
		Message:    e.Message,
		Details:    e.Details,
		Suggestion: e.Suggestion,
		Retryable:  e.Retryable,
	}
	if e.Cause != nil {
		w.Cause = e.Cause.Error()
	}
	return json.Marshal(w)
}
