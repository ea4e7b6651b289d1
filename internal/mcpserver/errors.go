package mcpserver

import (
	"encoding/json"

	"github.com/concept-rag/conceptrag/internal/cerr"
)

// toolError wraps a domain error into the tool-facing payload shape §7
// mandates (error_kind, message, code, didYouMean), serialized as the
// error's message text. The go-sdk AddTool handler contract only carries a
// plain error back to the caller (mirroring a comparable implementation's MCPError, which
// does the same), so the structured payload rides inside Error() rather
// than a side channel.
type toolError struct {
	payload cerr.ToolPayload
}

func (e *toolError) Error() string {
	b, err := json.Marshal(e.payload)
	if err != nil {
		return e.payload.Message
	}
	return string(b)
}

// newToolError converts any error into a toolError, attaching didYouMean
// suggestions when the caller has them (category/concept "not found" paths).
func newToolError(err error, didYouMean []string) error {
	if err == nil {
		return nil
	}
	return &toolError{payload: cerr.ToToolPayload(err, didYouMean)}
}

// notFoundError builds a toolError directly from a NotFound message, for
// lookups that fail before reaching a lower-level cerr.ConceptError (e.g. a
// category resolve that simply returns found=false).
func notFoundError(message string, didYouMean []string) error {
	return newToolError(cerr.NotFound(message), didYouMean)
}
