// Package shared holds the JSON response helpers used by every HTTP handler.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "domainly/pkg/domainerrors"
)

// ErrorResponse is the JSON error body returned at the request boundary.
// Fields is present only when the registrar returned field-level detail.
type ErrorResponse struct {
	Error  string `json:"error"`
	Fields any    `json:"fields,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError converts a coded error into the JSON error body, echoing the
// upstream provider's message and field detail when present.
func WriteError(w http.ResponseWriter, err error) {
	e := dErrors.From(err)
	WriteJSON(w, dErrors.HTTPStatus(e), ErrorResponse{Error: e.Message, Fields: e.Fields})
}
