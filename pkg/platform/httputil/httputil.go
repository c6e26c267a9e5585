// Package httputil centralizes JSON response writing and request decoding so
// every handler speaks the same envelope.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "luckydraw/pkg/domainerrors"
)

// Envelope is the response shape for every JSON endpoint:
// {success, code?, message?, data?}. Code carries the stable machine-readable
// error kind; data is present only on success.
type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// WriteJSON writes a success envelope with the given payload.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// WriteError translates a domain error into a failure envelope. Internal
// error details never reach the caller; everything else surfaces its coded
// kind and message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(Envelope{
		Success: false,
		Code:    string(code),
		Message: dErrors.MessageOf(err),
	})
}

// Decode parses a JSON request body into dst, rejecting unknown fields so
// callers get an explicit error instead of silently dropped input.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
