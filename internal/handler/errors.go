package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// errorResponse is the JSON error envelope returned for every failed request.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail carries a stable machine-readable code plus a human message.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeNotFound writes a 404 with a not_found error body.
// The caller supplies the human-readable message (e.g. "record not found")
// because the handler is the layer that knows what was being looked up.
func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, errorResponse{
		Error: errorDetail{Code: "not_found", Message: message},
	})
}

// writeValidation writes a validation_error body with the given status.
// Record payload failures use 422; upload media failures use 400.
func writeValidation(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error: errorDetail{Code: "validation_error", Message: unwrapMessage(err)},
	})
}

// writeBadRequest writes a 422 for requests rejected before reaching the
// service layer (missing or malformed body).
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error: errorDetail{Code: "validation_error", Message: message},
	})
}

// writeInternal logs the failure and writes an opaque 500 body.
// Storage failures are never silently swallowed, but their details stay out
// of the response.
func writeInternal(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: errorDetail{Code: "internal_error", Message: "internal server error"},
	})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.RecordService.Create: validation error: latitude must be
// between -90 and 90" → "latitude must be between -90 and 90".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, "validation error: "); i >= 0 {
		return msg[i+len("validation error: "):]
	}
	return msg
}
