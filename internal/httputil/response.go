// Package httputil holds shared JSON response helpers for the API surface.
package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorBody is the fixed error shape returned on every non-success response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode json response: %v", err)
	}
}

// WriteJSONError writes the error shape with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, msg, details string) {
	WriteJSON(w, status, ErrorBody{Error: msg, Details: details})
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter, details string) {
	WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed", details)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, details string) {
	WriteJSONError(w, http.StatusNotFound, "Endpoint not found", details)
}

// InternalServerError writes a 500 Internal Server Error response.
func InternalServerError(w http.ResponseWriter, msg, details string) {
	WriteJSONError(w, http.StatusInternalServerError, msg, details)
}
