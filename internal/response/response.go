// Package response provides shared JSON response helpers for HTTP handlers.
// Every helper attaches the CORS headers, so no response path can miss them.
package response

import (
	"net/http"

	"github.com/go-chi/render"
)

// CORS header values sent on every response.
const (
	AllowOrigin  = "*"
	AllowMethods = "GET, POST, DELETE, OPTIONS"
	AllowHeaders = "Content-Type"
)

// Envelope is the failure envelope. Success payloads are handler-defined
// structs that carry their own `success` field next to the payload fields.
type Envelope struct {
	Success          bool     `json:"success"`
	Error            string   `json:"error,omitempty"`
	AvailableActions []string `json:"availableActions,omitempty"`
	Stack            string   `json:"stack,omitempty"`
}

// CORS sets the cross-origin headers on h.
func CORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	CORS(w.Header())
	render.Status(r, status)
	render.JSON(w, r, payload)
}

// Preflight answers an OPTIONS request: 200, CORS headers, no body.
func Preflight(w http.ResponseWriter) {
	CORS(w.Header())
	w.WriteHeader(http.StatusOK)
}

// OK writes a 200 response with payload.
func OK(w http.ResponseWriter, r *http.Request, payload interface{}) {
	JSON(w, r, http.StatusOK, payload)
}

// Fail writes env with the given status, forcing success to false.
func Fail(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	env.Success = false
	JSON(w, r, status, env)
}

// Error writes an error response with the given status and message.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	Fail(w, r, status, Envelope{Error: message})
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusUnauthorized, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusNotFound, message)
}

// InternalError writes a 500 response carrying message.
func InternalError(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusInternalServerError, message)
}
