package middleware

import (
	"encoding/json"
	"net/http"
)

// Response is the JSON envelope of every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// RespondError sends a failed envelope
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Response{Success: false, Error: message})
}

// StatusRecorder captures the status code written by a handler
type StatusRecorder struct {
	http.ResponseWriter
	StatusCode int
}

// NewStatusRecorder wraps w with a default status of 200
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (rw *StatusRecorder) WriteHeader(code int) {
	rw.StatusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *StatusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
