// Package response writes JSON bodies and the uniform error envelope.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// internalErrorJSON is written when a body cannot be marshaled.
const internalErrorJSON = `{"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred","details":[]}}`

// write marshals data before touching the response so an encoding failure
// still yields a 500 with a JSON body.
func write(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to encode response body", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(internalErrorJSON))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body = append(body, '\n')
	if _, err := w.Write(body); err != nil {
		slog.Error("Failed to write response body", "error", err)
	}
}

// OK sends a 200 OK response with JSON data.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, data)
}

// Created sends a 201 Created response with JSON data.
func Created(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, data)
}
