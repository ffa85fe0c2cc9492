package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteJSON encodes v before touching the response, so an encoding failure
// still produces a clean 500 instead of a truncated body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode JSON", "error", err)
		body = []byte(`{"error":"Internal Server Error","message":"failed to encode response"}`)
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

// WriteError writes the error envelope shared by every route. msg is shown to
// clients, so callers pass a fixed description and log the cause separately.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": msg,
	})
}

func WriteText(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write text", "error", err)
	}
}
