package api

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// RecordSessionRequest is the body of POST /api/sessions. StartedAt defaults
// to the current time.
type RecordSessionRequest struct {
	StartedAt string  `json:"started_at"`
	Duration  int64   `json:"duration"`
	GameID    string  `json:"game_id"`
	GameName  string  `json:"game_name"`
	Source    *string `json:"source,omitempty"`
}

// ManualTotalRequest is the body of PUT /api/games/{id}/total. Source defaults
// to the configured manual source tag.
type ManualTotalRequest struct {
	At       string `json:"at"`
	GameName string `json:"game_name"`
	Total    int64  `json:"total"`
	Source   string `json:"source"`
}

type ManualTotalResponse struct {
	GameID string `json:"game_id"`
	Total  int64  `json:"total"`
	Delta  int64  `json:"delta"`
}

// Config holds the API server configuration.
type Config struct {
	ListenAddr   string
	DefaultDays  int
	ManualSource string
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, `{"error":"Internal Server Error","message":"Failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}
