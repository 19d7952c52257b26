package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vanishmail/internal/domain"
)

// Envelope is the generic response wrapper: {success, message, data?, error?}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// AuthData wraps login/signup responses.
type AuthData struct {
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
	Warning string       `json:"warning,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg interface{}) {
	writeJSON(w, status, Envelope{Success: false, Error: msg})
}
