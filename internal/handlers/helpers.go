package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/legalaid/internal/models"
	"github.com/ternarybob/legalaid/internal/services/session"
)

// SessionHeader carries the session id returned by POST /api/session
const SessionHeader = "X-Session-ID"

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// SessionID extracts the session id from the X-Session-ID header or the "session" query parameter
func SessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("session"))
}

// SessionRunner gives exclusive access to one session
type SessionRunner interface {
	Do(id string, fn func(*models.Session) error) error
}

// withSession runs fn while holding the request's session. Missing or unknown
// sessions are answered here; fn writes its own response.
func withSession(w http.ResponseWriter, r *http.Request, sessions SessionRunner, fn func(*models.Session)) {
	id := SessionID(r)
	if id == "" {
		WriteError(w, http.StatusUnauthorized, "Missing session id. Log in via POST /api/session first.")
		return
	}

	err := sessions.Do(id, func(s *models.Session) error {
		fn(s)
		return nil
	})
	if errors.Is(err, session.ErrSessionNotFound) {
		WriteError(w, http.StatusNotFound, "Session not found")
	}
}

// decodeJSON decodes the request body into v, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
