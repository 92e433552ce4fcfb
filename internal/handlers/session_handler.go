package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/models"
	"github.com/ternarybob/legalaid/internal/services/i18n"
)

// SessionRegistry is the subset of the session registry used over HTTP
type SessionRegistry interface {
	SessionRunner
	Create(displayName, language string) *models.Session
	Delete(id string)
}

// SessionHandler handles display-name login and language preference
type SessionHandler struct {
	sessions   SessionRegistry
	catalog    *i18n.Catalog
	autoDetect bool
	logger     arbor.ILogger
}

// NewSessionHandler creates a session handler. autoDetect is the default for new sessions.
func NewSessionHandler(sessions SessionRegistry, catalog *i18n.Catalog, autoDetect bool, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		catalog:    catalog,
		autoDetect: autoDetect,
		logger:     logger,
	}
}

type sessionResponse struct {
	SessionID    string `json:"session_id"`
	DisplayName  string `json:"display_name"`
	Language     string `json:"language"`
	AutoLanguage bool   `json:"auto_language"`
	Welcome      string `json:"welcome"`
	Prompt       string `json:"prompt"`
}

func (h *SessionHandler) describe(s *models.Session) sessionResponse {
	welcome := h.catalog.Text(s.Language, i18n.KeyWelcome)
	if s.DisplayName != "" {
		welcome += ", " + s.DisplayName
	}
	return sessionResponse{
		SessionID:    s.ID,
		DisplayName:  s.DisplayName,
		Language:     s.Language,
		AutoLanguage: s.AutoLanguage,
		Welcome:      welcome,
		Prompt:       h.catalog.Text(s.Language, i18n.KeyAskQuery),
	}
}

// CreateSessionHandler handles POST /api/session - display-name login
func (h *SessionHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		DisplayName  string `json:"display_name"`
		Language     string `json:"language"`
		AutoLanguage *bool  `json:"auto_language"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.DisplayName) == "" {
		WriteError(w, http.StatusBadRequest, "Display name is required")
		return
	}
	if req.Language != "" && !h.catalog.Has(req.Language) {
		WriteError(w, http.StatusBadRequest, "Unsupported language")
		return
	}

	s := h.sessions.Create(req.DisplayName, req.Language)
	s.AutoLanguage = h.autoDetect
	if req.AutoLanguage != nil {
		s.AutoLanguage = *req.AutoLanguage
	}

	WriteJSON(w, http.StatusCreated, h.describe(s))
}

// DeleteSessionHandler handles DELETE /api/session - logout
func (h *SessionHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	id := SessionID(r)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Missing session id")
		return
	}
	h.sessions.Delete(id)
	h.logger.Debug().Str("session", id).Msg("Session deleted")
	WriteSuccess(w, "Session ended")
}

// LanguageHandler handles PUT /api/session/language
func (h *SessionHandler) LanguageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "PUT") {
		return
	}

	var req struct {
		Language string `json:"language"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.catalog.Has(req.Language) {
		WriteError(w, http.StatusBadRequest, "Unsupported language")
		return
	}

	withSession(w, r, h.sessions, func(s *models.Session) {
		s.Language = req.Language
		// an explicit choice stops auto detection for the session
		s.AutoLanguage = false

		h.logger.Debug().Str("session", s.ID).Str("language", s.Language).Msg("Session language changed")
		WriteJSON(w, http.StatusOK, h.describe(s))
	})
}

// LanguagesHandler handles GET /api/languages
func (h *SessionHandler) LanguagesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"default":   i18n.DefaultLanguage,
		"languages": h.catalog.Languages(),
	})
}
