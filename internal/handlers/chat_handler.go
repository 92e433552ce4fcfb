package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/models"
	"github.com/ternarybob/legalaid/internal/services/chat"
	"github.com/ternarybob/legalaid/internal/services/transcript"
)

// QueryResolver answers chat queries for a session
type QueryResolver interface {
	Resolve(ctx context.Context, session *models.Session, query string) models.AnswerResult
	Elaborate(ctx context.Context, session *models.Session) (string, error)
}

// LanguageDetector guesses the catalog language of a query
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// ChatHandler handles chat queries and the interaction history
type ChatHandler struct {
	sessions SessionRunner
	resolver QueryResolver
	detector LanguageDetector
	logger   arbor.ILogger
}

// NewChatHandler creates a chat handler. detector may be nil.
func NewChatHandler(sessions SessionRunner, resolver QueryResolver, detector LanguageDetector, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		sessions: sessions,
		resolver: resolver,
		detector: detector,
		logger:   logger,
	}
}

type chatResponse struct {
	Text        string           `json:"text"`
	Source      models.SourceTag `json:"source"`
	OfferDetail bool             `json:"offer_detail"`
	Language    string           `json:"language"`
}

// ChatHandler handles POST /api/chat
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	withSession(w, r, h.sessions, func(s *models.Session) {
		h.detectLanguage(s, req.Query)

		result := h.resolver.Resolve(r.Context(), s, req.Query)

		WriteJSON(w, http.StatusOK, chatResponse{
			Text:        result.Text,
			Source:      result.Source,
			OfferDetail: result.OffersDetail(),
			Language:    s.Language,
		})
	})
}

// detectLanguage switches the session language on its first query when auto detection is on
func (h *ChatHandler) detectLanguage(s *models.Session, query string) {
	if h.detector == nil || !s.AutoLanguage || len(s.Interactions) > 0 {
		return
	}
	if strings.TrimSpace(query) == "" {
		return
	}

	if lang, ok := h.detector.Detect(query); ok && lang != s.Language {
		h.logger.Debug().
			Str("session", s.ID).
			Str("from", s.Language).
			Str("to", lang).
			Msg("Session language detected from query")
		s.Language = lang
	}
}

// DetailHandler handles POST /api/chat/detail - elaborates the last AI answer
func (h *ChatHandler) DetailHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	withSession(w, r, h.sessions, func(s *models.Session) {
		text, err := h.resolver.Elaborate(r.Context(), s)
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, chat.ErrDetailUnavailable) {
				status = http.StatusConflict
			}
			WriteError(w, status, chat.DetailUnavailableMessage)
			return
		}

		WriteJSON(w, http.StatusOK, map[string]string{
			"query": s.LastQuery,
			"text":  text,
		})
	})
}

// HistoryHandler handles GET /api/history - the interaction log in order
func (h *ChatHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	withSession(w, r, h.sessions, func(s *models.Session) {
		interactions := s.Interactions
		if interactions == nil {
			interactions = []models.Interaction{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"session_id":   s.ID,
			"count":        len(interactions),
			"interactions": interactions,
		})
	})
}

// HistoryCSVHandler handles GET /api/history.csv - the interaction log as a download
func (h *ChatHandler) HistoryCSVHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	withSession(w, r, h.sessions, func(s *models.Session) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+transcript.CSVFileName+`"`)
		w.WriteHeader(http.StatusOK)

		if err := transcript.WriteCSV(w, s.Interactions); err != nil {
			h.logger.Error().Err(err).Str("session", s.ID).Msg("Failed to write interaction history")
		}
	})
}
