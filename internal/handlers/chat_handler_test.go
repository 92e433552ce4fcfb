package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/models"
	"github.com/ternarybob/legalaid/internal/services/chat"
	"github.com/ternarybob/legalaid/internal/services/i18n"
	"github.com/ternarybob/legalaid/internal/services/patterns"
	"github.com/ternarybob/legalaid/internal/services/session"
)

type stubAnswers struct {
	text        string
	err         error
	detailed    string
	detailErr   error
	detailQuery string
}

func (s *stubAnswers) Answer(context.Context, string) (string, error) {
	return s.text, s.err
}

func (s *stubAnswers) DetailedAnswer(_ context.Context, query string) (string, error) {
	s.detailQuery = query
	return s.detailed, s.detailErr
}

type stubDetector struct {
	language string
	calls    int
}

func (d *stubDetector) Detect(string) (string, bool) {
	d.calls++
	return d.language, d.language != ""
}

var testRules = []models.PatternRule{
	{Pattern: "Section 302", Response: "Section 302 IPC prescribes the punishment for murder."},
}

func newTestChatHandler(registry *session.Registry, answers *stubAnswers, detector LanguageDetector) *ChatHandler {
	logger := arbor.NewLogger()
	resolver := chat.NewResolver(
		answers,
		patterns.NewStoreFromRules(testRules, logger),
		nil,
		i18n.MustCatalog(),
		logger,
	)
	return NewChatHandler(registry, resolver, detector, logger)
}

func TestChatHandler_PatternFallback(t *testing.T) {
	registry := newTestRegistry()
	h := newTestChatHandler(registry, &stubAnswers{err: errors.New("api credential not configured")}, nil)
	s := registry.Create("Asha", "")

	rec := serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{
		"query": "  What is SECTION 302? ",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, models.SourcePattern, resp.Source)
	assert.Equal(t, testRules[0].Response, resp.Text)
	assert.False(t, resp.OfferDetail)

	require.Len(t, s.Transcript, 2)
	assert.Equal(t, "what is section 302?", s.Transcript[0].Text)
	require.Len(t, s.Interactions, 1)
	assert.Equal(t, "  What is SECTION 302? ", s.Interactions[0].UserQuery)
}

func TestChatHandler_AIAnswerAndDetail(t *testing.T) {
	registry := newTestRegistry()
	answers := &stubAnswers{
		text:     "Theft is defined in Section 378 IPC. Please consult a lawyer.",
		detailed: "## Relevant Sections\n- Section 378\n- Section 379",
	}
	h := newTestChatHandler(registry, answers, nil)
	s := registry.Create("Asha", "")

	rec := serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{"query": "What is Theft?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, models.SourceAI, resp.Source)
	assert.True(t, resp.OfferDetail)

	rec = serveJSON(t, h.DetailHandler, "POST", "/api/chat/detail", s.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail map[string]string
	decodeBody(t, rec, &detail)
	assert.Equal(t, answers.detailed, detail["text"])
	assert.Equal(t, "What is Theft?", detail["query"])
	assert.Equal(t, "What is Theft?", answers.detailQuery)
}

func TestDetailHandler_NotAvailable(t *testing.T) {
	registry := newTestRegistry()
	h := newTestChatHandler(registry, &stubAnswers{err: errors.New("timeout")}, nil)
	s := registry.Create("Asha", "")

	// no answer yet
	rec := serveJSON(t, h.DetailHandler, "POST", "/api/chat/detail", s.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// keyword answer cannot be elaborated
	rec = serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{"query": "I need a lawyer"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serveJSON(t, h.DetailHandler, "POST", "/api/chat/detail", s.ID, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, chat.DetailUnavailableMessage, resp["error"])
}

func TestDetailHandler_ProviderFailure(t *testing.T) {
	registry := newTestRegistry()
	h := newTestChatHandler(registry, &stubAnswers{
		text:      "An FIR is a first information report.",
		detailErr: errors.New("provider call timed out"),
	}, nil)
	s := registry.Create("Asha", "")

	serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{"query": "what is an fir"})

	rec := serveJSON(t, h.DetailHandler, "POST", "/api/chat/detail", s.ID, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, chat.DetailUnavailableMessage, resp["error"])
}

func TestChatHandler_ShortQueryGetsLocalizedDefault(t *testing.T) {
	registry := newTestRegistry()
	answers := &stubAnswers{text: "should not be used"}
	h := newTestChatHandler(registry, answers, nil)
	s := registry.Create("Asha", tamil)

	rec := serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{"query": "hi"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, models.SourceNone, resp.Source)
	assert.Equal(t, i18n.MustCatalog().NoResponse(tamil), resp.Text)
}

func TestChatHandler_AutoLanguageOnFirstQuery(t *testing.T) {
	registry := newTestRegistry()
	detector := &stubDetector{language: tamil}
	h := newTestChatHandler(registry, &stubAnswers{err: errors.New("offline")}, detector)
	s := registry.Create("Asha", "")
	s.AutoLanguage = true

	rec := serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{"query": "திருட்டு என்றால் என்ன"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, tamil, resp.Language)
	assert.Equal(t, tamil, s.Language)

	detector.language = "Hindi - हिन्दी"
	serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{"query": "another question"})
	assert.Equal(t, 1, detector.calls)
	assert.Equal(t, tamil, s.Language)
}

func TestChatHandler_AutoLanguageOff(t *testing.T) {
	registry := newTestRegistry()
	detector := &stubDetector{language: tamil}
	h := newTestChatHandler(registry, &stubAnswers{err: errors.New("offline")}, detector)
	s := registry.Create("Asha", "")

	serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{"query": "திருட்டு என்றால் என்ன"})
	assert.Equal(t, 0, detector.calls)
	assert.Equal(t, i18n.DefaultLanguage, s.Language)
}

func TestChatHandler_SessionRequired(t *testing.T) {
	h := newTestChatHandler(newTestRegistry(), &stubAnswers{}, nil)

	rec := serveJSON(t, h.ChatHandler, "POST", "/api/chat", "", map[string]string{"query": "court"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serveJSON(t, h.ChatHandler, "POST", "/api/chat", "unknown", map[string]string{"query": "court"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryHandlers(t *testing.T) {
	registry := newTestRegistry()
	h := newTestChatHandler(registry, &stubAnswers{err: errors.New("offline")}, nil)
	s := registry.Create("Asha", "")

	serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{"query": "Which court hears appeals?"})
	serveJSON(t, h.ChatHandler, "POST", "/api/chat", s.ID, map[string]string{"query": "my rights, please"})

	rec := serveJSON(t, h.HistoryHandler, "GET", "/api/history", s.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Count        int                  `json:"count"`
		Interactions []models.Interaction `json:"interactions"`
	}
	decodeBody(t, rec, &history)
	require.Equal(t, 2, history.Count)
	assert.Equal(t, "Which court hears appeals?", history.Interactions[0].UserQuery)
	assert.Equal(t, models.SourceKeyword, history.Interactions[0].Source)
	assert.Equal(t, "my rights, please", history.Interactions[1].UserQuery)

	rec = serveJSON(t, h.HistoryCSVHandler, "GET", "/api/history.csv", s.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "interaction_history.csv")

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"user_query", "assistant_response"}, rows[0])
	assert.Equal(t, "my rights, please", rows[2][0])
}

func TestHistoryHandler_Empty(t *testing.T) {
	registry := newTestRegistry()
	h := newTestChatHandler(registry, &stubAnswers{}, nil)
	s := registry.Create("Asha", "")

	rec := serveJSON(t, h.HistoryHandler, "GET", "/api/history", s.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"interactions":[]`)
}
