package models

import (
	"sync"
	"time"
)

// Session is the caller-owned conversation context. The core reads the language
// preference and appends to the transcript and interaction log; nothing else mutates it.
type Session struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Language     string    `json:"language"`
	AutoLanguage bool      `json:"auto_language"`
	CreatedAt    time.Time `json:"created_at"`

	Transcript   []ConversationTurn `json:"transcript"`
	Interactions []Interaction      `json:"interactions"`

	// LastQuery and LastAnswer back the "read detailed explanation" follow-up
	LastQuery  string        `json:"-"`
	LastAnswer *AnswerResult `json:"-"`

	// LastReport is the most recent document analysis, kept for download
	LastReport *AnalysisReport `json:"-"`

	mu sync.Mutex
}

// NewSession creates an empty session for the given display name and language
func NewSession(id, displayName, language string) *Session {
	return &Session{
		ID:          id,
		DisplayName: displayName,
		Language:    language,
		CreatedAt:   time.Now(),
	}
}

// AppendTurn adds a turn to the transcript. The transcript is append-only.
func (s *Session) AppendTurn(role Role, text string) {
	s.Transcript = append(s.Transcript, ConversationTurn{
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	})
}

// RecordInteraction appends a row to the interaction log
func (s *Session) RecordInteraction(query string, result AnswerResult) {
	s.Interactions = append(s.Interactions, Interaction{
		UserQuery:         query,
		AssistantResponse: result.Text,
		Source:            result.Source,
		CreatedAt:         time.Now(),
	})
}

// Lock serialises request handling for this session
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session request lock
func (s *Session) Unlock() { s.mu.Unlock() }
