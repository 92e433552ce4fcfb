package models

import "time"

// Role identifies who produced a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a single entry in the session transcript
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceTag records which stage of the fallback chain produced an answer
type SourceTag string

const (
	SourceAI      SourceTag = "ai"
	SourcePattern SourceTag = "pattern"
	SourceKeyword SourceTag = "keyword"
	SourceNone    SourceTag = "none"
)

// AnswerResult is the outcome of resolving one query
type AnswerResult struct {
	Text   string    `json:"text"`
	Source SourceTag `json:"source"`
}

// OffersDetail reports whether a detailed explanation may be requested for this answer.
// Only model-generated answers can be elaborated.
func (a AnswerResult) OffersDetail() bool {
	return a.Source == SourceAI
}

// Interaction is one row of the downloadable interaction log
type Interaction struct {
	UserQuery         string    `json:"user_query"`
	AssistantResponse string    `json:"assistant_response"`
	Source            SourceTag `json:"source"`
	CreatedAt         time.Time `json:"created_at"`
}

// PatternRule maps a literal substring to a canned response.
// Both fields are required; rules missing either are skipped at load time.
type PatternRule struct {
	Pattern  string `json:"pattern" yaml:"pattern" toml:"pattern" validate:"required,notblank"`
	Response string `json:"response" yaml:"response" toml:"response" validate:"required,notblank"`
}
