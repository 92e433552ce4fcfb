package interfaces

import (
	"context"
)

// Message represents a single message in a model conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// ContentRequest is a provider-agnostic generation request
type ContentRequest struct {
	Messages          []Message
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
}

// ContentResponse is a provider-agnostic generation response
type ContentResponse struct {
	Text     string
	Provider string
	Model    string
}

// ContentGenerator performs a single hosted-model call.
// Implementations must not retry or stream; every failure is returned as an error.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error)
}

// AnswerProvider answers free-text legal queries with the hosted model
type AnswerProvider interface {
	Answer(ctx context.Context, query string) (string, error)
	DetailedAnswer(ctx context.Context, query string) (string, error)
}
