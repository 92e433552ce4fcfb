package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/interfaces"
)

type recordingGenerator struct {
	requests []*interfaces.ContentRequest
	text     string
	err      error
}

func (g *recordingGenerator) GenerateContent(_ context.Context, request *interfaces.ContentRequest) (*interfaces.ContentResponse, error) {
	g.requests = append(g.requests, request)
	if g.err != nil {
		return nil, g.err
	}
	return &interfaces.ContentResponse{Text: g.text}, nil
}

func TestAnswerService_Answer(t *testing.T) {
	generator := &recordingGenerator{text: "Section 378 IPC defines theft. Consult a lawyer."}
	service := NewAnswerService(generator, arbor.NewLogger())

	text, err := service.Answer(context.Background(), "what is theft")
	require.NoError(t, err)
	assert.Equal(t, "Section 378 IPC defines theft. Consult a lawyer.", text)

	require.Len(t, generator.requests, 1)
	request := generator.requests[0]
	assert.Contains(t, request.SystemInstruction, RefusalMessage)
	assert.Contains(t, request.SystemInstruction, "4-5 sentences")
	assert.Contains(t, request.SystemInstruction, "consult a lawyer")
	assert.Equal(t, "Query: what is theft", request.Messages[0].Content)
}

func TestAnswerService_DetailedAnswer(t *testing.T) {
	generator := &recordingGenerator{text: "## Sections"}
	service := NewAnswerService(generator, arbor.NewLogger())

	_, err := service.DetailedAnswer(context.Background(), "What is Theft?")
	require.NoError(t, err)

	prompt := generator.requests[0].Messages[0].Content
	assert.Contains(t, prompt, "detailed legal analysis of: What is Theft?")
	assert.Contains(t, prompt, "Punishments/Fines")
	assert.Contains(t, prompt, "Important Case Laws (if any)")
	assert.Contains(t, prompt, "Format with clear headings and bullet points.")
}

func TestAnswerService_Errors(t *testing.T) {
	service := NewAnswerService(&recordingGenerator{err: ErrTimeout}, arbor.NewLogger())
	_, err := service.Answer(context.Background(), "bail")
	assert.True(t, errors.Is(err, ErrTimeout))

	service = NewAnswerService(&recordingGenerator{text: " "}, arbor.NewLogger())
	_, err = service.Answer(context.Background(), "bail")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
