package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/interfaces"
)

// RefusalMessage is returned verbatim by the model for non-legal queries
const RefusalMessage = "I am a legal assistant. I can only help you with legal matters, laws, and rights in India."

const answerInstruction = `You are a specialized legal assistant for Indian law.
Your task is to answer ONLY legal-related queries.

Instructions:
1. If the query is NOT related to law, crime, rights, or legal procedures, reply EXACTLY: "` + RefusalMessage + `"
2. If the query IS legal, provide a clear, balanced answer (4-5 sentences).
3. Mention key sections/acts but avoid overwhelming detail.
4. Always remind users to consult a lawyer.`

const detailedInstruction = `You are an expert legal advisor.`

const detailedTemplate = `Provide a comprehensive, detailed legal analysis of: %s
Include:
1. Relevant Sections/Acts (IPC, CrPC, etc.)
2. Punishments/Fines
3. Legal Procedure/Steps
4. Rights of the involved parties
5. Important Case Laws (if any)
Format with clear headings and bullet points.`

// AnswerService asks the hosted model for short and detailed legal answers
type AnswerService struct {
	generator interfaces.ContentGenerator
	logger    arbor.ILogger
}

var _ interfaces.AnswerProvider = (*AnswerService)(nil)

// NewAnswerService creates an answer service over a content generator
func NewAnswerService(generator interfaces.ContentGenerator, logger arbor.ILogger) *AnswerService {
	return &AnswerService{generator: generator, logger: logger}
}

// Answer returns a 4-5 sentence answer or the fixed refusal for non-legal queries
func (s *AnswerService) Answer(ctx context.Context, query string) (string, error) {
	return s.generate(ctx, answerInstruction, "Query: "+query)
}

// DetailedAnswer returns a long-form analysis with headings and bullet points
func (s *AnswerService) DetailedAnswer(ctx context.Context, query string) (string, error) {
	return s.generate(ctx, detailedInstruction, fmt.Sprintf(detailedTemplate, query))
}

func (s *AnswerService) generate(ctx context.Context, instruction, prompt string) (string, error) {
	resp, err := s.generator.GenerateContent(ctx, &interfaces.ContentRequest{
		SystemInstruction: instruction,
		Messages: []interfaces.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
