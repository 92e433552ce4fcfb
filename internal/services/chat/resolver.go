// Package chat resolves free-text legal queries through the fallback chain:
// hosted model, curated patterns, keyword boilerplate, then the localized default.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/interfaces"
	"github.com/ternarybob/legalaid/internal/models"
	"github.com/ternarybob/legalaid/internal/services/llm"
)

// MinQueryLength is the shortest normalized query that is looked up at all
const MinQueryLength = 3

// DetailUnavailableMessage is shown when an elaboration cannot be produced
const DetailUnavailableMessage = "Could not generate detailed explanation."

// ErrDetailUnavailable is returned by Elaborate when the last answer did not come from the model
var ErrDetailUnavailable = errors.New("detailed explanation is only available for AI answers")

// Resolver orchestrates the fallback chain for one session at a time
type Resolver struct {
	answers    interfaces.AnswerProvider
	patterns   interfaces.PatternMatcher
	keywords   *KeywordClassifier
	translator interfaces.Translator
	logger     arbor.ILogger
}

// NewResolver creates a resolver. answers and patterns may be nil.
func NewResolver(
	answers interfaces.AnswerProvider,
	patterns interfaces.PatternMatcher,
	keywords *KeywordClassifier,
	translator interfaces.Translator,
	logger arbor.ILogger,
) *Resolver {
	if keywords == nil {
		keywords = NewKeywordClassifier()
	}
	return &Resolver{
		answers:    answers,
		patterns:   patterns,
		keywords:   keywords,
		translator: translator,
		logger:     logger,
	}
}

// Normalize lower-cases and trims a query
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Resolve answers query for the session. It never fails: remote errors fall through
// to the local tiers. The user and assistant turns and the interaction row are
// appended to the session in every case.
func (r *Resolver) Resolve(ctx context.Context, session *models.Session, query string) models.AnswerResult {
	normalized := Normalize(query)
	session.AppendTurn(models.RoleUser, normalized)

	result := r.resolve(ctx, session.Language, normalized)

	session.AppendTurn(models.RoleAssistant, result.Text)
	session.RecordInteraction(query, result)
	session.LastQuery = query
	session.LastAnswer = &result

	r.logger.Debug().
		Str("session", session.ID).
		Str("source", string(result.Source)).
		Int("query_length", len(normalized)).
		Msg("Query resolved")

	return result
}

func (r *Resolver) resolve(ctx context.Context, language, normalized string) models.AnswerResult {
	if len([]rune(normalized)) < MinQueryLength {
		return r.noMatch(language)
	}

	if r.answers != nil {
		start := time.Now()
		text, err := r.answers.Answer(ctx, normalized)
		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			return models.AnswerResult{Text: text, Source: models.SourceAI}
		}
		if err == nil {
			err = llm.ErrEmptyResponse
		}
		r.logger.Info().
			Str("reason", llm.FailureReason(err)).
			Dur("elapsed", time.Since(start)).
			Msg("Remote answer unavailable, using local fallback")
	}

	if r.patterns != nil {
		if rule, ok := r.patterns.Match(normalized); ok {
			return models.AnswerResult{Text: rule.Response, Source: models.SourcePattern}
		}
	}

	if response, ok := r.keywords.Classify(normalized); ok {
		return models.AnswerResult{Text: response, Source: models.SourceKeyword}
	}

	return r.noMatch(language)
}

func (r *Resolver) noMatch(language string) models.AnswerResult {
	return models.AnswerResult{Text: r.translator.NoResponse(language), Source: models.SourceNone}
}

// Elaborate requests the detailed explanation for the session's last answer.
// Only AI-sourced answers can be elaborated.
func (r *Resolver) Elaborate(ctx context.Context, session *models.Session) (string, error) {
	if r.answers == nil || session.LastAnswer == nil || session.LastAnswer.Source != models.SourceAI {
		return "", ErrDetailUnavailable
	}

	text, err := r.answers.DetailedAnswer(ctx, session.LastQuery)
	if err != nil {
		r.logger.Warn().
			Str("session", session.ID).
			Str("reason", llm.FailureReason(err)).
			Err(err).
			Msg("Detailed explanation failed")
		return "", err
	}
	return text, nil
}
