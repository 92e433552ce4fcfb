package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/models"
	"github.com/ternarybob/legalaid/internal/services/llm"
	"github.com/ternarybob/legalaid/internal/services/patterns"
)

const englishNoMatch = "Sorry, I couldn't find a matching response for your query."

type fakeTranslator struct{}

func (fakeTranslator) Text(_, key string) string { return key }

func (fakeTranslator) NoResponse(language string) string {
	if language == "Hindi - हिन्दी" {
		return "hindi-no-match"
	}
	return englishNoMatch
}

type fakeAnswers struct {
	text         string
	err          error
	calls        int
	detailCalls  int
	lastQuery    string
	detailedText string
}

func (f *fakeAnswers) Answer(_ context.Context, query string) (string, error) {
	f.calls++
	f.lastQuery = query
	return f.text, f.err
}

func (f *fakeAnswers) DetailedAnswer(_ context.Context, query string) (string, error) {
	f.detailCalls++
	f.lastQuery = query
	return f.detailedText, f.err
}

type countingMatcher struct {
	*patterns.Store
	calls int
}

func (m *countingMatcher) Match(q string) (models.PatternRule, bool) {
	m.calls++
	return m.Store.Match(q)
}

func newMatcher(rules ...models.PatternRule) *countingMatcher {
	return &countingMatcher{Store: patterns.NewStoreFromRules(rules, arbor.NewLogger())}
}

func newResolver(answers *fakeAnswers, matcher *countingMatcher) *Resolver {
	return NewResolver(answers, matcher, NewKeywordClassifier(), fakeTranslator{}, arbor.NewLogger())
}

func newSession() *models.Session {
	return models.NewSession("s1", "Asha", "English")
}

func TestResolve_ShortQueryReturnsDefault(t *testing.T) {
	for _, query := range []string{"", "  ", "hi", " A ", "ip"} {
		t.Run(fmt.Sprintf("%q", query), func(t *testing.T) {
			answers := &fakeAnswers{text: "model"}
			matcher := newMatcher(models.PatternRule{Pattern: "h", Response: "pattern"})
			session := newSession()

			result := newResolver(answers, matcher).Resolve(context.Background(), session, query)

			assert.Equal(t, models.AnswerResult{Text: englishNoMatch, Source: models.SourceNone}, result)
			assert.Zero(t, answers.calls, "remote not consulted")
			assert.Zero(t, matcher.calls, "patterns not consulted")
			require.Len(t, session.Transcript, 2, "turns appended regardless")
			assert.Equal(t, models.RoleUser, session.Transcript[0].Role)
			assert.Equal(t, models.RoleAssistant, session.Transcript[1].Role)
		})
	}
}

func TestResolve_ShortQueryLocalized(t *testing.T) {
	session := models.NewSession("s1", "Asha", "Hindi - हिन्दी")
	result := newResolver(nil, newMatcher()).Resolve(context.Background(), session, "a")
	assert.Equal(t, "hindi-no-match", result.Text)
}

func TestResolve_RemoteAnswerWins(t *testing.T) {
	answers := &fakeAnswers{text: "  Theft is defined in Section 378.  "}
	matcher := newMatcher(models.PatternRule{Pattern: "theft", Response: "pattern"})
	session := newSession()

	result := newResolver(answers, matcher).Resolve(context.Background(), session, "  What is THEFT? ")

	assert.Equal(t, models.SourceAI, result.Source)
	assert.Equal(t, "Theft is defined in Section 378.", result.Text)
	assert.True(t, result.OffersDetail())
	assert.Equal(t, "what is theft?", answers.lastQuery, "model receives the normalized query")
	assert.Zero(t, matcher.calls)
	assert.Equal(t, 1, answers.calls, "single remote call")

	require.Len(t, session.Transcript, 2)
	assert.Equal(t, "what is theft?", session.Transcript[0].Text)
	require.Len(t, session.Interactions, 1)
	assert.Equal(t, "  What is THEFT? ", session.Interactions[0].UserQuery)
	assert.Equal(t, "Theft is defined in Section 378.", session.Interactions[0].AssistantResponse)
}

func TestResolve_RemoteFailureNeverAI(t *testing.T) {
	failures := map[string]*fakeAnswers{
		"credential missing": {err: llm.ErrCredentialMissing},
		"timeout":            {err: llm.ErrTimeout},
		"empty":              {text: "   "},
	}

	for name, answers := range failures {
		t.Run(name, func(t *testing.T) {
			resolver := newResolver(answers, newMatcher(models.PatternRule{Pattern: "bail", Response: "Bail answer"}))

			for _, query := range []string{"how do i get bail", "which court", "tell me a joke"} {
				result := resolver.Resolve(context.Background(), newSession(), query)
				assert.NotEqual(t, models.SourceAI, result.Source)
				assert.False(t, result.OffersDetail())
			}
		})
	}
}

func TestResolve_PatternBeforeKeyword(t *testing.T) {
	answers := &fakeAnswers{err: llm.ErrCredentialMissing}
	matcher := newMatcher(
		models.PatternRule{Pattern: "court marriage", Response: "Court marriage answer"},
		models.PatternRule{Pattern: "marriage", Response: "Generic marriage answer"},
	)
	resolver := newResolver(answers, matcher)

	result := resolver.Resolve(context.Background(), newSession(), "How does a Court Marriage work")
	assert.Equal(t, models.AnswerResult{Text: "Court marriage answer", Source: models.SourcePattern}, result)

	result = resolver.Resolve(context.Background(), newSession(), "which court hears appeals")
	assert.Equal(t, models.SourceKeyword, result.Source)
	assert.Contains(t, result.Text, "District Courts")
}

func TestResolve_ZeroPatterns(t *testing.T) {
	resolver := NewResolver(nil, nil, nil, fakeTranslator{}, arbor.NewLogger())

	result := resolver.Resolve(context.Background(), newSession(), "my neighbour plays loud music")
	assert.Equal(t, models.AnswerResult{Text: englishNoMatch, Source: models.SourceNone}, result)

	result = resolver.Resolve(context.Background(), newSession(), "someone committed dacoity")
	assert.Equal(t, models.SourceKeyword, result.Source)
}

func TestResolve_TranscriptGrows(t *testing.T) {
	resolver := newResolver(&fakeAnswers{err: llm.ErrTimeout}, newMatcher())
	session := newSession()

	resolver.Resolve(context.Background(), session, "ipc 420")
	resolver.Resolve(context.Background(), session, "x")
	resolver.Resolve(context.Background(), session, "find a lawyer")

	assert.Len(t, session.Transcript, 6)
	assert.Len(t, session.Interactions, 3)
	assert.Equal(t, "find a lawyer", session.LastQuery)
}

func TestElaborate(t *testing.T) {
	answers := &fakeAnswers{text: "short", detailedText: "## Sections"}
	resolver := newResolver(answers, newMatcher())
	session := newSession()

	_, err := resolver.Elaborate(context.Background(), session)
	assert.ErrorIs(t, err, ErrDetailUnavailable, "nothing asked yet")

	resolver.Resolve(context.Background(), session, "What is Bail?")
	text, err := resolver.Elaborate(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "## Sections", text)
	assert.Equal(t, "What is Bail?", answers.lastQuery, "detail uses the query as typed")

	answers.err = llm.ErrCredentialMissing
	resolver.Resolve(context.Background(), session, "which court")
	_, err = resolver.Elaborate(context.Background(), session)
	assert.ErrorIs(t, err, ErrDetailUnavailable, "keyword answers cannot be elaborated")
	assert.Equal(t, 1, answers.detailCalls)
}
