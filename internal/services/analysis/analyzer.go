// Package analysis produces the structured legal review of an extracted document.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/interfaces"
	"github.com/ternarybob/legalaid/internal/services/llm"
)

// DefaultCharLimit is how much of a document is sent to the model
const DefaultCharLimit = 4000

const (
	UnavailableMessage  = "❌ AI analysis not available. Please ensure Gemini API is configured."
	MissingKeyMessage   = "❌ API key not configured. Please set up GEMINI_API_KEY in secrets."
	callFailedMessage   = "❌ Analysis error: %v\n\nPlease try again or consult the error logs."
	analysisInstruction = "You are an expert legal document analyst specializing in Indian law."
	disclaimerFooter    = "---\n**Important Disclaimer:** This is an AI-generated analysis for informational purposes only. This does NOT constitute legal advice. Please consult a qualified lawyer for professional legal advice specific to your situation."
)

var (
	ErrUnavailable  = errors.New("analysis provider not configured")
	ErrMissingKey   = errors.New("analysis credential not configured")
	ErrAnalysisCall = errors.New("analysis call failed")
)

// sections are requested in this order, each heading reproduced verbatim
var sections = []struct {
	heading     string
	instruction string
}{
	{"## 📋 Document Summary", "[Brief overview of what this document is about in 2-3 sentences]"},
	{"## 🔍 Document Type", "[Identify the type: Contract, Agreement, Notice, License, Affidavit, etc.]"},
	{"## ⚖️ Key Legal Terms & Clauses", "[List the 5 most important clauses, sections, or legal terms found in the document]"},
	{"## ⚠️ Red Flags & Concerns", "[Identify any problematic clauses, unfair terms, ambiguous language, or potential legal risks]"},
	{"## ✅ Positive Aspects", "[Highlight protective clauses, fair terms, or legally sound provisions]"},
	{"## 📊 Legal Compliance Check", "[Assess if the document appears to comply with applicable Indian laws and regulations]"},
	{"## 💡 Recommendations", "[Provide 3-5 specific, actionable recommendations for the document holder]"},
	{"## 🚨 Critical Points to Note", "[Highlight the most important things the user must be aware of]"},
}

// Error is a failed analysis. Error() is the message shown in place of the report.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Analyzer submits a bounded prefix of a document to the hosted model
type Analyzer struct {
	generator interfaces.ContentGenerator
	charLimit int
	logger    arbor.ILogger
}

var _ interfaces.DocumentAnalyzer = (*Analyzer)(nil)

// NewAnalyzer creates an analyzer. A nil generator makes every analysis unavailable.
func NewAnalyzer(generator interfaces.ContentGenerator, charLimit int, logger arbor.ILogger) *Analyzer {
	if charLimit <= 0 {
		charLimit = DefaultCharLimit
	}
	return &Analyzer{generator: generator, charLimit: charLimit, logger: logger}
}

// Analyze returns the eight-section report for text, or an *Error whose message
// is the text to display instead
func (a *Analyzer) Analyze(ctx context.Context, text, documentName string) (string, error) {
	if a.generator == nil {
		return "", &Error{Message: UnavailableMessage, Err: ErrUnavailable}
	}

	sample, total := Truncate(text, a.charLimit)
	start := time.Now()

	resp, err := a.generator.GenerateContent(ctx, &interfaces.ContentRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: BuildPrompt(documentName, sample, total)},
		},
	})
	if err != nil {
		if errors.Is(err, llm.ErrCredentialMissing) {
			return "", &Error{Message: MissingKeyMessage, Err: errors.Join(ErrMissingKey, err)}
		}
		a.logger.Warn().
			Str("document", documentName).
			Str("reason", llm.FailureReason(err)).
			Err(err).
			Msg("Document analysis failed")
		return "", &Error{Message: fmt.Sprintf(callFailedMessage, err), Err: errors.Join(ErrAnalysisCall, err)}
	}

	a.logger.Info().
		Str("document", documentName).
		Int("document_chars", total).
		Int("submitted_chars", len([]rune(sample))).
		Dur("duration", time.Since(start)).
		Msg("Document analysed")

	return resp.Text, nil
}

// Truncate returns the first limit characters of text and the full character count
func Truncate(text string, limit int) (string, int) {
	runes := []rune(text)
	if len(runes) <= limit {
		return text, len(runes)
	}
	return string(runes[:limit]), len(runes)
}

// BuildPrompt renders the analysis request. totalChars is the full document
// length even when sample is a prefix.
func BuildPrompt(documentName, sample string, totalChars int) string {
	var b strings.Builder
	b.WriteString(analysisInstruction)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Document Name: %s\n", documentName)
	fmt.Fprintf(&b, "Document Length: %d characters\n\n", totalChars)
	b.WriteString("Document Content:\n")
	b.WriteString(sample)
	b.WriteString("\n\nProvide a comprehensive legal analysis in the following format:\n\n")
	for _, section := range sections {
		b.WriteString(section.heading)
		b.WriteByte('\n')
		b.WriteString(section.instruction)
		b.WriteString("\n\n")
	}
	b.WriteString(disclaimerFooter)
	b.WriteByte('\n')
	return b.String()
}
