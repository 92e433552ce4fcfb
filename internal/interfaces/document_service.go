package interfaces

import (
	"context"

	"github.com/ternarybob/legalaid/internal/models"
)

// PatternMatcher finds the first configured pattern rule contained in a normalized query
type PatternMatcher interface {
	Match(normalizedQuery string) (models.PatternRule, bool)
}

// Translator resolves localized user-facing strings
type Translator interface {
	Text(language, key string) string
	NoResponse(language string) string
}

// DocumentExtractor converts an uploaded document into plain text.
// Failures are returned as errors whose message is suitable for display.
type DocumentExtractor interface {
	Extract(ctx context.Context, payload models.DocumentPayload) (models.ExtractedText, error)
	Describe(payload models.DocumentPayload) models.FileInfo
}

// DocumentAnalyzer submits extracted text to the hosted model for structured analysis
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, text, documentName string) (string, error)
}

// PDFService renders markdown content to PDF bytes
type PDFService interface {
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)
}
