// Package documents turns uploaded PDF, DOCX and image files into plain text for analysis.
package documents

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/interfaces"
	"github.com/ternarybob/legalaid/internal/models"
	"github.com/ternarybob/legalaid/internal/services/pdf"
)

// Extractor dispatches a payload to the PDF, DOCX or image path
type Extractor struct {
	logger arbor.ILogger
}

var _ interfaces.DocumentExtractor = (*Extractor)(nil)

// NewExtractor creates a document extractor
func NewExtractor(logger arbor.ILogger) *Extractor {
	return &Extractor{logger: logger}
}

// EffectiveType returns the lower-cased declared MIME type, sniffing the
// content when the caller declared nothing useful
func EffectiveType(payload models.DocumentPayload) string {
	declared := strings.ToLower(strings.TrimSpace(payload.MimeType))
	if (declared == "" || declared == "application/octet-stream") && len(payload.Data) > 0 {
		return strings.ToLower(mimetype.Detect(payload.Data).String())
	}
	return declared
}

// Classify picks the extraction path. Declared type and file name are checked
// in the same order the upload form always used.
func Classify(mimeType, name string) models.DocumentFormat {
	name = strings.ToLower(name)
	switch {
	case strings.Contains(mimeType, "pdf"):
		return models.FormatPDF
	case strings.Contains(mimeType, "word"), strings.Contains(mimeType, "document"), strings.HasSuffix(name, ".docx"):
		return models.FormatDOCX
	case strings.Contains(mimeType, "image"),
		strings.HasSuffix(name, ".png"), strings.HasSuffix(name, ".jpg"), strings.HasSuffix(name, ".jpeg"):
		return models.FormatImage
	case strings.HasSuffix(name, ".pdf"):
		return models.FormatPDF
	}
	return models.FormatUnknown
}

// Extract returns the document text, or an *ExtractionError carrying the
// message to show the user. It never panics.
func (e *Extractor) Extract(ctx context.Context, payload models.DocumentPayload) (models.ExtractedText, error) {
	mimeType := EffectiveType(payload)
	format := Classify(mimeType, payload.Name)
	start := time.Now()

	result, err := e.dispatch(format, mimeType, payload.Data)
	if err != nil {
		e.logger.Warn().
			Str("document", payload.Name).
			Str("mime_type", mimeType).
			Str("format", string(format)).
			Err(err).
			Msg("Document extraction failed")
		return models.ExtractedText{Format: format}, err
	}

	result.Format = format
	e.logger.Info().
		Str("document", payload.Name).
		Str("format", string(format)).
		Int("chars", len([]rune(result.Text))).
		Dur("duration", time.Since(start)).
		Msg("Document text extracted")
	return result, nil
}

// dispatch runs the extraction path for format. A panic inside a parser
// becomes an extraction error for that format.
func (e *Extractor) dispatch(format models.DocumentFormat, mimeType string, data []byte) (result models.ExtractedText, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = models.ExtractedText{}
			err = extractFailed(format, fmt.Errorf("parser panic: %v", r))
		}
	}()

	switch format {
	case models.FormatPDF:
		return e.extractPDF(data)
	case models.FormatDOCX:
		return e.extractDOCX(data)
	case models.FormatImage:
		return models.ExtractedText{}, e.checkImage(data)
	default:
		return models.ExtractedText{}, unsupported(mimeType)
	}
}

func (e *Extractor) extractPDF(data []byte) (models.ExtractedText, error) {
	var result models.ExtractedText

	if info, err := pdf.Inspect(data); err != nil {
		e.logger.Debug().Err(err).Msg("PDF structure check failed, extracting anyway")
	} else {
		result.PageCount = info.PageCount
		result.Encrypted = info.Encrypted
	}

	pages, err := pdf.ExtractPages(data)
	if err != nil {
		return result, extractFailed(models.FormatPDF, err)
	}
	if result.PageCount == 0 {
		result.PageCount = len(pages)
	}

	result.Text = strings.TrimSpace(strings.Join(pages, "\n"))
	return result, nil
}

func (e *Extractor) extractDOCX(data []byte) (models.ExtractedText, error) {
	paragraphs, err := docxParagraphs(data)
	if err != nil {
		return models.ExtractedText{}, extractFailed(models.FormatDOCX, err)
	}
	return models.ExtractedText{Text: strings.TrimSpace(strings.Join(paragraphs, "\n"))}, nil
}

// checkImage validates the image header; OCR itself is not available
func (e *Extractor) checkImage(data []byte) error {
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return imageFailed(err)
	}
	return ocrNotImplemented()
}

// Describe returns the upload summary shown next to the analysis
func (e *Extractor) Describe(payload models.DocumentPayload) models.FileInfo {
	size := payload.Size
	if size == 0 {
		size = int64(len(payload.Data))
	}
	return models.FileInfo{
		Name:   payload.Name,
		SizeKB: float64(size) / 1024,
		Type:   payload.MimeType,
	}
}
