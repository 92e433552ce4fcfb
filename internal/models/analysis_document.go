package models

import "time"

// DocumentFormat is the extraction path a payload was dispatched to
type DocumentFormat string

const (
	FormatPDF     DocumentFormat = "PDF"
	FormatDOCX    DocumentFormat = "DOCX"
	FormatImage   DocumentFormat = "IMAGE"
	FormatUnknown DocumentFormat = "UNKNOWN"
)

// DocumentPayload is an uploaded document. It lives only for one analysis request.
type DocumentPayload struct {
	Name     string
	Size     int64
	MimeType string
	Data     []byte
}

// FileInfo is the display summary of an upload
type FileInfo struct {
	Name   string  `json:"name"`
	SizeKB float64 `json:"size_kb"`
	Type   string  `json:"type"`
}

// ExtractedText is the plain text recovered from a document
type ExtractedText struct {
	Text      string         `json:"text"`
	Format    DocumentFormat `json:"format"`
	PageCount int            `json:"page_count,omitempty"`
	Encrypted bool           `json:"encrypted,omitempty"`
}

// AnalysisReport is a completed document analysis ready for download
type AnalysisReport struct {
	DocumentName string    `json:"document_name"`
	Analysis     string    `json:"analysis"`
	GeneratedAt  time.Time `json:"generated_at"`
}
