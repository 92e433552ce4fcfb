package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/interfaces"
	"github.com/ternarybob/legalaid/internal/models"
	"github.com/ternarybob/legalaid/internal/services/analysis"
)

// multipartOverhead is the allowance for form boundaries and headers on top of the file cap
const multipartOverhead = 1 << 20

// DocumentHandler handles document upload, analysis and report download
type DocumentHandler struct {
	sessions    SessionRunner
	extractor   interfaces.DocumentExtractor
	analyzer    interfaces.DocumentAnalyzer
	pdfService  interfaces.PDFService
	maxUploadMB int
	logger      arbor.ILogger
	now         func() time.Time
}

// NewDocumentHandler creates a document handler. maxUploadMB <= 0 uses 10.
func NewDocumentHandler(
	sessions SessionRunner,
	extractor interfaces.DocumentExtractor,
	analyzer interfaces.DocumentAnalyzer,
	pdfService interfaces.PDFService,
	maxUploadMB int,
	logger arbor.ILogger,
) *DocumentHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &DocumentHandler{
		sessions:    sessions,
		extractor:   extractor,
		analyzer:    analyzer,
		pdfService:  pdfService,
		maxUploadMB: maxUploadMB,
		logger:      logger,
		now:         time.Now,
	}
}

func (h *DocumentHandler) maxBytes() int64 {
	return int64(h.maxUploadMB) << 20
}

func (h *DocumentHandler) tooLarge(size int64) string {
	if size > 0 {
		return fmt.Sprintf("⚠️ File too large (%.1fMB). Max: %dMB", float64(size)/(1024*1024), h.maxUploadMB)
	}
	return fmt.Sprintf("⚠️ File too large. Max: %dMB", h.maxUploadMB)
}

type analyzeResponse struct {
	File      models.FileInfo       `json:"file"`
	Format    models.DocumentFormat `json:"format"`
	PageCount int                   `json:"page_count,omitempty"`
	Encrypted bool                  `json:"encrypted,omitempty"`
	Analysis  string                `json:"analysis"`
	Report    string                `json:"report_file"`
}

// AnalyzeHandler handles POST /api/documents/analyze - multipart field "file"
func (h *DocumentHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes()); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, h.tooLarge(r.ContentLength))
			return
		}
		WriteError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes() {
		WriteError(w, http.StatusRequestEntityTooLarge, h.tooLarge(header.Size))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Str("file", header.Filename).Msg("Failed to read upload")
		WriteError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	payload := models.DocumentPayload{
		Name:     header.Filename,
		Size:     header.Size,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}
	info := h.extractor.Describe(payload)

	withSession(w, r, h.sessions, func(s *models.Session) {
		extracted, err := h.extractor.Extract(r.Context(), payload)
		if err != nil {
			h.logger.Warn().Err(err).Str("session", s.ID).Str("file", info.Name).Msg("Document extraction failed")
			WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"status": "error",
				"error":  "❌ " + err.Error(),
				"file":   info,
			})
			return
		}

		text, err := h.analyzer.Analyze(r.Context(), extracted.Text, payload.Name)
		if err != nil {
			WriteJSON(w, http.StatusBadGateway, map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
				"file":   info,
			})
			return
		}

		report := analysis.NewReport(models.AnalysisReport{
			DocumentName: payload.Name,
			Analysis:     text,
			GeneratedAt:  h.now(),
		})
		s.LastReport = &report.AnalysisReport

		h.logger.Info().
			Str("session", s.ID).
			Str("file", info.Name).
			Str("format", string(extracted.Format)).
			Int("chars", len([]rune(extracted.Text))).
			Msg("Document analyzed")

		WriteJSON(w, http.StatusOK, analyzeResponse{
			File:      info,
			Format:    extracted.Format,
			PageCount: extracted.PageCount,
			Encrypted: extracted.Encrypted,
			Analysis:  text,
			Report:    report.FileName(),
		})
	})
}

// ReportHandler handles GET /api/documents/report?format=txt|pdf
func (h *DocumentHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "txt"
	}
	if format != "txt" && format != "pdf" {
		WriteError(w, http.StatusBadRequest, "format must be txt or pdf")
		return
	}

	withSession(w, r, h.sessions, func(s *models.Session) {
		if s.LastReport == nil {
			WriteError(w, http.StatusNotFound, "No analysis report available")
			return
		}
		report := analysis.NewReport(*s.LastReport)

		if format == "txt" {
			writeAttachment(w, "text/plain; charset=utf-8", report.FileName(), []byte(report.Text()))
			return
		}

		if h.pdfService == nil {
			WriteError(w, http.StatusNotImplemented, "PDF reports are not available")
			return
		}
		data, err := report.PDF(h.pdfService)
		if err != nil {
			h.logger.Error().Err(err).Str("session", s.ID).Msg("Failed to render report PDF")
			WriteError(w, http.StatusInternalServerError, "Failed to render report PDF")
			return
		}
		writeAttachment(w, "application/pdf", report.PDFFileName(), data)
	})
}

func writeAttachment(w http.ResponseWriter, contentType, fileName string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
