package analysis

import (
	"fmt"
	"strings"

	"github.com/ternarybob/legalaid/internal/interfaces"
	"github.com/ternarybob/legalaid/internal/models"
)

// ReportTimeLayout is the timestamp format of the downloadable report header
const ReportTimeLayout = "2006-01-02 15:04"

// Report is a completed analysis prepared for download
type Report struct {
	models.AnalysisReport
}

// NewReport wraps a stored analysis
func NewReport(r models.AnalysisReport) Report {
	return Report{AnalysisReport: r}
}

// Title is the first header line of every report
func (r Report) Title() string {
	return "LEGAL DOCUMENT ANALYSIS"
}

// Text renders the plain-text download
func (r Report) Text() string {
	return fmt.Sprintf("%s\nDocument: %s\nDate: %s\n\n%s\n",
		r.Title(),
		r.DocumentName,
		r.GeneratedAt.Format(ReportTimeLayout),
		r.Analysis,
	)
}

// FileName is analysis_<name without its last extension>.txt
func (r Report) FileName() string {
	return "analysis_" + stem(r.DocumentName) + ".txt"
}

// PDFFileName is the PDF variant of FileName
func (r Report) PDFFileName() string {
	return "analysis_" + stem(r.DocumentName) + ".pdf"
}

// PDF renders the report through the PDF service
func (r Report) PDF(service interfaces.PDFService) ([]byte, error) {
	header := fmt.Sprintf("**Document:** %s\n\n**Date:** %s\n\n",
		r.DocumentName, r.GeneratedAt.Format(ReportTimeLayout))
	return service.ConvertMarkdownToPDF(header+r.Analysis, r.Title())
}

func stem(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}
