package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/interfaces"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	bodyFont     = "Helvetica"
	bodySize     = 10.0
	lineHeight   = 5.0
	leftMargin   = 15.0
	contentWidth = 180.0
)

// Service renders analysis reports to PDF
type Service struct {
	logger arbor.ILogger
	now    func() time.Time
}

var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
		now:    time.Now,
	}
}

// ConvertMarkdownToPDF renders markdown as an A4 report with title header and page footer.
// The core fonts only cover Latin text; other runes such as emoji are dropped.
func (s *Service) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Rendering report PDF")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(Sanitize(title), false)
	doc.SetCreator("LegalAid", false)
	doc.SetCreationDate(s.now())
	doc.SetMargins(leftMargin, 15, leftMargin)
	doc.SetAutoPageBreak(true, 15)
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont(bodyFont, "I", 8)
		doc.CellFormat(0, 8, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	if title != "" {
		doc.SetFont(bodyFont, "B", 15)
		doc.MultiCell(0, 7, Sanitize(title), "", "L", false)
		doc.Ln(3)
	}
	doc.SetFont(bodyFont, "", bodySize)

	source := []byte(markdown)
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	root := md.Parser().Parse(text.NewReader(source))

	r := &reportRenderer{doc: doc, source: source}
	if err := ast.Walk(root, r.walk); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render report")
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write report PDF")
		return nil, fmt.Errorf("failed to write report PDF: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("Report PDF rendered")
	return buf.Bytes(), nil
}

type reportRenderer struct {
	doc       *fpdf.Fpdf
	source    []byte
	bold      bool
	italic    bool
	listDepth int
}

func (r *reportRenderer) setFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.doc.SetFont(bodyFont, style, bodySize)
}

func (r *reportRenderer) write(s string) {
	if s = Sanitize(s); s != "" {
		r.doc.Write(lineHeight, s)
	}
}

func (r *reportRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.doc.Ln(4)
			r.doc.SetFont(bodyFont, "B", headingSize(node.Level))
		} else {
			r.doc.Ln(7)
			r.setFont()
		}

	case *ast.Paragraph:
		if !entering && r.listDepth == 0 {
			r.doc.Ln(7)
		}

	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.source)))
			if node.SoftLineBreak() {
				r.write(" ")
			}
			if node.HardLineBreak() {
				r.doc.Ln(lineHeight)
			}
		}

	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.setFont()

	case *ast.CodeSpan:
		if entering {
			r.doc.SetFont("Courier", "", bodySize)
			r.write(string(node.Text(r.source)))
			r.setFont()
		}
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.codeBlock(n.Lines())
		}
		return ast.WalkSkipChildren, nil

	case *ast.List:
		if entering {
			r.listDepth++
		} else {
			r.listDepth--
			if r.listDepth == 0 {
				r.doc.Ln(lineHeight + 2)
			}
		}

	case *ast.ListItem:
		if entering {
			if r.doc.GetX() > leftMargin+0.5 {
				r.doc.Ln(lineHeight)
			}
			r.doc.SetX(leftMargin + float64(r.listDepth)*5)
			r.write("- ")
		}

	case *ast.ThematicBreak:
		if entering {
			r.doc.Ln(2)
			y := r.doc.GetY()
			r.doc.Line(leftMargin, y, leftMargin+contentWidth, y)
			r.doc.Ln(3)
		}

	case *extast.Table:
		if entering {
			r.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func headingSize(level int) float64 {
	switch level {
	case 1:
		return 14
	case 2:
		return 12
	default:
		return 11
	}
}

func (r *reportRenderer) codeBlock(lines *text.Segments) {
	r.doc.Ln(2)
	r.doc.SetFont("Courier", "", 9)
	r.doc.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		line := strings.TrimRight(string(segment.Value(r.source)), "\n")
		r.doc.MultiCell(0, lineHeight, Sanitize(line), "", "L", true)
	}
	r.doc.SetFillColor(255, 255, 255)
	r.setFont()
	r.doc.Ln(2)
}

// table lays out every row with equal column widths, wrapping long cells
func (r *reportRenderer) table(n *extast.Table) {
	var rows [][]string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		var cells []string
		for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, Sanitize(string(cell.Text(r.source))))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	width := contentWidth / float64(len(rows[0]))
	r.doc.Ln(2)
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.doc.SetFont(bodyFont, style, 9)

		height := 0.0
		for _, cell := range row {
			lines := r.doc.SplitText(cell, width-2)
			if h := float64(len(lines))*4.5 + 2; h > height {
				height = h
			}
		}
		if r.doc.GetY()+height > 282 {
			r.doc.AddPage()
		}

		x, y := r.doc.GetX(), r.doc.GetY()
		for j, cell := range row {
			cx := x + float64(j)*width
			r.doc.Rect(cx, y, width, height, "D")
			r.doc.SetXY(cx+1, y+1)
			r.doc.MultiCell(width-2, 4.5, cell, "", "L", false)
		}
		r.doc.SetXY(x, y+height)
	}
	r.doc.Ln(3)
	r.setFont()
}

var typographic = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'", "\u201c", `"`, "\u201d", `"`,
	"\u2013", "-", "\u2014", "-", "\u2022", "-", "\u2026", "...", "\u00a0", " ",
)

// Sanitize reduces s to the ASCII subset the core PDF fonts can render
func Sanitize(s string) string {
	s = typographic.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c == '\t' || c == '\n' || (c >= 0x20 && c < 0x7f) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
