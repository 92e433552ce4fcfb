package pdf

import (
	"bytes"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes one line of text per page
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(40, 10, text)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestExtractPages(t *testing.T) {
	data := buildPDF(t, "First page", "Second page", "Third page")

	pages, err := ExtractPages(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"First page", "Second page", "Third page"}, pages)

	info, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, 3, info.PageCount)
}

func TestExtractPages_Malformed(t *testing.T) {
	_, err := ExtractPages([]byte("%PDF-1.4 not really a pdf"))
	assert.Error(t, err)

	_, err = Inspect([]byte("garbage"))
	assert.Error(t, err)
}

func TestInspect_TruncatedNeverPanics(t *testing.T) {
	data := buildPDF(t, "First page", "Second page", "Third page")

	for cut := 8; cut < len(data); cut += len(data)/50 + 1 {
		assert.NotPanics(t, func() {
			_, _ = Inspect(data[:cut])
		}, "cut at %d", cut)
	}
}
