package documents

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// docxParagraphs returns the text of the top-level body paragraphs in document order.
// Paragraphs inside tables and nested text boxes are not included.
func docxParagraphs(data []byte) ([]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("file is not a zip archive: %w", err)
	}

	var body *zip.File
	for _, f := range archive.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("there is no item named '%s' in the archive", docxBody)
	}

	rc, err := body.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return parseDocumentXML(rc)
}

func parseDocumentXML(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		tableDepth int
		paraDepth  int
		runDepth   int
		inText     bool
	)
	topLevel := func() bool { return tableDepth == 0 && paraDepth == 1 }
	inRun := func() bool { return topLevel() && runDepth > 0 }

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid document.xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				paraDepth++
				if topLevel() {
					current.Reset()
				}
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if inRun() {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inRun() {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "p":
				if topLevel() {
					paragraphs = append(paragraphs, current.String())
				}
				paraDepth--
			case "r":
				runDepth--
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && inRun() {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
