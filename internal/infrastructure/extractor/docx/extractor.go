// Package docx implements the DOCX extraction strategy by reading
// word/document.xml and word/media/* straight from the ZIP container.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
)

type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns all paragraph text plus the embedded picture count. Any
// internal failure degrades to the empty extraction.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, bool, int) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("docx_open_failed", "error", err)
		return "", false, 0
	}

	text, err := extractParagraphs(r)
	if err != nil {
		e.logger.Warn("docx_text_extraction_failed", "error", err)
		return "", false, 0
	}

	imageCount := countMediaEntries(r)
	return text, imageCount > 0, imageCount
}

func extractParagraphs(r *zip.Reader) (string, error) {
	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var out strings.Builder
	var current strings.Builder
	inParagraph := false
	inRunText := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inRunText = inParagraph
			}
		case xml.CharData:
			if inRunText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRunText = false
			case "p":
				if inParagraph {
					inParagraph = false
					if line := strings.TrimSpace(current.String()); line != "" {
						if out.Len() > 0 {
							out.WriteByte('\n')
						}
						out.WriteString(line)
					}
				}
			}
		}
	}
	return out.String(), nil
}

// countMediaEntries approximates the embedded picture count by the number of
// resources under word/media/.
func countMediaEntries(r *zip.Reader) int {
	count := 0
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "word/media/") && !strings.HasSuffix(f.Name, "/") {
			count++
		}
	}
	return count
}
