// Package extract turns uploaded resume documents into plain text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimeText = "text/plain"
	MimePDF  = "application/pdf"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrExtraction marks a document that could not be turned into text.
var ErrExtraction = errors.New("text extraction failed")

// DetectMime resolves the MIME type of an upload. A declared type the
// extractor understands wins; otherwise the filename extension decides.
func DetectMime(declared, filename string) string {
	declared = strings.TrimSpace(strings.SplitN(declared, ";", 2)[0])
	switch declared {
	case MimeText, MimePDF, MimeDocx:
		return declared
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return MimeText
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDocx
	}
	return declared
}

// Text extracts the readable text of data. Every failure, including a
// panicking parser, wraps ErrExtraction.
func Text(mime string, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s parser panicked: %v", ErrExtraction, mime, r)
		}
	}()

	switch mime {
	case MimeText:
		text = string(data)
	case MimePDF:
		text, err = pdfText(bytes.NewReader(data))
	case MimeDocx:
		text, err = docxText(bytes.NewReader(data))
	default:
		return "", fmt.Errorf("%w: unsupported file type: %q", ErrExtraction, mime)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: document contains no text", ErrExtraction)
	}
	return text, nil
}

func pdfText(reader *bytes.Reader) (string, error) {
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	var b strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func docxText(reader io.ReaderAt) (string, error) {
	size := int64(0)
	if r, ok := reader.(*bytes.Reader); ok {
		size = r.Size()
	}
	doc, err := docx.ReadDocxFromMemory(reader, size)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return stripXML(doc.Editable().GetContent()), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:tab\s*/>`)
	xmlTag       = regexp.MustCompile(`<[^>]*>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// stripXML reduces WordprocessingML to its text, one line per paragraph.
func stripXML(content string) string {
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	return blankLines.ReplaceAllString(strings.TrimSpace(content), "\n\n")
}
