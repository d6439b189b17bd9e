// Package extract turns uploaded documents into one plain-text context blob.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"project-echo-be/internal/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
)

const (
	logModule = "extract"

	MediaTypePDF         = "application/pdf"
	mediaTypeOctetStream = "application/octet-stream"
)

var ErrInvalidUTF8 = errors.New("file is not valid UTF-8 text")

// Upload is one file handed in with a turn.
type Upload struct {
	Filename  string
	MediaType string
	Data      []byte
}

// FileError records a file that could not be read. Other files still count.
type FileError struct {
	Filename string `json:"filename"`
	Err      error  `json:"-"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Result is the concatenated text plus any per-file failures.
type Result struct {
	Text     string
	Failures []FileError
}

// PDFReader pulls page texts out of a PDF document.
type PDFReader interface {
	PageTexts(data []byte) ([]string, error)
}

// Extractor is stateless; every turn recomputes its context from scratch.
type Extractor struct {
	pdf    PDFReader
	logger logger.ILogger
}

func NewExtractor(pdf PDFReader, log logger.ILogger) *Extractor {
	if pdf == nil {
		pdf = LedongthucReader{}
	}
	return &Extractor{pdf: pdf, logger: log}
}

// Extract concatenates the text of every readable file in the given order.
func (e *Extractor) Extract(ctx context.Context, files []Upload) Result {
	var (
		sb  strings.Builder
		out Result
	)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			out.Failures = append(out.Failures, FileError{Filename: f.Filename, Err: err})
			continue
		}

		text, err := e.extractOne(f)
		if err != nil {
			e.logger.Warn(logModule, "skipping unreadable upload", map[string]interface{}{
				"filename":   f.Filename,
				"media_type": f.MediaType,
				"error":      err.Error(),
			})
			out.Failures = append(out.Failures, FileError{Filename: f.Filename, Err: err})
			continue
		}
		sb.WriteString(text)
	}

	out.Text = sb.String()
	return out
}

func (e *Extractor) extractOne(f Upload) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()

	if IsPDF(f) {
		return e.extractPDF(f.Data)
	}
	if !utf8.Valid(f.Data) {
		return "", ErrInvalidUTF8
	}
	return string(f.Data), nil
}

func (e *Extractor) extractPDF(data []byte) (string, error) {
	pages, err := e.pdf.PageTexts(data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		sb.WriteString(page)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// IsPDF trusts the declared media type or extension, and sniffs the content
// only when the browser sent nothing useful.
func IsPDF(f Upload) bool {
	mediaType := strings.ToLower(strings.TrimSpace(f.MediaType))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}

	switch {
	case mediaType == MediaTypePDF:
		return true
	case strings.EqualFold(filepath.Ext(f.Filename), ".pdf"):
		return true
	case mediaType == "" || mediaType == mediaTypeOctetStream:
		return mimetype.Detect(f.Data).Is(MediaTypePDF)
	default:
		return false
	}
}
