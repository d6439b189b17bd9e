package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"project-echo-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePDF implements PDFReader for testing
type fakePDF struct {
	pages []string
	err   error
}

func (f fakePDF) PageTexts(data []byte) ([]string, error) {
	return f.pages, f.err
}

// buildBlankPDF assembles a minimal, valid PDF whose pages have empty content streams.
func buildBlankPDF(pageCount int) []byte {
	var objects []string
	kids := ""
	for i := 0; i < pageCount; i++ {
		pageObj := 3 + i*2
		kids += fmt.Sprintf("%d 0 R ", pageObj)
	}
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pageCount))
	for i := 0; i < pageCount; i++ {
		contentObj := 4 + i*2
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R >>", contentObj),
			"<< /Length 0 >>\nstream\n\nendstream",
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func newTestExtractor(pdf PDFReader) *Extractor {
	return NewExtractor(pdf, logger.NewNopLogger())
}

func TestExtract_NoFiles(t *testing.T) {
	res := newTestExtractor(nil).Extract(context.Background(), nil)

	assert.Equal(t, "", res.Text)
	assert.Empty(t, res.Failures)
}

func TestExtract_PlainTextVerbatim(t *testing.T) {
	res := newTestExtractor(nil).Extract(context.Background(), []Upload{
		{Filename: "notes.txt", MediaType: "text/plain", Data: []byte("line one\nline two")},
	})

	assert.Equal(t, "line one\nline two", res.Text)
}

func TestExtract_PlainTextConcatenationIsAssociative(t *testing.T) {
	ex := newTestExtractor(nil)
	a := Upload{Filename: "a.txt", MediaType: "text/plain", Data: []byte("alpha\n")}
	b := Upload{Filename: "b.md", MediaType: "text/markdown", Data: []byte("beta")}

	combined := ex.Extract(context.Background(), []Upload{a, b}).Text
	separate := ex.Extract(context.Background(), []Upload{a}).Text + ex.Extract(context.Background(), []Upload{b}).Text

	assert.Equal(t, separate, combined)
	assert.Equal(t, "alpha\nbeta", combined)
}

func TestExtract_PDFSkipsEmptyPages(t *testing.T) {
	ex := newTestExtractor(fakePDF{pages: []string{"Page one", "   ", "", "Page four"}})

	res := ex.Extract(context.Background(), []Upload{
		{Filename: "deck.pdf", MediaType: MediaTypePDF, Data: []byte("%PDF-1.4")},
	})

	assert.Equal(t, "Page one\nPage four\n", res.Text)
	assert.Empty(t, res.Failures)
}

func TestExtract_FailureIsIsolatedPerFile(t *testing.T) {
	ex := newTestExtractor(fakePDF{err: errors.New("malformed xref")})

	res := ex.Extract(context.Background(), []Upload{
		{Filename: "broken.pdf", MediaType: MediaTypePDF, Data: []byte("junk")},
		{Filename: "binary.txt", MediaType: "text/plain", Data: []byte{0xff, 0xfe, 0xfd}},
		{Filename: "ok.txt", MediaType: "text/plain", Data: []byte("survivor")},
	})

	assert.Equal(t, "survivor", res.Text)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "broken.pdf", res.Failures[0].Filename)
	assert.Equal(t, "binary.txt", res.Failures[1].Filename)
	assert.ErrorIs(t, res.Failures[1], ErrInvalidUTF8)
}

func TestExtract_AllFailedYieldsEmpty(t *testing.T) {
	ex := newTestExtractor(fakePDF{err: errors.New("encrypted")})

	res := ex.Extract(context.Background(), []Upload{
		{Filename: "secret.pdf", MediaType: MediaTypePDF},
	})

	assert.Equal(t, "", res.Text)
	assert.Len(t, res.Failures, 1)
}

func TestExtract_ParserPanicIsRecovered(t *testing.T) {
	ex := newTestExtractor(panickyPDF{})

	res := ex.Extract(context.Background(), []Upload{
		{Filename: "evil.pdf", MediaType: MediaTypePDF},
		{Filename: "fine.txt", MediaType: "text/plain", Data: []byte("fine")},
	})

	assert.Equal(t, "fine", res.Text)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Error(), "panic")
}

type panickyPDF struct{}

func (panickyPDF) PageTexts([]byte) ([]string, error) {
	panic("index out of range")
}

func TestExtract_BlankPDFYieldsEmptyString(t *testing.T) {
	ex := newTestExtractor(LedongthucReader{})

	res := ex.Extract(context.Background(), []Upload{
		{Filename: "blank.pdf", MediaType: MediaTypePDF, Data: buildBlankPDF(2)},
	})

	assert.Empty(t, res.Failures)
	assert.Equal(t, "", res.Text)
}

func TestLedongthucReader_NotAPDF(t *testing.T) {
	_, err := LedongthucReader{}.PageTexts([]byte("hello, definitely not a pdf"))
	assert.Error(t, err)
}

func TestIsPDF(t *testing.T) {
	pdfBytes := buildBlankPDF(1)

	tests := []struct {
		name   string
		upload Upload
		want   bool
	}{
		{"declared type", Upload{Filename: "x", MediaType: "application/pdf"}, true},
		{"declared type with params", Upload{Filename: "x", MediaType: "application/pdf; charset=binary"}, true},
		{"extension", Upload{Filename: "Report.PDF", MediaType: "text/plain"}, true},
		{"sniffed when untyped", Upload{Filename: "upload", Data: pdfBytes}, true},
		{"sniffed octet-stream", Upload{Filename: "upload", MediaType: "application/octet-stream", Data: pdfBytes}, true},
		{"plain text", Upload{Filename: "notes.txt", MediaType: "text/plain", Data: []byte("%PDF-1.4")}, false},
		{"untyped text", Upload{Filename: "notes", Data: []byte("just words")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPDF(tt.upload))
		})
	}
}
