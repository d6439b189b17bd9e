package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// LedongthucReader reads PDFs with github.com/ledongthuc/pdf.
type LedongthucReader struct{}

// PageTexts returns the plain text of each page, in page order. A page whose
// content cannot be interpreted yields "" rather than failing the document.
func (LedongthucReader) PageTexts(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := r.NumPage()
	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}
