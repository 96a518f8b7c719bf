package pdfreader

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"docrag/internal/domain"
)

// Reader extracts per-page plain text from PDF files.
type Reader struct{}

func New() *Reader {
	return &Reader{}
}

// Extract returns the text of every page in document order. Pages whose
// text cannot be decoded are skipped rather than failing the document; a
// PDF with no extractable text yields an empty page list, not an error.
func (r *Reader) Extract(path string) ([]domain.Page, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	total := doc.NumPage()
	pages := make([]domain.Page, 0, total)

	for i := 1; i <= total; i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, domain.Page{Text: text, Number: i})
	}

	return pages, nil
}
