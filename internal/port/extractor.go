package port

import "docrag/internal/domain"

// PageExtractor pulls per-page plain text out of a document file.
type PageExtractor interface {
	Extract(path string) ([]domain.Page, error)
}
