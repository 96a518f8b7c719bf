package port

import "docrag/internal/domain"

type Chunker interface {
	Chunk(docID, source string, pages []domain.Page) []domain.Chunk
}
