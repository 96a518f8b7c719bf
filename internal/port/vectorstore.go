package port

import "docrag/internal/domain"

// VectorStore is a persistent index of (vector, text, metadata) triples
// supporting insertion and nearest-neighbor search.
type VectorStore interface {
	// Add embeds the chunk texts and durably inserts them. Safe to call
	// incrementally across uploads without disturbing prior vectors.
	Add(chunks []domain.Chunk) error

	// Search embeds the query and returns the top-k chunks by similarity,
	// ties broken by insertion order. An empty store yields an empty
	// result, not an error. k <= 0 falls back to the default of 4.
	Search(query string, k int) ([]domain.ScoredChunk, error)

	// DeleteByDocument removes every record belonging to the document.
	DeleteByDocument(docID string) error

	// Clear deletes all indexed vectors. Either everything is gone and the
	// store is immediately reusable, or it fails and the prior contents
	// remain queryable.
	Clear() error

	// Count returns the number of stored vectors.
	Count() (int, error)

	// Sources returns chunk counts grouped by source filename. Used as a
	// best-effort document listing when the registry is unavailable.
	Sources() (map[string]int, error)
}
