package port

import "docrag/internal/domain"

// Registry is the durable catalog of ingested documents. Implementations
// load the full mapping at open and rewrite it wholesale on every mutation.
type Registry interface {
	// Register inserts or overwrites the entry for doc.ID and persists.
	Register(doc domain.Document) error

	// GetAll returns all registered documents, oldest upload first.
	GetAll() ([]domain.Document, error)

	// Clear empties the registry and immediately persists the empty state.
	Clear() error
}
