package usecase

import (
	"fmt"
	"sort"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// DocumentsUseCase serves the document catalog and the corpus-wide clear.
type DocumentsUseCase struct {
	registry port.Registry
	store    port.VectorStore
}

func NewDocumentsUseCase(registry port.Registry, store port.VectorStore) *DocumentsUseCase {
	return &DocumentsUseCase{
		registry: registry,
		store:    store,
	}
}

// List returns the registered documents. When the registry is empty (for
// example after losing its durable file) it reconstructs an approximate
// list by grouping vector-store contents by source filename. That
// reconstruction is best-effort, not authoritative: upload times are lost
// and chunk counts come from whatever vectors survived. The second return
// value reports whether the list came from the registry.
func (u *DocumentsUseCase) List() ([]domain.Document, bool, error) {
	docs, err := u.registry.GetAll()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read registry: %w", err)
	}
	if len(docs) > 0 {
		return docs, true, nil
	}

	sources, err := u.store.Sources()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read vector store sources: %w", err)
	}

	approx := make([]domain.Document, 0, len(sources))
	for source, count := range sources {
		approx = append(approx, domain.Document{
			ID:         DocumentID(source),
			Filename:   source,
			ChunkCount: count,
		})
	}
	sort.Slice(approx, func(i, j int) bool { return approx[i].Filename < approx[j].Filename })

	return approx, false, nil
}

// Clear wipes the whole corpus: vector store first, registry second. A
// failed store clear aborts before the registry is touched, so either
// both are emptied or the prior state stays intact and queryable.
func (u *DocumentsUseCase) Clear() error {
	if err := u.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear vector store: %w", err)
	}
	if err := u.registry.Clear(); err != nil {
		return fmt.Errorf("vector store cleared but registry clear failed: %w", err)
	}
	return nil
}
