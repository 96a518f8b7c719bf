package registry

import (
	"sort"
	"sync"

	"docrag/internal/domain"
)

// MemoryRegistry is an in-memory Registry for tests and ephemeral runs.
type MemoryRegistry struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{docs: make(map[string]domain.Document)}
}

func (r *MemoryRegistry) Register(doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *MemoryRegistry) GetAll() ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]domain.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadTime.Equal(docs[j].UploadTime) {
			return docs[i].UploadTime.Before(docs[j].UploadTime)
		}
		return docs[i].Filename < docs[j].Filename
	})
	return docs, nil
}

func (r *MemoryRegistry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = make(map[string]domain.Document)
	return nil
}
