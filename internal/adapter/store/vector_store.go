package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"docrag/internal/domain"
	"docrag/internal/port"
)

var bucketVectors = []byte("vectors")

// DefaultTopK is used when a caller passes k <= 0 to Search.
const DefaultTopK = 4

// BoltVectorStore persists (vector, text, metadata) triples in BoltDB and
// serves brute-force cosine search from an in-memory cache. The cache is
// only updated after a transaction commits, so a failed mutation leaves
// the prior contents queryable.
type BoltVectorStore struct {
	db       *bbolt.DB
	embedder port.Embedder
	mu       sync.RWMutex
	// entries keeps insertion order; search ties break on it.
	entries []entry
	byID    map[string]int
}

type entry struct {
	id     string
	vector []float32
	text   string
	docID  string
	source string
	page   int
	seq    int
}

type storedRecord struct {
	Vector []float32 `json:"v"`
	Text   string    `json:"t"`
	DocID  string    `json:"d"`
	Source string    `json:"s"`
	Page   int       `json:"p"`
	Seq    int       `json:"q"`
	Order  uint64    `json:"o"`
}

// NewBoltVectorStore opens the vectors bucket and loads existing records.
func NewBoltVectorStore(db *bbolt.DB, embedder port.Embedder) (*BoltVectorStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vectors bucket: %w", err)
	}

	s := &BoltVectorStore{
		db:       db,
		embedder: embedder,
		byID:     make(map[string]int),
	}

	if err := s.loadVectors(); err != nil {
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	return s, nil
}

// loadVectors rebuilds the in-memory cache in original insertion order.
func (s *BoltVectorStore) loadVectors() error {
	type ordered struct {
		e     entry
		order uint64
	}
	var loaded []ordered

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		return b.ForEach(func(k, v []byte) error {
			var rec storedRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil // Skip corrupted entries
			}
			loaded = append(loaded, ordered{
				e: entry{
					id:     string(k),
					vector: rec.Vector,
					text:   rec.Text,
					docID:  rec.DocID,
					source: rec.Source,
					page:   rec.Page,
					seq:    rec.Seq,
				},
				order: rec.Order,
			})
			return nil
		})
	})
	if err != nil {
		return err
	}

	sort.Slice(loaded, func(i, j int) bool { return loaded[i].order < loaded[j].order })

	s.entries = make([]entry, 0, len(loaded))
	for _, o := range loaded {
		s.byID[o.e.id] = len(s.entries)
		s.entries = append(s.entries, o.e)
	}
	return nil
}

// Add embeds the chunk texts in one batched provider call and inserts all
// records in a single transaction. Re-adding an existing chunk ID updates
// it in place without disturbing other vectors.
func (s *BoltVectorStore) Add(chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := s.embedder.Embed(texts)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	dim := s.embedder.Dimension()
	for i, emb := range embeddings {
		if len(emb) != dim {
			return fmt.Errorf("vector dimension mismatch for chunk %s: expected %d, got %d", chunks[i].ID, dim, len(emb))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]entry, 0, len(chunks))
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for i, chunk := range chunks {
			order, err := b.NextSequence()
			if err != nil {
				return err
			}
			rec := storedRecord{
				Vector: embeddings[i],
				Text:   chunk.Text,
				DocID:  chunk.DocID,
				Source: chunk.Source,
				Page:   chunk.Page,
				Seq:    chunk.Seq,
				Order:  order,
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(chunk.ID), data); err != nil {
				return err
			}
			added = append(added, entry{
				id:     chunk.ID,
				vector: embeddings[i],
				text:   chunk.Text,
				docID:  chunk.DocID,
				source: chunk.Source,
				page:   chunk.Page,
				seq:    chunk.Seq,
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store vectors: %w", err)
	}

	for _, e := range added {
		if idx, ok := s.byID[e.id]; ok {
			s.entries[idx] = e
			continue
		}
		s.byID[e.id] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

// Search embeds the query and returns the top-k chunks by cosine
// similarity, ties broken by insertion order. An empty store returns an
// empty result without calling the embedding provider.
func (s *BoltVectorStore) Search(query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	s.mu.RLock()
	empty := len(s.entries) == 0
	s.mu.RUnlock()
	if empty {
		return nil, nil
	}

	vec, err := s.embedder.EmbedOne(query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	if len(vec) != s.embedder.Dimension() {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.embedder.Dimension(), len(vec))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		e     entry
		score float64
	}
	scores := make([]scored, 0, len(s.entries))
	for _, e := range s.entries {
		scores = append(scores, scored{e: e, score: cosineSimilarity(vec, e.vector)})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]domain.ScoredChunk, k)
	for i := 0; i < k; i++ {
		results[i] = domain.ScoredChunk{
			Chunk: domain.Chunk{
				ID:     scores[i].e.id,
				DocID:  scores[i].e.docID,
				Source: scores[i].e.source,
				Page:   scores[i].e.page,
				Seq:    scores[i].e.seq,
				Text:   scores[i].e.text,
			},
			Score: scores[i].score,
		}
	}
	return results, nil
}

// DeleteByDocument removes every record belonging to the document.
func (s *BoltVectorStore) DeleteByDocument(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, e := range s.entries {
		if e.docID == docID {
			ids = append(ids, e.id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete vectors for document %s: %w", docID, err)
	}

	kept := make([]entry, 0, len(s.entries)-len(ids))
	s.byID = make(map[string]int, len(s.entries)-len(ids))
	for _, e := range s.entries {
		if e.docID == docID {
			continue
		}
		s.byID[e.id] = len(kept)
		kept = append(kept, e)
	}
	s.entries = kept
	return nil
}

// Clear drops and recreates the vectors bucket in a single transaction:
// either every vector is gone and the store is immediately reusable, or
// the call fails and the prior contents remain queryable.
func (s *BoltVectorStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketVectors); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketVectors)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear vector store: %w", err)
	}

	s.entries = nil
	s.byID = make(map[string]int)
	return nil
}

// Count returns the number of stored vectors.
func (s *BoltVectorStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Sources returns chunk counts grouped by source filename. Best-effort
// input for the registry-absent document listing fallback.
func (s *BoltVectorStore) Sources() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make(map[string]int)
	for _, e := range s.entries {
		sources[e.source]++
	}
	return sources, nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
