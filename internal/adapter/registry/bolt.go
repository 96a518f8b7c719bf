package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"docrag/internal/domain"
)

var bucketRegistry = []byte("registry")

// BoltRegistry is the durable document catalog. The full mapping is loaded
// at open and the bucket is rewritten wholesale on every mutation; the
// registry is small so there is no incremental persistence.
type BoltRegistry struct {
	db   *bbolt.DB
	mu   sync.RWMutex
	docs map[string]domain.Document
}

type docMeta struct {
	Filename   string `json:"filename"`
	UploadTime int64  `json:"upload_time"`
	ChunkCount int    `json:"chunk_count"`
}

// NewBoltRegistry opens the registry bucket and loads all entries.
func NewBoltRegistry(db *bbolt.DB) (*BoltRegistry, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRegistry)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry bucket: %w", err)
	}

	r := &BoltRegistry{
		db:   db,
		docs: make(map[string]domain.Document),
	}

	if err := r.load(); err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	return r, nil
}

func (r *BoltRegistry) load() error {
	return r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRegistry)
		return b.ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return nil // Skip corrupted entries
			}
			r.docs[string(k)] = domain.Document{
				ID:         string(k),
				Filename:   meta.Filename,
				UploadTime: time.Unix(meta.UploadTime, 0),
				ChunkCount: meta.ChunkCount,
			}
			return nil
		})
	})
}

// persist rewrites the bucket from the in-memory map in one transaction.
// Callers must hold the write lock.
func (r *BoltRegistry) persist() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketRegistry); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketRegistry)
		if err != nil {
			return err
		}
		for id, doc := range r.docs {
			meta := docMeta{
				Filename:   doc.Filename,
				UploadTime: doc.UploadTime.Unix(),
				ChunkCount: doc.ChunkCount,
			}
			data, err := json.Marshal(meta)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Register inserts or overwrites the entry for doc.ID. Re-uploading a file
// with the same name maps to the same ID, so last write wins.
func (r *BoltRegistry) Register(doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.docs[doc.ID]
	r.docs[doc.ID] = doc

	if err := r.persist(); err != nil {
		if existed {
			r.docs[doc.ID] = prev
		} else {
			delete(r.docs, doc.ID)
		}
		return fmt.Errorf("failed to persist registry: %w", err)
	}
	return nil
}

// GetAll returns all documents ordered by upload time, then filename.
func (r *BoltRegistry) GetAll() ([]domain.Document, error) {
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

// Clear empties the registry and immediately persists the empty state.
func (r *BoltRegistry) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.docs
	r.docs = make(map[string]domain.Document)

	if err := r.persist(); err != nil {
		r.docs = prev
		return fmt.Errorf("failed to persist cleared registry: %w", err)
	}
	return nil
}
