package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"docrag/internal/adapter/fs"
	"docrag/internal/domain"
	"docrag/internal/port"
)

// ErrNotPDF rejects uploads that are not PDF files.
var ErrNotPDF = errors.New("only PDF files are allowed")

// IngestUseCase runs the ingestion pipeline: extract pages, chunk, embed,
// insert into the vector store, then register the document. The registry
// write deliberately follows the store insert so a provider failure never
// leaves a registry entry without matching vectors.
type IngestUseCase struct {
	extractor port.PageExtractor
	chunker   port.Chunker
	store     port.VectorStore
	registry  port.Registry
	walker    *fs.Walker
	workers   int
}

// NewIngestUseCase creates an ingest use case.
func NewIngestUseCase(
	extractor port.PageExtractor,
	chunker port.Chunker,
	store port.VectorStore,
	registry port.Registry,
	walker *fs.Walker,
	workers int,
) *IngestUseCase {
	if workers <= 0 {
		workers = 1
	}
	return &IngestUseCase{
		extractor: extractor,
		chunker:   chunker,
		store:     store,
		registry:  registry,
		walker:    walker,
		workers:   workers,
	}
}

// FileResult describes one ingested file.
type FileResult struct {
	Filename string
	DocID    string
	Chunks   int
	Pages    int
}

// IngestResult aggregates a bulk ingestion run.
type IngestResult struct {
	FilesProcessed int
	ChunksCreated  int
	Errors         []string
}

// IngestFile ingests a single PDF. Re-uploading a file with the same name
// purges its stale vectors before re-insert, so the store never holds two
// chunk sets for one document. Zero extractable pages is not an error:
// the document is registered with 0 chunks.
func (u *IngestUseCase) IngestFile(path string) (*FileResult, error) {
	filename := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, filename)
	}

	pages, err := u.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", filename, err)
	}

	docID := DocumentID(filename)
	chunks := u.chunker.Chunk(docID, filename, pages)

	if err := u.store.DeleteByDocument(docID); err != nil {
		return nil, fmt.Errorf("failed to purge stale vectors for %s: %w", filename, err)
	}
	if err := u.store.Add(chunks); err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", filename, err)
	}

	doc := domain.Document{
		ID:         docID,
		Filename:   filename,
		UploadTime: time.Now(),
		ChunkCount: len(chunks),
	}
	if err := u.registry.Register(doc); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", filename, err)
	}

	return &FileResult{
		Filename: filename,
		DocID:    docID,
		Chunks:   len(chunks),
		Pages:    len(pages),
	}, nil
}

// IngestDir ingests every matching file under root, fanning out across a
// bounded worker pool. Per-file failures are collected, not fatal.
func (u *IngestUseCase) IngestDir(root string, progress func(processed, total int)) (*IngestResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	result := &IngestResult{}
	if len(files) == 0 {
		return result, nil
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		processed int
	)
	jobs := make(chan string)

	for i := 0; i < u.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				fileResult, err := u.IngestFile(path)

				mu.Lock()
				if err != nil {
					result.Errors = append(result.Errors, err.Error())
				} else {
					result.FilesProcessed++
					result.ChunksCreated += fileResult.Chunks
				}
				processed++
				if progress != nil {
					progress(processed, len(files))
				}
				mu.Unlock()
			}
		}()
	}

	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	return result, nil
}

// DocumentID derives the document identity from the filename, so
// re-uploading the same name produces the same ID (last write wins).
func DocumentID(filename string) string {
	hash := sha256.Sum256([]byte(filename))
	return hex.EncodeToString(hash[:8])
}
