package domain

import "time"

// Document is a registry entry for one ingested file. The ID is derived
// from the filename so re-uploading the same name overwrites the entry.
type Document struct {
	ID         string
	Filename   string
	UploadTime time.Time
	ChunkCount int
}

// Page is the raw text of a single document page before chunking.
type Page struct {
	Text   string
	Number int
}

// Chunk is the unit of embedding and retrieval: a bounded span of page
// text. ID is "{docID}_{seq}" and is stable across re-reads of the same
// upload, so re-ingestion is idempotent at the chunk level.
type Chunk struct {
	ID     string
	DocID  string
	Source string
	Page   int
	Seq    int
	Text   string
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Answer is the orchestrator's result: the model's response plus the
// provenance of the context it was grounded on.
type Answer struct {
	Text    string
	Sources []Source
	// Error carries provider failure detail when Text is a fallback
	// message rather than a model completion.
	Error string
}

// Source attributes a retrieved chunk back to its document.
type Source struct {
	Filename string  `json:"filename"`
	Page     int     `json:"page"`
	Score    float64 `json:"score"`
}
