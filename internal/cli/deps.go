package cli

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"docrag/config"
	"docrag/internal/adapter/chunker"
	"docrag/internal/adapter/embedding"
	"docrag/internal/adapter/fs"
	"docrag/internal/adapter/llm"
	"docrag/internal/adapter/pdfreader"
	"docrag/internal/adapter/registry"
	"docrag/internal/adapter/store"
	"docrag/internal/port"
	"docrag/internal/usecase"
)

// pipeline bundles the wired components behind the CLI commands.
type pipeline struct {
	db        *bbolt.DB
	registry  *registry.BoltRegistry
	vectors   *store.BoltVectorStore
	ingest    *usecase.IngestUseCase
	answer    *usecase.AnswerUseCase
	documents *usecase.DocumentsUseCase
}

func (p *pipeline) Close() error {
	return p.db.Close()
}

// buildPipeline wires the full stack from config. Commands that never
// touch a provider (list, clear) pass withProviders=false and get mock
// providers instead of requiring API keys.
func buildPipeline(cfg *config.Config, dir string, withProviders bool) (*pipeline, error) {
	if err := cfg.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bbolt.Open(cfg.DBPath(dir), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	embedder, llmClient, err := buildProviders(cfg, withProviders)
	if err != nil {
		db.Close()
		return nil, err
	}

	vectors, err := store.NewBoltVectorStore(db, embedder)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	reg, err := registry.NewBoltRegistry(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	splitter, err := chunker.NewWindowChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		db.Close()
		return nil, err
	}

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	extractor := pdfreader.New()

	return &pipeline{
		db:        db,
		registry:  reg,
		vectors:   vectors,
		ingest:    usecase.NewIngestUseCase(extractor, splitter, vectors, reg, walker, cfg.Ingest.Workers),
		answer:    usecase.NewAnswerUseCase(vectors, llmClient, cfg.Retrieve.TopK),
		documents: usecase.NewDocumentsUseCase(reg, vectors),
	}, nil
}

func buildProviders(cfg *config.Config, withProviders bool) (port.Embedder, port.LLM, error) {
	if !withProviders {
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), &llm.MockLLM{}, nil
	}

	embedTimeout := time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second
	llmTimeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	var embedder port.Embedder
	var err error
	switch cfg.Embedding.Provider {
	case "mistral":
		if cfg.Embedding.BaseURL != "" {
			embedder, err = embedding.NewCompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.BatchSize, embedTimeout)
		} else {
			embedder, err = embedding.NewMistralEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BatchSize, embedTimeout)
		}
	case "openai":
		baseURL := cfg.Embedding.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		embedder, err = embedding.NewCompatibleEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, baseURL, cfg.Embedding.BatchSize, embedTimeout)
	case "mock":
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimension)
	default:
		return nil, nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	var llmClient port.LLM
	switch cfg.LLM.Provider {
	case "mistral":
		if cfg.LLM.BaseURL != "" {
			llmClient, err = llm.NewCompatibleLLM(cfg.LLM.APIKeyEnv, cfg.LLM.Model, cfg.LLM.BaseURL, llmTimeout)
		} else {
			llmClient, err = llm.NewMistralLLM(cfg.LLM.APIKeyEnv, cfg.LLM.Model, llmTimeout)
		}
	case "openai":
		baseURL := cfg.LLM.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		llmClient, err = llm.NewCompatibleLLM(cfg.LLM.APIKeyEnv, cfg.LLM.Model, baseURL, llmTimeout)
	case "mock":
		llmClient = &llm.MockLLM{Response: "mock response"}
	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	return embedder, llmClient, nil
}
