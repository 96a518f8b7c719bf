package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.Size != 1000 {
		t.Errorf("expected Size=1000, got %d", cfg.Chunking.Size)
	}
	if cfg.Chunking.Overlap != 200 {
		t.Errorf("expected Overlap=200, got %d", cfg.Chunking.Overlap)
	}
	if cfg.Retrieve.TopK != 4 {
		t.Errorf("expected TopK=4, got %d", cfg.Retrieve.TopK)
	}
	if cfg.Embedding.Model != "mistral-embed" {
		t.Errorf("expected model mistral-embed, got %s", cfg.Embedding.Model)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "docrag.yaml")

	content := `
chunking:
  size: 500
  overlap: 50
retrieve:
  top_k: 8
llm:
  model: mistral-small
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chunking.Size != 500 {
		t.Errorf("expected Size=500, got %d", cfg.Chunking.Size)
	}
	if cfg.Chunking.Overlap != 50 {
		t.Errorf("expected Overlap=50, got %d", cfg.Chunking.Overlap)
	}
	if cfg.Retrieve.TopK != 8 {
		t.Errorf("expected TopK=8, got %d", cfg.Retrieve.TopK)
	}
	if cfg.LLM.Model != "mistral-small" {
		t.Errorf("expected model mistral-small, got %s", cfg.LLM.Model)
	}
	// Untouched sections keep their defaults.
	if cfg.Embedding.Dimension != 1024 {
		t.Errorf("expected Dimension=1024, got %d", cfg.Embedding.Dimension)
	}
}

func TestLoad_InvalidOverlap(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "docrag.yaml")

	content := `
chunking:
  size: 100
  overlap: 100
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected validation error for overlap >= size")
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "docrag.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":9090"
	cfg.Chunking.Size = 256

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", loaded.Server.Addr)
	}
	if loaded.Chunking.Size != 256 {
		t.Errorf("expected Size=256, got %d", loaded.Chunking.Size)
	}
}

func TestDBPath(t *testing.T) {
	cfg := DefaultConfig()

	got := cfg.DBPath("/data")
	want := filepath.Join("/data", ".docrag", "docrag.db")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	cfg.Storage.Path = "/var/lib/docrag.db"
	if got := cfg.DBPath("/data"); got != "/var/lib/docrag.db" {
		t.Errorf("absolute path should win, got %s", got)
	}
}
