package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.Index != IndexFlat {
		t.Errorf("expected default index %q, got %q", IndexFlat, cfg.Index)
	}
	if cfg.DBPath != "argus.db" {
		t.Errorf("expected default db_path %q, got %q", "argus.db", cfg.DBPath)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("expected default top_k 5, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.Threshold != 0.1 {
		t.Errorf("expected default threshold 0.1, got %f", cfg.Retrieval.Threshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.argus.yml")

	original := DefaultConfig()
	original.Provider = ProviderOllama
	original.Model = "llama3"
	original.EmbeddingProvider = ProviderOllama
	original.EmbeddingModel = "nomic-embed-text"
	original.Index = IndexChromem
	original.Retrieval.Threshold = 0.25
	original.Retrieval.TopK = 10
	original.Server.Port = 9000

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Index != original.Index {
		t.Errorf("index: got %q, want %q", loaded.Index, original.Index)
	}
	if loaded.Retrieval.Threshold != original.Retrieval.Threshold {
		t.Errorf("threshold: got %f, want %f", loaded.Retrieval.Threshold, original.Retrieval.Threshold)
	}
	if loaded.Retrieval.TopK != original.Retrieval.TopK {
		t.Errorf("top_k: got %d, want %d", loaded.Retrieval.TopK, original.Retrieval.TopK)
	}
	if loaded.Server.Port != original.Server.Port {
		t.Errorf("port: got %d, want %d", loaded.Server.Port, original.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("ARGUS_PROVIDER", "ollama")
	t.Setenv("ARGUS_RETRIEVAL__TOP_K", "7")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOllama {
		t.Errorf("env override should win: got %q, want %q", loaded.Provider, ProviderOllama)
	}
	if loaded.Retrieval.TopK != 7 {
		t.Errorf("nested env override should win: got %d, want 7", loaded.Retrieval.TopK)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }, "provider is required"},
		{"unknown provider", func(c *Config) { c.Provider = "cohere" }, "invalid provider"},
		{"empty db path", func(c *Config) { c.DBPath = "" }, "db_path is required"},
		{"unknown index", func(c *Config) { c.Index = "annoy" }, "invalid index"},
		{"negative top_k", func(c *Config) { c.Retrieval.TopK = -1 }, "top_k"},
		{"threshold too high", func(c *Config) { c.Retrieval.Threshold = 1.0 }, "threshold"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("openai: got %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("ollama needs no key, got %q", got)
	}
}
