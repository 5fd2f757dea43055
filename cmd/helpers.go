package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/hazemfarra/argus/internal/config"
	"github.com/hazemfarra/argus/internal/convlog"
	"github.com/hazemfarra/argus/internal/db"
	"github.com/hazemfarra/argus/internal/embeddings"
	"github.com/hazemfarra/argus/internal/engine"
	"github.com/hazemfarra/argus/internal/index"
	"github.com/hazemfarra/argus/internal/llm"
	"github.com/hazemfarra/argus/internal/records"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `argus init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		_, model = config.DefaultModelsFor(provider)
	}

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, ""), nil
	default:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	}
}

// createIndexFromConfig picks the index implementation named in the config.
func createIndexFromConfig(cfg *config.Config, store *records.Store, embedder embeddings.Embedder) index.Index {
	if cfg.Index == config.IndexChromem {
		return index.NewChromemIndex(store, embedder)
	}
	return index.NewCache(store, embedder)
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// openEngine wires the database, embedder, index and conversation log into a
// ready engine. With withLLM set, a chat provider is attached so Answer
// works. The caller owns the returned database handle.
func openEngine(ctx context.Context, cfg *config.Config, withLLM bool) (*engine.Engine, *db.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	opts := engine.Options{
		TopK:              cfg.Retrieval.TopK,
		Threshold:         cfg.Retrieval.Threshold,
		MaxContextRecords: cfg.Retrieval.MaxContextRecords,
		Model:             cfg.Model,
	}
	if withLLM {
		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		opts.Provider = provider
	}

	store := records.NewStore(database)
	eng := engine.New(store, createIndexFromConfig(cfg, store, embedder), convlog.NewStore(database), opts)

	if err := eng.Refresh(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("building index: %w", err)
	}

	return eng, database, nil
}
