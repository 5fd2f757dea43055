package config

// defaultModels maps each provider to its default chat and embedding models.
var defaultModels = map[ProviderType]struct {
	Model          string
	EmbeddingModel string
}{
	ProviderOpenAI: {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             defaultModels[ProviderOpenAI].Model,
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    defaultModels[ProviderOpenAI].EmbeddingModel,
		DBPath:            "argus.db",
		Index:             IndexFlat,
		Retrieval: RetrievalConfig{
			TopK:              5,
			Threshold:         0.1,
			MaxContextRecords: 3,
		},
		Server: ServerConfig{
			Port:     8420,
			AllowAll: false,
		},
	}
}

// DefaultModelsFor returns the default chat and embedding models for a
// provider, falling back to the OpenAI defaults for unknown values.
func DefaultModelsFor(provider ProviderType) (model, embeddingModel string) {
	if m, ok := defaultModels[provider]; ok {
		return m.Model, m.EmbeddingModel
	}
	m := defaultModels[ProviderOpenAI]
	return m.Model, m.EmbeddingModel
}
