package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// IndexKind selects the retrieval index implementation.
type IndexKind string

const (
	// IndexFlat is the in-memory cosine-scan index. It is the default and
	// the right choice at the corpus sizes argus targets.
	IndexFlat IndexKind = "flat"
	// IndexChromem backs retrieval with an embedded chromem-go collection.
	IndexChromem IndexKind = "chromem"
)

// Config is the top-level argus configuration, corresponding to .argus.yml.
type Config struct {
	Provider          ProviderType    `yaml:"provider" koanf:"provider"`
	Model             string          `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType    `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string          `yaml:"embedding_model" koanf:"embedding_model"`
	DBPath            string          `yaml:"db_path" koanf:"db_path"`
	Index             IndexKind       `yaml:"index" koanf:"index"`
	Retrieval         RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Server            ServerConfig    `yaml:"server" koanf:"server"`
}

// RetrievalConfig tunes similarity search and context assembly.
type RetrievalConfig struct {
	TopK              int     `yaml:"top_k" koanf:"top_k"`
	Threshold         float64 `yaml:"threshold" koanf:"threshold"`
	MaxContextRecords int     `yaml:"max_context_records" koanf:"max_context_records"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
}
