package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .argus.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to argus! Let's configure your intelligence store.")
	fmt.Println()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	model, embeddingModel := DefaultModelsFor(provider)

	// 2. Database location.
	dbPrompt := promptui.Prompt{
		Label:   "Database file path",
		Default: "argus.db",
	}
	dbPath, err := dbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("db path: %w", err)
	}

	// 3. Index implementation.
	indexPrompt := promptui.Select{
		Label: "Select retrieval index",
		Items: []string{
			"flat    — in-memory cosine scan (recommended)",
			"chromem — embedded chromem-go collection",
		},
	}
	indexIdx, _, err := indexPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("index selection: %w", err)
	}
	kinds := []IndexKind{IndexFlat, IndexChromem}
	indexKind := kinds[indexIdx]

	// 4. Similarity threshold.
	thresholdPrompt := promptui.Prompt{
		Label:   "Similarity threshold (0-1, results must score above this)",
		Default: "0.1",
		Validate: func(s string) error {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v < 0 || v >= 1 {
				return fmt.Errorf("must be a number in [0, 1)")
			}
			return nil
		},
	}
	thresholdStr, err := thresholdPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}
	threshold, _ := strconv.ParseFloat(thresholdStr, 64)

	// Build the config from defaults plus the answers.
	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = model
	cfg.EmbeddingProvider = provider
	cfg.EmbeddingModel = embeddingModel
	cfg.DBPath = dbPath
	cfg.Index = indexKind
	cfg.Retrieval.Threshold = threshold

	// Check for API key.
	envVar := APIKeyEnvVar(provider)
	if envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running argus.\n", envVar)
		}
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, err
	}
	fmt.Printf("\nConfiguration written to %s\n", DefaultPath)

	return cfg, nil
}
