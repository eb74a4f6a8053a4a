package zeroshot

import (
	"fmt"
	"strings"

	"github.com/ppiankov/civictriage/internal/model"
)

// NewProvider creates a classification provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "lexicon", "":
		return NewLexiconProvider(DefaultVocabulary())

	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown classifier provider: %s (supported: lexicon, openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.ClassifierConfig to zeroshot.Config
func ConfigFromModel(modelConfig model.ClassifierConfig) Config {
	return Config{
		Provider:   modelConfig.Provider,
		Model:      modelConfig.Model,
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Timeout:    modelConfig.Timeout,
		MaxTokens:  modelConfig.MaxTokens,
		HTTPProxy:  modelConfig.HTTPProxy,
		HTTPSProxy: modelConfig.HTTPSProxy,
		NoProxy:    modelConfig.NoProxy,
	}
}
