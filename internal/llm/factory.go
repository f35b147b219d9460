package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/inmueble/internal/model"
)

// NewProvider creates a new inference provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (fallback disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown inference provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromTier converts a model.TierConfig to llm.Config. Missing API keys
// and base URLs are taken from the environment.
func ConfigFromTier(tier model.TierConfig) Config {
	cfg := Config{
		Provider:   tier.Provider,
		Model:      tier.Model,
		APIKey:     tier.APIKey,
		BaseURL:    tier.BaseURL,
		Timeout:    tier.Timeout,
		MaxTokens:  tier.MaxTokens,
		HTTPProxy:  os.Getenv("HTTP_PROXY"),
		HTTPSProxy: os.Getenv("HTTPS_PROXY"),
		NoProxy:    os.Getenv("NO_PROXY"),
	}

	switch strings.ToLower(tier.Provider) {
	case "openai":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if cfg.BaseURL == "" {
			cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}

	return cfg
}
