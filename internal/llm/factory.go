package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/auralabs/aura/internal/config"
)

// NewProvider creates an inference provider based on configuration.
func NewProvider(cfg *config.Config) (Provider, error) {
	providerName := cfg.LLM.DefaultProvider
	if providerName == "" {
		providerName = "gemini"
	}

	providerCfg, exists := cfg.LLM.Providers[providerName]
	if !exists {
		return nil, fmt.Errorf("provider '%s' not found in configuration", providerName)
	}

	// Config key wins; environment variable is the fallback
	apiKey := providerCfg.APIKey
	if apiKey == "" {
		apiKey = getAPIKeyFromEnv(providerName)
	}

	llmCfg := &ProviderConfig{
		Name:     providerName,
		Endpoint: providerCfg.Endpoint,
		APIKey:   apiKey,
		Model:    providerCfg.Model,
	}
	if providerCfg.TimeoutSec > 0 {
		llmCfg.Timeout = time.Duration(providerCfg.TimeoutSec) * time.Second
	}

	return NewProviderByName(providerName, llmCfg)
}

// getAPIKeyFromEnv retrieves the API key from standard environment variables.
func getAPIKeyFromEnv(providerName string) string {
	envVars := map[string]string{
		"gemini": "GEMINI_API_KEY",
	}
	if envVar, ok := envVars[providerName]; ok {
		return os.Getenv(envVar)
	}
	return ""
}

// NewProviderByName creates a specific provider by name. All providers are
// wrapped with MetricsProvider for call counting and latency tracking.
func NewProviderByName(name string, cfg *ProviderConfig) (Provider, error) {
	var provider Provider

	switch name {
	case "gemini":
		provider = NewGeminiProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}

	metricsProvider := NewMetricsProvider(provider)
	RegisterMetricsProvider(metricsProvider)

	return metricsProvider, nil
}
