package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianshen/docgenie/internal/config"
)

const anthropicBaseURL = "https://api.anthropic.com"

// Constructor creates an LLMProvider for a base URL and API key.
type Constructor func(baseURL, apiKey string, extraHeaders map[string]string) LLMProvider

// registry holds provider constructors registered by the provider packages'
// init functions.
var registry = map[string]Constructor{}

// RegisterProvider registers a provider constructor by name.
func RegisterProvider(name string, constructor Constructor) {
	registry[name] = constructor
}

// Registered returns the sorted names of registered providers.
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider creates the LLMProvider selected by cfg.Provider.Default. The
// name "anthropic" selects the Anthropic API; any other name must match an
// [[provider.openai_compatible]] entry.
func NewProvider(cfg *config.Config) (LLMProvider, error) {
	name := cfg.Provider.Default
	if name == "anthropic" {
		ctor, ok := registry["anthropic"]
		if !ok {
			return nil, fmt.Errorf("anthropic provider not registered")
		}
		key, err := config.ResolveAPIKey(cfg.Provider.Anthropic.APIKeySource, cfg.Provider.Anthropic.APIKey, "ANTHROPIC_API_KEY")
		if err != nil {
			return nil, fmt.Errorf("resolving Anthropic API key: %w", err)
		}
		return ctor(anthropicBaseURL, key, nil), nil
	}

	ctor, ok := registry["openai"]
	if !ok {
		return nil, fmt.Errorf("openai provider not registered")
	}
	for _, oc := range cfg.Provider.OpenAI {
		if oc.Name != name {
			continue
		}
		envVar := strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_API_KEY"
		key, err := config.ResolveAPIKey(oc.APIKeySource, oc.APIKey, envVar)
		if err != nil {
			return nil, fmt.Errorf("resolving %s API key: %w", name, err)
		}
		return ctor(oc.BaseURL, key, oc.ExtraHeaders), nil
	}
	return nil, fmt.Errorf("unknown provider: %q", name)
}
