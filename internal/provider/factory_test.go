package provider_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/docgenie/internal/config"
	"github.com/julianshen/docgenie/internal/provider"
	"github.com/julianshen/docgenie/internal/provider/anthropic"
	"github.com/julianshen/docgenie/internal/provider/openai"
)

func compatible(name, source, key string) []config.OpenAICompatibleConfig {
	return []config.OpenAICompatibleConfig{{
		Name:         name,
		BaseURL:      "https://llm.example.com/v1",
		APIKeySource: source,
		APIKey:       key,
		ExtraHeaders: map[string]string{"HTTP-Referer": "https://docgenie.example.com"},
	}}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		selected   string
		compatible []config.OpenAICompatibleConfig
		want       provider.LLMProvider
		wantErr    string
	}{
		{
			name:     "anthropic from env",
			env:      map[string]string{"ANTHROPIC_API_KEY": "ak"},
			selected: "anthropic",
			want:     &anthropic.Provider{},
		},
		{
			name:     "anthropic without key",
			env:      map[string]string{"ANTHROPIC_API_KEY": ""},
			selected: "anthropic",
			wantErr:  "ANTHROPIC_API_KEY",
		},
		{
			name:       "compatible provider from env",
			env:        map[string]string{"OPENROUTER_API_KEY": "ok"},
			selected:   "openrouter",
			compatible: compatible("openrouter", "env", ""),
			want:       &openai.Provider{},
		},
		{
			name:       "compatible provider from config",
			selected:   "openai",
			compatible: compatible("openai", "config", "sk-config"),
			want:       &openai.Provider{},
		},
		{
			name:       "hyphenated name maps to env var",
			env:        map[string]string{"LOCAL_LLM_API_KEY": "k"},
			selected:   "local-llm",
			compatible: compatible("local-llm", "env", ""),
			want:       &openai.Provider{},
		},
		{
			name:       "compatible provider without key",
			env:        map[string]string{"OPENAI_API_KEY": ""},
			selected:   "openai",
			compatible: compatible("openai", "env", ""),
			wantErr:    "OPENAI_API_KEY",
		},
		{
			name:     "unknown provider",
			selected: "mystery",
			wantErr:  "unknown provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := config.DefaultConfig()
			cfg.Provider.Default = tt.selected
			cfg.Provider.OpenAI = tt.compatible

			p, err := provider.NewProvider(cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}

func TestRegistered(t *testing.T) {
	assert.Equal(t, []string{"anthropic", "openai"}, provider.Registered())
}
