package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Provider   ProviderConfig   `toml:"provider"`
	Scan       ScanConfig       `toml:"scan"`
	Output     OutputConfig     `toml:"output"`
	Signatures SignaturesConfig `toml:"signatures"`
	GitHub     ForgeConfig      `toml:"github"`
	GitLab     ForgeConfig      `toml:"gitlab"`
}

// ProviderConfig holds settings for the LLM used by the summary variant.
type ProviderConfig struct {
	Default   string                   `toml:"default"`
	Model     string                   `toml:"model"`
	MaxTokens int                      `toml:"max_tokens"`
	Anthropic AnthropicProviderConfig  `toml:"anthropic"`
	OpenAI    []OpenAICompatibleConfig `toml:"openai_compatible"`
}

// AnthropicProviderConfig holds Anthropic-specific provider settings.
type AnthropicProviderConfig struct {
	APIKeySource string `toml:"api_key_source"`
	APIKey       string `toml:"api_key"`
}

// OpenAICompatibleConfig holds settings for an OpenAI-compatible provider.
type OpenAICompatibleConfig struct {
	Name         string            `toml:"name"`
	BaseURL      string            `toml:"base_url"`
	APIKeySource string            `toml:"api_key_source"`
	APIKey       string            `toml:"api_key"`
	ExtraHeaders map[string]string `toml:"extra_headers"`
}

// ScanConfig controls which repository entries reach the classifier.
type ScanConfig struct {
	ExcludeDirs       []string `toml:"exclude_dirs"`
	ExcludeExtensions []string `toml:"exclude_extensions"`
	ExcludeGlobs      []string `toml:"exclude_globs"`
	RespectGitignore  bool     `toml:"respect_gitignore"`
	MaxFileSize       int64    `toml:"max_file_size"`
	MaxFiles          int      `toml:"max_files"`
	Concurrency       int      `toml:"concurrency"`
}

// OutputConfig controls where and how documents are written.
type OutputConfig struct {
	Dir            string `toml:"dir"`
	Format         string `toml:"format"` // raw-md, hugo, docusaurus
	PDF            bool   `toml:"pdf"`
	UMLImages      bool   `toml:"uml_images"`
	PlantUMLServer string `toml:"plantuml_server"`
}

// SignaturesConfig points at an optional user signature table.
type SignaturesConfig struct {
	File    string `toml:"file"`
	Replace bool   `toml:"replace"`
}

// ForgeConfig holds access settings for a hosted git forge.
type ForgeConfig struct {
	TokenSource string `toml:"token_source"`
	Token       string `toml:"token"`
	BaseURL     string `toml:"base_url"`
	Ref         string `toml:"ref"`
	RateLimit   int    `toml:"rate_limit"` // requests per second
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Default:   "anthropic",
			Model:     "claude-sonnet-4-5",
			MaxTokens: 4096,
			Anthropic: AnthropicProviderConfig{
				APIKeySource: "env",
			},
		},
		Scan: ScanConfig{
			ExcludeDirs:       []string{".git", "node_modules", "vendor", "__pycache__", "dist", "build", ".venv", "target"},
			ExcludeExtensions: []string{".png", ".jpg", ".jpeg", ".gif", ".ico", ".svg", ".pdf", ".zip", ".tar", ".gz", ".exe", ".bin"},
			RespectGitignore:  true,
			MaxFileSize:       100000,
			Concurrency:       8,
		},
		Output: OutputConfig{
			Dir:            "output",
			Format:         "raw-md",
			PlantUMLServer: "https://www.plantuml.com/plantuml",
		},
		GitHub: ForgeConfig{
			TokenSource: "env",
			RateLimit:   10,
		},
		GitLab: ForgeConfig{
			TokenSource: "env",
			BaseURL:     "https://gitlab.com",
			RateLimit:   10,
		},
	}
}

// Load reads a TOML config file at path on top of DefaultConfig. A missing
// file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.Scan.Concurrency <= 0 {
		cfg.Scan.Concurrency = 1
	}
	return cfg, nil
}
