package integrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianshen/docgenie/internal/provider"
)

// DefaultMaxTokens caps completions when the caller passes zero.
const DefaultMaxTokens = 4096

// LLMCompleter wraps an LLMProvider to collect streamed text into a single string.
type LLMCompleter struct {
	provider  provider.LLMProvider
	model     string
	maxTokens int
}

// NewLLMCompleter creates a new LLMCompleter.
func NewLLMCompleter(p provider.LLMProvider, model string, maxTokens int) *LLMCompleter {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &LLMCompleter{provider: p, model: model, maxTokens: maxTokens}
}

// Complete sends a system and user prompt to the LLM and returns the full
// response text.
func (c *LLMCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	req := provider.CompletionRequest{
		Model:     c.model,
		System:    system,
		Messages:  []provider.Message{provider.NewUserMessage(prompt)},
		MaxTokens: c.maxTokens,
	}

	ch, err := c.provider.Stream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}

	var parts []string
	for evt := range ch {
		switch evt.Type {
		case provider.EventTextDelta:
			parts = append(parts, evt.Text)
		case provider.EventError:
			// Drain so the provider goroutine can exit.
			for range ch {
			}
			return "", fmt.Errorf("llm stream error: %w", evt.Error)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", fmt.Errorf("llm complete: empty response")
	}
	return text, nil
}
