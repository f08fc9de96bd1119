package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/julianshen/docgenie/internal/provider"
)

func init() {
	provider.RegisterProvider("anthropic", func(baseURL, apiKey string, _ map[string]string) provider.LLMProvider {
		return New(baseURL, apiKey)
	})
}

// Provider implements the LLMProvider interface for the Anthropic Messages API.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a new Anthropic provider.
func New(baseURL, apiKey string) *Provider {
	return &Provider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

type apiRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Stream      bool               `json:"stream"`
	System      string             `json:"system,omitempty"`
	Messages    []provider.Message `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
}

// Stream sends a completion request and returns a channel of StreamEvents
// parsed from the SSE response.
func (p *Provider) Stream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamEvent, error) {
	body, err := json.Marshal(apiRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Stream:      true,
		System:      req.System,
		Messages:    req.Messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("building request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	ch := make(chan provider.StreamEvent)
	go p.processStream(ctx, resp.Body, ch)
	return ch, nil
}

// processStream forwards SSE events as StreamEvents, closing the body and the
// channel when the stream ends.
func (p *Provider) processStream(ctx context.Context, body io.ReadCloser, ch chan<- provider.StreamEvent) {
	defer close(ch)
	defer body.Close()

	send := func(evt provider.StreamEvent) bool {
		select {
		case ch <- evt:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := newSSEScanner(body)
	for scanner.Next() {
		if ctx.Err() != nil {
			send(provider.StreamEvent{Type: provider.EventError, Error: ctx.Err()})
			return
		}
		evt := convertSSEEvent(scanner.Event())
		if evt == nil {
			continue
		}
		if !send(*evt) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		send(provider.StreamEvent{Type: provider.EventError, Error: err})
	}
}

type sseData struct {
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Message struct {
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// convertSSEEvent maps an SSE event to a StreamEvent, or nil for events the
// caller does not need.
func convertSSEEvent(evt sseEvent) *provider.StreamEvent {
	switch evt.Event {
	case "content_block_delta", "message_start", "message_delta", "error":
	case "message_stop":
		return &provider.StreamEvent{Type: provider.EventStop}
	default:
		return nil
	}

	var d sseData
	if err := json.Unmarshal([]byte(evt.Data), &d); err != nil {
		return &provider.StreamEvent{Type: provider.EventError, Error: fmt.Errorf("parsing %s: %w", evt.Event, err)}
	}

	switch evt.Event {
	case "content_block_delta":
		if d.Delta.Type != "text_delta" {
			return nil
		}
		return &provider.StreamEvent{Type: provider.EventTextDelta, Text: d.Delta.Text}
	case "message_start":
		return &provider.StreamEvent{Type: provider.EventUsage, InputTokens: d.Message.Usage.InputTokens}
	case "message_delta":
		return &provider.StreamEvent{Type: provider.EventUsage, OutputTokens: d.Usage.OutputTokens}
	default:
		return &provider.StreamEvent{Type: provider.EventError, Error: fmt.Errorf("%s: %s", d.Error.Type, d.Error.Message)}
	}
}
