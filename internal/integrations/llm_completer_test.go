package integrations

import (
	"context"
	"testing"
	"time"

	"github.com/julianshen/docgenie/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	events []provider.StreamEvent
	last   provider.CompletionRequest
}

func (m *mockProvider) Stream(_ context.Context, req provider.CompletionRequest) (<-chan provider.StreamEvent, error) {
	m.last = req
	ch := make(chan provider.StreamEvent, len(m.events))
	for _, evt := range m.events {
		ch <- evt
	}
	close(ch)
	return ch, nil
}

func TestLLMCompleterComplete(t *testing.T) {
	mp := &mockProvider{
		events: []provider.StreamEvent{
			{Type: provider.EventTextDelta, Text: "Hello"},
			{Type: provider.EventTextDelta, Text: " world"},
			{Type: provider.EventStop},
		},
	}

	completer := NewLLMCompleter(mp, "test-model", 0)
	result, err := completer.Complete(context.Background(), "be brief", "Say hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", result)
	assert.Equal(t, "test-model", mp.last.Model)
	assert.Equal(t, "be brief", mp.last.System)
	assert.Equal(t, DefaultMaxTokens, mp.last.MaxTokens)
}

func TestLLMCompleterMaxTokens(t *testing.T) {
	mp := &mockProvider{events: []provider.StreamEvent{{Type: provider.EventTextDelta, Text: "ok"}}}

	_, err := NewLLMCompleter(mp, "m", 512).Complete(context.Background(), "", "x")
	require.NoError(t, err)
	assert.Equal(t, 512, mp.last.MaxTokens)
}

func TestLLMCompleterEmptyResponse(t *testing.T) {
	mp := &mockProvider{events: []provider.StreamEvent{{Type: provider.EventStop}}}

	_, err := NewLLMCompleter(mp, "m", 0).Complete(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestLLMCompleterStreamError(t *testing.T) {
	mp := &mockProvider{
		events: []provider.StreamEvent{
			{Type: provider.EventTextDelta, Text: "partial"},
			{Type: provider.EventError, Error: assert.AnError},
		},
	}

	completer := NewLLMCompleter(mp, "test-model", 0)
	_, err := completer.Complete(context.Background(), "", "fail")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// slowMockProvider keeps sending after the error, like a provider goroutine
// that still has buffered events.
type slowMockProvider struct {
	done chan struct{}
}

func (m *slowMockProvider) Stream(_ context.Context, _ provider.CompletionRequest) (<-chan provider.StreamEvent, error) {
	ch := make(chan provider.StreamEvent)
	go func() {
		defer close(m.done)
		defer close(ch)
		ch <- provider.StreamEvent{Type: provider.EventError, Error: assert.AnError}
		ch <- provider.StreamEvent{Type: provider.EventTextDelta, Text: "trailing"}
	}()
	return ch, nil
}

func TestLLMCompleterDrainsChannelOnError(t *testing.T) {
	mp := &slowMockProvider{done: make(chan struct{})}
	completer := NewLLMCompleter(mp, "test-model", 0)
	_, err := completer.Complete(context.Background(), "", "fail")
	require.Error(t, err)

	select {
	case <-mp.done:
	case <-time.After(time.Second):
		t.Fatal("provider goroutine still blocked")
	}
}
