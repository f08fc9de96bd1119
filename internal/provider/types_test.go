package provider

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("summarize this repository")
	assert.Equal(t, "user", msg.Role)
	assert.Equal(t, "summarize this repository", msg.Content)
}

func TestCompletionRequestJSON(t *testing.T) {
	temp := 0.2
	req := CompletionRequest{
		Model:       "claude-sonnet-4-5",
		Messages:    []Message{NewUserMessage("hi")},
		MaxTokens:   512,
		Temperature: &temp,
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"model":"claude-sonnet-4-5","messages":[{"role":"user","content":"hi"}],"max_tokens":512,"temperature":0.2}`, string(data))
}
