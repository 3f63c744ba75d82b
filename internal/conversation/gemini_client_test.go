package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiLLMClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiLLMClient(context.Background(), " ", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestGeminiTurns(t *testing.T) {
	history, last := geminiTurns([]ChatMessage{
		{Role: ChatRoleSystem, Content: "ignored here"},
		{Role: ChatRoleUser, Content: "hola"},
		{Role: ChatRoleAssistant, Content: "¿en qué te ayudo?"},
		{Role: ChatRoleUser, Content: " precio del IPL "},
		{Role: ChatRoleUser, Content: "   "},
	})

	assert.Equal(t, "precio del IPL", last)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
}

func TestGeminiTurns_Empty(t *testing.T) {
	history, last := geminiTurns([]ChatMessage{{Role: ChatRoleSystem, Content: "x"}})
	assert.Empty(t, history)
	assert.Empty(t, last)
}

func TestGeminiSystem(t *testing.T) {
	got := geminiSystem(LLMRequest{
		System:   []string{"base"},
		Messages: []ChatMessage{{Role: ChatRoleSystem, Content: "catalogo"}, {Role: ChatRoleUser, Content: "hola"}},
	})
	assert.Equal(t, "base\n\ncatalogo", got)
}
