package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiLLMClient answers through the Gemini API.
type GeminiLLMClient struct {
	client  *genai.Client
	modelID string
}

func NewGeminiLLMClient(ctx context.Context, apiKey, modelID string) (*GeminiLLMClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: gemini api key", ErrMissingCredentials)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("conversation: gemini client: %w", err)
	}
	return &GeminiLLMClient{client: client, modelID: firstNonBlank(modelID, defaultGeminiModel)}, nil
}

func (c *GeminiLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	history, last := geminiTurns(req.Messages)
	if last == "" {
		return LLMResponse{}, ErrNoMessages
	}

	model := c.client.GenerativeModel(firstNonBlank(req.Model, c.modelID))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	if req.Temperature >= 0 {
		model.SetTemperature(req.Temperature)
	}
	if system := geminiSystem(req); system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	chat := model.StartChat()
	chat.History = history
	resp, err := chat.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: gemini send: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return LLMResponse{}, fmt.Errorf("%w (gemini)", ErrEmptyCompletion)
	}

	candidate := resp.Candidates[0]
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return LLMResponse{}, fmt.Errorf("%w (gemini)", ErrEmptyCompletion)
	}

	out := LLMResponse{Text: text, StopReason: candidate.FinishReason.String()}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = TokenUsage{
			InputTokens:  u.PromptTokenCount,
			OutputTokens: u.CandidatesTokenCount,
			TotalTokens:  u.TotalTokenCount,
		}
	}
	return out, nil
}

// geminiSystem joins the request's system prompts with any system-role turns.
func geminiSystem(req LLMRequest) string {
	parts := append([]string(nil), req.System...)
	for _, m := range req.Messages {
		if m.Role == ChatRoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// geminiTurns returns the chat history and the final user text to send.
func geminiTurns(msgs []ChatMessage) ([]*genai.Content, string) {
	var turns []ChatMessage
	for _, m := range msgs {
		if m.Role != ChatRoleSystem && strings.TrimSpace(m.Content) != "" {
			turns = append(turns, m)
		}
	}
	if len(turns) == 0 {
		return nil, ""
	}
	history := make([]*genai.Content, 0, len(turns)-1)
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == ChatRoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return history, strings.TrimSpace(turns[len(turns)-1].Content)
}

func (c *GeminiLLMClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
