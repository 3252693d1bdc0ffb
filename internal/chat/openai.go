package chat

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	systemFraming = `You are a helpful IBM MQ AI assistant. The user will provide a system event ` +
		`message from a monitored queue manager. Give an overview of the problem and how to fix it, ` +
		`referencing IBM MQ documentation where relevant.`

	userFraming = `You are a helpful IBM MQ AI assistant. If the user's query relates to IBM MQ, ` +
		`answer informatively using the IBM MQ documentation. For unrelated queries, reply ` +
		`"please stick to IBM MQ questions".`
)

// OpenAIAssistant implements Assistant against an OpenAI-compatible chat API.
type OpenAIAssistant struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an assistant. baseURL optionally points at a compatible
// self-hosted gateway.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAIAssistant, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("chat: API key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAssistant{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Ask sends the question with the framing selected by mode.
func (a *OpenAIAssistant) Ask(ctx context.Context, question string, mode Mode) (string, error) {
	framing := userFraming
	userContent := question
	if mode == ModeSystem {
		framing = systemFraming
		userContent = "System event message:\n" + question
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: framing},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat: completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
