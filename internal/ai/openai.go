package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates replies through the OpenAI chat completion
// API.
type OpenAIProvider struct {
	apiKey    string
	model     string
	maxTokens int
	client    *openai.Client
}

func NewOpenAIProvider(apiKey, model string, maxTokens int) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    openai.NewClient(apiKey),
	}
}

// CheckCredential reports whether the provider is configured with an
// API key, without touching the network.
func (p *OpenAIProvider) CheckCredential() error {
	if strings.TrimSpace(p.apiKey) == "" {
		return fmt.Errorf("openai: %w", ErrMissingCredential)
	}
	return nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if err := p.CheckCredential(); err != nil {
		return "", err
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  oaMsgs,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
