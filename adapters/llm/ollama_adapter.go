package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

type ollamaLLMAdapter struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// NewOllamaLLMAdapter talks to Ollama through its OpenAI compatible API.
func NewOllamaLLMAdapter(cfg config.Config, log logger.Logger) (service.LLMService, error) {
	if cfg.Ollama.Host == "" {
		return nil, fmt.Errorf("ollama Host is not configured")
	}

	config := openai.DefaultConfig("dummy-key")
	config.BaseURL = cfg.Ollama.Host

	client := openai.NewClientWithConfig(config)

	log.Info("Ollama Chat (LLM) Adapter initialized", zap.String("model", cfg.Ollama.Model))
	return &ollamaLLMAdapter{client: client, model: cfg.Ollama.Model, log: log}, nil
}

func (a *ollamaLLMAdapter) GenerateChatResponse(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write concise, professional portfolio copy. Reply with the text only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Stream: false,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ollama chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama returned no chat choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
