package service

import (
	"bytes"
	"context"
	"edureach_backend/internal/config"
	"edureach_backend/internal/util"
	"edureach_backend/pkg/tracing"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// AIService OpenAI 兼容的 chat completions 客户端
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete 发送 system + 历史 + 当前问题，所有失败都包装为 ErrExternalService
func (s *AIService) Complete(ctx context.Context, system string, history []AIChatMessage, prompt string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "ai.chat_completion",
		attribute.String("ai.model", s.config.Model),
		attribute.Int("ai.history", len(history)),
	)
	defer span.End()

	reply, err := s.complete(ctx, system, history, prompt)
	tracing.RecordError(span, err)
	return reply, err
}

func (s *AIService) complete(ctx context.Context, system string, history []AIChatMessage, prompt string) (string, error) {
	messages := make([]AIChatMessage, 0, len(history)+2)
	if system != "" {
		messages = append(messages, AIChatMessage{Role: "system", Content: system})
	}
	messages = append(messages, history...)
	messages = append(messages, AIChatMessage{Role: "user", Content: prompt})

	jsonData, err := json.Marshal(ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrExternalService, err)
	}

	endpoint := strings.TrimRight(s.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrExternalService, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: AI API error (status %d): %s", util.ErrExternalService, resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrExternalService, err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("%w: %s", util.ErrExternalService, result.Error.Message)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: AI returned no choices", util.ErrExternalService)
	}

	return result.Choices[0].Message.Content, nil
}
