package interviewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"interview-voice-service/internal/config"
)

// Формат chat completions
type OpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Message Message `json:"message"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// OpenAI - генератор текста через chat completions
type OpenAI struct {
	cfg    config.OpenAIConfig
	client *http.Client
}

// NewOpenAI создает клиента OpenAI
func NewOpenAI(cfg config.OpenAIConfig, client *http.Client) *OpenAI {
	return &OpenAI{cfg: cfg, client: client}
}

func (o *OpenAI) Name() string { return config.ProviderOpenAI }

// systemPrompt задает роль модели для вопросов и обратной связи
const systemPrompt = "You are an experienced technical interviewer. Follow the output format exactly."

// Generate отправляет промпт с системной ролью интервьюера
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	return o.callOpenAI(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
}

func (o *OpenAI) callOpenAI(ctx context.Context, messages []Message) (string, error) {
	if o.cfg.APIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY не установлен")
	}

	payload, err := json.Marshal(OpenAIRequest{
		Model:       o.cfg.Model,
		Messages:    messages,
		Temperature: o.cfg.Temperature,
		MaxTokens:   o.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var parsed OpenAIResponse
	decodeErr := json.Unmarshal(body, &parsed)
	switch {
	case decodeErr == nil && parsed.Error != nil:
		return "", fmt.Errorf("OpenAI API ошибка %d: %s (%s)", resp.StatusCode, parsed.Error.Message, parsed.Error.Type)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("OpenAI HTTP ошибка %d", resp.StatusCode)
	case decodeErr != nil:
		return "", fmt.Errorf("ошибка парсинга ответа OpenAI: %w", decodeErr)
	case len(parsed.Choices) == 0:
		return "", fmt.Errorf("пустой ответ от OpenAI")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
