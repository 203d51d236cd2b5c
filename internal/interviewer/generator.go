package interviewer

import (
	"context"
	"fmt"
	"net/http"

	"interview-voice-service/internal/config"
)

// TextGenerator - провайдер LLM
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewGenerator выбирает провайдера по конфигурации
func NewGenerator(cfg config.LLMConfig) (TextGenerator, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(cfg.Gemini, client), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAI, client), nil
	}
	return nil, fmt.Errorf("неизвестный LLM провайдер: %q", cfg.Provider)
}
