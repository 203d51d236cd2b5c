package config

import "fmt"

type OpenAIConfig struct {
	APIKey      string
	Model       string
	URL         string
	MaxTokens   int
	Temperature float64
}

// LoadOpenAIConfig загружает конфигурацию OpenAI из переменных окружения
func LoadOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      getEnv("OPENAI_API_KEY", ""),
		Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
		URL:         getEnv("OPENAI_URL", "https://api.openai.com/v1/chat/completions"),
		MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 1000),
		Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
	}
}

// ValidateConfig проверяет числовые параметры. Наличие ключа проверяется при вызове.
func (c *OpenAIConfig) ValidateConfig() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS должен быть больше 0")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE должна быть в диапазоне 0-2")
	}

	return nil
}

// GetModelInfo возвращает информацию о используемой модели
func (c *OpenAIConfig) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"model":       c.Model,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
		"provider":    "OpenAI",
	}
}
