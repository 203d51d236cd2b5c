package interviewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"interview-voice-service/internal/config"
)

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Gemini - генератор текста через generateContent
type Gemini struct {
	cfg    config.GeminiConfig
	client *http.Client
}

// NewGemini создает клиента Gemini
func NewGemini(cfg config.GeminiConfig, client *http.Client) *Gemini {
	return &Gemini{cfg: cfg, client: client}
}

func (g *Gemini) Name() string { return config.ProviderGemini }

// Generate возвращает текст первой части первого кандидата.
// Пустой список кандидатов - пустая строка без ошибки.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.cfg.APIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY не установлен")
	}

	jsonData, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{ResponseMimeType: "text/plain"},
	})
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.URL, "/"), g.cfg.Model, url.QueryEscape(g.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP ошибка %d: %s", resp.StatusCode, string(body))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("Gemini API ошибка %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
