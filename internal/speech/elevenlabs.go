package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"interview-voice-service/internal/assets"
	"interview-voice-service/internal/config"
)

// ElevenLabs - облачный провайдер синтеза, отдает mp3
type ElevenLabs struct {
	cfg    config.ElevenLabsConfig
	assets *assets.Store
	client *http.Client
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// NewElevenLabs создает клиента ElevenLabs
func NewElevenLabs(cfg config.ElevenLabsConfig, store *assets.Store, client *http.Client) *ElevenLabs {
	return &ElevenLabs{cfg: cfg, assets: store, client: client}
}

func (e *ElevenLabs) Name() string { return config.ProviderElevenLabs }

// Synthesize отправляет текст в ElevenLabs и сохраняет mp3
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) (string, error) {
	if e.cfg.APIKey == "" {
		return "", fmt.Errorf("ELEVEN_LABS_API_KEY не установлен")
	}

	jsonData, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: e.cfg.Model,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       0.8,
			SimilarityBoost: 0.8,
			Style:           0.2,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", strings.TrimRight(e.cfg.URL, "/"), e.cfg.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.cfg.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ElevenLabs HTTP ошибка %d: %s", resp.StatusCode, truncate(body))
	}

	asset, err := e.assets.Write("audio", ".mp3", body)
	if err != nil {
		return "", err
	}
	return asset.URL, nil
}

// truncate обрезает тело ошибки, чтобы не тащить в лог мегабайты
func truncate(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
