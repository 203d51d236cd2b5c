package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"interview-voice-service/internal/config"
)

// Deepgram - распознавание через pre-recorded API Deepgram
type Deepgram struct {
	apiKey string
	url    string
	client *http.Client
}

// deepgramResponse - нужная часть ответа. Любое поле может отсутствовать.
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []Word  `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	ErrCode string `json:"err_code"`
	ErrMsg  string `json:"err_msg"`
}

// NewDeepgram создает клиента Deepgram
func NewDeepgram(cfg config.TranscriptionConfig, client *http.Client) *Deepgram {
	return &Deepgram{apiKey: cfg.DeepgramAPIKey, url: cfg.DeepgramURL, client: client}
}

func (d *Deepgram) Name() string { return config.ProviderDeepgram }

// Transcribe отправляет файл целиком и разбирает первую альтернативу первого канала
func (d *Deepgram) Transcribe(ctx context.Context, audioPath string) (Transcription, error) {
	if d.apiKey == "" {
		return Transcription{}, fmt.Errorf("DEEPGRAM_API_KEY не установлен")
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return Transcription{}, fmt.Errorf("ошибка чтения файла %s: %w", audioPath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(audio))
	if err != nil {
		return Transcription{}, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", contentType(audioPath))

	resp, err := d.client.Do(req)
	if err != nil {
		return Transcription{}, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcription{}, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Transcription{}, fmt.Errorf("Deepgram HTTP ошибка %d: %s", resp.StatusCode, string(body))
	}

	var parsed deepgramResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Transcription{}, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}
	if parsed.ErrCode != "" {
		return Transcription{}, fmt.Errorf("Deepgram API ошибка %s: %s", parsed.ErrCode, parsed.ErrMsg)
	}

	out := Transcription{Words: []Word{}}
	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return out, nil
	}

	alt := parsed.Results.Channels[0].Alternatives[0]
	out.Transcript = alt.Transcript
	out.Confidence = alt.Confidence
	if alt.Words != nil {
		out.Words = alt.Words
	}
	return out, nil
}
