// Package transcribe превращает записанный ответ кандидата в текст.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"interview-voice-service/internal/config"
)

// Word - слово с таймингами
type Word struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Transcription - результат распознавания
type Transcription struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words"`
}

// Transcriber распознает аудиофайл с диска
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Transcription, error)
	Name() string
}

// New выбирает провайдера по конфигурации
func New(cfg config.TranscriptionConfig, logger *slog.Logger) (Transcriber, error) {
	switch cfg.Provider {
	case config.ProviderDeepgram:
		logger.Info("распознавание речи: Deepgram", "url", cfg.DeepgramURL)
		return NewDeepgram(cfg, &http.Client{Timeout: cfg.Timeout}), nil
	case config.ProviderGoogle:
		logger.Info("распознавание речи: Google Speech", "language", cfg.GoogleLanguage)
		return NewGoogle(cfg), nil
	}
	return nil, fmt.Errorf("неизвестный провайдер распознавания: %q", cfg.Provider)
}

// contentType определяет MIME тип записи. По умолчанию mp3.
func contentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".webm":
		return "audio/webm"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	default:
		return "audio/mpeg"
	}
}
