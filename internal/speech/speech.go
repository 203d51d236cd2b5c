// Package speech превращает текст в аудиофайл. Провайдер выбирается один раз
// при старте; переключения между провайдерами во время работы нет.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"interview-voice-service/internal/assets"
	"interview-voice-service/internal/config"
)

// Synthesizer синтезирует речь и возвращает публичный URL аудиофайла
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
	Name() string
}

// New выбирает провайдера по конфигурации
func New(cfg config.SpeechConfig, store *assets.Store, logger *slog.Logger) (Synthesizer, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.ProviderElevenLabs:
		logger.Info("синтез речи: ElevenLabs", "voice_id", cfg.ElevenLabs.VoiceID, "model", cfg.ElevenLabs.Model)
		return NewElevenLabs(cfg.ElevenLabs, store, client), nil
	case config.ProviderPiper:
		switch cfg.Piper.Mode {
		case config.PiperModeServer:
			logger.Info("синтез речи: Piper server", "url", cfg.Piper.URL)
			return NewPiperServer(cfg.Piper, store, client), nil
		case config.PiperModeBinary:
			logger.Info("синтез речи: Piper binary", "binary", cfg.Piper.BinaryPath)
			return NewPiperBinary(cfg.Piper, store), nil
		}
		return nil, fmt.Errorf("неизвестный режим piper: %q", cfg.Piper.Mode)
	}
	return nil, fmt.Errorf("неизвестный провайдер синтеза речи: %q", cfg.Provider)
}
