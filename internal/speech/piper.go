package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"interview-voice-service/internal/assets"
	"interview-voice-service/internal/config"
)

// PiperServer обращается к локальному HTTP серверу piper.
// Сначала пробует /speak, затем /synthesize с голосом по умолчанию.
type PiperServer struct {
	cfg    config.PiperConfig
	assets *assets.Store
	client *http.Client
}

// NewPiperServer создает клиента piper в режиме сервера
func NewPiperServer(cfg config.PiperConfig, store *assets.Store, client *http.Client) *PiperServer {
	return &PiperServer{cfg: cfg, assets: store, client: client}
}

func (p *PiperServer) Name() string { return config.ProviderPiper + "-server" }

// Synthesize сохраняет wav, полученный от сервера piper
func (p *PiperServer) Synthesize(ctx context.Context, text string) (string, error) {
	base := strings.TrimRight(p.cfg.URL, "/")

	wav, primaryErr := p.post(ctx, base+"/speak", map[string]string{"text": text})
	if primaryErr != nil {
		var err error
		wav, err = p.post(ctx, base+"/synthesize", map[string]string{"text": text, "voice": p.cfg.Voice})
		if err != nil {
			return "", fmt.Errorf("ошибка piper: /speak: %v; /synthesize: %w", primaryErr, err)
		}
	}

	asset, err := p.assets.Write("audio", ".wav", wav)
	if err != nil {
		return "", err
	}
	return asset.URL, nil
}

func (p *PiperServer) post(ctx context.Context, url string, payload map[string]string) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP ошибка %d: %s", resp.StatusCode, truncate(body))
	}
	return body, nil
}

// PiperBinary запускает бинарник piper, передавая текст через stdin.
// Модель обязательна.
type PiperBinary struct {
	cfg    config.PiperConfig
	assets *assets.Store
}

// NewPiperBinary создает провайдера, вызывающего локальный piper
func NewPiperBinary(cfg config.PiperConfig, store *assets.Store) *PiperBinary {
	return &PiperBinary{cfg: cfg, assets: store}
}

func (p *PiperBinary) Name() string { return config.ProviderPiper + "-binary" }

// Synthesize запускает `piper -m <model> -f <file>` и ждет завершения
func (p *PiperBinary) Synthesize(ctx context.Context, text string) (string, error) {
	if p.cfg.ModelPath == "" {
		return "", fmt.Errorf("PIPER_MODEL_PATH обязателен в режиме binary")
	}

	asset, err := p.assets.Reserve("audio", ".wav")
	if err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.cfg.BinaryPath, "-m", p.cfg.ModelPath, "-f", asset.Path)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(asset.Path)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("piper завершился с ошибкой: %w: %s", err, truncate([]byte(msg)))
		}
		return "", fmt.Errorf("piper завершился с ошибкой: %w", err)
	}

	if _, err := os.Stat(asset.Path); err != nil {
		return "", fmt.Errorf("piper не создал файл %s: %w", asset.Path, err)
	}
	return asset.URL, nil
}
