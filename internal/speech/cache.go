package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

// Cache хранит соответствие "текст -> URL аудио"
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// AssetChecker проверяет, что файл по URL еще существует
type AssetChecker interface {
	Exists(url string) bool
}

// Cached оборачивает провайдера кэшем. Ошибки кэша логируются и не мешают синтезу.
type Cached struct {
	next   Synthesizer
	cache  Cache
	assets AssetChecker
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached создает кэширующую обертку над провайдером
func NewCached(next Synthesizer, cache Cache, assets AssetChecker, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{next: next, cache: cache, assets: assets, ttl: ttl, logger: logger}
}

func (c *Cached) Name() string { return c.next.Name() }

// Synthesize возвращает закэшированный файл, если он еще на диске
func (c *Cached) Synthesize(ctx context.Context, text string) (string, error) {
	key := CacheKey(c.next.Name(), text)

	url, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("кэш синтеза недоступен", "error", err)
	case ok && c.assets.Exists(url):
		c.logger.Debug("синтез из кэша", "url", url)
		return url, nil
	}

	url, err = c.next.Synthesize(ctx, text)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, url, c.ttl); err != nil {
		c.logger.Warn("не удалось записать в кэш синтеза", "error", err)
	}
	return url, nil
}

// CacheKey строит ключ из имени провайдера и текста
func CacheKey(provider, text string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + text))
	return "tts:" + hex.EncodeToString(sum[:])
}
