package voice

import (
	"context"
	"log/slog"
	"time"

	"interview-voice-service/internal/metrics"
)

// Pruner удаляет старые аудиофайлы
type Pruner interface {
	Prune(maxAge time.Duration) (int, error)
}

// Janitor периодически удаляет брошенные сессии и, если задано
// время хранения, старые аудиофайлы
type Janitor struct {
	Store     *Store
	TTL       time.Duration
	Interval  time.Duration
	Assets    Pruner
	Retention time.Duration
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Run крутит очистку до отмены ctx
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}

// RunOnce выполняет один проход очистки
func (j *Janitor) RunOnce() {
	if reaped := j.Store.Reap(j.TTL); len(reaped) > 0 {
		j.Metrics.AddSessionsExpired(len(reaped))
		j.Logger.Info("удалены неактивные сессии", "count", len(reaped), "ttl", j.TTL)
	}

	if j.Assets == nil || j.Retention <= 0 {
		return
	}
	removed, err := j.Assets.Prune(j.Retention)
	if err != nil {
		j.Logger.Error("ошибка очистки аудиофайлов", "error", err)
		return
	}
	if removed > 0 {
		j.Logger.Info("удалены старые аудиофайлы", "count", removed, "retention", j.Retention)
	}
}
