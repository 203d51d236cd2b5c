// Package worker выполняет генерацию обратной связи в фоне, не задерживая
// ответ клиенту.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"interview-voice-service/internal/metrics"
)

// FeedbackJob - ответ, по которому нужна обратная связь
type FeedbackJob struct {
	SessionID  string
	QuestionID int64
	Answer     string
}

// HandleFunc обрабатывает одну задачу
type HandleFunc func(ctx context.Context, questionID int64, answer string) error

// WorkerPool manages a pool of workers and a queue of jobs.
type WorkerPool struct {
	JobQueue   chan FeedbackJob
	MaxWorkers int

	handle  HandleFunc
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// New creates a new WorkerPool.
func New(maxWorkers, queueSize int, timeout time.Duration, handle HandleFunc, m *metrics.Metrics, logger *slog.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		JobQueue:   make(chan FeedbackJob, queueSize),
		MaxWorkers: maxWorkers,
		handle:     handle,
		timeout:    timeout,
		metrics:    m,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start creates and starts the worker goroutines.
func (wp *WorkerPool) Start() {
	for i := 1; i <= wp.MaxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Submit ставит задачу в очередь без блокировки. Если очередь заполнена
// или пул остановлен, задача отбрасывается и возвращается false.
func (wp *WorkerPool) Submit(job FeedbackJob) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		wp.drop(job, "pool stopped")
		return false
	}

	select {
	case wp.JobQueue <- job:
		return true
	default:
		wp.drop(job, "queue full")
		return false
	}
}

func (wp *WorkerPool) drop(job FeedbackJob, reason string) {
	wp.metrics.IncrementFeedbackDropped()
	wp.logger.Warn("задача обратной связи отброшена",
		"reason", reason,
		"session_id", job.SessionID,
		"question_id", job.QuestionID)
}

// Stop закрывает очередь и ждет, пока воркеры доработают оставшиеся задачи.
// Если ctx истекает раньше, текущие задачи отменяются.
func (wp *WorkerPool) Stop(ctx context.Context) error {
	wp.mu.Lock()
	if !wp.stopped {
		wp.stopped = true
		close(wp.JobQueue)
	}
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		return nil
	case <-ctx.Done():
		wp.cancel()
		<-done
		return ctx.Err()
	}
}

// worker is a goroutine that continuously processes jobs from the JobQueue.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	for job := range wp.JobQueue {
		wp.process(id, job)
	}
}

func (wp *WorkerPool) process(id int, job FeedbackJob) {
	ctx, cancel := context.WithTimeout(wp.ctx, wp.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			wp.metrics.IncrementFeedbackFailed()
			wp.logger.Error("паника при генерации обратной связи", "worker", id, "question_id", job.QuestionID, "panic", r)
		}
	}()

	start := time.Now()
	if err := wp.handle(ctx, job.QuestionID, job.Answer); err != nil {
		wp.logger.Error("ошибка генерации обратной связи",
			"worker", id,
			"session_id", job.SessionID,
			"question_id", job.QuestionID,
			"error", err)
		return
	}
	wp.logger.Debug("обратная связь сохранена",
		"worker", id,
		"question_id", job.QuestionID,
		"duration", time.Since(start))
}
