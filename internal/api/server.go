// Package api - HTTP граница сервиса: маршруты голосового интервью,
// создание интервью, статика с аудио и служебные /health и /status.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"interview-voice-service/internal/assets"
	"interview-voice-service/internal/config"
	"interview-voice-service/internal/metrics"
	"interview-voice-service/internal/result"
	"interview-voice-service/internal/storage"
	"interview-voice-service/internal/voice"
)

// VoiceService - переходы голосового интервью
type VoiceService interface {
	Start(ctx context.Context, interviewID, userID int64) result.Result[voice.StartResult]
	NextQuestion(ctx context.Context, sessionID string) result.Result[voice.NextQuestionResult]
	SubmitAnswer(ctx context.Context, sessionID string, questionID int64, audioFile string) result.Result[voice.SubmitAnswerResult]
	End(ctx context.Context, sessionID string) result.Result[voice.EndResult]
	ActiveSessions() int
}

// InterviewService создает интервью вместе с вопросами
type InterviewService interface {
	CreateInterview(ctx context.Context, in storage.NewInterview) result.Result[storage.Interview]
}

// InterviewReader читает сохраненные интервью
type InterviewReader interface {
	GetInterviewByID(ctx context.Context, id int64) result.Result[storage.Interview]
	ListInterviews(ctx context.Context, userID int64) result.Result[[]storage.Interview]
}

// Pinger - зависимость, доступность которой проверяет /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// ResultLister перечисляет архивы завершенных сессий
type ResultLister interface {
	ListResults() ([]string, error)
}

// Deps - все, что нужно серверу. Cache, Results и ModelInfo необязательны.
type Deps struct {
	Server     config.ServerConfig
	Assets     config.AssetsConfig
	Voice      VoiceService
	Interviews InterviewService
	Reader     InterviewReader
	Uploads    *assets.Store
	Database   Pinger
	Cache      Pinger
	Results    ResultLister
	Metrics    *metrics.Metrics
	ModelInfo  map[string]interface{}
	Version    string
	Logger     *slog.Logger
}

type Server struct {
	deps      Deps
	clients   clientResolver
	limiter   *RateLimiter
	startedAt time.Time
	handler   http.Handler
}

// New собирает маршруты и цепочку middleware
func New(deps Deps) *Server {
	s := &Server{
		deps:      deps,
		clients:   newClientResolver(deps.Server.TrustedProxies),
		limiter:   NewRateLimiter(deps.Server.RateLimit, deps.Server.RateWindow),
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	base := strings.TrimRight(deps.Server.BasePath, "/")

	s.route(mux, "GET "+base, s.handleIndex)
	s.route(mux, "POST "+base+"/voice-interview/start", s.handleStart)
	s.route(mux, "GET "+base+"/voice-interview/{sessionId}/next-question", s.handleNextQuestion)
	s.route(mux, "POST "+base+"/voice-interview/submit-answer", s.handleSubmitAnswer)
	s.route(mux, "POST "+base+"/voice-interview/end", s.handleEnd)

	s.route(mux, "POST "+base+"/interview", s.handleCreateInterview)
	s.route(mux, "GET "+base+"/interview", s.handleListInterviews)
	s.route(mux, "GET "+base+"/interview/{id}", s.handleGetInterview)

	prefix := strings.TrimRight(deps.Assets.URLPrefix, "/")
	mux.Handle("GET "+prefix+"/", staticAudio(prefix, deps.Assets.UploadsDir))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound)
	})

	var h http.Handler = mux
	h = cors(deps.Server.CORSOrigins)(h)
	h = requestLogger(deps.Logger, s.clients.clientIP)(h)
	h = recoverer(deps.Logger)(h)
	s.handler = h
	return s
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.limiter.middleware(h, s.clients.clientIP))
}

// Handler возвращает корневой обработчик, используется в тестах
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run слушает порт до отмены ctx, затем корректно останавливается
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.deps.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  s.deps.Server.ReadTimeout,
		WriteTimeout: s.deps.Server.WriteTimeout,
	}

	go s.cleanupLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("HTTP сервер запущен", "addr", srv.Addr, "base_path", s.deps.Server.BasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.deps.Server.ShutdownTimeout)
	defer cancel()
	s.deps.Logger.Info("остановка HTTP сервера")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки HTTP сервера: %w", err)
	}
	return nil
}

func (s *Server) cleanupLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Cleanup()
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   "interview-voice-service",
		"version":   s.deps.Version,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// staticAudio отдает файлы из dir с заголовками для проигрывания
// с другого origin. Листинг директорий закрыт.
func staticAudio(prefix, dir string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			writeError(w, errNotFound)
			return
		}
		if ct := assets.ContentType(r.URL.Path); strings.HasPrefix(ct, "audio/") {
			w.Header().Set("Content-Type", ct)
			w.Header().Set("Accept-Ranges", "bytes")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
		}
		files.ServeHTTP(w, r)
	})
}
