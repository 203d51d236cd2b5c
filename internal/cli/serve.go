package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"interview-voice-service/internal/api"
	"interview-voice-service/internal/assets"
	"interview-voice-service/internal/config"
	"interview-voice-service/internal/interviewer"
	"interview-voice-service/internal/logging"
	"interview-voice-service/internal/metrics"
	"interview-voice-service/internal/speech"
	"interview-voice-service/internal/storage"
	"interview-voice-service/internal/transcribe"
	"interview-voice-service/internal/voice"
	"interview-voice-service/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	script, err := config.Load(cfg.VoiceScript)
	if err != nil {
		return fmt.Errorf("ошибка загрузки реплик интервьюера: %w", err)
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	repo := storage.NewRepository(db)

	m := metrics.NewMetrics()
	audio := assets.New(cfg.Assets.AudioDir(), cfg.Assets.AudioURLPrefix())

	synth, err := speech.New(cfg.Speech, audio, logger)
	if err != nil {
		return err
	}

	var cachePinger api.Pinger
	redisCache, err := speech.NewRedisCache(ctx, cfg.Redis)
	switch {
	case err != nil:
		logger.Warn("кэш синтеза отключен", "error", err)
	case redisCache != nil:
		defer redisCache.Close()
		synth = speech.NewCached(synth, redisCache, audio, cfg.Redis.CacheTTL, logger)
		cachePinger = redisCache
		logger.Info("кэш синтеза включен", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	stt, err := transcribe.New(cfg.Transcription, logger)
	if err != nil {
		return err
	}
	if closer, ok := stt.(io.Closer); ok {
		defer closer.Close()
	}

	gen, err := interviewer.NewGenerator(cfg.LLM)
	if err != nil {
		return err
	}
	interviews := interviewer.New(gen, repo, m, logger)

	pool := worker.New(cfg.Feedback.Workers, cfg.Feedback.QueueSize, cfg.Feedback.Timeout,
		interviews.GenerateAndSaveFeedback, m, logger)
	pool.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := pool.Stop(stopCtx); err != nil {
			logger.Warn("очередь обратной связи остановлена не полностью", "error", err)
		}
	}()

	archive := storage.NewArchive(cfg.Assets.ResultsDir)
	store := voice.NewStore()
	orchestrator := voice.NewOrchestrator(voice.Deps{
		Store:       store,
		Repo:        repo,
		Synthesizer: synth,
		Transcriber: stt,
		Feedback:    pool,
		Archive:     archive,
		Script:      script,
		Metrics:     m,
		Logger:      logger,
	})

	janitor := &voice.Janitor{
		Store:     store,
		TTL:       cfg.Sessions.TTL,
		Interval:  cfg.Sessions.ReapInterval,
		Assets:    audio,
		Retention: cfg.Assets.Retention,
		Metrics:   m,
		Logger:    logger,
	}
	go janitor.Run(ctx)

	srv := api.New(api.Deps{
		Server:     cfg.Server,
		Assets:     cfg.Assets,
		Voice:      orchestrator,
		Interviews: interviews,
		Reader:     repo,
		Uploads:    audio,
		Database:   db,
		Cache:      cachePinger,
		Results:    archive,
		Metrics:    m,
		ModelInfo:  modelInfo(cfg.LLM),
		Version:    version,
		Logger:     logger,
	})

	logger.Info("сервис запущен",
		"version", version,
		"tts", synth.Name(),
		"stt", stt.Name(),
		"llm", gen.Name(),
		"session_ttl", cfg.Sessions.TTL)

	return srv.Run(ctx)
}

// setup читает окружение, проверяет конфигурацию и создает логгер
func setup() (*config.AppConfig, *slog.Logger, error) {
	if err := loadEnv(); err != nil {
		return nil, nil, err
	}
	cfg := config.LoadAppConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openDatabase(ctx context.Context, cfg *config.AppConfig) (*storage.DB, error) {
	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.Migrate(migrateCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func modelInfo(cfg config.LLMConfig) map[string]interface{} {
	if cfg.Provider == config.ProviderOpenAI {
		return cfg.OpenAI.GetModelInfo()
	}
	return map[string]interface{}{
		"provider": cfg.Provider,
		"model":    cfg.Gemini.Model,
	}
}
