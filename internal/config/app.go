package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Провайдеры
const (
	ProviderElevenLabs = "elevenlabs"
	ProviderPiper      = "piper"
	ProviderDeepgram   = "deepgram"
	ProviderGoogle     = "google"
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"

	PiperModeServer = "server"
	PiperModeBinary = "binary"
)

type AppConfig struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Assets        AssetsConfig
	Speech        SpeechConfig
	Transcription TranscriptionConfig
	LLM           LLMConfig
	Redis         RedisConfig
	Sessions      SessionsConfig
	Feedback      FeedbackConfig
	Log           LogConfig
	VoiceScript   string
}

type ServerConfig struct {
	Port            int
	BasePath        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	// адреса прокси, которым доверяем X-Forwarded-For
	TrustedProxies []string
	RateLimit      int
	RateWindow     time.Duration
	MaxUploadBytes int64
}

type DatabaseConfig struct {
	Path string
}

type AssetsConfig struct {
	UploadsDir string
	URLPrefix  string
	ResultsDir string
	Retention  time.Duration
}

// AudioDir - директория для синтезированной речи и записанных ответов
func (c AssetsConfig) AudioDir() string {
	return strings.TrimRight(c.UploadsDir, "/") + "/audio"
}

// AudioURLPrefix - публичный префикс аудиофайлов
func (c AssetsConfig) AudioURLPrefix() string {
	return strings.TrimRight(c.URLPrefix, "/") + "/audio"
}

type SpeechConfig struct {
	Provider   string
	Timeout    time.Duration
	ElevenLabs ElevenLabsConfig
	Piper      PiperConfig
}

type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
	Model   string
	URL     string
}

type PiperConfig struct {
	Mode       string
	URL        string
	BinaryPath string
	ModelPath  string
	Voice      string
}

type TranscriptionConfig struct {
	Provider       string
	Timeout        time.Duration
	DeepgramAPIKey string
	DeepgramURL    string
	GoogleLanguage string
	// пусто - Application Default Credentials
	GoogleCredentialsFile string
	// 0 - частота по умолчанию для формата
	GoogleSampleRate int
}

type LLMConfig struct {
	Provider string
	Timeout  time.Duration
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
}

type GeminiConfig struct {
	APIKey string
	Model  string
	URL    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type SessionsConfig struct {
	TTL          time.Duration
	ReapInterval time.Duration
}

type FeedbackConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			BasePath:        getEnv("API_BASE_PATH", "/api/v1"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 2*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			CORSOrigins:     getEnvAsList("CORS_ORIGINS", []string{"*"}),
			TrustedProxies:  getEnvAsList("TRUSTED_PROXIES", nil),
			RateLimit:       getEnvAsInt("RATE_LIMIT", 60),
			RateWindow:      getEnvAsDuration("RATE_WINDOW", time.Minute),
			MaxUploadBytes:  int64(getEnvAsInt("MAX_UPLOAD_BYTES", 25<<20)),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "data/interviews.db"),
		},
		Assets: AssetsConfig{
			UploadsDir: getEnv("UPLOADS_DIR", "uploads"),
			URLPrefix:  getEnv("UPLOADS_URL_PREFIX", "/uploads"),
			ResultsDir: getEnv("RESULTS_DIR", "results"),
			Retention:  getEnvAsDuration("ASSET_RETENTION", 0),
		},
		Speech: SpeechConfig{
			Provider: getEnv("TTS_PROVIDER", ProviderPiper),
			Timeout:  getEnvAsDuration("TTS_TIMEOUT", 60*time.Second),
			ElevenLabs: ElevenLabsConfig{
				APIKey:  getEnv("ELEVEN_LABS_API_KEY", ""),
				VoiceID: getEnv("ELEVEN_LABS_VOICE_ID", "EXAVITQu4vr4xnSDxMaL"),
				Model:   getEnv("ELEVEN_LABS_MODEL", "eleven_multilingual_v2"),
				URL:     getEnv("ELEVEN_LABS_URL", "https://api.elevenlabs.io/v1"),
			},
			Piper: PiperConfig{
				Mode:       getEnv("PIPER_MODE", PiperModeBinary),
				URL:        getEnv("PIPER_URL", "http://localhost:59125"),
				BinaryPath: getEnv("PIPER_BINARY_PATH", "piper"),
				ModelPath:  getEnv("PIPER_MODEL_PATH", ""),
				Voice:      getEnv("PIPER_VOICE", "en_US-amy-medium"),
			},
		},
		Transcription: TranscriptionConfig{
			Provider:              getEnv("STT_PROVIDER", ProviderDeepgram),
			Timeout:               getEnvAsDuration("STT_TIMEOUT", 60*time.Second),
			DeepgramAPIKey:        getEnv("DEEPGRAM_API_KEY", ""),
			DeepgramURL:           getEnv("DEEPGRAM_URL", "https://api.deepgram.com/v1/listen"),
			GoogleLanguage:        getEnv("GOOGLE_SPEECH_LANGUAGE", "en-US"),
			GoogleCredentialsFile: getEnv("GOOGLE_SPEECH_CREDENTIALS_FILE", ""),
			GoogleSampleRate:      getEnvAsInt("GOOGLE_SPEECH_SAMPLE_RATE", 0),
		},
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", ProviderGemini),
			Timeout:  getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			Gemini: GeminiConfig{
				APIKey: getEnv("GEMINI_API_KEY", ""),
				Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
				URL:    getEnv("GEMINI_URL", "https://generativelanguage.googleapis.com/v1beta"),
			},
			OpenAI: LoadOpenAIConfig(),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("TTS_CACHE_TTL", 24*time.Hour),
		},
		Sessions: SessionsConfig{
			TTL:          getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			ReapInterval: getEnvAsDuration("SESSION_REAP_INTERVAL", time.Hour),
		},
		Feedback: FeedbackConfig{
			Workers:   getEnvAsInt("FEEDBACK_WORKERS", 4),
			QueueSize: getEnvAsInt("FEEDBACK_QUEUE_SIZE", 100),
			Timeout:   getEnvAsDuration("FEEDBACK_TIMEOUT", 90*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		VoiceScript: getEnv("VOICE_SCRIPT_PATH", "config/voice.yaml"),
	}
}

// Validate проверяет значения перечислений и числовые параметры.
// Ключи провайдеров здесь не проверяются: выбранный провайдер сам
// возвращает ошибку при вызове.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT должен быть в диапазоне 1-65535, получен %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("API_BASE_PATH должен начинаться с /")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT должен быть больше 0")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES должен быть больше 0")
	}

	if err := oneOf("TTS_PROVIDER", c.Speech.Provider, ProviderElevenLabs, ProviderPiper); err != nil {
		return err
	}
	if err := oneOf("PIPER_MODE", c.Speech.Piper.Mode, PiperModeServer, PiperModeBinary); err != nil {
		return err
	}
	if err := oneOf("STT_PROVIDER", c.Transcription.Provider, ProviderDeepgram, ProviderGoogle); err != nil {
		return err
	}
	if err := oneOf("LLM_PROVIDER", c.LLM.Provider, ProviderGemini, ProviderOpenAI); err != nil {
		return err
	}
	if err := oneOf("LOG_FORMAT", c.Log.Format, "json", "text"); err != nil {
		return err
	}
	if err := oneOf("LOG_LEVEL", strings.ToLower(c.Log.Level), "debug", "info", "warn", "error"); err != nil {
		return err
	}

	if c.Transcription.GoogleSampleRate < 0 {
		return fmt.Errorf("GOOGLE_SPEECH_SAMPLE_RATE не может быть отрицательным")
	}

	if c.LLM.Provider == ProviderOpenAI {
		if err := c.LLM.OpenAI.ValidateConfig(); err != nil {
			return err
		}
	}

	if c.Sessions.TTL <= 0 || c.Sessions.ReapInterval <= 0 {
		return fmt.Errorf("SESSION_TTL и SESSION_REAP_INTERVAL должны быть больше 0")
	}
	if c.Feedback.Workers <= 0 || c.Feedback.QueueSize <= 0 {
		return fmt.Errorf("FEEDBACK_WORKERS и FEEDBACK_QUEUE_SIZE должны быть больше 0")
	}
	if c.Assets.Retention < 0 {
		return fmt.Errorf("ASSET_RETENTION не может быть отрицательным")
	}

	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: недопустимое значение %q (ожидалось одно из %s)", key, value, strings.Join(allowed, ", "))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
