package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	speech "cloud.google.com/go/speech/apiv1p1beta1"
	"cloud.google.com/go/speech/apiv1p1beta1/speechpb"
	"google.golang.org/api/option"

	"interview-voice-service/internal/config"
)

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// Google - распознавание через Google Cloud Speech (v1p1beta1: только там есть MP3).
// Авторизация через файл сервисного аккаунта или Application Default
// Credentials. Клиент создается при первом вызове, чтобы сервис стартовал
// без учетных данных.
type Google struct {
	language        string
	credentialsFile string
	sampleRate      int32

	mu        sync.Mutex
	client    *speech.Client
	recognize recognizeFunc
}

// NewGoogle создает провайдера Google Speech
func NewGoogle(cfg config.TranscriptionConfig) *Google {
	return &Google{
		language:        cfg.GoogleLanguage,
		credentialsFile: cfg.GoogleCredentialsFile,
		sampleRate:      int32(cfg.GoogleSampleRate),
	}
}

func (g *Google) Name() string { return config.ProviderGoogle }

func (g *Google) recognizer(ctx context.Context) (recognizeFunc, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.recognize != nil {
		return g.recognize, nil
	}

	var opts []option.ClientOption
	if g.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(g.credentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента Google Speech: %w", err)
	}
	g.client = client
	g.recognize = func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return client.Recognize(ctx, req)
	}
	return g.recognize, nil
}

// Transcribe распознает файл синхронным Recognize
func (g *Google) Transcribe(ctx context.Context, audioPath string) (Transcription, error) {
	format, err := audioFormatFor(audioPath)
	if err != nil {
		return Transcription{}, err
	}
	if format.sampleRate > 0 && g.sampleRate > 0 {
		format.sampleRate = g.sampleRate
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return Transcription{}, fmt.Errorf("ошибка чтения файла %s: %w", audioPath, err)
	}

	recognize, err := g.recognizer(ctx)
	if err != nil {
		return Transcription{}, err
	}

	resp, err := recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:              format.encoding,
			SampleRateHertz:       format.sampleRate,
			LanguageCode:          g.language,
			EnableWordTimeOffsets: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return Transcription{}, fmt.Errorf("ошибка распознавания Google Speech: %w", err)
	}

	return fromRecognizeResponse(resp), nil
}

// Close закрывает клиента, если он был создан
func (g *Google) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// fromRecognizeResponse склеивает результаты по первой альтернативе.
// Уверенность - среднее по результатам.
func fromRecognizeResponse(resp *speechpb.RecognizeResponse) Transcription {
	out := Transcription{Words: []Word{}}

	var parts []string
	var total float64
	var count int
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		alt := alts[0]
		if text := strings.TrimSpace(alt.GetTranscript()); text != "" {
			parts = append(parts, text)
		}
		total += float64(alt.GetConfidence())
		count++
		for _, w := range alt.GetWords() {
			out.Words = append(out.Words, Word{
				Word:       w.GetWord(),
				Start:      w.GetStartTime().AsDuration().Seconds(),
				End:        w.GetEndTime().AsDuration().Seconds(),
				Confidence: float64(w.GetConfidence()),
			})
		}
	}

	out.Transcript = strings.Join(parts, " ")
	if count > 0 {
		out.Confidence = total / float64(count)
	}
	return out
}

type audioFormat struct {
	encoding   speechpb.RecognitionConfig_AudioEncoding
	sampleRate int32
}

// audioFormatFor выбирает кодировку по расширению. WAV и FLAC несут частоту
// в заголовке, для остальных форматов Google требует ее явно.
func audioFormatFor(path string) (audioFormat, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return audioFormat{encoding: speechpb.RecognitionConfig_LINEAR16}, nil
	case ".flac":
		return audioFormat{encoding: speechpb.RecognitionConfig_FLAC}, nil
	case ".mp3":
		return audioFormat{encoding: speechpb.RecognitionConfig_MP3, sampleRate: 44100}, nil
	case ".webm":
		return audioFormat{encoding: speechpb.RecognitionConfig_WEBM_OPUS, sampleRate: 48000}, nil
	case ".ogg", ".opus":
		return audioFormat{encoding: speechpb.RecognitionConfig_OGG_OPUS, sampleRate: 48000}, nil
	default:
		return audioFormat{}, fmt.Errorf("формат %q не поддерживается Google Speech (ожидается wav, flac, mp3, webm или ogg)", ext)
	}
}
