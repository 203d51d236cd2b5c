package interviewer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"interview-voice-service/internal/apperr"
	"interview-voice-service/internal/metrics"
	"interview-voice-service/internal/prompts"
	"interview-voice-service/internal/result"
	"interview-voice-service/internal/storage"
)

// Repository - то, что сервису нужно от хранилища
type Repository interface {
	CreateInterview(ctx context.Context, in storage.NewInterview) result.Result[storage.Interview]
	CreateInterviewQuestion(ctx context.Context, q storage.InterviewQuestion) result.Result[storage.InterviewQuestion]
	GetFeedbackContext(ctx context.Context, questionID int64) result.Result[storage.FeedbackContext]
	UpdateQuestionFeedback(ctx context.Context, questionID int64, feedback string) result.Result[struct{}]
}

// Service представляет сервис интервьюера: генерация вопросов и обратной связи
type Service struct {
	gen     TextGenerator
	repo    Repository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New создает новый сервис интервьюера
func New(gen TextGenerator, repo Repository, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{gen: gen, repo: repo, metrics: m, logger: logger}
}

// GenerateQuestions запрашивает у модели список вопросов
func (s *Service) GenerateQuestions(ctx context.Context, params prompts.InterviewParams) ([]string, error) {
	text, err := s.gen.Generate(ctx, prompts.BuildQuestionsPrompt(params))
	s.metrics.IncrementAPICall(err == nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации вопросов: %w", err)
	}

	questions := prompts.ParseQuestions(text)
	if params.NumberOfQuestions > 0 && len(questions) > params.NumberOfQuestions {
		questions = questions[:params.NumberOfQuestions]
	}
	return questions, nil
}

// CreateInterview генерирует вопросы и сохраняет интервью вместе с ними.
// Вопросы генерируются до записи, чтобы сбой модели не оставлял интервью без вопросов.
func (s *Service) CreateInterview(ctx context.Context, in storage.NewInterview) result.Result[storage.Interview] {
	if in.NumberOfQuestions <= 0 {
		return result.Err[storage.Interview](apperr.WithMessage(apperr.ErrInvalidRequest, "numberOfQuestions must be positive"))
	}

	questions, err := s.GenerateQuestions(ctx, prompts.InterviewParams{
		Role:              in.Role,
		Level:             in.Level,
		TechStack:         in.TechStack,
		NumberOfQuestions: in.NumberOfQuestions,
		CompanyName:       in.CompanyName,
		JobDescription:    in.JobDescription,
		InterviewFocus:    in.InterviewFocus,
	})
	if err != nil {
		return result.Err[storage.Interview](apperr.Wrap(apperr.ErrGeneration, err))
	}
	if len(questions) == 0 {
		return result.Err[storage.Interview](apperr.WithMessage(apperr.ErrGeneration, "The model returned no interview questions"))
	}

	return result.Then(s.repo.CreateInterview(ctx, in), func(iv storage.Interview) result.Result[storage.Interview] {
		for i, q := range questions {
			saved := s.repo.CreateInterviewQuestion(ctx, storage.InterviewQuestion{
				InterviewID:   iv.ID,
				Question:      q,
				QuestionOrder: i + 1,
			})
			if saved.IsErr() {
				return result.Err[storage.Interview](saved.Err())
			}
		}
		iv.InterviewQuestions = questions
		s.logger.Info("интервью создано", "interview_id", iv.ID, "questions", len(questions))
		return result.Ok(iv)
	})
}

// GenerateFeedback строит промпт и возвращает обратную связь по ответу
func (s *Service) GenerateFeedback(ctx context.Context, fc storage.FeedbackContext, answer string) (string, error) {
	text, err := s.gen.Generate(ctx, prompts.BuildFeedbackPrompt(prompts.FeedbackParams{
		Role:           fc.Role,
		Level:          fc.Level,
		CompanyName:    fc.CompanyName,
		JobDescription: fc.JobDescription,
		InterviewFocus: fc.InterviewFocus,
		Question:       fc.Question,
		Answer:         answer,
	}))
	s.metrics.IncrementAPICall(err == nil)
	if err != nil {
		return "", fmt.Errorf("ошибка генерации обратной связи: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// GenerateAndSaveFeedback загружает контекст вопроса, генерирует обратную
// связь и сохраняет ее, если она не пустая
func (s *Service) GenerateAndSaveFeedback(ctx context.Context, questionID int64, answer string) error {
	fc := s.repo.GetFeedbackContext(ctx, questionID)
	if fc.IsErr() {
		s.metrics.IncrementFeedbackFailed()
		return fmt.Errorf("контекст вопроса %d: %w", questionID, fc.Err())
	}

	feedback, err := s.GenerateFeedback(ctx, fc.Value(), answer)
	if err != nil {
		s.metrics.IncrementFeedbackFailed()
		return err
	}
	if feedback == "" {
		s.logger.Warn("пустая обратная связь", "question_id", questionID)
		return nil
	}

	if saved := s.repo.UpdateQuestionFeedback(ctx, questionID, feedback); saved.IsErr() {
		s.metrics.IncrementFeedbackFailed()
		return fmt.Errorf("сохранение обратной связи %d: %w", questionID, saved.Err())
	}
	s.metrics.IncrementFeedbackGenerated()
	return nil
}
