package voice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"interview-voice-service/internal/apperr"
	"interview-voice-service/internal/config"
	"interview-voice-service/internal/metrics"
	"interview-voice-service/internal/result"
	"interview-voice-service/internal/speech"
	"interview-voice-service/internal/storage"
	"interview-voice-service/internal/transcribe"
	"interview-voice-service/internal/worker"
)

// Repository - то, что оркестратору нужно от хранилища
type Repository interface {
	GetUserByID(ctx context.Context, id int64) result.Result[storage.User]
	GetInterviewQuestions(ctx context.Context, interviewID int64) result.Result[[]storage.InterviewQuestion]
	UpdateQuestionAnswer(ctx context.Context, questionID int64, answer string) result.Result[struct{}]
}

// FeedbackQueue принимает задачи на обратную связь без ожидания
type FeedbackQueue interface {
	Submit(job worker.FeedbackJob) bool
}

// Archiver сохраняет расшифровку завершенной сессии
type Archiver interface {
	SaveResult(res *storage.InterviewResult) (string, error)
}

// Deps - зависимости оркестратора. Feedback и Archive необязательны.
type Deps struct {
	Store       *Store
	Repo        Repository
	Synthesizer speech.Synthesizer
	Transcriber transcribe.Transcriber
	Feedback    FeedbackQueue
	Archive     Archiver
	Script      *config.VoiceScript
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Orchestrator владеет жизненным циклом голосовых сессий
type Orchestrator struct {
	Deps
	now func() time.Time
}

// NewOrchestrator собирает оркестратор
func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.Script == nil {
		deps.Script = config.DefaultVoiceScript()
	}
	return &Orchestrator{Deps: deps, now: time.Now}
}

type StartResult struct {
	SessionID       string `json:"sessionId"`
	GreetingMessage string `json:"greetingMessage"`
	GreetingAudio   string `json:"greetingAudio"`
}

type NextQuestionResult struct {
	QuestionID     int64  `json:"questionId"`
	Question       string `json:"question"`
	QuestionAudio  string `json:"questionAudio"`
	QuestionNumber int    `json:"questionNumber"`
	TotalQuestions int    `json:"totalQuestions"`
	IsLastQuestion bool   `json:"isLastQuestion"`
}

type SubmitAnswerResult struct {
	Success               bool    `json:"success"`
	Message               string  `json:"message"`
	NextQuestionAvailable bool    `json:"nextQuestionAvailable"`
	Transcript            string  `json:"transcript"`
	Confidence            float64 `json:"confidence"`
}

type Summary struct {
	TotalQuestions    int    `json:"totalQuestions"`
	AnsweredQuestions int    `json:"answeredQuestions"`
	Duration          string `json:"duration"`
}

type EndResult struct {
	Message          string  `json:"message"`
	FarewellAudio    string  `json:"farewellAudio"`
	InterviewSummary Summary `json:"interviewSummary"`
}

// Start загружает кандидата и тексты вопросов, синтезирует приветствие и
// регистрирует сессию. Ответы прошлых прохождений в сессию не попадают.
// Сессия создается только после успешного синтеза.
func (o *Orchestrator) Start(ctx context.Context, interviewID, userID int64) result.Result[StartResult] {
	ctx = context.WithoutCancel(ctx)

	user := o.Repo.GetUserByID(ctx, userID)
	if user.IsErr() {
		return result.Err[StartResult](user.Err())
	}

	questions := o.Repo.GetInterviewQuestions(ctx, interviewID)
	if questions.IsErr() {
		return result.Err[StartResult](questions.Err())
	}
	if len(questions.Value()) == 0 {
		return result.Err[StartResult](apperr.ErrInterviewNotFound)
	}

	now := o.now()
	session := &Session{
		ID:          NewSessionID(now),
		InterviewID: interviewID,
		UserID:      userID,
		UserName:    user.Value().FirstName,
		Questions:   make([]QuestionState, 0, len(questions.Value())),
		StartedAt:   now,
	}
	for _, q := range questions.Value() {
		session.Questions = append(session.Questions, QuestionState{
			ID:            q.ID,
			Question:      q.Question,
			QuestionOrder: q.QuestionOrder,
		})
	}

	greeting := o.Script.GreetingFor(session.UserName)
	audio, err := o.synthesize(ctx, greeting)
	if err != nil {
		return result.Err[StartResult](err)
	}

	o.Store.Create(session)
	o.Metrics.IncrementSessionsStarted()
	o.Logger.Info("голосовое интервью начато",
		"session_id", session.ID,
		"interview_id", interviewID,
		"user_id", userID,
		"questions", len(session.Questions))

	return result.Ok(StartResult{
		SessionID:       session.ID,
		GreetingMessage: greeting,
		GreetingAudio:   audio,
	})
}

// NextQuestion синтезирует текущий вопрос. Индекс не меняется.
// Неизвестная и исчерпанная сессия неразличимы: обе дают ErrSessionNotFound.
func (o *Orchestrator) NextQuestion(ctx context.Context, sessionID string) result.Result[NextQuestionResult] {
	ctx = context.WithoutCancel(ctx)

	session, ok := o.Store.Get(sessionID)
	if !ok {
		return result.Err[NextQuestionResult](apperr.ErrSessionNotFound)
	}
	current, ok := session.Current()
	if !ok {
		return result.Err[NextQuestionResult](apperr.ErrSessionNotFound)
	}

	audio, err := o.synthesize(ctx, current.Question)
	if err != nil {
		return result.Err[NextQuestionResult](err)
	}

	o.Metrics.IncrementQuestionsAsked()
	return result.Ok(NextQuestionResult{
		QuestionID:     current.ID,
		Question:       current.Question,
		QuestionAudio:  audio,
		QuestionNumber: session.CurrentQuestionIndex + 1,
		TotalQuestions: len(session.Questions),
		IsLastQuestion: session.CurrentQuestionIndex == len(session.Questions)-1,
	})
}

// SubmitAnswer расшифровывает запись, сохраняет ответ, ставит обратную
// связь в очередь и сдвигает индекс. Ошибка распознавания прерывает
// переход до любых записей.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, sessionID string, questionID int64, audioFile string) result.Result[SubmitAnswerResult] {
	ctx = context.WithoutCancel(ctx)

	unlock, ok := o.Store.Lock(sessionID)
	if !ok {
		return result.Err[SubmitAnswerResult](apperr.ErrSessionNotFound)
	}
	defer unlock()

	// сессию могли завершить, пока ждали блокировку
	session, ok := o.Store.Get(sessionID)
	if !ok {
		return result.Err[SubmitAnswerResult](apperr.ErrSessionNotFound)
	}

	idx := session.indexOf(questionID)
	if idx < 0 {
		return result.Err[SubmitAnswerResult](apperr.WithMessage(apperr.ErrQuestionNotFound,
			fmt.Sprintf("Question %d does not belong to this interview session", questionID)))
	}

	transcription, err := o.Transcriber.Transcribe(ctx, audioFile)
	if err != nil {
		o.Metrics.IncrementTranscriptionFailures()
		o.Logger.Error("ошибка распознавания ответа",
			"session_id", sessionID,
			"question_id", questionID,
			"provider", o.Transcriber.Name(),
			"error", err)
		return result.Err[SubmitAnswerResult](apperr.Wrap(apperr.ErrTranscription, err))
	}

	saved := o.Repo.UpdateQuestionAnswer(ctx, questionID, transcription.Transcript)
	if saved.IsErr() {
		return result.Err[SubmitAnswerResult](saved.Err())
	}

	o.enqueueFeedback(sessionID, questionID, transcription.Transcript)

	session.Questions[idx].Answer = transcription.Transcript
	if audioFile != "" {
		session.Questions[idx].AudioFile = audioFile
	}
	session.Advance()
	o.Store.Put(sessionID, session)

	o.Metrics.IncrementAnswersSubmitted()
	o.Logger.Info("ответ записан",
		"session_id", sessionID,
		"question_id", questionID,
		"index", session.CurrentQuestionIndex,
		"confidence", transcription.Confidence)

	message := o.Script.AnswerRecorded
	if session.IsCompleted {
		message = o.Script.AllCompleted
	}
	return result.Ok(SubmitAnswerResult{
		Success:               true,
		Message:               message,
		NextQuestionAvailable: !session.Exhausted(),
		Transcript:            transcription.Transcript,
		Confidence:            transcription.Confidence,
	})
}

// End синтезирует прощание, удаляет сессию и возвращает итоги.
// Повторный End дает ErrSessionNotFound.
func (o *Orchestrator) End(ctx context.Context, sessionID string) result.Result[EndResult] {
	ctx = context.WithoutCancel(ctx)

	unlock, ok := o.Store.Lock(sessionID)
	if !ok {
		return result.Err[EndResult](apperr.ErrSessionNotFound)
	}
	defer unlock()

	session, ok := o.Store.Get(sessionID)
	if !ok {
		return result.Err[EndResult](apperr.ErrSessionNotFound)
	}

	endedAt := o.now()
	elapsed := endedAt.Sub(session.StartedAt)

	farewell := o.Script.FarewellFor(session.UserName)
	audio, err := o.synthesize(ctx, farewell)
	if err != nil {
		return result.Err[EndResult](err)
	}

	o.Store.Delete(sessionID)
	o.Metrics.IncrementSessionsCompleted()
	o.archive(session, endedAt)

	summary := Summary{
		TotalQuestions:    len(session.Questions),
		AnsweredQuestions: session.AnsweredCount(),
		Duration:          fmt.Sprintf(o.Script.DurationFormat, int(elapsed/time.Minute)),
	}
	o.Logger.Info("голосовое интервью завершено",
		"session_id", sessionID,
		"answered", summary.AnsweredQuestions,
		"total", summary.TotalQuestions,
		"elapsed", elapsed.Round(time.Second))

	return result.Ok(EndResult{
		Message:          farewell,
		FarewellAudio:    audio,
		InterviewSummary: summary,
	})
}

func (o *Orchestrator) synthesize(ctx context.Context, text string) (string, error) {
	audio, err := o.Synthesizer.Synthesize(ctx, text)
	if err != nil {
		o.Metrics.IncrementSynthesisFailures()
		o.Logger.Error("ошибка синтеза речи", "provider", o.Synthesizer.Name(), "error", err)
		return "", apperr.Wrap(apperr.ErrSynthesis, err)
	}
	return audio, nil
}

// enqueueFeedback ставит генерацию обратной связи в фон. Отказ очереди не
// влияет на ответ клиенту.
func (o *Orchestrator) enqueueFeedback(sessionID string, questionID int64, answer string) {
	if o.Feedback == nil {
		return
	}
	o.Feedback.Submit(worker.FeedbackJob{
		SessionID:  sessionID,
		QuestionID: questionID,
		Answer:     answer,
	})
}

func (o *Orchestrator) archive(session *Session, endedAt time.Time) {
	if o.Archive == nil {
		return
	}
	res := &storage.InterviewResult{
		SessionID:   session.ID,
		InterviewID: session.InterviewID,
		UserID:      session.UserID,
		StartedAt:   session.StartedAt,
		EndedAt:     endedAt,
		Answers:     make([]storage.QA, 0, len(session.Questions)),
	}
	for _, q := range session.Questions {
		res.Answers = append(res.Answers, storage.QA{
			QuestionID: q.ID,
			Question:   q.Question,
			Answer:     q.Answer,
			AudioFile:  q.AudioFile,
		})
	}
	if path, err := o.Archive.SaveResult(res); err != nil {
		o.Logger.Warn("не удалось сохранить архив сессии", "session_id", session.ID, "error", err)
	} else {
		o.Logger.Debug("архив сессии сохранен", "session_id", session.ID, "path", path)
	}
}

// ActiveSessions - количество сессий в памяти
func (o *Orchestrator) ActiveSessions() int {
	return o.Store.Len()
}
