package storage

import "time"

// User - кандидат, проходящий интервью
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Interview - сохраненные параметры интервью
type Interview struct {
	ID                 int64     `json:"id"`
	Role               string    `json:"role"`
	Level              string    `json:"level"`
	TechStack          []string  `json:"techStack,omitempty"`
	NumberOfQuestions  int       `json:"numberOfQuestions"`
	CompanyName        string    `json:"companyName"`
	JobDescription     string    `json:"jobDescription"`
	CompanyWebsite     string    `json:"companyWebsite,omitempty"`
	InterviewFocus     []string  `json:"interviewFocus,omitempty"`
	UserID             int64     `json:"userId"`
	CreatedAt          time.Time `json:"createdAt"`
	InterviewQuestions []string  `json:"interviewQuestions,omitempty"`
}

// InterviewQuestion - строка interview_questions
type InterviewQuestion struct {
	ID            int64  `json:"id"`
	InterviewID   int64  `json:"interviewId"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Feedback      string `json:"feedback,omitempty"`
	QuestionOrder int    `json:"questionOrder"`
}

// FeedbackContext - все, что нужно для промпта обратной связи по одному вопросу
type FeedbackContext struct {
	Role           string
	Level          string
	CompanyName    string
	JobDescription string
	InterviewFocus []string
	Question       string
}

// InterviewResult - архив завершенной голосовой сессии
type InterviewResult struct {
	SessionID   string    `json:"session_id"`
	InterviewID int64     `json:"interview_id"`
	UserID      int64     `json:"user_id"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	Answers     []QA      `json:"questions_and_answers"`
}

// QA - один вопрос и ответ в архиве
type QA struct {
	QuestionID int64  `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	AudioFile  string `json:"audio_file,omitempty"`
}
