// Package voice ведет голосовое интервью: сессии в памяти и переходы
// start, next-question, submit-answer, end.
package voice

import (
	"strings"
	"time"
)

// QuestionState - вопрос внутри сессии
type QuestionState struct {
	ID            int64  `json:"id"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	QuestionOrder int    `json:"questionOrder"`
	AudioFile     string `json:"audioFile,omitempty"`
}

// Session - голосовое интервью одного кандидата.
// Инвариант: 0 <= CurrentQuestionIndex <= len(Questions).
type Session struct {
	ID                   string          `json:"sessionId"`
	InterviewID          int64           `json:"interviewId"`
	UserID               int64           `json:"userId"`
	UserName             string          `json:"userName"`
	Questions            []QuestionState `json:"questions"`
	CurrentQuestionIndex int             `json:"currentQuestionIndex"`
	IsCompleted          bool            `json:"isCompleted"`
	StartedAt            time.Time       `json:"startedAt"`
}

// Exhausted - вопросов больше нет
func (s *Session) Exhausted() bool {
	return s.CurrentQuestionIndex >= len(s.Questions)
}

// Current возвращает вопрос по текущему индексу
func (s *Session) Current() (QuestionState, bool) {
	if s.Exhausted() {
		return QuestionState{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// indexOf ищет вопрос по id, -1 если нет
func (s *Session) indexOf(questionID int64) int {
	for i, q := range s.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}

// Advance сдвигает индекс не дальше конца списка
func (s *Session) Advance() {
	if s.CurrentQuestionIndex < len(s.Questions) {
		s.CurrentQuestionIndex++
	}
	s.IsCompleted = s.CurrentQuestionIndex == len(s.Questions)
}

// AnsweredCount - количество непустых ответов
func (s *Session) AnsweredCount() int {
	n := 0
	for _, q := range s.Questions {
		if strings.TrimSpace(q.Answer) != "" {
			n++
		}
	}
	return n
}

func (s *Session) clone() *Session {
	c := *s
	c.Questions = append([]QuestionState(nil), s.Questions...)
	return &c
}
