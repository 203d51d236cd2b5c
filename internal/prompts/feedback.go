package prompts

import (
	"fmt"
	"strings"
)

// ExcellentAnswer - ответ модели на почти идеальный ответ кандидата
const ExcellentAnswer = "Loved the answer! You Killed It!"

// FeedbackParams - контекст для обратной связи по одному ответу
type FeedbackParams struct {
	Role           string
	Level          string
	CompanyName    string
	JobDescription string
	InterviewFocus []string
	Question       string
	Answer         string
}

// BuildFeedbackPrompt - промпт для короткой обратной связи (2-4 пункта)
func BuildFeedbackPrompt(p FeedbackParams) string {
	prompt := fmt.Sprintf(`You are an expert interviewer for a %s %s role at %s.
Provide a short, actionable feedback (2-4 bullet points max) on the candidate's answer.
Keep it specific to the question and the job description below.
If the answer is excellent and covers key points succinctly, respond with exactly: "%s".

Question:
%s

Answer:
%s

Job Description:
%s
`, p.Level, p.Role, p.CompanyName, ExcellentAnswer, p.Question, p.Answer, p.JobDescription)

	if len(p.InterviewFocus) > 0 {
		prompt += fmt.Sprintf("\nFocus areas: %s", strings.Join(p.InterviewFocus, ", "))
	}
	prompt += "\nDo not include any preface; return only the feedback text."

	return prompt
}
