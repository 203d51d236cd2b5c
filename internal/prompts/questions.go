// Package prompts строит промпты для генерации вопросов и обратной связи
// и разбирает ответы модели.
package prompts

import (
	"fmt"
	"regexp"
	"strings"
)

// InterviewParams - параметры интервью, влияющие на вопросы
type InterviewParams struct {
	Role              string
	Level             string
	TechStack         []string
	NumberOfQuestions int
	CompanyName       string
	JobDescription    string
	InterviewFocus    []string
}

// BuildQuestionsPrompt - промпт для генерации списка вопросов
func BuildQuestionsPrompt(p InterviewParams) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are an expert interviewer. Generate a list of exactly %d interview questions.", p.NumberOfQuestions))

	if p.Role != "" {
		prompt.WriteString(fmt.Sprintf(" The role is for a %s %s.", p.Level, p.Role))
	}
	if len(p.TechStack) > 0 {
		prompt.WriteString(fmt.Sprintf(" The tech stack is %s.", strings.Join(p.TechStack, ", ")))
	}
	if p.CompanyName != "" {
		prompt.WriteString(fmt.Sprintf(" The company name is %s.", p.CompanyName))
	}
	if p.JobDescription != "" {
		prompt.WriteString(fmt.Sprintf(" The job description is as follows: %s.", p.JobDescription))
	}
	if len(p.InterviewFocus) > 0 {
		prompt.WriteString(fmt.Sprintf(" Focus on the following types of questions: %s.", strings.Join(p.InterviewFocus, ", ")))
	}

	prompt.WriteString(fmt.Sprintf(`
IMPORTANT: Return ONLY the questions, one per line, numbered 1-%d. No introduction, no explanations, no additional text.

Format:
1. [Question 1]
2. [Question 2]
3. [Question 3]
...

Do not include any prefixes like "Problem-Solving:" or "Technical:" in the questions themselves.`, p.NumberOfQuestions))

	return prompt.String()
}

var numberPrefix = regexp.MustCompile(`^\d+\.\s*`)

// ParseQuestions разбирает ответ модели: одна строка - один вопрос,
// нумерация "1. " срезается, пустые строки пропускаются
func ParseQuestions(text string) []string {
	questions := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(numberPrefix.ReplaceAllString(line, ""))
		if line != "" {
			questions = append(questions, line)
		}
	}
	return questions
}
