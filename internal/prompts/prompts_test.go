package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildQuestionsPrompt(t *testing.T) {
	prompt := BuildQuestionsPrompt(InterviewParams{
		Role:              "Backend Engineer",
		Level:             "Senior",
		TechStack:         []string{"Go", "Kafka"},
		NumberOfQuestions: 5,
		CompanyName:       "Acme",
		JobDescription:    "Own the payments platform",
		InterviewFocus:    []string{"System Design", "Behavioral"},
	})

	require.True(t, strings.HasPrefix(prompt, "You are an expert interviewer. Generate a list of exactly 5 interview questions."))
	require.Contains(t, prompt, "The role is for a Senior Backend Engineer.")
	require.Contains(t, prompt, "The tech stack is Go, Kafka.")
	require.Contains(t, prompt, "The company name is Acme.")
	require.Contains(t, prompt, "The job description is as follows: Own the payments platform.")
	require.Contains(t, prompt, "Focus on the following types of questions: System Design, Behavioral.")
	require.Contains(t, prompt, "numbered 1-5.")
}

func TestBuildQuestionsPromptOmitsEmptyParts(t *testing.T) {
	prompt := BuildQuestionsPrompt(InterviewParams{NumberOfQuestions: 3})
	require.NotContains(t, prompt, "The role is")
	require.NotContains(t, prompt, "tech stack")
	require.NotContains(t, prompt, "Focus on")
}

func TestParseQuestions(t *testing.T) {
	text := "1. What is a goroutine?\n\n2.   How do channels work?  \n  3. Explain context cancellation.\nBonus question without number\n4.\n"
	require.Equal(t, []string{
		"What is a goroutine?",
		"How do channels work?",
		"Explain context cancellation.",
		"Bonus question without number",
	}, ParseQuestions(text))

	require.Empty(t, ParseQuestions("  \n\n"))
	require.NotNil(t, ParseQuestions(""))
}

func TestBuildFeedbackPrompt(t *testing.T) {
	prompt := BuildFeedbackPrompt(FeedbackParams{
		Role:           "SRE",
		Level:          "Mid",
		CompanyName:    "Acme",
		JobDescription: "Keep things running",
		InterviewFocus: []string{"Incidents"},
		Question:       "Tell me about an outage",
		Answer:         "We lost a region",
	})

	require.True(t, strings.HasPrefix(prompt, "You are an expert interviewer for a Mid SRE role at Acme."))
	require.Contains(t, prompt, "2-4 bullet points")
	require.Contains(t, prompt, `"`+ExcellentAnswer+`"`)
	require.Contains(t, prompt, "Question:\nTell me about an outage")
	require.Contains(t, prompt, "Answer:\nWe lost a region")
	require.Contains(t, prompt, "Focus areas: Incidents")
	require.True(t, strings.HasSuffix(prompt, "return only the feedback text."))

	noFocus := BuildFeedbackPrompt(FeedbackParams{Role: "SRE"})
	require.NotContains(t, noFocus, "Focus areas")
}
