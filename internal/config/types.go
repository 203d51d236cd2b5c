package config

import "strings"

// VoiceScript - тексты, которые голосовой интервьюер произносит вне вопросов
type VoiceScript struct {
	Greeting       string `yaml:"greeting"`
	Farewell       string `yaml:"farewell"`
	FallbackName   string `yaml:"fallback_name"`
	AnswerRecorded string `yaml:"answer_recorded"`
	AllCompleted   string `yaml:"all_completed"`
	DurationFormat string `yaml:"duration_format"`
}

const namePlaceholder = "{name}"

// DefaultVoiceScript возвращает встроенные тексты
func DefaultVoiceScript() *VoiceScript {
	return &VoiceScript{
		Greeting:       "Hello {name}! Welcome to your interview. Im excited to get to know you better today. Lets begin with our questions.",
		Farewell:       "Thank you {name}! It was lovely speaking with you today. Your interview has been completed successfully. Best of luck!",
		FallbackName:   "there",
		AnswerRecorded: "Answer recorded. Ready for next question.",
		AllCompleted:   "All questions completed!",
		DurationFormat: "%d minutes",
	}
}

// GreetingFor подставляет имя кандидата в приветствие
func (v *VoiceScript) GreetingFor(name string) string {
	return strings.ReplaceAll(v.Greeting, namePlaceholder, v.name(name))
}

// FarewellFor подставляет имя кандидата в прощание
func (v *VoiceScript) FarewellFor(name string) string {
	return strings.ReplaceAll(v.Farewell, namePlaceholder, v.name(name))
}

func (v *VoiceScript) name(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return v.FallbackName
}
