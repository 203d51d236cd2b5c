package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load загружает тексты голосового интервьюера из YAML файла.
// Если файла нет, возвращаются встроенные тексты. Пустые поля
// файла заполняются значениями по умолчанию.
func Load(filename string) (*VoiceScript, error) {
	script := DefaultVoiceScript()

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return script, nil
		}
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	var fromFile VoiceScript
	err = yaml.Unmarshal(data, &fromFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}
	merge(script, &fromFile)

	// Валидация конфигурации
	err = validateConfig(script)
	if err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return script, nil
}

func merge(dst, src *VoiceScript) {
	set := func(d *string, s string) {
		if strings.TrimSpace(s) != "" {
			*d = s
		}
	}
	set(&dst.Greeting, src.Greeting)
	set(&dst.Farewell, src.Farewell)
	set(&dst.FallbackName, src.FallbackName)
	set(&dst.AnswerRecorded, src.AnswerRecorded)
	set(&dst.AllCompleted, src.AllCompleted)
	set(&dst.DurationFormat, src.DurationFormat)
}

// validateConfig проверяет корректность конфигурации
func validateConfig(script *VoiceScript) error {
	if !strings.Contains(script.Greeting, namePlaceholder) {
		return fmt.Errorf("greeting должен содержать %s", namePlaceholder)
	}

	if !strings.Contains(script.Farewell, namePlaceholder) {
		return fmt.Errorf("farewell должен содержать %s", namePlaceholder)
	}

	if strings.Count(script.DurationFormat, "%d") != 1 {
		return fmt.Errorf("duration_format должен содержать ровно один %%d")
	}

	return nil
}
