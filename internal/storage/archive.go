package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Archive сохраняет расшифровки завершенных сессий в JSON-файлы
type Archive struct {
	dir string
}

// NewArchive создает архив в директории dir
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// SaveResult сохраняет результат сессии в JSON файл
func (a *Archive) SaveResult(res *InterviewResult) (string, error) {
	err := os.MkdirAll(a.dir, 0755)
	if err != nil {
		return "", fmt.Errorf("ошибка создания директории %s: %w", a.dir, err)
	}

	path := a.path(res.SessionID)

	jsonData, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации результата: %w", err)
	}

	err = os.WriteFile(path, jsonData, 0644)
	if err != nil {
		return "", fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}

	return path, nil
}

// LoadResult загружает результат сессии из JSON файла
func (a *Archive) LoadResult(sessionID string) (*InterviewResult, error) {
	path := a.path(sessionID)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	var res InterviewResult
	err = json.Unmarshal(data, &res)
	if err != nil {
		return nil, fmt.Errorf("ошибка десериализации JSON: %w", err)
	}

	return &res, nil
}

// ListResults возвращает id всех сохраненных сессий
func (a *Archive) ListResults() ([]string, error) {
	if _, err := os.Stat(a.dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", a.dir, err)
	}

	results := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || !strings.HasPrefix(name, "interview_") {
			continue
		}
		results = append(results, strings.TrimSuffix(strings.TrimPrefix(name, "interview_"), ".json"))
	}

	return results, nil
}

func (a *Archive) path(sessionID string) string {
	return filepath.Join(a.dir, fmt.Sprintf("interview_%s.json", sessionID))
}
