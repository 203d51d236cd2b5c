// Package assets управляет аудиофайлами на диске: сгенерированной речью и
// записанными ответами кандидатов.
package assets

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Asset - файл в директории ассетов
type Asset struct {
	Name string
	Path string
	URL  string
}

// Store раздает имена файлов и пишет их в одну директорию
type Store struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

// New создает хранилище ассетов. urlPrefix - публичный префикс, под которым
// директория отдается как статика (например "/uploads/audio").
func New(dir, urlPrefix string) *Store {
	return &Store{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		now:       time.Now,
	}
}

// Dir возвращает директорию хранилища
func (s *Store) Dir() string {
	return s.dir
}

// Reserve выдает новое имя файла без записи на диск.
// Имя: <prefix>_<unix ms>_<случайный суффикс><ext>.
func (s *Store) Reserve(prefix, ext string) (Asset, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return Asset{}, fmt.Errorf("ошибка создания директории %s: %w", s.dir, err)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%s_%d_%s%s", prefix, s.now().UnixMilli(), suffix, ext)

	return Asset{
		Name: name,
		Path: filepath.Join(s.dir, name),
		URL:  s.urlPrefix + "/" + name,
	}, nil
}

// Write сохраняет байты в новый файл
func (s *Store) Write(prefix, ext string, data []byte) (Asset, error) {
	asset, err := s.Reserve(prefix, ext)
	if err != nil {
		return Asset{}, err
	}
	if err := os.WriteFile(asset.Path, data, 0644); err != nil {
		return Asset{}, fmt.Errorf("ошибка записи файла %s: %w", asset.Path, err)
	}
	return asset, nil
}

// Save копирует поток в новый файл
func (s *Store) Save(prefix, ext string, r io.Reader) (Asset, error) {
	asset, err := s.Reserve(prefix, ext)
	if err != nil {
		return Asset{}, err
	}

	f, err := os.Create(asset.Path)
	if err != nil {
		return Asset{}, fmt.Errorf("ошибка создания файла %s: %w", asset.Path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(asset.Path)
		return Asset{}, fmt.Errorf("ошибка записи файла %s: %w", asset.Path, err)
	}
	if err := f.Close(); err != nil {
		return Asset{}, fmt.Errorf("ошибка закрытия файла %s: %w", asset.Path, err)
	}
	return asset, nil
}

// Resolve переводит публичный URL обратно в путь на диске.
// false - если URL не из этого хранилища.
func (s *Store) Resolve(url string) (string, bool) {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return "", false
	}
	name := path.Base(url)
	if name == "." || name == "/" || strings.Contains(name, "..") {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// Exists проверяет, что файл по URL все еще лежит на диске
func (s *Store) Exists(url string) bool {
	p, ok := s.Resolve(url)
	if !ok {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Prune удаляет файлы старше maxAge и возвращает их количество
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("ошибка чтения директории %s: %w", s.dir, err)
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// ContentType возвращает MIME тип аудио по расширению файла
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".webm":
		return "audio/webm"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
