package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	_ "github.com/mattn/go-sqlite3"

	"interview-voice-service/internal/result"
)

// DB выполняет параметризованные запросы и переводит ошибки драйвера в DBError
type DB struct {
	db *sql.DB
}

// Row - строка результата с именами колонок в camelCase
type Row map[string]any

// ExecResult - итог запроса без выборки
type ExecResult struct {
	RowsAffected int64
	LastInsertID int64
}

// Open открывает SQLite базу по пути path с включенными внешними ключами
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	// sqlite не любит конкурентную запись
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	return &DB{db: db}, nil
}

// Close закрывает соединение
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping используется в /health
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate создает таблицы, если их еще нет
func (d *DB) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS interviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		role TEXT NOT NULL,
		level TEXT NOT NULL,
		tech_stack TEXT NOT NULL DEFAULT '[]',
		number_of_questions INTEGER NOT NULL,
		company_name TEXT NOT NULL,
		job_description TEXT NOT NULL,
		company_website TEXT,
		interview_focus TEXT NOT NULL DEFAULT '[]',
		user_id INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS interview_questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		interview_id INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL DEFAULT '',
		feedback TEXT,
		question_order INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (interview_id) REFERENCES interviews(id)
	);

	CREATE INDEX IF NOT EXISTS idx_interview_questions_interview
		ON interview_questions (interview_id, question_order);
	`
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ошибка создания таблиц: %w", err)
	}
	return nil
}

// Query выполняет выборку и возвращает строки с нормализованными именами колонок
func (d *DB) Query(ctx context.Context, text string, args ...any) result.Result[[]Row] {
	rows, err := d.db.QueryContext(ctx, text, args...)
	if err != nil {
		return result.Err[[]Row](classify(err))
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return result.Err[[]Row](classify(err))
	}
	keys := make([]string, len(columns))
	for i, c := range columns {
		keys[i] = camelCase(c)
	}

	out := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return result.Err[[]Row](classify(err))
		}
		row := make(Row, len(columns))
		for i, key := range keys {
			row[key] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return result.Err[[]Row](classify(err))
	}

	return result.Ok(out)
}

// Exec выполняет запрос без выборки
func (d *DB) Exec(ctx context.Context, text string, args ...any) result.Result[ExecResult] {
	res, err := d.db.ExecContext(ctx, text, args...)
	if err != nil {
		return result.Err[ExecResult](classify(err))
	}
	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()
	return result.Ok(ExecResult{RowsAffected: affected, LastInsertID: lastID})
}

// camelCase переводит snake_case имя колонки в camelCase
func camelCase(name string) string {
	var b strings.Builder
	upper := false
	for i, r := range name {
		if r == '_' {
			upper = i > 0
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Int64 читает целое значение независимо от того, как его отдал драйвер
func (r Row) Int64(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// String читает строку, NULL превращается в пустую строку
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Time читает временную метку
func (r Row) Time(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	}
	return time.Time{}
}

// Strings читает JSON-массив строк из текстовой колонки
func (r Row) Strings(key string) []string {
	raw := r.String(key)
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
