package storage

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// Kind - вид ошибки базы данных
type Kind string

const (
	KindQuery        Kind = "query"
	KindNotNull      Kind = "not_null"
	KindForeignKey   Kind = "foreign_key"
	KindDuplicateKey Kind = "duplicate_key"
)

// Общий корень и узкие виды для errors.Is
var (
	ErrDatabase     = errors.New("database query error")
	ErrNotNull      = errors.New("not-null constraint violated")
	ErrForeignKey   = errors.New("foreign key constraint violated")
	ErrDuplicateKey = errors.New("unique key constraint violated")
)

// DBError - классифицированная ошибка драйвера с контекстом
type DBError struct {
	Kind    Kind
	Code    int
	Table   string
	Column  string
	Detail  string
	Message string
	Err     error
}

func (e *DBError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DBError) Unwrap() error {
	return e.Err
}

// Is позволяет сопоставлять как широко (ErrDatabase), так и узко
func (e *DBError) Is(target error) bool {
	switch target {
	case ErrDatabase:
		return true
	case ErrNotNull:
		return e.Kind == KindNotNull
	case ErrForeignKey:
		return e.Kind == KindForeignKey
	case ErrDuplicateKey:
		return e.Kind == KindDuplicateKey
	}
	return false
}

func (e *DBError) StatusCode() int {
	switch e.Kind {
	case KindNotNull, KindForeignKey:
		return http.StatusBadRequest
	case KindDuplicateKey:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (e *DBError) ErrorCode() string {
	switch e.Kind {
	case KindNotNull:
		return "DATABASE_NOT_NULL_VIOLATION"
	case KindForeignKey:
		return "DATABASE_FOREIGN_KEY_VIOLATION"
	case KindDuplicateKey:
		return "DATABASE_DUPLICATE_KEY"
	}
	return "DATABASE_ERROR"
}

func (e *DBError) PublicMessage() string {
	return e.Message
}

// classify разбирает ошибку sqlite по расширенному коду
func classify(err error) *DBError {
	dbErr := &DBError{
		Kind:    KindQuery,
		Message: "The database query could not be fulfilled.",
		Err:     err,
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return dbErr
	}

	dbErr.Code = int(sqliteErr.ExtendedCode)
	dbErr.Detail = sqliteErr.Error()

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintNotNull:
		dbErr.Kind = KindNotNull
		dbErr.Message = "A not-null constraint was violated"
	case sqlite3.ErrConstraintForeignKey:
		dbErr.Kind = KindForeignKey
		dbErr.Message = "A foreign key constraint was violated"
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		dbErr.Kind = KindDuplicateKey
		dbErr.Message = "A unique key constraint was violated"
	}

	dbErr.Table, dbErr.Column = constraintTarget(dbErr.Detail)
	return dbErr
}

// constraintTarget достает "table.column" из сообщения вида
// "NOT NULL constraint failed: users.email"
func constraintTarget(msg string) (table, column string) {
	idx := strings.Index(msg, "failed: ")
	if idx < 0 {
		return "", ""
	}
	target := msg[idx+len("failed: "):]
	if comma := strings.Index(target, ","); comma >= 0 {
		target = target[:comma]
	}
	table, column, found := strings.Cut(strings.TrimSpace(target), ".")
	if !found {
		return "", ""
	}
	return table, column
}
