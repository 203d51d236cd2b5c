// Package apperr описывает типизированные ошибки, которые доходят до HTTP-границы.
package apperr

import (
	"errors"
	"net/http"
)

// Error - ошибка с кодом для клиента и HTTP-статусом.
// Сравнение через errors.Is идет по Code, поэтому обернутая копия
// совпадает со своим видом.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// StatusCode и ErrorCode используются HTTP-слоем для рендеринга
func (e *Error) StatusCode() int       { return e.Status }
func (e *Error) ErrorCode() string     { return e.Code }
func (e *Error) PublicMessage() string { return e.Message }

var (
	ErrSessionNotFound = &Error{
		Code:    "INTERVIEW_SESSION_NOT_FOUND",
		Message: "Voice interview session not found",
		Status:  http.StatusNotFound,
	}
	ErrInterviewNotFound = &Error{
		Code:    "INTERVIEW_NOT_FOUND",
		Message: "Interview not found",
		Status:  http.StatusNotFound,
	}
	ErrUserNotFound = &Error{
		Code:    "USER_NOT_FOUND",
		Message: "User not found",
		Status:  http.StatusNotFound,
	}
	ErrQuestionNotFound = &Error{
		Code:    "QUESTION_NOT_FOUND",
		Message: "Question does not belong to this interview session",
		Status:  http.StatusNotFound,
	}
	ErrTranscription = &Error{
		Code:    "TRANSCRIPTION_ERROR",
		Message: "Audio transcription failed",
		Status:  http.StatusInternalServerError,
	}
	ErrSynthesis = &Error{
		Code:    "SYNTHESIS_ERROR",
		Message: "Speech synthesis failed",
		Status:  http.StatusBadGateway,
	}
	ErrGeneration = &Error{
		Code:    "GENERATION_ERROR",
		Message: "Text generation failed",
		Status:  http.StatusBadGateway,
	}
	ErrInvalidRequest = &Error{
		Code:    "INVALID_REQUEST",
		Message: "Invalid request",
		Status:  http.StatusBadRequest,
	}
)

// Wrap возвращает копию kind с причиной cause
func Wrap(kind *Error, cause error) *Error {
	e := *kind
	e.Err = cause
	return &e
}

// WithMessage возвращает копию kind с другим текстом для клиента
func WithMessage(kind *Error, message string) *Error {
	e := *kind
	e.Message = message
	return &e
}

// Coded - любая ошибка, которая знает свой HTTP-статус и код
type Coded interface {
	error
	StatusCode() int
	ErrorCode() string
	PublicMessage() string
}

// AsCoded ищет в цепочке первую ошибку с кодом
func AsCoded(err error) (Coded, bool) {
	var c Coded
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}
