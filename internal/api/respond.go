package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"interview-voice-service/internal/apperr"
)

// errorBody - формат ошибки для клиента
type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

var (
	errTooManyRequests = &apperr.Error{
		Code:    "RATE_LIMITED",
		Message: "Too many requests, slow down",
		Status:  http.StatusTooManyRequests,
	}
	errNotFound = &apperr.Error{
		Code:    "ROUTE_NOT_FOUND",
		Message: "Route not found",
		Status:  http.StatusNotFound,
	}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError отдает типизированную ошибку. Все остальное - 500 без деталей.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{
		Code:       "INTERNAL_ERROR",
		Message:    "Internal Server Error",
		StatusCode: http.StatusInternalServerError,
	}
	if coded, ok := apperr.AsCoded(err); ok {
		body = errorBody{
			Code:       coded.ErrorCode(),
			Message:    coded.PublicMessage(),
			StatusCode: coded.StatusCode(),
		}
	}
	writeJSON(w, body.StatusCode, body)
}

func badRequest(message string) error {
	return apperr.WithMessage(apperr.ErrInvalidRequest, message)
}

// decodeJSON читает тело запроса в v, неизвестные поля игнорируются
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("Request body is empty")
		}
		return badRequest("Request body is not valid JSON")
	}
	return nil
}
