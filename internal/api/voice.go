package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"interview-voice-service/internal/apperr"
)

var errPayloadTooLarge = &apperr.Error{
	Code:    "PAYLOAD_TOO_LARGE",
	Message: "Audio file is too large",
	Status:  http.StatusRequestEntityTooLarge,
}

type startRequest struct {
	InterviewID int64 `json:"interviewId"`
	UserID      int64 `json:"userId"`
}

type endRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.InterviewID <= 0 || req.UserID <= 0 {
		writeError(w, badRequest("interviewId and userId are required"))
		return
	}

	res := s.deps.Voice.Start(r.Context(), req.InterviewID, req.UserID)
	if res.IsErr() {
		s.fail(w, r, res.Err())
		return
	}
	writeJSON(w, http.StatusOK, res.Value())
}

func (s *Server) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	res := s.deps.Voice.NextQuestion(r.Context(), r.PathValue("sessionId"))
	if res.IsErr() {
		s.fail(w, r, res.Err())
		return
	}
	writeJSON(w, http.StatusOK, res.Value())
}

// handleSubmitAnswer сохраняет запись ответа в uploads/audio и передает
// путь к файлу оркестратору. При ошибке файл удаляется.
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.deps.Server.MaxUploadBytes {
		writeError(w, errPayloadTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, errPayloadTooLarge)
			return
		}
		writeError(w, badRequest("Expected multipart/form-data body"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	sessionID := strings.TrimSpace(r.FormValue("sessionId"))
	if sessionID == "" {
		writeError(w, badRequest("sessionId is required"))
		return
	}
	questionID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("questionId")), 10, 64)
	if err != nil {
		writeError(w, badRequest("questionId must be a number"))
		return
	}

	file, header, err := r.FormFile("audioFile")
	if err != nil {
		writeError(w, badRequest("audioFile is required"))
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".mp3"
	}
	asset, err := s.deps.Uploads.Save("answer", ext, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res := s.deps.Voice.SubmitAnswer(r.Context(), sessionID, questionID, asset.Path)
	if res.IsErr() {
		_ = os.Remove(asset.Path)
		s.fail(w, r, res.Err())
		return
	}
	writeJSON(w, http.StatusOK, res.Value())
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, badRequest("sessionId is required"))
		return
	}

	res := s.deps.Voice.End(r.Context(), req.SessionID)
	if res.IsErr() {
		s.fail(w, r, res.Err())
		return
	}
	writeJSON(w, http.StatusOK, res.Value())
}

// fail логирует ошибку без кода как внутреннюю и отдает ее клиенту
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	coded, ok := apperr.AsCoded(err)
	if !ok || coded.StatusCode() >= http.StatusInternalServerError {
		s.deps.Logger.Error("ошибка обработки запроса", "path", r.URL.Path, "error", err)
	} else {
		s.deps.Logger.Debug("запрос отклонен", "path", r.URL.Path, "code", coded.ErrorCode())
	}
	writeError(w, err)
}
