package api

import (
	"net/http"
	"strconv"
	"strings"

	"interview-voice-service/internal/storage"
)

func (s *Server) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	var req storage.NewInterview
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.UserID <= 0 {
		writeError(w, badRequest("userId is required"))
		return
	}
	if strings.TrimSpace(req.Role) == "" || strings.TrimSpace(req.Level) == "" {
		writeError(w, badRequest("role and level are required"))
		return
	}

	res := s.deps.Interviews.CreateInterview(r.Context(), req)
	if res.IsErr() {
		s.fail(w, r, res.Err())
		return
	}
	writeJSON(w, http.StatusCreated, res.Value())
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, badRequest("id must be a positive number"))
		return
	}

	res := s.deps.Reader.GetInterviewByID(r.Context(), id)
	if res.IsErr() {
		s.fail(w, r, res.Err())
		return
	}
	writeJSON(w, http.StatusOK, res.Value())
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, badRequest("userId query parameter is required"))
		return
	}

	res := s.deps.Reader.ListInterviews(r.Context(), userID)
	if res.IsErr() {
		s.fail(w, r, res.Err())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"interviews": res.Value(),
		"count":      len(res.Value()),
	})
}
