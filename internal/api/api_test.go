package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"interview-voice-service/internal/apperr"
	"interview-voice-service/internal/assets"
	"interview-voice-service/internal/config"
	"interview-voice-service/internal/logging"
	"interview-voice-service/internal/metrics"
	"interview-voice-service/internal/result"
	"interview-voice-service/internal/storage"
	"interview-voice-service/internal/voice"
)

type fakeVoice struct {
	startArgs  [2]int64
	submitPath string
	submitQID  int64
	submitErr  error
	endErr     error
}

func (f *fakeVoice) Start(_ context.Context, interviewID, userID int64) result.Result[voice.StartResult] {
	f.startArgs = [2]int64{interviewID, userID}
	if interviewID == 404 {
		return result.Err[voice.StartResult](apperr.ErrInterviewNotFound)
	}
	return result.Ok(voice.StartResult{SessionID: "session_1_abc", GreetingMessage: "Hello Ada!", GreetingAudio: "/uploads/audio/tts.mp3"})
}

func (f *fakeVoice) NextQuestion(_ context.Context, sessionID string) result.Result[voice.NextQuestionResult] {
	if sessionID != "session_1_abc" {
		return result.Err[voice.NextQuestionResult](apperr.ErrSessionNotFound)
	}
	return result.Ok(voice.NextQuestionResult{QuestionID: 7, Question: "Q1", QuestionNumber: 1, TotalQuestions: 3})
}

func (f *fakeVoice) SubmitAnswer(_ context.Context, _ string, questionID int64, audioFile string) result.Result[voice.SubmitAnswerResult] {
	f.submitPath = audioFile
	f.submitQID = questionID
	if f.submitErr != nil {
		return result.Err[voice.SubmitAnswerResult](f.submitErr)
	}
	return result.Ok(voice.SubmitAnswerResult{Success: true, Message: "Answer recorded. Ready for next question.", NextQuestionAvailable: true, Transcript: "hello", Confidence: 0.9})
}

func (f *fakeVoice) End(_ context.Context, _ string) result.Result[voice.EndResult] {
	if f.endErr != nil {
		return result.Err[voice.EndResult](f.endErr)
	}
	return result.Ok(voice.EndResult{Message: "Bye", InterviewSummary: voice.Summary{TotalQuestions: 3, AnsweredQuestions: 2, Duration: "4 minutes"}})
}

func (f *fakeVoice) ActiveSessions() int { return 2 }

type fakeInterviews struct {
	created storage.NewInterview
}

func (f *fakeInterviews) CreateInterview(_ context.Context, in storage.NewInterview) result.Result[storage.Interview] {
	f.created = in
	return result.Ok(storage.Interview{ID: 11, Role: in.Role, UserID: in.UserID, InterviewQuestions: []string{"Q1"}})
}

func (f *fakeInterviews) GetInterviewByID(_ context.Context, id int64) result.Result[storage.Interview] {
	if id != 11 {
		return result.Err[storage.Interview](apperr.ErrInterviewNotFound)
	}
	return result.Ok(storage.Interview{ID: 11, Role: "Backend"})
}

func (f *fakeInterviews) ListInterviews(_ context.Context, userID int64) result.Result[[]storage.Interview] {
	return result.Ok([]storage.Interview{{ID: 11, UserID: userID}, {ID: 10, UserID: userID}})
}

type fakeResults []string

func (f fakeResults) ListResults() ([]string, error) { return f, nil }

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	srv        *Server
	voice      *fakeVoice
	interviews *fakeInterviews
	uploadsDir string
}

func newTestServer(t *testing.T, mutate func(*Deps)) *testServer {
	t.Helper()
	uploads := t.TempDir()
	assetsCfg := config.AssetsConfig{UploadsDir: uploads, URLPrefix: "/uploads"}

	ts := &testServer{voice: &fakeVoice{}, interviews: &fakeInterviews{}, uploadsDir: uploads}
	deps := Deps{
		Server: config.ServerConfig{
			BasePath:       "/api/v1",
			CORSOrigins:    []string{"http://localhost:3000"},
			RateLimit:      100,
			RateWindow:     time.Minute,
			MaxUploadBytes: 1 << 20,
		},
		Assets:     assetsCfg,
		Voice:      ts.voice,
		Interviews: ts.interviews,
		Reader:     ts.interviews,
		Uploads:    assets.New(assetsCfg.AudioDir(), assetsCfg.AudioURLPrefix()),
		Database:   fakePinger{},
		Metrics:    metrics.NewMetrics(),
		Version:    "test",
		Logger:     logging.Discard(),
	}
	if mutate != nil {
		mutate(&deps)
	}
	ts.srv = New(deps)
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartAnswer(t *testing.T, fields map[string]string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("audioFile", filename)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestStartVoiceInterview(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/start", strings.NewReader(`{"interviewId":5,"userId":3}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "session_1_abc", body["sessionId"])
	require.Equal(t, "/uploads/audio/tts.mp3", body["greetingAudio"])
	require.Equal(t, [2]int64{5, 3}, ts.voice.startArgs)
}

func TestStartVoiceInterviewErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/start", strings.NewReader(`{"interviewId":404,"userId":3}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "INTERVIEW_NOT_FOUND", body["code"])
	require.EqualValues(t, 404, body["statusCode"])

	rec = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/start", strings.NewReader(`{"interviewId":5}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/start", strings.NewReader(`not json`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_REQUEST", decodeBody(t, rec)["code"])
}

func TestNextQuestion(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/voice-interview/session_1_abc/next-question", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.EqualValues(t, 7, body["questionId"])
	require.EqualValues(t, 3, body["totalQuestions"])
	require.Equal(t, false, body["isLastQuestion"])

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/voice-interview/unknown/next-question", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "INTERVIEW_SESSION_NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestSubmitAnswerStoresUpload(t *testing.T) {
	ts := newTestServer(t, nil)

	body, ct := multipartAnswer(t, map[string]string{"sessionId": "session_1_abc", "questionId": "7"}, "answer.webm", []byte("audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/submit-answer", body)
	req.Header.Set("Content-Type", ct)

	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	require.Equal(t, true, resp["success"])
	require.Equal(t, "hello", resp["transcript"])

	require.EqualValues(t, 7, ts.voice.submitQID)
	require.Equal(t, filepath.Join(ts.uploadsDir, "audio"), filepath.Dir(ts.voice.submitPath))
	require.True(t, strings.HasPrefix(filepath.Base(ts.voice.submitPath), "answer_"))
	require.Equal(t, ".webm", filepath.Ext(ts.voice.submitPath))
	data, err := os.ReadFile(ts.voice.submitPath)
	require.NoError(t, err)
	require.Equal(t, "audio", string(data))
}

func TestSubmitAnswerDefaultsToMP3(t *testing.T) {
	ts := newTestServer(t, nil)

	body, ct := multipartAnswer(t, map[string]string{"sessionId": "session_1_abc", "questionId": "7"}, "blob", []byte("audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/submit-answer", body)
	req.Header.Set("Content-Type", ct)

	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, ".mp3", filepath.Ext(ts.voice.submitPath))
}

func TestSubmitAnswerTranscriptionErrorRemovesUpload(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.voice.submitErr = apperr.Wrap(apperr.ErrTranscription, errors.New("deepgram 500"))

	body, ct := multipartAnswer(t, map[string]string{"sessionId": "session_1_abc", "questionId": "7"}, "a.mp3", []byte("audio"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/submit-answer", body)
	req.Header.Set("Content-Type", ct)

	rec := ts.do(req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody(t, rec)
	require.Equal(t, "TRANSCRIPTION_ERROR", resp["code"])
	require.NotContains(t, resp["message"], "deepgram")

	_, err := os.Stat(ts.voice.submitPath)
	require.True(t, os.IsNotExist(err))
}

func TestSubmitAnswerValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	cases := []struct {
		name     string
		fields   map[string]string
		filename string
	}{
		{"missing session", map[string]string{"questionId": "7"}, "a.mp3"},
		{"bad question id", map[string]string{"sessionId": "s", "questionId": "seven"}, "a.mp3"},
		{"missing file", map[string]string{"sessionId": "s", "questionId": "7"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartAnswer(t, tc.fields, tc.filename, []byte("audio"))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/submit-answer", body)
			req.Header.Set("Content-Type", ct)
			rec := ts.do(req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitAnswerTooLarge(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) { d.Server.MaxUploadBytes = 64 })

	body, ct := multipartAnswer(t, map[string]string{"sessionId": "s", "questionId": "7"}, "a.mp3", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/submit-answer", body)
	req.Header.Set("Content-Type", ct)

	rec := ts.do(req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestEndVoiceInterview(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/end", strings.NewReader(`{"sessionId":"session_1_abc"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody(t, rec)["interviewSummary"].(map[string]interface{})
	require.EqualValues(t, 3, summary["totalQuestions"])
	require.Equal(t, "4 minutes", summary["duration"])

	ts.voice.endErr = apperr.ErrSessionNotFound
	rec = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/end", strings.NewReader(`{"sessionId":"session_1_abc"}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/end", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUntypedErrorIsHidden(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.voice.endErr = errors.New("disk on fire")

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/voice-interview/end", strings.NewReader(`{"sessionId":"x"}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "INTERNAL_ERROR", body["code"])
	require.NotContains(t, body["message"], "disk")
}

func TestInterviewRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/interview",
		strings.NewReader(`{"role":"Backend","level":"Senior","numberOfQuestions":3,"userId":4,"techStack":["Go"]}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, []string{"Go"}, ts.interviews.created.TechStack)
	require.EqualValues(t, 11, decodeBody(t, rec)["id"])

	rec = ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/interview", strings.NewReader(`{"role":"Backend","level":"Senior"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/interview/11", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/interview/12", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/interview/abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/interview?userId=4", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 2, decodeBody(t, rec)["count"])

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/interview", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStaticAudioHeaders(t *testing.T) {
	ts := newTestServer(t, nil)
	dir := filepath.Join(ts.uploadsDir, "audio")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tts_1.wav"), []byte("RIFF"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tts_2.mp3"), []byte("ID3"), 0644))

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/uploads/audio/tts_1.wav", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	require.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	require.Equal(t, "cross-origin", rec.Header().Get("Cross-Origin-Resource-Policy"))

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/uploads/audio/tts_2.mp3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/uploads/audio/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/uploads/audio/missing.mp3", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "disabled", body["cache"])

	ts = newTestServer(t, func(d *Deps) {
		d.Cache = fakePinger{err: errors.New("connection refused")}
	})
	rec = ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "disconnected", decodeBody(t, rec)["cache"])
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) {
		d.ModelInfo = map[string]interface{}{"model": "gpt-4o-mini"}
		d.Results = fakeResults{"session_1_a", "session_2_b"}
	})
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.EqualValues(t, 2, body["activeSessions"])
	require.EqualValues(t, 2, body["archivedSessions"])
	require.Contains(t, body, "metrics")
	require.Contains(t, body, "system")
	require.Equal(t, "gpt-4o-mini", body["model"].(map[string]interface{})["model"])
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "ROUTE_NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/voice-interview/start", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := ts.do(req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = ts.do(req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	require.True(t, rl.IsAllowed("a"))
	require.True(t, rl.IsAllowed("a"))
	require.False(t, rl.IsAllowed("a"))
	require.True(t, rl.IsAllowed("b"))

	now = now.Add(time.Minute)
	require.True(t, rl.IsAllowed("a"))

	now = now.Add(2 * time.Minute)
	rl.Cleanup()
	require.Empty(t, rl.requests)
}

func TestRateLimitedResponse(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) { d.Server.RateLimit = 1 })

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/voice-interview/session_1_abc/next-question", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/voice-interview/session_1_abc/next-question", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.Equal(t, "RATE_LIMITED", decodeBody(t, rec)["code"])
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) { d.Server.RateLimit = 1 })

	for i, forwarded := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/voice-interview/session_1_abc/next-question", nil)
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := ts.do(req)
		if i == 0 {
			require.Equal(t, http.StatusOK, rec.Code)
		} else {
			require.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	ts := newTestServer(t, func(d *Deps) {
		d.Server.RateLimit = 1
		d.Server.TrustedProxies = []string{"192.0.2.1"}
	})

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/voice-interview/session_1_abc/next-question", nil)
		req.Header.Set("X-Forwarded-For", forwarded)
		return ts.do(req).Code
	}

	require.Equal(t, http.StatusOK, send("203.0.113.1"))
	require.Equal(t, http.StatusOK, send("203.0.113.2"))
	require.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
}

func TestClientIP(t *testing.T) {
	resolver := newClientResolver([]string{"10.0.0.1", " 10.0.0.2 "})

	tests := []struct {
		name      string
		remote    string
		forwarded string
		want      string
	}{
		{"header ignored without proxy", "198.51.100.7:5000", "1.2.3.4", "198.51.100.7"},
		{"trusted proxy", "10.0.0.1:443", "203.0.113.9", "203.0.113.9"},
		{"spoofed hop left of proxy", "10.0.0.1:443", "1.2.3.4, 203.0.113.9", "203.0.113.9"},
		{"chain of trusted proxies", "10.0.0.1:443", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
		{"empty header", "10.0.0.1:443", "", "10.0.0.1"},
		{"address without port", "198.51.100.7", "", "198.51.100.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			require.Equal(t, tt.want, resolver.clientIP(req))
		})
	}
}

func TestRecoverer(t *testing.T) {
	h := recoverer(logging.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "INTERNAL_ERROR")
}
