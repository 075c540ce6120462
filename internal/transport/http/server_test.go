package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisorbot/internal/bootstrap"
	"advisorbot/internal/config"
	"advisorbot/internal/transport/http/response"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	app    *bootstrap.App
	router *gin.Engine
}

func newTestServer(t *testing.T, backend nethttp.Handler) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := httptest.NewServer(backend)
	t.Cleanup(api.Close)

	cfg := &config.Config{
		App:      config.AppConfig{Name: "advisorbot", Env: "test", Host: "127.0.0.1", Port: 8080, GinMode: gin.TestMode},
		Backend:  config.BackendConfig{BaseURL: api.URL, ChatPath: "/chat", TimeoutSeconds: 5},
		Storage:  config.StorageConfig{Backend: config.StorageMemory},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")},
	}
	a, err := bootstrap.Build(context.Background(), cfg, nil, bootstrap.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	return &testServer{app: a, router: NewRouter(a)}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func fakeBackend(t *testing.T) *nethttp.ServeMux {
	t.Helper()
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/ping", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
	})
	mux.HandleFunc("/chat", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(nethttp.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{"response":"See https://catalog.example.edu"}`))
	})
	mux.HandleFunc("/api/login", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "ada@example.edu"}).
			SignedString([]byte("k"))
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	})
	mux.HandleFunc("/chat-history", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"history":[{"session_id":"s1","user":"hi","bot":"hello","time":"2024-03-01T09:00:00Z"}]}`))
	})
	mux.HandleFunc("/api/upload-file", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"/uploads/plan.pdf","filename":"plan.pdf"}`))
	})
	return mux
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, fakeBackend(t))

	rec, _ := s.do(t, nethttp.MethodGet, "/healthz", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":{"ok":true`)
	assert.Contains(t, rec.Body.String(), `"rabbitmq":{"ok":true,"message":"disabled"}`)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t, fakeBackend(t))

	_, env := s.do(t, nethttp.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, response.CodeOK, env.Code)
	var created struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "New Chat", created.Title)

	_, env = s.do(t, nethttp.MethodPatch, "/api/v1/sessions/"+created.ID, map[string]string{"title": "   "})
	assert.Contains(t, string(env.Data), `"title":"New Chat"`)
	_, env = s.do(t, nethttp.MethodPatch, "/api/v1/sessions/"+created.ID, map[string]string{"title": "Degree plan"})
	assert.Contains(t, string(env.Data), `"title":"Degree plan"`)

	rec, env := s.do(t, nethttp.MethodDelete, "/api/v1/sessions/"+created.ID, nil)
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, response.CodeDeleteNotConfirmed, env.Code)

	other := s.app.Sessions.CreateSession(context.Background())

	rec, _ = s.do(t, nethttp.MethodDelete, "/api/v1/sessions/"+created.ID+"?confirm=true", nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	_, ok := s.app.Sessions.Session(created.ID)
	assert.False(t, ok)

	long := strings.Repeat("a", 300)
	rec, env = s.do(t, nethttp.MethodPatch, "/api/v1/sessions/"+other.ID, map[string]string{"title": long})
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, response.CodeOK, env.Code)
	renamed, ok := s.app.Sessions.Session(other.ID)
	require.True(t, ok)
	assert.Equal(t, long, renamed.Title)

	rec, env = s.do(t, nethttp.MethodPost, "/api/v1/sessions/missing/select", nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, response.CodeSessionNotFound, env.Code)
}

func TestChatWithoutLoginReportsExpiredSession(t *testing.T) {
	s := newTestServer(t, fakeBackend(t))

	rec, env := s.do(t, nethttp.MethodPost, "/api/v1/chat", map[string]string{"query": "hi"})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "Session expired. Please log in again.")
	assert.Contains(t, string(env.Data), `"failed":true`)

	rec, env = s.do(t, nethttp.MethodPost, "/api/v1/chat", map[string]string{"query": "   "})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, response.CodeEmptyQuery, env.Code)
}

func TestChatSurvivesClientDisconnect(t *testing.T) {
	s := newTestServer(t, fakeBackend(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/chat", strings.NewReader(`{"query":"hi"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Session expired. Please log in again.")
	assert.NotContains(t, rec.Body.String(), "Could not connect to server.")
}

func TestLoginSyncsAndChats(t *testing.T) {
	s := newTestServer(t, fakeBackend(t))

	_, env := s.do(t, nethttp.MethodPost, "/api/v1/auth/login", map[string]string{"email": "ada@example.edu", "password": "secret1"})
	require.Equal(t, response.CodeOK, env.Code, env.Message)
	assert.Contains(t, string(env.Data), `"active_id":"s1"`)

	_, env = s.do(t, nethttp.MethodGet, "/api/v1/auth/me", nil)
	assert.Contains(t, string(env.Data), `"logged_in":true`)

	_, env = s.do(t, nethttp.MethodPost, "/api/v1/chat", map[string]string{"query": "electives?"})
	assert.Contains(t, string(env.Data), `"session_id":"s1"`)
	assert.Contains(t, string(env.Data), "catalog.example.edu")

	_, env = s.do(t, nethttp.MethodGet, "/api/v1/sessions/s1/messages?format=html", nil)
	assert.Contains(t, string(env.Data), `target=\"_blank\"`)

	_, env = s.do(t, nethttp.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, response.CodeOK, env.Code)
	_, ok := s.app.Sessions.Session("s1")
	assert.True(t, ok)
}

func TestAttachmentUpload(t *testing.T) {
	s := newTestServer(t, fakeBackend(t))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "plan.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/chat/attachments", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "[plan.pdf](")
}

func TestPreferencesAndTranscripts(t *testing.T) {
	s := newTestServer(t, fakeBackend(t))

	_, env := s.do(t, nethttp.MethodPost, "/api/v1/preferences/theme", nil)
	assert.Contains(t, string(env.Data), `"theme":"dark"`)
	_, env = s.do(t, nethttp.MethodGet, "/api/v1/preferences", nil)
	assert.Contains(t, string(env.Data), `"sidebar_collapsed":false`)

	rec, env := s.do(t, nethttp.MethodGet, "/api/v1/transcripts", nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, response.CodeFeatureDisabled, env.Code)
}

func TestChangePasswordValidation(t *testing.T) {
	s := newTestServer(t, fakeBackend(t))

	rec, env := s.do(t, nethttp.MethodPost, "/api/v1/profile/password", map[string]string{
		"currentPassword": "old",
		"newPassword":     "abcdef",
		"confirmPassword": "abcdeg",
	})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, response.CodePasswordMismatch, env.Code)

	_, env = s.do(t, nethttp.MethodGet, "/api/v1/profile", nil)
	assert.Contains(t, string(env.Data), `"profilePicture":"/user_icon.jpg"`)
}
