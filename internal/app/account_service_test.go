package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisorbot/internal/backend"
	"advisorbot/internal/storage"
)

type accountFixture struct {
	kv      *storage.MemoryStore
	ctrl    *SessionController
	service *AccountService
}

func newAccountFixture(t *testing.T, mux *http.ServeMux) *accountFixture {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	kv := storage.NewMemoryStore()
	ctrl := newTestController(t, kv)
	client := backend.NewClient(srv.URL, "", 5*time.Second)
	sync := NewSynchronizer(client, ctrl, nil)
	return &accountFixture{
		kv:      kv,
		ctrl:    ctrl,
		service: NewAccountService(client, NewCredentials(kv), sync, nil),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoginStoresTokenAndSyncsHistory(t *testing.T) {
	token := signedToken(t, "student@example.edu")
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
	})
	mux.HandleFunc("/chat-history", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"history": []map[string]string{
			{"session_id": "s1", "user": "hi", "bot": "hello"},
			{"session_id": "s2", "user": "bye", "bot": "later"},
		}})
	})
	f := newAccountFixture(t, mux)

	id, err := f.service.Login(context.Background(), " student@example.edu ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "student@example.edu", id.Email)

	stored, ok, err := f.kv.Get(context.Background(), storage.KeyToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token, stored)

	sessions, active := f.ctrl.Snapshot()
	assert.Equal(t, []string{"s1", "s2"}, ids(sessions))
	assert.Equal(t, "s2", active)
}

func TestLoginFailureKeepsLoggedOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	})
	f := newAccountFixture(t, mux)

	_, err := f.service.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.True(t, backend.IsUnauthorized(err))

	_, ok, _ := f.kv.Get(context.Background(), storage.KeyToken)
	assert.False(t, ok)

	_, err = f.service.Login(context.Background(), "", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogoutKeepsSessions(t *testing.T) {
	f := newAccountFixture(t, http.NewServeMux())
	ctx := context.Background()
	require.NoError(t, NewCredentials(f.kv).Save(ctx, signedToken(t, "x@y.z")))
	created := f.ctrl.CreateSession(ctx)

	require.NoError(t, f.service.Logout(ctx))

	id, err := f.service.Identity(ctx)
	require.NoError(t, err)
	assert.Empty(t, id.Email)
	_, ok := f.ctrl.Session(created.ID)
	assert.True(t, ok)
}

func TestResetHistoryRequiresLogin(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/reset-history", func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusOK, map[string]string{"message": "History reset"})
	})
	f := newAccountFixture(t, mux)
	ctx := context.Background()

	assert.ErrorIs(t, f.service.ResetHistory(ctx), ErrNotAuthenticated)
	assert.Equal(t, 0, calls)

	require.NoError(t, NewCredentials(f.kv).Save(ctx, signedToken(t, "x@y.z")))
	created := f.ctrl.CreateSession(ctx)
	require.NoError(t, f.service.ResetHistory(ctx))
	assert.Equal(t, 1, calls)
	_, ok := f.ctrl.Session(created.ID)
	assert.True(t, ok)
}

func TestProfileResolvesPictureURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":           "Ada",
			"email":          "ada@example.edu",
			"studentId":      "S-1",
			"major":          "CS",
			"profilePicture": "/uploads/ada.png",
		})
	})
	f := newAccountFixture(t, mux)
	require.NoError(t, NewCredentials(f.kv).Save(context.Background(), signedToken(t, "ada@example.edu")))

	profile := f.service.Profile(context.Background())
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, "S-1", profile.StudentID)
	assert.Contains(t, profile.ProfilePicture, "http://")
	assert.Contains(t, profile.ProfilePicture, "/uploads/ada.png")
}

func TestProfileDegradesToPlaceholder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "db down"})
	})
	f := newAccountFixture(t, mux)
	require.NoError(t, NewCredentials(f.kv).Save(context.Background(), signedToken(t, "ada@example.edu")))

	profile := f.service.Profile(context.Background())
	assert.Equal(t, "ada@example.edu", profile.Email)
	assert.Equal(t, "/user_icon.jpg", profile.ProfilePicture)
	assert.Empty(t, profile.Name)
}

func TestChangePasswordValidatesLocally(t *testing.T) {
	called := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/change-password", func(w http.ResponseWriter, r *http.Request) {
		called = true
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "old", body["currentPassword"])
		assert.Equal(t, "newpass", body["newPassword"])
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	f := newAccountFixture(t, mux)
	ctx := context.Background()

	err := f.service.ChangePassword(ctx, ChangePasswordInput{CurrentPassword: "old", NewPassword: "newpass", ConfirmPassword: "other"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	err = f.service.ChangePassword(ctx, ChangePasswordInput{CurrentPassword: "old", NewPassword: "abc", ConfirmPassword: "abc"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	err = f.service.ChangePassword(ctx, ChangePasswordInput{CurrentPassword: "old", NewPassword: "newpass", ConfirmPassword: "newpass"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, called)

	require.NoError(t, NewCredentials(f.kv).Save(ctx, signedToken(t, "a@b.c")))
	require.NoError(t, f.service.ChangePassword(ctx, ChangePasswordInput{CurrentPassword: "old", NewPassword: "newpass", ConfirmPassword: "newpass"}))
	assert.True(t, called)
}

func TestPreferencesToggle(t *testing.T) {
	prefs := NewPreferences(storage.NewMemoryStore())
	ctx := context.Background()

	theme, err := prefs.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	theme, err = prefs.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)
	theme, err = prefs.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	collapsed, err := prefs.ToggleSidebar(ctx)
	require.NoError(t, err)
	assert.True(t, collapsed)
	collapsed, err = prefs.SidebarCollapsed(ctx)
	require.NoError(t, err)
	assert.True(t, collapsed)
}
