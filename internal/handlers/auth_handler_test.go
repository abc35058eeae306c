package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestLogin_SetsSessionCookie(t *testing.T) {
	r, _ := newTestRouter(t)
	userID, cookie := registerAndLogin(t, r, "jane@example.com")
	require.NotEmpty(t, userID)

	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	require.Equal(t, 24*60*60, cookie.MaxAge)
	require.NotEmpty(t, cookie.Value)

	w, env := doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{"email": "jane@example.com", "password": testPassword}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var login map[string]json.RawMessage
	env.decode(t, &login)
	require.Contains(t, login, "user")
	require.NotContains(t, login, "token")
	require.NotContains(t, w.Body.String(), sessionCookie(t, w).Value)

	w, env = doJSON(t, r, http.MethodGet, "/api/users/checkauth", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "success", env.Status)
	var data struct {
		IsAuthenticated bool `json:"isAuthenticated"`
		User            struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	env.decode(t, &data)
	require.True(t, data.IsAuthenticated)
	require.Equal(t, userID, data.User.ID)
	require.NotContains(t, w.Body.String(), "password")

	w, _ = doJSON(t, r, http.MethodPost, "/api/users/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := sessionCookie(t, w)
	require.Empty(t, cleared.Value)
	require.Less(t, cleared.MaxAge, 0)
}

func TestLogin_Failures(t *testing.T) {
	r, _ := newTestRouter(t)
	registerAndLogin(t, r, "jane@example.com")

	w, wrongPass := doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{"email": "jane@example.com", "password": "nope-nope"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "error", wrongPass.Status)

	w, unknown := doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{"email": "ghost@example.com", "password": testPassword}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, wrongPass.Message, unknown.Message)

	w, _ = doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{"email": "jane@example.com"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/users/checkauth", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	r, mailer := newTestRouter(t)
	registerAndLogin(t, r, "jane@example.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/users/forgot-password", gin.H{"email": "jane@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	token := mailer.lastToken(t)

	w, _ = doJSON(t, r, http.MethodPost, "/api/users/reset-password/"+token+"ff", gin.H{"password": "brand-new-pass"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/users/reset-password/"+token, gin.H{"password": "brand-new-pass"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/users/login", gin.H{"email": "jane@example.com", "password": "brand-new-pass"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/users/reset-password/"+token, gin.H{"password": "another-pass"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForgotPassword_ThrottledAndSilentForUnknown(t *testing.T) {
	r, mailer := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/api/users/forgot-password", gin.H{"email": "ghost@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, mailer.links)

	for i := 0; i < 2; i++ {
		w, _ = doJSON(t, r, http.MethodPost, "/api/users/forgot-password", gin.H{"email": "ghost@example.com"}, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, env := doJSON(t, r, http.MethodPost, "/api/users/forgot-password", gin.H{"email": "ghost@example.com"}, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "error", env.Status)
}
