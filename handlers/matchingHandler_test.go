package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"playmateserver/middlewares"
	"playmateserver/persist"
	"playmateserver/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	router        *gin.Engine
	users         *store.UserStore
	matches       *store.MatchStore
	notifications *store.NotificationStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	dir := t.TempDir()
	sink := func(name string) persist.Sink {
		return persist.NewFileSink(filepath.Join(dir, name+".json"))
	}

	env := &testEnv{
		users:         store.NewUserStore(sink("users"), logger),
		matches:       store.NewMatchStore(sink("matchings"), logger),
		notifications: store.NewNotificationStore(sink("notifications"), logger),
	}

	r := gin.New()
	r.POST("/api/auth/register", func(c *gin.Context) {
		Register(c, env.users, logger)
	})
	r.POST("/api/auth/login", func(c *gin.Context) {
		Login(c, env.users, logger)
	})
	api := r.Group("/api", middlewares.AuthMiddleware(logger))
	api.POST("/matchings", func(c *gin.Context) {
		CreateMatching(c, env.matches, env.users, logger)
	})
	api.GET("/matchings", func(c *gin.Context) {
		ListMatchings(c, env.matches, logger)
	})
	api.GET("/matchings/:id", func(c *gin.Context) {
		GetMatching(c, env.matches, logger)
	})
	api.POST("/matchings/:id/join", func(c *gin.Context) {
		JoinMatching(c, env.matches, env.notifications, logger)
	})
	api.POST("/matchings/:id/confirm", func(c *gin.Context) {
		ConfirmMatching(c, env.matches, env.notifications, logger)
	})
	api.POST("/matchings/:id/complete", func(c *gin.Context) {
		CompleteMatching(c, env.matches, logger)
	})
	api.POST("/matchings/:id/cancel", func(c *gin.Context) {
		CancelMatching(c, env.matches, env.notifications, logger)
	})
	api.GET("/notifications", func(c *gin.Context) {
		ListNotifications(c, env.notifications, logger)
	})
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registerUser(t *testing.T, nickname string) (userID int, token string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":     nickname + "@example.com",
		"password":  "secret123",
		"nickname":  nickname,
		"birthYear": 1995,
		"gender":    "male",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			ID    int    `json:"id"`
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID, resp.Data.Token
}

func (e *testEnv) createMatching(t *testing.T, token string) int64 {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/matchings", token, gin.H{
		"courtName":        "riverside court",
		"date":             "2026-09-15",
		"gameType":         "badminton",
		"maleRecruitCount": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")

	w := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret123")
	assert.NotContains(t, w.Body.String(), `"password"`)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_credentials")

	// unknown email fails identically
	w = env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_credentials")
}

func TestCreateMatchingValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerUser(t, "alice")

	w := env.do(t, http.MethodPost, "/api/matchings", token, gin.H{"date": "2026-09-15"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "courtName")

	w = env.do(t, http.MethodPost, "/api/matchings", token, gin.H{
		"courtName": "somewhere",
		"date":      "not a date",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchingFlow(t *testing.T) {
	env := newTestEnv(t)
	_, hostToken := env.registerUser(t, "host")
	_, guestToken := env.registerUser(t, "guest")
	matchID := env.createMatching(t, hostToken)
	path := fmt.Sprintf("/api/matchings/%d", matchID)

	// host cannot join their own match
	w := env.do(t, http.MethodPost, path+"/join", hostToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "self_application")

	w = env.do(t, http.MethodPost, path+"/join", guestToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, path+"/join", guestToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already_applied")

	// the host was notified of the application
	w = env.do(t, http.MethodGet, "/api/notifications", hostToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "match_applied")

	// guest cannot confirm
	w = env.do(t, http.MethodPost, path+"/confirm", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "not_host")

	w = env.do(t, http.MethodPost, path+"/confirm", hostToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"confirmed"`)

	// no joining after confirmation
	w = env.do(t, http.MethodPost, path+"/join", guestToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "match_not_recruiting")

	// the guest was notified of the confirmation
	w = env.do(t, http.MethodGet, "/api/notifications", guestToken, nil)
	assert.Contains(t, w.Body.String(), "match_confirmed")

	w = env.do(t, http.MethodPost, path+"/complete", hostToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed"`)

	// terminal: cancel is now rejected
	w = env.do(t, http.MethodPost, path+"/cancel", hostToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_transition")
}

func TestMatchingCapacityOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	_, hostToken := env.registerUser(t, "host")
	matchID := env.createMatching(t, hostToken) // capacity 3
	path := fmt.Sprintf("/api/matchings/%d/join", matchID)

	for i := 0; i < 3; i++ {
		_, token := env.registerUser(t, fmt.Sprintf("guest%d", i))
		w := env.do(t, http.MethodPost, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	_, lateToken := env.registerUser(t, "latecomer")
	w := env.do(t, http.MethodPost, path, lateToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "match_full")
}

func TestGetMatchingUnknownID(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerUser(t, "alice")

	w := env.do(t, http.MethodGet, "/api/matchings/42", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/matchings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
