package session_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/businessbook/directory/internal/accounts"
	"github.com/businessbook/directory/internal/middleware"
	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/session"
	"github.com/businessbook/directory/internal/traffic"
	"github.com/businessbook/directory/pkg/utils"
)

type recordingCleaner struct{ cleared []uuid.UUID }

func (r *recordingCleaner) Clear(id uuid.UUID) { r.cleared = append(r.cleared, id) }

type harness struct {
	router  *gin.Engine
	dir     *accounts.Directory
	counter *traffic.Memory
	cleaner *recordingCleaner
}

func newHarness() *harness {
	gin.SetMode(gin.TestMode)
	h := &harness{
		dir:     accounts.NewDirectory(utils.NewPasswordHasher(bcrypt.MinCost)),
		counter: traffic.NewMemory(),
		cleaner: &recordingCleaner{},
	}
	registry := session.NewRegistry("")
	tokens := session.NewTokenService("test-secret", 1)
	sh := session.NewHandler(session.HandlerConfig{
		Registry: registry,
		Tokens:   tokens,
		Accounts: h.dir,
		Cleaners: []session.Cleaner{h.cleaner},
		Traffic:  h.counter,
		Logger:   zap.NewNop(),
	})

	r := gin.New()
	r.POST("/sessions", sh.Create)
	g := r.Group("/session", middleware.Session(tokens, registry))
	g.GET("", sh.Get)
	g.POST("/visitor", sh.EnterAsVisitor)
	g.POST("/login", sh.Login)
	g.POST("/logout", sh.Logout)
	h.router = r
	return h
}

type view struct {
	Token     string           `json:"token"`
	SessionID uuid.UUID        `json:"session_id"`
	Role      models.Role      `json:"role"`
	Identity  session.Identity `json:"identity"`
	Screens   []models.Screen  `json:"screens"`
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) (int, view) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env struct {
		Data view `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env.Data
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness()
	code, created := h.do(t, http.MethodPost, "/sessions", "", nil)
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, created.Token)
	assert.Equal(t, models.RoleUnauthenticated, created.Role)
	token := created.Token

	_, v := h.do(t, http.MethodPost, "/session/visitor", token, nil)
	assert.Equal(t, models.RoleVisitor, v.Role)
	assert.Contains(t, v.Screens, models.ScreenFavorites)

	_, v = h.do(t, http.MethodPost, "/session/login", token, session.LoginRequest{Identifier: "admin@example.com", Secret: "x"})
	assert.Equal(t, models.RoleAdmin, v.Role)
	assert.Equal(t, []models.Screen{models.ScreenAdmin, models.ScreenHome, models.ScreenSearch, models.ScreenProfile}, v.Screens)

	_, v = h.do(t, http.MethodPost, "/session/logout", token, nil)
	assert.Equal(t, models.RoleUnauthenticated, v.Role)
	assert.Equal(t, []uuid.UUID{created.SessionID}, h.cleaner.cleared)

	_, v = h.do(t, http.MethodGet, "/session", token, nil)
	assert.Equal(t, models.RoleUnauthenticated, v.Role)

	stats, err := h.counter.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalVisits)
	assert.Equal(t, int64(1), stats.UniqueVisitors)
}

func TestLogin_EmptyFieldsRejected(t *testing.T) {
	h := newHarness()
	_, created := h.do(t, http.MethodPost, "/sessions", "", nil)

	code, _ := h.do(t, http.MethodPost, "/session/login", created.Token, session.LoginRequest{Identifier: "jane@example.org"})
	assert.Equal(t, http.StatusBadRequest, code)

	_, v := h.do(t, http.MethodGet, "/session", created.Token, nil)
	assert.Equal(t, models.RoleUnauthenticated, v.Role)
}

func TestLogin_RegisteredAccountGetsDisplayName(t *testing.T) {
	h := newHarness()
	_, err := h.dir.Register(accounts.Registration{
		Username: "Jane", Email: "jane@example.org", Tel: "0100", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	_, created := h.do(t, http.MethodPost, "/sessions", "", nil)

	_, v := h.do(t, http.MethodPost, "/session/login", created.Token, session.LoginRequest{Identifier: "jane@example.org", Secret: "secret1"})
	assert.Equal(t, models.RoleCustomer, v.Role)
	assert.Equal(t, "Jane", v.Identity.DisplayName)

	_, v = h.do(t, http.MethodPost, "/session/login", created.Token, session.LoginRequest{Identifier: "jane@example.org", Secret: "wrong"})
	assert.Equal(t, models.RoleCustomer, v.Role)
	assert.Empty(t, v.Identity.DisplayName)
}

func TestSessionRoutesRequireToken(t *testing.T) {
	h := newHarness()
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
