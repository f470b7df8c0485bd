package enterprises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/businessbook/directory/internal/backend"
	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/search"
	"github.com/businessbook/directory/internal/traffic"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(t *testing.T, opts ...backend.Option) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	opts = append([]backend.Option{backend.WithLatency(backend.DefaultLatency().Scaled(0))}, opts...)
	b := backend.NewSimulated(store, traffic.NewMemory(), opts...)
	h := NewHandler(b, search.NewEngine(b, 0, nil), 0, zap.NewNop())

	r := gin.New()
	r.GET("/enterprises", h.List)
	r.GET("/enterprises/:id", h.Get)
	r.GET("/domains", h.Domains)
	r.GET("/search", h.Search)
	return r
}

func get(t *testing.T, r *gin.Engine, path string) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func enterpriseIDs(t *testing.T, raw json.RawMessage) []string {
	t.Helper()
	var list []models.Enterprise
	require.NoError(t, json.Unmarshal(raw, &list))
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestList(t *testing.T) {
	r := newRouter(t)
	code, env := get(t, r, "/enterprises")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, enterpriseIDs(t, env.Data), 6)

	_, env = get(t, r, "/enterprises?domain_id=domain-llc")
	assert.Equal(t, []string{"1", "3", "6"}, enterpriseIDs(t, env.Data))
}

func TestSearch(t *testing.T) {
	r := newRouter(t)
	code, env := get(t, r, "/search")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "[]", string(env.Data))

	_, env = get(t, r, "/search?q=tech")
	assert.Equal(t, []string{"1"}, enterpriseIDs(t, env.Data))

	_, env = get(t, r, "/search?domain_id=domain-credits,domain-llc&q=express")
	assert.Equal(t, []string{"5", "6"}, enterpriseIDs(t, env.Data))

	_, env = get(t, r, "/search?domain_id=domain-insurance&domain_id=domain-llc&q=tech")
	assert.Equal(t, []string{"1"}, enterpriseIDs(t, env.Data))
}

func TestGet(t *testing.T) {
	r := newRouter(t)
	code, env := get(t, r, "/enterprises/5")
	require.Equal(t, http.StatusOK, code)
	var e models.Enterprise
	require.NoError(t, json.Unmarshal(env.Data, &e))
	assert.Equal(t, "Crédit Express", e.LongName)

	code, env = get(t, r, "/enterprises/99")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestDomains(t *testing.T) {
	code, env := get(t, newRouter(t), "/domains")
	require.Equal(t, http.StatusOK, code)
	var list []models.Domain
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 3)
}

func TestBackendFailureIsRetryable(t *testing.T) {
	r := newRouter(t, backend.WithFault(func(backend.Op) error { return errors.New("offline") }))
	code, env := get(t, r, "/search?q=tech")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.NotEmpty(t, env.Error)

	code, _ = get(t, r, "/domains")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
