package favorites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/middleware"
	"github.com/businessbook/directory/internal/models"
)

func newStore(t *testing.T) (*Store, *catalog.Store) {
	t.Helper()
	cat, err := catalog.Load(context.Background(), catalog.EmbeddedSource{})
	require.NoError(t, err)
	return NewStore(cat), cat
}

func listIDs(list []models.Enterprise) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestStore_AddListRemove(t *testing.T) {
	s, _ := newStore(t)
	me := uuid.New()

	require.NoError(t, s.Add(me, "3"))
	require.NoError(t, s.Add(me, "1"))
	require.NoError(t, s.Add(me, "3"))
	assert.Equal(t, []string{"3", "1"}, listIDs(s.List(me)))

	assert.True(t, s.Remove(me, "3"))
	assert.False(t, s.Remove(me, "3"))
	assert.Equal(t, []string{"1"}, listIDs(s.List(me)))
}

func TestStore_UnknownEnterprise(t *testing.T) {
	s, _ := newStore(t)
	assert.ErrorIs(t, s.Add(uuid.New(), "42"), catalog.ErrNotFound)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s, _ := newStore(t)
	a, b := uuid.New(), uuid.New()
	require.NoError(t, s.Add(a, "1"))
	assert.Empty(t, s.List(b))

	s.Clear(a)
	assert.Empty(t, s.List(a))
}

func TestStore_SkipsRemovedEnterprises(t *testing.T) {
	s, cat := newStore(t)
	me := uuid.New()
	require.NoError(t, s.Add(me, "1"))
	require.NoError(t, s.Add(me, "2"))
	require.NoError(t, cat.Remove("1"))
	assert.Equal(t, []string{"2"}, listIDs(s.List(me)))
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, _ := newStore(t)
	me := uuid.New()

	r := gin.New()
	g := r.Group("/favorites", func(c *gin.Context) {
		c.Set(middleware.ContextSessionID, me)
		c.Next()
	})
	NewHandler(s).Register(g)

	do := func(method, path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do(http.MethodPut, "/favorites/1"))
	assert.Equal(t, http.StatusNotFound, do(http.MethodPut, "/favorites/42"))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/favorites"))
	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/favorites/1"))
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/favorites/1"))
}
