package accounts

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/businessbook/directory/pkg/response"
	"github.com/businessbook/directory/pkg/utils"
)

func newDirectory() *Directory {
	return NewDirectory(utils.NewPasswordHasher(bcrypt.MinCost))
}

func valid() Registration {
	return Registration{Username: "jane", Email: "Jane@Example.org", Tel: "+33 1 00", Password: "secret1", ConfirmPassword: "secret1"}
}

func TestRegister(t *testing.T) {
	d := newDirectory()
	a, err := d.Register(valid())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.org", a.Email)
	assert.NotEqual(t, "secret1", a.PasswordHash)
	assert.Equal(t, 1, d.Len())

	got, ok := d.Authenticate(" JANE@example.org", "secret1")
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)

	_, ok = d.Authenticate("jane@example.org", "wrong!")
	assert.False(t, ok)
}

func TestRegister_Rejects(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Registration)
		want error
	}{
		{"missing username", func(r *Registration) { r.Username = " " }, ErrInvalidInput},
		{"missing tel", func(r *Registration) { r.Tel = "" }, ErrInvalidInput},
		{"bad email", func(r *Registration) { r.Email = "jane" }, ErrInvalidInput},
		{"bare at sign", func(r *Registration) { r.Email = "@" }, ErrInvalidInput},
		{"no domain", func(r *Registration) { r.Email = "a@" }, ErrInvalidInput},
		{"no local part", func(r *Registration) { r.Email = "@b" }, ErrInvalidInput},
		{"spaces in email", func(r *Registration) { r.Email = "a b@c d" }, ErrInvalidInput},
		{"missing confirmation", func(r *Registration) { r.ConfirmPassword = "" }, ErrInvalidInput},
		{"short password", func(r *Registration) { r.Password, r.ConfirmPassword = "abc", "abc" }, ErrInvalidInput},
		{"mismatch", func(r *Registration) { r.ConfirmPassword = "secret2" }, ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.edit(&r)
			_, err := newDirectory().Register(r)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	d := newDirectory()
	_, err := d.Register(valid())
	require.NoError(t, err)
	r := valid()
	r.Email = "jane@EXAMPLE.org"
	_, err = d.Register(r)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestHandler_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(newDirectory(), zap.NewNop())
	r.POST("/accounts/register", h.Register)

	post := func(reg Registration) (int, response.Body) {
		body, _ := json.Marshal(reg)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/accounts/register", bytes.NewReader(body)))
		var out response.Body
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		return w.Code, out
	}

	code, body := post(valid())
	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, body.Success)
	assert.NotContains(t, body.Data, "password_hash")

	code, _ = post(valid())
	assert.Equal(t, http.StatusConflict, code)

	bad := valid()
	bad.Email = "other@example.org"
	bad.ConfirmPassword = "nope!!"
	code, body = post(bad)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, ErrPasswordMismatch.Error(), body.Error)

	bad = valid()
	bad.Email = "a b@c d"
	code, body = post(bad)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body.Error, "malformed email")
	assert.Equal(t, 1, h.dir.Len())
}
