package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/businessbook/directory/internal/session"
	"github.com/businessbook/directory/pkg/response"
)

const (
	ContextSessionID = session.ContextSessionID
	ContextSession   = session.ContextSession
)

// Session returns a middleware that resolves the bearer token to a live session.
func Session(tokens *session.TokenService, registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Abort(c, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		id, st, ok := Resolve(tokens, registry, parts[1])
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		c.Set(ContextSessionID, id)
		c.Set(ContextSession, st)
		c.Next()
	}
}

// Resolve validates token and looks up its session. An expired token also
// drops its session from the registry.
func Resolve(tokens *session.TokenService, registry *session.Registry, token string) (uuid.UUID, *session.State, bool) {
	id, err := tokens.Validate(strings.TrimSpace(token))
	if errors.Is(err, session.ErrTokenExpired) {
		registry.Drop(id)
		return uuid.Nil, nil, false
	}
	if err != nil {
		return uuid.Nil, nil, false
	}
	st, ok := registry.Get(id)
	if !ok {
		return uuid.Nil, nil, false
	}
	return id, st, true
}

// CurrentSession returns the session set by Session, or nil.
func CurrentSession(c *gin.Context) *session.State {
	_, st := session.FromGin(c)
	return st
}

// CurrentSessionID returns the session id set by Session, or uuid.Nil.
func CurrentSessionID(c *gin.Context) uuid.UUID {
	id, _ := session.FromGin(c)
	return id
}
