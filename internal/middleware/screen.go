package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/navigation"
	"github.com/businessbook/directory/internal/traffic"
	"github.com/businessbook/directory/pkg/response"
)

// RequireScreen allows the request only when the session's role may reach screen.
// A session that has neither entered as visitor nor logged in is refused.
func RequireScreen(screen models.Screen) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := CurrentSession(c)
		if st == nil {
			response.Abort(c, http.StatusUnauthorized, "missing session")
			return
		}
		role := st.Role()
		if role == models.RoleUnauthenticated {
			response.Abort(c, http.StatusForbidden, "enter as visitor or log in first")
			return
		}
		if !navigation.Allows(role, screen) {
			response.Abort(c, http.StatusForbidden, "screen "+string(screen)+" is not available to role "+string(role))
			return
		}
		c.Next()
	}
}

// PageViews counts one page view per request that passed the gates.
func PageViews(counter traffic.Counter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.IsAborted() || c.Writer.Status() >= 400 {
			return
		}
		id := CurrentSessionID(c)
		if err := counter.RecordPageView(c.Request.Context(), id.String()); err != nil {
			logger.Warn("record page view failed", zap.Error(err))
		}
	}
}
